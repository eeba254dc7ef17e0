package service

import (
	"strings"

	"github.com/tftboard/tftboard/internal/domain"
)

type ReplyService interface {
	Create(author *domain.Principal, post domain.PostId, body string, quote domain.ReplyId) (*domain.Reply, error)
	Get(id domain.ReplyId) (*domain.Reply, error)
	List(post domain.PostId, offset, limit int) ([]domain.Reply, int, error)
	Count(post domain.PostId) (int, error)
	Rank(id domain.ReplyId) (int, error)
}

type ReplyStorage interface {
	CreateReply(draft domain.ReplyDraft) (*domain.Reply, error)
	GetReply(id domain.ReplyId) (*domain.Reply, error)
	ListReplies(post domain.PostId, offset, limit int) ([]domain.Reply, int, error)
	CountReplies(post domain.PostId) (int, error)
	ReplyRank(reply *domain.Reply) (int, error)
}

type ReplyValidator interface {
	Body(body string) error
}

type Reply struct {
	storage   ReplyStorage
	validator ReplyValidator
}

func NewReply(storage ReplyStorage, validator ReplyValidator) *Reply {
	return &Reply{storage, validator}
}

func (r *Reply) Create(author *domain.Principal, post domain.PostId, body string, quote domain.ReplyId) (*domain.Reply, error) {
	body = strings.TrimSpace(body)
	if err := r.validator.Body(body); err != nil {
		return nil, err
	}
	return r.storage.CreateReply(domain.ReplyDraft{
		PostId:     post,
		AuthorId:   author.Id,
		AuthorName: author.DisplayName,
		Body:       body,
		QuoteId:    quote,
	})
}

func (r *Reply) Get(id domain.ReplyId) (*domain.Reply, error) {
	return r.storage.GetReply(id)
}

func (r *Reply) List(post domain.PostId, offset, limit int) ([]domain.Reply, int, error) {
	if limit <= 0 || limit > 100 {
		limit = domain.PageSize
	}
	if offset < 0 {
		offset = 0
	}
	return r.storage.ListReplies(post, offset, limit)
}

func (r *Reply) Count(post domain.PostId) (int, error) {
	return r.storage.CountReplies(post)
}

// Rank resolves a reply identifier to its 1-based display index within its
// post so clients can translate identity into page position.
func (r *Reply) Rank(id domain.ReplyId) (int, error) {
	reply, err := r.storage.GetReply(id)
	if err != nil {
		return 0, err
	}
	return r.storage.ReplyRank(reply)
}
