package service

import (
	"strings"

	"github.com/tftboard/tftboard/internal/domain"
)

type PostService interface {
	Create(author *domain.Principal, title, body string) (*domain.Post, error)
	Get(id domain.PostId) (*domain.Post, error)
	List() ([]domain.Post, error)
}

type PostStorage interface {
	CreatePost(draft domain.PostDraft) (*domain.Post, error)
	GetPost(id domain.PostId) (*domain.Post, error)
	ListPosts() ([]domain.Post, error)
}

type PostValidator interface {
	Title(title string) error
	Body(body string) error
}

type Post struct {
	storage   PostStorage
	validator PostValidator
}

func NewPost(storage PostStorage, validator PostValidator) *Post {
	return &Post{storage, validator}
}

func (p *Post) Create(author *domain.Principal, title, body string) (*domain.Post, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if err := p.validator.Title(title); err != nil {
		return nil, err
	}
	if err := p.validator.Body(body); err != nil {
		return nil, err
	}
	return p.storage.CreatePost(domain.PostDraft{
		Title:      title,
		Body:       body,
		AuthorId:   author.Id,
		AuthorName: author.DisplayName,
	})
}

func (p *Post) Get(id domain.PostId) (*domain.Post, error) {
	return p.storage.GetPost(id)
}

func (p *Post) List() ([]domain.Post, error) {
	return p.storage.ListPosts()
}
