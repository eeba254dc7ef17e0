// Package notconfigured provides the null-object store client used when the
// backend credentials are absent. Every method fails with ErrNotConfigured so
// consumers surface a single static notice instead of sprinkling capability
// checks through every view.
package notconfigured

import (
	"context"

	"github.com/tftboard/tftboard/internal/domain"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
	"github.com/tftboard/tftboard/internal/store"
)

type Client struct{}

var _ store.Client = Client{}

func New() Client { return Client{} }

func (Client) CurrentSession(context.Context) (*domain.Session, error) {
	return nil, internal_errors.ErrNotConfigured
}

func (Client) OnAuthStateChange(func(domain.AuthEvent)) (func(), error) {
	return nil, internal_errors.ErrNotConfigured
}

func (Client) SignInWithPassword(context.Context, domain.Email, domain.Password) (*domain.Session, error) {
	return nil, internal_errors.ErrNotConfigured
}

func (Client) SignUp(context.Context, domain.Email, domain.Password, string) (*domain.Session, error) {
	return nil, internal_errors.ErrNotConfigured
}

func (Client) SignOut(context.Context) error {
	return internal_errors.ErrNotConfigured
}

func (Client) ResetPasswordForEmail(context.Context, domain.Email) error {
	return internal_errors.ErrNotConfigured
}

func (Client) UpdateUser(context.Context, domain.UserUpdate) (*domain.Principal, error) {
	return nil, internal_errors.ErrNotConfigured
}

func (Client) Resend(context.Context, domain.Email) error {
	return internal_errors.ErrNotConfigured
}

func (Client) ListPosts(context.Context) ([]domain.Post, error) {
	return nil, internal_errors.ErrNotConfigured
}

func (Client) GetPost(context.Context, domain.PostId) (*domain.Post, error) {
	return nil, internal_errors.ErrNotConfigured
}

func (Client) InsertPost(context.Context, domain.PostDraft) (*domain.Post, error) {
	return nil, internal_errors.ErrNotConfigured
}

func (Client) ListReplies(context.Context, domain.PostId, int, int) ([]domain.Reply, int, error) {
	return nil, 0, internal_errors.ErrNotConfigured
}

func (Client) CountReplies(context.Context, domain.PostId) (int, error) {
	return 0, internal_errors.ErrNotConfigured
}

func (Client) GetReply(context.Context, domain.ReplyId) (*domain.Reply, error) {
	return nil, internal_errors.ErrNotConfigured
}

func (Client) ReplyRank(context.Context, *domain.Reply) (int, error) {
	return 0, internal_errors.ErrNotConfigured
}

func (Client) InsertReply(context.Context, domain.ReplyDraft) (*domain.Reply, error) {
	return nil, internal_errors.ErrNotConfigured
}

func (Client) UpsertProfile(context.Context, domain.Profile) error {
	return internal_errors.ErrNotConfigured
}

func (Client) ProfileById(context.Context, domain.UserId) (*domain.Profile, error) {
	return nil, internal_errors.ErrNotConfigured
}

func (Client) ProfileByName(context.Context, string) (*domain.Profile, error) {
	return nil, internal_errors.ErrNotConfigured
}

func (Client) SubscribeReplies(domain.PostId, func(domain.ReplyChange)) (func(), error) {
	return nil, internal_errors.ErrNotConfigured
}
