// Package store defines the row-store abstraction the session cache and the
// reply viewer are written against. The backing service is consumed through
// this interface only: a REST implementation talks to the hosted API, the
// null-object implementation stands in when credentials are absent, and tests
// substitute in-memory fakes.
package store

import (
	"context"

	"github.com/tftboard/tftboard/internal/domain"
)

// Auth is the session sub-interface. CurrentSession returns NotFound when no
// session is persisted; any other error means the read itself failed.
type Auth interface {
	CurrentSession(ctx context.Context) (*domain.Session, error)
	// OnAuthStateChange registers cb for every session replacement (sign-in,
	// sign-out, token refresh, recovery entry, user update). The returned
	// function detaches the subscription.
	OnAuthStateChange(cb func(domain.AuthEvent)) (unsubscribe func(), err error)
	SignInWithPassword(ctx context.Context, email domain.Email, password domain.Password) (*domain.Session, error)
	SignUp(ctx context.Context, email domain.Email, password domain.Password, displayName string) (*domain.Session, error)
	SignOut(ctx context.Context) error
	ResetPasswordForEmail(ctx context.Context, email domain.Email) error
	UpdateUser(ctx context.Context, update domain.UserUpdate) (*domain.Principal, error)
	Resend(ctx context.Context, email domain.Email) error
}

// Posts is the top-level topic sub-interface.
type Posts interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
	GetPost(ctx context.Context, id domain.PostId) (*domain.Post, error)
	InsertPost(ctx context.Context, draft domain.PostDraft) (*domain.Post, error)
}

// Replies reads and writes one post's reply set.
type Replies interface {
	// ListReplies returns rows ordered ascending by creation time, sliced to
	// [offset, offset+limit), plus the exact total at query time. Read
	// consistency across the slice and the count is not guaranteed.
	ListReplies(ctx context.Context, post domain.PostId, offset, limit int) ([]domain.Reply, int, error)
	CountReplies(ctx context.Context, post domain.PostId) (int, error)
	GetReply(ctx context.Context, id domain.ReplyId) (*domain.Reply, error)
	// ReplyRank returns the reply's 1-based display index within its post:
	// how many of the post's replies sort at or before it.
	ReplyRank(ctx context.Context, reply *domain.Reply) (int, error)
	InsertReply(ctx context.Context, draft domain.ReplyDraft) (*domain.Reply, error)
}

// Profiles is optional infrastructure; callers swallow its failures.
type Profiles interface {
	UpsertProfile(ctx context.Context, profile domain.Profile) error
	ProfileById(ctx context.Context, id domain.UserId) (*domain.Profile, error)
	ProfileByName(ctx context.Context, name string) (*domain.Profile, error)
}

// Realtime delivers unordered, at-most-best-effort change notifications.
type Realtime interface {
	// SubscribeReplies invokes cb for every change to the post's replies until
	// the returned function is called.
	SubscribeReplies(post domain.PostId, cb func(domain.ReplyChange)) (unsubscribe func(), err error)
}

// Client is the full surface a composition root hands to consumers. It is
// either a live client or the notconfigured null object; the capability check
// happens once, not in every consumer.
type Client interface {
	Auth
	Posts
	Replies
	Profiles
	Realtime
}
