package domain

import (
	"strings"
	"time"
)

type (
	UserId    = string // uuid
	PostId    = string // uuid
	ReplyId   = string // uuid
	Email     = string
	Password  = string
	ReplyText = string
)

// Principal is the authenticated identity attached to a session.
type Principal struct {
	Id          UserId    `json:"id"`
	Email       Email     `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session is one principal's live credential state. The token pair is opaque
// to this layer: the access token authorizes requests, the refresh token is
// only ever exchanged for a new pair.
type Session struct {
	Principal    Principal `json:"principal"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token needs a refresh. A small skew
// margin avoids handing out a token that dies mid-request.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt.Add(-30 * time.Second))
}

// AuthEventKind classifies why the backend replaced the current session.
type AuthEventKind string

const (
	AuthSignedIn         AuthEventKind = "SIGNED_IN"
	AuthSignedOut        AuthEventKind = "SIGNED_OUT"
	AuthTokenRefreshed   AuthEventKind = "TOKEN_REFRESHED"
	AuthUserUpdated      AuthEventKind = "USER_UPDATED"
	AuthPasswordRecovery AuthEventKind = "PASSWORD_RECOVERY"
)

// AuthEvent notifies subscribers that the session changed for any reason.
// Session is nil after a sign-out.
type AuthEvent struct {
	Kind    AuthEventKind
	Session *Session
}

// Post is a top-level discussion topic. AuthorName is a snapshot taken at
// write time, not a live join; it can go stale if the author renames.
type Post struct {
	Id         PostId    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	AuthorId   UserId    `json:"author_id"`
	AuthorName string    `json:"author_display_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Reply is a message attached to exactly one post, optionally quoting one
// earlier reply on the same post. QuoteId is empty for a non-quoting reply.
// Seq is a per-post monotonic sequence assigned by the store; it exists
// because ranking by CreatedAt alone is ambiguous when timestamps collide.
type Reply struct {
	Id         ReplyId   `json:"id"`
	PostId     PostId    `json:"post_id"`
	AuthorId   UserId    `json:"author_id"`
	AuthorName string    `json:"author_display_name,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	QuoteId    ReplyId   `json:"parent_id,omitempty"`
	Seq        int64     `json:"seq,omitempty"`
}

// ReplyDraft is what a signed-in user submits; the store assigns the rest.
type ReplyDraft struct {
	PostId     PostId
	AuthorId   UserId
	AuthorName string
	Body       string
	QuoteId    ReplyId
}

type PostDraft struct {
	Title      string
	Body       string
	AuthorId   UserId
	AuthorName string
}

// Profile is the optional denormalized record upserted for every signed-in
// principal. Writes to it are best effort.
type Profile struct {
	Id          UserId    `json:"id"`
	DisplayName string    `json:"display_name,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserUpdate carries the mutable parts of a principal. Nil means unchanged.
type UserUpdate struct {
	Password    *Password
	DisplayName *string
	AvatarURL   *string
	Bio         *string
}

// ChangeOp is the kind of row mutation reported by a realtime notification.
// Consumers must treat any notification as "re-derive state from a fresh
// read"; delivery is neither ordered nor exactly-once.
type ChangeOp string

const (
	ChangeInsert ChangeOp = "INSERT"
	ChangeUpdate ChangeOp = "UPDATE"
	ChangeDelete ChangeOp = "DELETE"
)

type ReplyChange struct {
	Op      ChangeOp `json:"op"`
	PostId  PostId   `json:"post_id"`
	ReplyId ReplyId  `json:"reply_id"`
}

// Snippet collapses whitespace and cuts text to at most n runes with an
// ellipsis, matching how quoted replies are summarized.
func Snippet(text string, n int) string {
	s := strings.Join(strings.Fields(strings.TrimSpace(text)), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
