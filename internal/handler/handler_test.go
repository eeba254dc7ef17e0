package handler

import (
	"context"
	"time"

	"github.com/tftboard/tftboard/internal/config"
	"github.com/tftboard/tftboard/internal/domain"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
	"github.com/tftboard/tftboard/internal/markdown"
	"github.com/tftboard/tftboard/internal/middleware"
	"github.com/tftboard/tftboard/internal/realtime"
)

// --- Mocks ---

type MockAuthService struct {
	SignUpFunc        func(email domain.Email, password domain.Password, displayName string) (*domain.Session, error)
	SignInFunc        func(email domain.Email, password domain.Password) (*domain.Session, error)
	SignOutFunc       func(refreshToken string) error
	RefreshFunc       func(refreshToken string) (*domain.Session, error)
	ResetPasswordFunc func(email domain.Email) error
	ConfirmResetFunc  func(email domain.Email, code string, newPassword domain.Password) (*domain.Session, error)
	UpdateUserFunc    func(id domain.UserId, update domain.UserUpdate) (*domain.Principal, error)
	MeFunc            func(id domain.UserId) (*domain.Principal, error)
}

func stubSession() *domain.Session {
	return &domain.Session{
		Principal:    domain.Principal{Id: "user-1", Email: "x@y.com", DisplayName: "x"},
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(15 * time.Minute),
	}
}

func (m *MockAuthService) SignUp(email domain.Email, password domain.Password, displayName string) (*domain.Session, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(email, password, displayName)
	}
	return stubSession(), nil
}

func (m *MockAuthService) SignIn(email domain.Email, password domain.Password) (*domain.Session, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(email, password)
	}
	return stubSession(), nil
}

func (m *MockAuthService) SignOut(refreshToken string) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(refreshToken)
	}
	return nil
}

func (m *MockAuthService) Refresh(refreshToken string) (*domain.Session, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(refreshToken)
	}
	return stubSession(), nil
}

func (m *MockAuthService) ResetPassword(email domain.Email) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(email)
	}
	return nil
}

func (m *MockAuthService) ConfirmReset(email domain.Email, code string, newPassword domain.Password) (*domain.Session, error) {
	if m.ConfirmResetFunc != nil {
		return m.ConfirmResetFunc(email, code, newPassword)
	}
	return stubSession(), nil
}

func (m *MockAuthService) Resend(email domain.Email) error { return nil }

func (m *MockAuthService) UpdateUser(id domain.UserId, update domain.UserUpdate) (*domain.Principal, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(id, update)
	}
	p := stubSession().Principal
	return &p, nil
}

func (m *MockAuthService) Me(id domain.UserId) (*domain.Principal, error) {
	if m.MeFunc != nil {
		return m.MeFunc(id)
	}
	p := stubSession().Principal
	return &p, nil
}

type MockPostService struct {
	CreateFunc func(author *domain.Principal, title, body string) (*domain.Post, error)
	GetFunc    func(id domain.PostId) (*domain.Post, error)
	ListFunc   func() ([]domain.Post, error)
}

func (m *MockPostService) Create(author *domain.Principal, title, body string) (*domain.Post, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(author, title, body)
	}
	return &domain.Post{Id: "post-1", Title: title, Body: body}, nil
}

func (m *MockPostService) Get(id domain.PostId) (*domain.Post, error) {
	if m.GetFunc != nil {
		return m.GetFunc(id)
	}
	return &domain.Post{Id: id}, nil
}

func (m *MockPostService) List() ([]domain.Post, error) {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return nil, nil
}

type MockReplyService struct {
	CreateFunc func(author *domain.Principal, post domain.PostId, body string, quote domain.ReplyId) (*domain.Reply, error)
	GetFunc    func(id domain.ReplyId) (*domain.Reply, error)
	ListFunc   func(post domain.PostId, offset, limit int) ([]domain.Reply, int, error)
	CountFunc  func(post domain.PostId) (int, error)
	RankFunc   func(id domain.ReplyId) (int, error)
}

func (m *MockReplyService) Create(author *domain.Principal, post domain.PostId, body string, quote domain.ReplyId) (*domain.Reply, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(author, post, body, quote)
	}
	return &domain.Reply{Id: "reply-1", PostId: post, Body: body}, nil
}

func (m *MockReplyService) Get(id domain.ReplyId) (*domain.Reply, error) {
	if m.GetFunc != nil {
		return m.GetFunc(id)
	}
	return &domain.Reply{Id: id, PostId: "post-1"}, nil
}

func (m *MockReplyService) List(post domain.PostId, offset, limit int) ([]domain.Reply, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(post, offset, limit)
	}
	return nil, 0, nil
}

func (m *MockReplyService) Count(post domain.PostId) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(post)
	}
	return 0, nil
}

func (m *MockReplyService) Rank(id domain.ReplyId) (int, error) {
	if m.RankFunc != nil {
		return m.RankFunc(id)
	}
	return 0, internal_errors.NotFound
}

type MockProfileService struct {
	UpsertFunc func(profile domain.Profile) error
	ByIdFunc   func(id domain.UserId) (*domain.Profile, error)
	ByNameFunc func(name string) (*domain.Profile, error)
}

func (m *MockProfileService) Upsert(profile domain.Profile) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(profile)
	}
	return nil
}

func (m *MockProfileService) ById(id domain.UserId) (*domain.Profile, error) {
	if m.ByIdFunc != nil {
		return m.ByIdFunc(id)
	}
	return &domain.Profile{Id: id}, nil
}

func (m *MockProfileService) ByName(name string) (*domain.Profile, error) {
	if m.ByNameFunc != nil {
		return m.ByNameFunc(name)
	}
	return &domain.Profile{DisplayName: name}, nil
}

// --- Setup ---

func testConfig() *config.Config {
	return &config.Config{
		Public: config.Public{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 720 * time.Hour,
		},
	}
}

func newTestHandler(auth *MockAuthService, posts *MockPostService, replies *MockReplyService, profiles *MockProfileService) *Handler {
	if auth == nil {
		auth = &MockAuthService{}
	}
	if posts == nil {
		posts = &MockPostService{}
	}
	if replies == nil {
		replies = &MockReplyService{}
	}
	if profiles == nil {
		profiles = &MockProfileService{}
	}
	return New(auth, posts, replies, profiles, realtime.NewHub(), markdown.New(), testConfig())
}

// signedIn injects an authenticated user id the way the auth middleware does.
func signedIn(ctx context.Context, uid domain.UserId) context.Context {
	return context.WithValue(ctx, middleware.UserIdKey, uid)
}
