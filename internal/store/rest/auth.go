package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/tftboard/tftboard/internal/domain"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
	"github.com/tftboard/tftboard/internal/logger"
)

// CurrentSession returns the locally persisted session, refreshing the token
// pair first when the access token has expired. NotFound means nobody is
// signed in; a refresh failure other than rejection surfaces as-is so callers
// can keep the stale session visible instead of flapping to anonymous.
func (c *Client) CurrentSession(ctx context.Context) (*domain.Session, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		// Another process may have signed in since we loaded.
		fromDisk, err := c.loadSessionFile()
		if err != nil || fromDisk == nil {
			return nil, internal_errors.NotFound
		}
		c.mu.Lock()
		c.session = fromDisk
		c.mu.Unlock()
		session = fromDisk
	}

	if !session.Expired() {
		return session, nil
	}

	refreshed, err := c.refresh(ctx, session.RefreshToken)
	if err != nil {
		var sc *internal_errors.ErrorWithStatusCode
		if errors.As(err, &sc) && sc.StatusCode == http.StatusUnauthorized {
			// The pair was revoked; the session is gone for good.
			c.replaceSession(nil, domain.AuthSignedOut)
			return nil, internal_errors.NotFound
		}
		return nil, err
	}

	c.replaceSession(refreshed, domain.AuthTokenRefreshed)
	return refreshed, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email domain.Email, password domain.Password) (*domain.Session, error) {
	var session domain.Session
	_, err := c.do(ctx, http.MethodPost, "/v1/auth/login", map[string]string{
		"email": email, "password": password,
	}, &session)
	if err != nil {
		return nil, err
	}

	c.replaceSession(&session, domain.AuthSignedIn)
	return &session, nil
}

func (c *Client) SignUp(ctx context.Context, email domain.Email, password domain.Password, displayName string) (*domain.Session, error) {
	var session domain.Session
	_, err := c.do(ctx, http.MethodPost, "/v1/auth/signup", map[string]string{
		"email": email, "password": password, "display_name": displayName,
	}, &session)
	if err != nil {
		return nil, err
	}

	c.replaceSession(&session, domain.AuthSignedIn)
	return &session, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return nil
	}

	_, err := c.do(ctx, http.MethodPost, "/v1/auth/logout", map[string]string{
		"refresh_token": session.RefreshToken,
	}, nil)
	// Local state clears regardless; the server side token expires on its own
	// if the revoke never arrived.
	c.replaceSession(nil, domain.AuthSignedOut)
	return err
}

func (c *Client) ResetPasswordForEmail(ctx context.Context, email domain.Email) error {
	_, err := c.do(ctx, http.MethodPost, "/v1/auth/reset_password", map[string]string{"email": email}, nil)
	return err
}

func (c *Client) Resend(ctx context.Context, email domain.Email) error {
	_, err := c.do(ctx, http.MethodPost, "/v1/auth/resend", map[string]string{"email": email}, nil)
	return err
}

// ConfirmPasswordReset exchanges an emailed code for a fresh session. The
// event kind is PASSWORD_RECOVERY so the session cache raises its recovery
// flag and the UI can route to the password form.
func (c *Client) ConfirmPasswordReset(ctx context.Context, email domain.Email, code string, newPassword domain.Password) (*domain.Session, error) {
	var session domain.Session
	_, err := c.do(ctx, http.MethodPost, "/v1/auth/confirm_reset", map[string]string{
		"email": email, "code": code, "password": newPassword,
	}, &session)
	if err != nil {
		return nil, err
	}

	c.replaceSession(&session, domain.AuthPasswordRecovery)
	return &session, nil
}

func (c *Client) UpdateUser(ctx context.Context, update domain.UserUpdate) (*domain.Principal, error) {
	body := map[string]interface{}{}
	if update.Password != nil {
		body["password"] = *update.Password
	}
	if update.DisplayName != nil {
		body["display_name"] = *update.DisplayName
	}
	if update.AvatarURL != nil {
		body["avatar_url"] = *update.AvatarURL
	}
	if update.Bio != nil {
		body["bio"] = *update.Bio
	}

	var principal domain.Principal
	_, err := c.do(ctx, http.MethodPatch, "/v1/auth/me", body, &principal)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	var snapshot *domain.Session
	if c.session != nil {
		updated := *c.session
		updated.Principal = principal
		c.session = &updated
		snapshot = &updated
	}
	c.mu.Unlock()
	if snapshot != nil {
		c.persistSessionFile(snapshot)
		c.emit(domain.AuthEvent{Kind: domain.AuthUserUpdated, Session: snapshot})
	}
	return &principal, nil
}

func (c *Client) OnAuthStateChange(cb func(domain.AuthEvent)) (func(), error) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = cb
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}, nil
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	var session domain.Session
	_, err := c.do(ctx, http.MethodPost, "/v1/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// replaceSession swaps the stored session wholesale, persists it, and fans the
// event out to subscribers. Callbacks run outside the lock.
func (c *Client) replaceSession(session *domain.Session, kind domain.AuthEventKind) {
	c.mu.Lock()
	c.session = session
	cbs := make([]func(domain.AuthEvent), 0, len(c.subs))
	for _, cb := range c.subs {
		cbs = append(cbs, cb)
	}
	c.mu.Unlock()

	c.persistSessionFile(session)
	event := domain.AuthEvent{Kind: kind, Session: session}
	for _, cb := range cbs {
		cb(event)
	}
}

func (c *Client) emit(event domain.AuthEvent) {
	c.mu.Lock()
	cbs := make([]func(domain.AuthEvent), 0, len(c.subs))
	for _, cb := range c.subs {
		cbs = append(cbs, cb)
	}
	c.mu.Unlock()
	for _, cb := range cbs {
		cb(event)
	}
}

func (c *Client) loadSessionFile() (*domain.Session, error) {
	if c.sessionFile == "" {
		return nil, os.ErrNotExist
	}
	raw, err := os.ReadFile(c.sessionFile)
	if err != nil {
		return nil, err
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	if session.RefreshToken == "" {
		return nil, os.ErrNotExist
	}
	return &session, nil
}

func (c *Client) persistSessionFile(session *domain.Session) {
	if c.sessionFile == "" {
		return
	}
	if session == nil {
		if err := os.Remove(c.sessionFile); err != nil && !os.IsNotExist(err) {
			logger.Log.Warn("failed to remove session file", "error", err)
		}
		return
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return
	}
	if err := os.WriteFile(c.sessionFile, raw, 0o600); err != nil {
		logger.Log.Warn("failed to persist session", "error", err)
	}
}
