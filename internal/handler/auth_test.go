package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tftboard/tftboard/internal/domain"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
)

func TestLoginSetsCookiesAndReturnsSession(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	body := []byte(`{"email": "x@y.com", "password": "password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var session domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "user-1", session.Principal.Id)

	cookies := rec.Result().Cookies()
	names := map[string]*http.Cookie{}
	for _, c := range cookies {
		names[c.Name] = c
	}
	require.Contains(t, names, "accessToken")
	require.Contains(t, names, "refreshToken")
	assert.True(t, names["accessToken"].HttpOnly)
	assert.Equal(t, "access", names["accessToken"].Value)
	assert.Equal(t, "refresh", names["refreshToken"].Value)
}

func TestLoginBadCredentials(t *testing.T) {
	auth := &MockAuthService{
		SignInFunc: func(email domain.Email, password domain.Password) (*domain.Session, error) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Wrong email or password", StatusCode: http.StatusUnauthorized}
		},
	}
	h := newTestHandler(auth, nil, nil, nil)

	body := []byte(`{"email": "x@y.com", "password": "wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLoginMissingFields(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader([]byte(`{"email": "x@y.com"}`)))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignupCreatesSession(t *testing.T) {
	var gotDisplayName string
	auth := &MockAuthService{
		SignUpFunc: func(email domain.Email, password domain.Password, displayName string) (*domain.Session, error) {
			gotDisplayName = displayName
			return stubSession(), nil
		},
	}
	h := newTestHandler(auth, nil, nil, nil)

	body := []byte(`{"email": "x@y.com", "password": "password123", "display_name": "piltover"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/signup", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "piltover", gotDisplayName)
}

func TestLogoutClearsCookies(t *testing.T) {
	var revoked string
	auth := &MockAuthService{
		SignOutFunc: func(refreshToken string) error {
			revoked = refreshToken
			return nil
		},
	}
	h := newTestHandler(auth, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "refresh"})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "refresh", revoked)

	for _, c := range rec.Result().Cookies() {
		assert.Equal(t, -1, c.MaxAge, "cookie %s must be expired", c.Name)
	}
}

func TestRefreshFromCookie(t *testing.T) {
	auth := &MockAuthService{
		RefreshFunc: func(refreshToken string) (*domain.Session, error) {
			assert.Equal(t, "old-refresh", refreshToken)
			return stubSession(), nil
		},
	}
	h := newTestHandler(auth, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "old-refresh"})
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var session domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "refresh", session.RefreshToken)
}

func TestRefreshFromBody(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	body := []byte(`{"refresh_token": "from-body"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshMissingToken(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", nil)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeRequiresAuth(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req = req.WithContext(signedIn(req.Context(), "user-1"))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var principal domain.Principal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &principal))
	assert.Equal(t, "user-1", principal.Id)
}

func TestUpdateUserPassesPointers(t *testing.T) {
	auth := &MockAuthService{
		UpdateUserFunc: func(id domain.UserId, update domain.UserUpdate) (*domain.Principal, error) {
			assert.Equal(t, "user-1", id)
			require.NotNil(t, update.DisplayName)
			assert.Equal(t, "renamed", *update.DisplayName)
			assert.Nil(t, update.Password)
			assert.Nil(t, update.Bio)
			p := stubSession().Principal
			return &p, nil
		},
	}
	h := newTestHandler(auth, nil, nil, nil)

	body := []byte(`{"display_name": "renamed"}`)
	req := httptest.NewRequest(http.MethodPatch, "/v1/auth/me", bytes.NewReader(body))
	req = req.WithContext(signedIn(req.Context(), "user-1"))
	rec := httptest.NewRecorder()
	h.UpdateUser(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResetPasswordAccepted(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	body := []byte(`{"email": "x@y.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/reset_password", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ResetPassword(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestConfirmResetReturnsSession(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	body := []byte(`{"email": "x@y.com", "code": "abcd1234", "password": "newpassword1"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/confirm_reset", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ConfirmReset(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	assert.NotEmpty(t, cookies)
}
