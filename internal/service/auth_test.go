package service

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tftboard/tftboard/internal/config"
	"github.com/tftboard/tftboard/internal/domain"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
	"github.com/tftboard/tftboard/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// --- Mocks ---

type MockAuthStorage struct {
	SaveUserFunc                func(user domain.User) (domain.UserId, error)
	UserByEmailFunc             func(email domain.Email) (domain.User, error)
	UserByIdFunc                func(id domain.UserId) (domain.User, error)
	UpdateUserFunc              func(id domain.UserId, passHash *string, update domain.UserUpdate) error
	SaveRefreshTokenFunc        func(tokenHash string, userId domain.UserId, expires time.Time) error
	RefreshTokenUserFunc        func(tokenHash string) (domain.UserId, error)
	DeleteRefreshTokenFunc      func(tokenHash string) error
	DeleteUserRefreshTokensFunc func(userId domain.UserId) error
	SaveResetCodeFunc           func(data domain.ResetCode) error
	ResetCodeFunc               func(email domain.Email) (domain.ResetCode, error)
	DeleteResetCodeFunc         func(email domain.Email) error
}

func defaultUser() domain.User {
	passHash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	return domain.User{
		Id:          "user-1",
		Email:       "ranked@example.com",
		PassHash:    string(passHash),
		DisplayName: "ranked",
	}
}

func (m *MockAuthStorage) SaveUser(user domain.User) (domain.UserId, error) {
	if m.SaveUserFunc != nil {
		return m.SaveUserFunc(user)
	}
	return "user-1", nil
}

func (m *MockAuthStorage) UserByEmail(email domain.Email) (domain.User, error) {
	if m.UserByEmailFunc != nil {
		return m.UserByEmailFunc(email)
	}
	return defaultUser(), nil
}

func (m *MockAuthStorage) UserById(id domain.UserId) (domain.User, error) {
	if m.UserByIdFunc != nil {
		return m.UserByIdFunc(id)
	}
	return defaultUser(), nil
}

func (m *MockAuthStorage) UpdateUser(id domain.UserId, passHash *string, update domain.UserUpdate) error {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(id, passHash, update)
	}
	return nil
}

func (m *MockAuthStorage) SaveRefreshToken(tokenHash string, userId domain.UserId, expires time.Time) error {
	if m.SaveRefreshTokenFunc != nil {
		return m.SaveRefreshTokenFunc(tokenHash, userId, expires)
	}
	return nil
}

func (m *MockAuthStorage) RefreshTokenUser(tokenHash string) (domain.UserId, error) {
	if m.RefreshTokenUserFunc != nil {
		return m.RefreshTokenUserFunc(tokenHash)
	}
	return "user-1", nil
}

func (m *MockAuthStorage) DeleteRefreshToken(tokenHash string) error {
	if m.DeleteRefreshTokenFunc != nil {
		return m.DeleteRefreshTokenFunc(tokenHash)
	}
	return nil
}

func (m *MockAuthStorage) DeleteUserRefreshTokens(userId domain.UserId) error {
	if m.DeleteUserRefreshTokensFunc != nil {
		return m.DeleteUserRefreshTokensFunc(userId)
	}
	return nil
}

func (m *MockAuthStorage) SaveResetCode(data domain.ResetCode) error {
	if m.SaveResetCodeFunc != nil {
		return m.SaveResetCodeFunc(data)
	}
	return nil
}

func (m *MockAuthStorage) ResetCode(email domain.Email) (domain.ResetCode, error) {
	if m.ResetCodeFunc != nil {
		return m.ResetCodeFunc(email)
	}
	return domain.ResetCode{}, internal_errors.NotFound
}

func (m *MockAuthStorage) DeleteResetCode(email domain.Email) error {
	if m.DeleteResetCodeFunc != nil {
		return m.DeleteResetCodeFunc(email)
	}
	return nil
}

type MockEmailSender struct {
	SendFunc func(to domain.Email, subject, body string) error
	sent     []string
}

func (m *MockEmailSender) Send(to domain.Email, subject, body string) error {
	m.sent = append(m.sent, body)
	if m.SendFunc != nil {
		return m.SendFunc(to, subject, body)
	}
	return nil
}

func (m *MockEmailSender) IsCorrect(email domain.Email) error {
	if !strings.Contains(email, "@") {
		return &internal_errors.ErrorWithStatusCode{Message: "Invalid email", StatusCode: http.StatusBadRequest}
	}
	return nil
}

type MockJwt struct {
	NewTokenFunc func(user domain.User) (string, time.Time, error)
}

func (m *MockJwt) NewToken(user domain.User) (string, time.Time, error) {
	if m.NewTokenFunc != nil {
		return m.NewTokenFunc(user)
	}
	return "jwt-token", time.Now().Add(15 * time.Minute), nil
}

func newTestAuth(storage *MockAuthStorage, sender *MockEmailSender) *Auth {
	if sender == nil {
		sender = &MockEmailSender{}
	}
	cfg := &config.Public{
		AccessTTL:    15 * time.Minute,
		RefreshTTL:   30 * 24 * time.Hour,
		ResetCodeTTL: 15 * time.Minute,
	}
	return NewAuth(storage, sender, &MockJwt{}, &utils.PasswordValidator{}, cfg)
}

// --- Tests ---

func TestSignUp(t *testing.T) {
	var saved domain.User
	storage := &MockAuthStorage{
		SaveUserFunc: func(user domain.User) (domain.UserId, error) {
			saved = user
			return "user-1", nil
		},
	}
	auth := newTestAuth(storage, nil)

	session, err := auth.SignUp("Ranked@Example.com", "password123", "  ranked  ")
	require.NoError(t, err)

	assert.Equal(t, "ranked@example.com", saved.Email)
	assert.Equal(t, "ranked", saved.DisplayName)
	assert.NotEqual(t, "password123", saved.PassHash)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, "user-1", session.Principal.Id)
}

func TestSignUpRejectsWeakPassword(t *testing.T) {
	auth := newTestAuth(&MockAuthStorage{}, nil)

	_, err := auth.SignUp("a@b.com", "short", "")
	var sc *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, http.StatusBadRequest, sc.StatusCode)
}

func TestSignUpRejectsBadEmail(t *testing.T) {
	auth := newTestAuth(&MockAuthStorage{}, nil)

	_, err := auth.SignUp("not-an-email", "password123", "")
	require.Error(t, err)
}

func TestSignIn(t *testing.T) {
	auth := newTestAuth(&MockAuthStorage{}, nil)

	session, err := auth.SignIn("ranked@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.Principal.Id)
	assert.NotEmpty(t, session.RefreshToken)
}

func TestSignInWrongPassword(t *testing.T) {
	auth := newTestAuth(&MockAuthStorage{}, nil)

	_, err := auth.SignIn("ranked@example.com", "wrong-password")
	var sc *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, http.StatusUnauthorized, sc.StatusCode)
	assert.Equal(t, "Wrong email or password", sc.Message)
}

func TestSignInUnknownEmailSameError(t *testing.T) {
	storage := &MockAuthStorage{
		UserByEmailFunc: func(email domain.Email) (domain.User, error) {
			return domain.User{}, internal_errors.NotFound
		},
	}
	auth := newTestAuth(storage, nil)

	_, err := auth.SignIn("nobody@example.com", "password123")
	var sc *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &sc)
	// Identical message for unknown email and wrong password.
	assert.Equal(t, "Wrong email or password", sc.Message)
}

func TestSignOutRevokesOnlyPresentedToken(t *testing.T) {
	var deletedHash string
	storage := &MockAuthStorage{
		DeleteRefreshTokenFunc: func(tokenHash string) error {
			deletedHash = tokenHash
			return nil
		},
	}
	auth := newTestAuth(storage, nil)

	require.NoError(t, auth.SignOut("some-refresh-token"))
	assert.NotEmpty(t, deletedHash)
	assert.NotEqual(t, "some-refresh-token", deletedHash) // only the hash reaches storage
}

func TestSignOutEmptyTokenIsNoop(t *testing.T) {
	storage := &MockAuthStorage{
		DeleteRefreshTokenFunc: func(tokenHash string) error {
			t.Fatal("storage must not be touched")
			return nil
		},
	}
	auth := newTestAuth(storage, nil)
	require.NoError(t, auth.SignOut(""))
}

func TestRefreshRotatesPair(t *testing.T) {
	var deleted, savedHash string
	storage := &MockAuthStorage{
		DeleteRefreshTokenFunc: func(tokenHash string) error {
			deleted = tokenHash
			return nil
		},
		SaveRefreshTokenFunc: func(tokenHash string, userId domain.UserId, expires time.Time) error {
			savedHash = tokenHash
			return nil
		},
	}
	auth := newTestAuth(storage, nil)

	session, err := auth.Refresh("old-token")
	require.NoError(t, err)
	assert.NotEmpty(t, deleted)
	assert.NotEmpty(t, savedHash)
	assert.NotEqual(t, deleted, savedHash)
	assert.NotEmpty(t, session.RefreshToken)
}

func TestRefreshRejectedToken(t *testing.T) {
	storage := &MockAuthStorage{
		RefreshTokenUserFunc: func(tokenHash string) (domain.UserId, error) {
			return "", &internal_errors.ErrorWithStatusCode{Message: "Invalid refresh token", StatusCode: http.StatusUnauthorized}
		},
	}
	auth := newTestAuth(storage, nil)

	_, err := auth.Refresh("revoked")
	var sc *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, http.StatusUnauthorized, sc.StatusCode)
}

func TestResetPasswordUnknownEmailSilent(t *testing.T) {
	sender := &MockEmailSender{}
	storage := &MockAuthStorage{
		UserByEmailFunc: func(email domain.Email) (domain.User, error) {
			return domain.User{}, internal_errors.NotFound
		},
	}
	auth := newTestAuth(storage, sender)

	// No error and no email: the endpoint must not leak registration status.
	require.NoError(t, auth.ResetPassword("nobody@example.com"))
	assert.Empty(t, sender.sent)
}

func TestResetPasswordSendsCode(t *testing.T) {
	sender := &MockEmailSender{}
	var saved domain.ResetCode
	storage := &MockAuthStorage{
		SaveResetCodeFunc: func(data domain.ResetCode) error {
			saved = data
			return nil
		},
	}
	auth := newTestAuth(storage, sender)

	require.NoError(t, auth.ResetPassword("ranked@example.com"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ranked@example.com", saved.Email)
	assert.NotEmpty(t, saved.CodeHash)
	assert.True(t, saved.Expires.After(time.Now()))

	// The mailed code is the plaintext of the stored hash.
	code := extractCode(t, sender.sent[0])
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.CodeHash), []byte(code)))
}

func TestConfirmReset(t *testing.T) {
	code := "abcd1234"
	codeHash, _ := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	var revokedUser domain.UserId
	var updatedHash *string
	storage := &MockAuthStorage{
		ResetCodeFunc: func(email domain.Email) (domain.ResetCode, error) {
			return domain.ResetCode{Email: email, CodeHash: string(codeHash), Expires: time.Now().Add(time.Minute)}, nil
		},
		UpdateUserFunc: func(id domain.UserId, passHash *string, update domain.UserUpdate) error {
			updatedHash = passHash
			return nil
		},
		DeleteUserRefreshTokensFunc: func(userId domain.UserId) error {
			revokedUser = userId
			return nil
		},
	}
	auth := newTestAuth(storage, nil)

	session, err := auth.ConfirmReset("ranked@example.com", code, "newpassword1")
	require.NoError(t, err)
	require.NotNil(t, updatedHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*updatedHash), []byte("newpassword1")))
	// Every other device is signed out.
	assert.Equal(t, "user-1", revokedUser)
	assert.NotEmpty(t, session.AccessToken)
}

func TestConfirmResetWrongCode(t *testing.T) {
	codeHash, _ := bcrypt.GenerateFromPassword([]byte("rightcode"), bcrypt.MinCost)
	storage := &MockAuthStorage{
		ResetCodeFunc: func(email domain.Email) (domain.ResetCode, error) {
			return domain.ResetCode{CodeHash: string(codeHash), Expires: time.Now().Add(time.Minute)}, nil
		},
	}
	auth := newTestAuth(storage, nil)

	_, err := auth.ConfirmReset("ranked@example.com", "wrongcode", "newpassword1")
	var sc *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, http.StatusBadRequest, sc.StatusCode)
}

func TestConfirmResetExpiredCode(t *testing.T) {
	codeHash, _ := bcrypt.GenerateFromPassword([]byte("abcd1234"), bcrypt.MinCost)
	storage := &MockAuthStorage{
		ResetCodeFunc: func(email domain.Email) (domain.ResetCode, error) {
			return domain.ResetCode{CodeHash: string(codeHash), Expires: time.Now().Add(-time.Minute)}, nil
		},
	}
	auth := newTestAuth(storage, nil)

	_, err := auth.ConfirmReset("ranked@example.com", "abcd1234", "newpassword1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestUpdateUserHashesNewPassword(t *testing.T) {
	var gotHash *string
	storage := &MockAuthStorage{
		UpdateUserFunc: func(id domain.UserId, passHash *string, update domain.UserUpdate) error {
			gotHash = passHash
			return nil
		},
	}
	auth := newTestAuth(storage, nil)

	newPass := "anotherpass1"
	_, err := auth.UpdateUser("user-1", domain.UserUpdate{Password: &newPass})
	require.NoError(t, err)
	require.NotNil(t, gotHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*gotHash), []byte(newPass)))
}

func TestUpdateUserProfileFieldsOnly(t *testing.T) {
	storage := &MockAuthStorage{
		UpdateUserFunc: func(id domain.UserId, passHash *string, update domain.UserUpdate) error {
			assert.Nil(t, passHash)
			require.NotNil(t, update.DisplayName)
			assert.Equal(t, "newname", *update.DisplayName)
			return nil
		},
	}
	auth := newTestAuth(storage, nil)

	name := "newname"
	principal, err := auth.UpdateUser("user-1", domain.UserUpdate{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.Id)
}

func TestNewSessionStorageFailure(t *testing.T) {
	storage := &MockAuthStorage{
		SaveRefreshTokenFunc: func(tokenHash string, userId domain.UserId, expires time.Time) error {
			return errors.New("db down")
		},
	}
	auth := newTestAuth(storage, nil)

	_, err := auth.SignIn("ranked@example.com", "password123")
	require.Error(t, err)
}

// extractCode pulls the bare recovery code line out of the email body.
func extractCode(t *testing.T, body string) string {
	t.Helper()
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 8 && !strings.Contains(line, " ") {
			return line
		}
	}
	t.Fatal("no code found in email body")
	return ""
}
