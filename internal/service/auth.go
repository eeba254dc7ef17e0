package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tftboard/tftboard/internal/config"
	"github.com/tftboard/tftboard/internal/domain"
	"github.com/tftboard/tftboard/internal/email"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
	"github.com/tftboard/tftboard/internal/logger"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	SignUp(emailAddr domain.Email, password domain.Password, displayName string) (*domain.Session, error)
	SignIn(emailAddr domain.Email, password domain.Password) (*domain.Session, error)
	SignOut(refreshToken string) error
	Refresh(refreshToken string) (*domain.Session, error)
	ResetPassword(emailAddr domain.Email) error
	ConfirmReset(emailAddr domain.Email, code string, newPassword domain.Password) (*domain.Session, error)
	Resend(emailAddr domain.Email) error
	UpdateUser(id domain.UserId, update domain.UserUpdate) (*domain.Principal, error)
	Me(id domain.UserId) (*domain.Principal, error)
}

type AuthStorage interface {
	SaveUser(user domain.User) (domain.UserId, error)
	UserByEmail(email domain.Email) (domain.User, error)
	UserById(id domain.UserId) (domain.User, error)
	UpdateUser(id domain.UserId, passHash *string, update domain.UserUpdate) error

	SaveRefreshToken(tokenHash string, userId domain.UserId, expires time.Time) error
	RefreshTokenUser(tokenHash string) (domain.UserId, error)
	DeleteRefreshToken(tokenHash string) error
	DeleteUserRefreshTokens(userId domain.UserId) error

	SaveResetCode(data domain.ResetCode) error
	ResetCode(email domain.Email) (domain.ResetCode, error)
	DeleteResetCode(email domain.Email) error
}

type Jwt interface {
	NewToken(user domain.User) (string, time.Time, error)
}

type PasswordValidator interface {
	Password(password string) error
}

type Auth struct {
	storage   AuthStorage
	email     email.Sender
	jwt       Jwt
	passwords PasswordValidator
	cfg       *config.Public
}

func NewAuth(storage AuthStorage, sender email.Sender, jwt Jwt, passwords PasswordValidator, cfg *config.Public) *Auth {
	return &Auth{storage, sender, jwt, passwords, cfg}
}

func (a *Auth) SignUp(emailAddr domain.Email, password domain.Password, displayName string) (*domain.Session, error) {
	emailAddr = strings.ToLower(emailAddr)
	if err := a.email.IsCorrect(emailAddr); err != nil {
		return nil, err
	}
	if err := a.passwords.Password(password); err != nil {
		return nil, err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return nil, err
	}

	id, err := a.storage.SaveUser(domain.User{
		Email:       emailAddr,
		PassHash:    string(passHash),
		DisplayName: strings.TrimSpace(displayName),
	})
	if err != nil {
		return nil, err
	}

	user, err := a.storage.UserById(id)
	if err != nil {
		return nil, err
	}
	return a.newSession(user)
}

func (a *Auth) SignIn(emailAddr domain.Email, password domain.Password) (*domain.Session, error) {
	user, err := a.storage.UserByEmail(strings.ToLower(emailAddr))
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return nil, errBadCredentials()
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return nil, errBadCredentials()
	}
	return a.newSession(user)
}

// SignOut revokes exactly the presented refresh token. Other devices keep
// their sessions.
func (a *Auth) SignOut(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return a.storage.DeleteRefreshToken(hashToken(refreshToken))
}

// Refresh rotates the token pair: the presented refresh token is consumed
// and a fresh pair is issued.
func (a *Auth) Refresh(refreshToken string) (*domain.Session, error) {
	hash := hashToken(refreshToken)
	userId, err := a.storage.RefreshTokenUser(hash)
	if err != nil {
		return nil, err
	}
	if err := a.storage.DeleteRefreshToken(hash); err != nil {
		return nil, err
	}
	user, err := a.storage.UserById(userId)
	if err != nil {
		return nil, err
	}
	return a.newSession(user)
}

// ResetPassword mails a recovery code. Unknown addresses succeed silently so
// the endpoint does not leak which emails are registered.
func (a *Auth) ResetPassword(emailAddr domain.Email) error {
	emailAddr = strings.ToLower(emailAddr)
	if err := a.email.IsCorrect(emailAddr); err != nil {
		return err
	}
	if _, err := a.storage.UserByEmail(emailAddr); err != nil {
		if internal_errors.IsNotFound(err) {
			return nil
		}
		return err
	}

	code := generateCode(8)
	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash reset code", "error", err)
		return err
	}
	err = a.storage.SaveResetCode(domain.ResetCode{
		Email:    emailAddr,
		CodeHash: string(codeHash),
		Expires:  time.Now().UTC().Add(a.cfg.ResetCodeTTL),
	})
	if err != nil {
		return err
	}

	body := fmt.Sprintf(`
		Hello,

		Your password recovery code:

		%s

		If you did not request this, please ignore this email.
	`, code)
	return a.email.Send(emailAddr, "Reset your password", body)
}

// ConfirmReset completes the recovery flow: verify the code, replace the
// password, revoke every outstanding refresh token and sign the user in.
func (a *Auth) ConfirmReset(emailAddr domain.Email, code string, newPassword domain.Password) (*domain.Session, error) {
	emailAddr = strings.ToLower(emailAddr)
	if err := a.passwords.Password(newPassword); err != nil {
		return nil, err
	}

	data, err := a.storage.ResetCode(emailAddr)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "No pending recovery for this email", StatusCode: http.StatusBadRequest}
		}
		return nil, err
	}
	if data.Expires.Before(time.Now()) {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Recovery code expired", StatusCode: http.StatusBadRequest}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(data.CodeHash), []byte(code)); err != nil {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Wrong recovery code", StatusCode: http.StatusBadRequest}
	}

	user, err := a.storage.UserByEmail(emailAddr)
	if err != nil {
		return nil, err
	}
	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return nil, err
	}
	hash := string(passHash)
	if err := a.storage.UpdateUser(user.Id, &hash, domain.UserUpdate{}); err != nil {
		return nil, err
	}
	if err := a.storage.DeleteResetCode(emailAddr); err != nil {
		return nil, err
	}
	if err := a.storage.DeleteUserRefreshTokens(user.Id); err != nil {
		return nil, err
	}
	user.PassHash = hash
	return a.newSession(user)
}

// Resend re-issues the pending recovery email with a fresh code.
func (a *Auth) Resend(emailAddr domain.Email) error {
	return a.ResetPassword(emailAddr)
}

func (a *Auth) UpdateUser(id domain.UserId, update domain.UserUpdate) (*domain.Principal, error) {
	var passHash *string
	if update.Password != nil {
		if err := a.passwords.Password(*update.Password); err != nil {
			return nil, err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Log.Error("failed to hash password", "error", err)
			return nil, err
		}
		s := string(hashed)
		passHash = &s
	}
	if err := a.storage.UpdateUser(id, passHash, update); err != nil {
		return nil, err
	}
	return a.Me(id)
}

func (a *Auth) Me(id domain.UserId) (*domain.Principal, error) {
	user, err := a.storage.UserById(id)
	if err != nil {
		return nil, err
	}
	p := user.AsPrincipal()
	return &p, nil
}

func (a *Auth) newSession(user domain.User) (*domain.Session, error) {
	access, expires, err := a.jwt.NewToken(user)
	if err != nil {
		return nil, err
	}
	refresh, refreshHash, err := generateRefreshToken()
	if err != nil {
		logger.Log.Error("failed to generate refresh token", "error", err)
		return nil, err
	}
	err = a.storage.SaveRefreshToken(refreshHash, user.Id, time.Now().UTC().Add(a.cfg.RefreshTTL))
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		Principal:    user.AsPrincipal(),
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expires,
	}, nil
}

func errBadCredentials() error {
	return &internal_errors.ErrorWithStatusCode{Message: "Wrong email or password", StatusCode: http.StatusUnauthorized}
}

// generateRefreshToken returns a random base64url token (32 bytes) and its
// SHA256 hash as hex; only the hash is stored.
func generateRefreshToken() (token string, hashHex string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	token = base64.RawURLEncoding.EncodeToString(b)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func generateCode(n int) string {
	code := strings.ReplaceAll(uuid.NewString(), "-", "")
	return code[:n]
}
