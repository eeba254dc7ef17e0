package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/tftboard/tftboard/internal/domain"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
)

func (s *Storage) SaveUser(user domain.User) (domain.UserId, error) {
	var id domain.UserId
	err := s.db.QueryRow(`
	INSERT INTO users(email, pass_hash, display_name)
	VALUES($1, $2, $3)
	RETURNING id`,
		strings.ToLower(user.Email), user.PassHash, user.DisplayName,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return "", &internal_errors.ErrorWithStatusCode{Message: "Email already registered", StatusCode: http.StatusConflict}
		}
		return "", fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (s *Storage) UserByEmail(email domain.Email) (domain.User, error) {
	return s.scanUser(s.db.QueryRow(`
	SELECT id, email, pass_hash, display_name, coalesce(avatar_url, ''), coalesce(bio, ''), created
	FROM users
	WHERE email = $1`, strings.ToLower(email)))
}

func (s *Storage) UserById(id domain.UserId) (domain.User, error) {
	return s.scanUser(s.db.QueryRow(`
	SELECT id, email, pass_hash, display_name, coalesce(avatar_url, ''), coalesce(bio, ''), created
	FROM users
	WHERE id = $1`, id))
}

func (s *Storage) scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.Id, &u.Email, &u.PassHash, &u.DisplayName, &u.AvatarURL, &u.Bio, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return domain.User{}, fmt.Errorf("failed to fetch user: %w", err)
	}
	return u, nil
}

// UpdateUser applies the non-nil fields. PassHash replaces the stored hash
// when the update carries a new password.
func (s *Storage) UpdateUser(id domain.UserId, passHash *string, update domain.UserUpdate) error {
	set := []string{}
	args := []interface{}{}
	add := func(col string, val interface{}) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if passHash != nil {
		add("pass_hash", *passHash)
	}
	if update.DisplayName != nil {
		add("display_name", *update.DisplayName)
	}
	if update.AvatarURL != nil {
		add("avatar_url", *update.AvatarURL)
	}
	if update.Bio != nil {
		add("bio", *update.Bio)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

func (s *Storage) SaveRefreshToken(tokenHash string, userId domain.UserId, expires time.Time) error {
	_, err := s.db.Exec(`
	INSERT INTO refresh_tokens(token_hash, user_id, expires)
	VALUES($1, $2, $3)`, tokenHash, userId, expires)
	if err != nil {
		return fmt.Errorf("failed to insert refresh token: %w", err)
	}
	return nil
}

// RefreshTokenUser resolves a refresh token hash to its owner, rejecting
// expired rows.
func (s *Storage) RefreshTokenUser(tokenHash string) (domain.UserId, error) {
	var userId domain.UserId
	var expires time.Time
	err := s.db.QueryRow(`
	SELECT user_id, expires FROM refresh_tokens WHERE token_hash = $1`, tokenHash).Scan(&userId, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", &internal_errors.ErrorWithStatusCode{Message: "Unknown refresh token", StatusCode: http.StatusUnauthorized}
		}
		return "", fmt.Errorf("failed to fetch refresh token: %w", err)
	}
	if expires.Before(time.Now()) {
		return "", &internal_errors.ErrorWithStatusCode{Message: "Refresh token expired", StatusCode: http.StatusUnauthorized}
	}
	return userId, nil
}

func (s *Storage) DeleteRefreshToken(tokenHash string) error {
	_, err := s.db.Exec("DELETE FROM refresh_tokens WHERE token_hash = $1", tokenHash)
	return err
}

func (s *Storage) DeleteUserRefreshTokens(userId domain.UserId) error {
	_, err := s.db.Exec("DELETE FROM refresh_tokens WHERE user_id = $1", userId)
	return err
}

func (s *Storage) SaveResetCode(data domain.ResetCode) error {
	_, err := s.db.Exec(`
	INSERT INTO reset_codes(email, code_hash, expires)
	VALUES($1, $2, $3)
	ON CONFLICT (email) DO UPDATE SET code_hash = EXCLUDED.code_hash, expires = EXCLUDED.expires`,
		strings.ToLower(data.Email), data.CodeHash, data.Expires)
	if err != nil {
		return fmt.Errorf("failed to save reset code: %w", err)
	}
	return nil
}

func (s *Storage) ResetCode(email domain.Email) (domain.ResetCode, error) {
	var data domain.ResetCode
	err := s.db.QueryRow(`
	SELECT email, code_hash, expires FROM reset_codes WHERE email = $1`,
		strings.ToLower(email)).Scan(&data.Email, &data.CodeHash, &data.Expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ResetCode{}, &internal_errors.ErrorWithStatusCode{Message: "Reset code not found", StatusCode: http.StatusNotFound}
		}
		return domain.ResetCode{}, fmt.Errorf("failed to fetch reset code: %w", err)
	}
	return data, nil
}

func (s *Storage) DeleteResetCode(email domain.Email) error {
	_, err := s.db.Exec("DELETE FROM reset_codes WHERE email = $1", strings.ToLower(email))
	return err
}
