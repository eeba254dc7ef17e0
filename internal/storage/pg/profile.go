package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/tftboard/tftboard/internal/domain"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
)

const profileColumns = "id, coalesce(display_name, ''), coalesce(bio, ''), coalesce(avatar_url, ''), created"

// UpsertProfile writes the principal's denormalized snapshot. Incoming empty
// fields never clobber stored values; the snapshot only ever gains data.
func (s *Storage) UpsertProfile(profile domain.Profile) error {
	_, err := s.db.Exec(`
	INSERT INTO profiles(id, display_name, bio, avatar_url)
	VALUES($1, nullif($2, ''), nullif($3, ''), nullif($4, ''))
	ON CONFLICT (id) DO UPDATE SET
		display_name = coalesce(nullif(EXCLUDED.display_name, ''), profiles.display_name),
		bio = coalesce(nullif(EXCLUDED.bio, ''), profiles.bio),
		avatar_url = coalesce(nullif(EXCLUDED.avatar_url, ''), profiles.avatar_url)`,
		profile.Id, profile.DisplayName, profile.Bio, profile.AvatarURL)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (s *Storage) ProfileById(id domain.UserId) (*domain.Profile, error) {
	row := s.db.QueryRow(fmt.Sprintf(`
	SELECT %s FROM profiles WHERE id = $1`, profileColumns), id)
	return scanProfile(row)
}

func (s *Storage) ProfileByName(name string) (*domain.Profile, error) {
	row := s.db.QueryRow(fmt.Sprintf(`
	SELECT %s FROM profiles WHERE display_name = $1`, profileColumns), name)
	return scanProfile(row)
}

func scanProfile(row *sql.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.Id, &p.DisplayName, &p.Bio, &p.AvatarURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Profile not found", StatusCode: http.StatusNotFound}
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &p, nil
}
