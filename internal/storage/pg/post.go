package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/tftboard/tftboard/internal/domain"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
)

const postColumns = "id, title, body, author_id, coalesce(author_display_name, ''), created"

func (s *Storage) CreatePost(draft domain.PostDraft) (*domain.Post, error) {
	row := s.db.QueryRow(fmt.Sprintf(`
	INSERT INTO forum_posts(title, body, author_id, author_display_name)
	VALUES($1, $2, $3, nullif($4, ''))
	RETURNING %s`, postColumns),
		draft.Title, draft.Body, draft.AuthorId, draft.AuthorName)
	return scanPost(row)
}

func (s *Storage) GetPost(id domain.PostId) (*domain.Post, error) {
	row := s.db.QueryRow(fmt.Sprintf(`
	SELECT %s FROM forum_posts WHERE id = $1`, postColumns), id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Post not found", StatusCode: http.StatusNotFound}
		}
		return nil, err
	}
	return post, nil
}

// ListPosts returns every topic, newest first.
func (s *Storage) ListPosts() ([]domain.Post, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
	SELECT %s FROM forum_posts ORDER BY created DESC`, postColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return posts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var p domain.Post
	if err := row.Scan(&p.Id, &p.Title, &p.Body, &p.AuthorId, &p.AuthorName, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan post: %w", err)
	}
	return &p, nil
}
