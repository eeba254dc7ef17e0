package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/tftboard/tftboard/internal/domain"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
)

const replyColumns = "id, post_id, author_id, coalesce(author_display_name, ''), body, created, coalesce(parent_id::text, ''), seq"

// CreateReply inserts the reply and fires the post's change feed through the
// table trigger. seq is a table-wide monotonic sequence; within any one post
// it strictly orders replies even when created timestamps collide.
func (s *Storage) CreateReply(draft domain.ReplyDraft) (*domain.Reply, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Verify the post exists so a reply can never dangle.
	var postId domain.PostId
	err = tx.QueryRow("SELECT id FROM forum_posts WHERE id = $1", draft.PostId).Scan(&postId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Post not found", StatusCode: http.StatusNotFound}
		}
		return nil, fmt.Errorf("failed to validate post: %w", err)
	}

	// A quote target must reference a reply on the same post.
	if draft.QuoteId != "" {
		var quotedPost domain.PostId
		err = tx.QueryRow("SELECT post_id FROM forum_comments WHERE id = $1", draft.QuoteId).Scan(&quotedPost)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, &internal_errors.ErrorWithStatusCode{Message: "Quoted reply not found", StatusCode: http.StatusNotFound}
			}
			return nil, fmt.Errorf("failed to validate quote target: %w", err)
		}
		if quotedPost != draft.PostId {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Quoted reply belongs to another post", StatusCode: http.StatusUnprocessableEntity}
		}
	}

	row := tx.QueryRow(fmt.Sprintf(`
	INSERT INTO forum_comments(post_id, author_id, author_display_name, body, parent_id)
	VALUES($1, $2, nullif($3, ''), $4, nullif($5, '')::uuid)
	RETURNING %s`, replyColumns),
		draft.PostId, draft.AuthorId, draft.AuthorName, draft.Body, string(draft.QuoteId))
	reply, err := scanReply(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return reply, nil
}

func (s *Storage) GetReply(id domain.ReplyId) (*domain.Reply, error) {
	row := s.db.QueryRow(fmt.Sprintf(`
	SELECT %s FROM forum_comments WHERE id = $1`, replyColumns), id)
	reply, err := scanReply(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Reply not found", StatusCode: http.StatusNotFound}
		}
		return nil, err
	}
	return reply, nil
}

// ListReplies returns the ascending slice [offset, offset+limit) plus the
// exact total at query time. The two reads run in one transaction but
// consumers still must not assume consistency with later reads.
func (s *Storage) ListReplies(post domain.PostId, offset, limit int) ([]domain.Reply, int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRow("SELECT count(*) FROM forum_comments WHERE post_id = $1", post).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count replies: %w", err)
	}

	rows, err := tx.Query(fmt.Sprintf(`
	SELECT %s FROM forum_comments
	WHERE post_id = $1
	ORDER BY created ASC, seq ASC
	LIMIT $2 OFFSET $3`, replyColumns), post, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch replies: %w", err)
	}
	defer rows.Close()

	var replies []domain.Reply
	for rows.Next() {
		reply, err := scanReply(rows)
		if err != nil {
			return nil, 0, err
		}
		replies = append(replies, *reply)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return replies, total, nil
}

func (s *Storage) CountReplies(post domain.PostId) (int, error) {
	var total int
	err := s.db.QueryRow("SELECT count(*) FROM forum_comments WHERE post_id = $1", post).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count replies: %w", err)
	}
	return total, nil
}

// ReplyRank computes the reply's 1-based display index: the number of the
// post's replies sorting at or before it under (created, seq). Ranking on the
// timestamp alone is ambiguous for identical timestamps; seq breaks the tie
// deterministically in insertion order.
func (s *Storage) ReplyRank(reply *domain.Reply) (int, error) {
	var rank int
	err := s.db.QueryRow(`
	SELECT count(*) FROM forum_comments
	WHERE post_id = $1 AND (created, seq) <= ($2, $3)`,
		reply.PostId, reply.CreatedAt, reply.Seq).Scan(&rank)
	if err != nil {
		return 0, fmt.Errorf("failed to rank reply: %w", err)
	}
	if rank == 0 {
		return 0, &internal_errors.ErrorWithStatusCode{Message: "Reply not found", StatusCode: http.StatusNotFound}
	}
	return rank, nil
}

func scanReply(row rowScanner) (*domain.Reply, error) {
	var r domain.Reply
	var parent string
	if err := row.Scan(&r.Id, &r.PostId, &r.AuthorId, &r.AuthorName, &r.Body, &r.CreatedAt, &parent, &r.Seq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan reply: %w", err)
	}
	r.QuoteId = domain.ReplyId(parent)
	return &r, nil
}
