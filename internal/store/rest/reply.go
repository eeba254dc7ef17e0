package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tftboard/tftboard/internal/domain"
)

func (c *Client) ListReplies(ctx context.Context, post domain.PostId, offset, limit int) ([]domain.Reply, int, error) {
	path := fmt.Sprintf("/v1/posts/%s/replies?offset=%d&limit=%d", url.PathEscape(post), offset, limit)

	var rows []domain.Reply
	header, err := c.do(ctx, http.MethodGet, path, nil, &rows)
	if err != nil {
		return nil, 0, err
	}

	total, err := strconv.Atoi(header.Get("X-Total-Count"))
	if err != nil {
		return nil, 0, fmt.Errorf("missing X-Total-Count header: %w", err)
	}
	return rows, total, nil
}

func (c *Client) CountReplies(ctx context.Context, post domain.PostId) (int, error) {
	// The smallest allowed window still reports the exact total in the
	// header; the server clamps limit<=0 up to a full page.
	path := fmt.Sprintf("/v1/posts/%s/replies?offset=0&limit=1", url.PathEscape(post))

	var rows []domain.Reply
	header, err := c.do(ctx, http.MethodGet, path, nil, &rows)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(header.Get("X-Total-Count"))
}

func (c *Client) GetReply(ctx context.Context, id domain.ReplyId) (*domain.Reply, error) {
	var reply domain.Reply
	_, err := c.do(ctx, http.MethodGet, "/v1/replies/"+url.PathEscape(id), nil, &reply)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) ReplyRank(ctx context.Context, reply *domain.Reply) (int, error) {
	var out struct {
		Rank int `json:"rank"`
	}
	_, err := c.do(ctx, http.MethodGet, "/v1/replies/"+url.PathEscape(reply.Id)+"/rank", nil, &out)
	if err != nil {
		return 0, err
	}
	return out.Rank, nil
}

func (c *Client) InsertReply(ctx context.Context, draft domain.ReplyDraft) (*domain.Reply, error) {
	body := map[string]string{"body": draft.Body}
	if draft.QuoteId != "" {
		body["parent_id"] = draft.QuoteId
	}

	var reply domain.Reply
	path := fmt.Sprintf("/v1/posts/%s/replies", url.PathEscape(draft.PostId))
	_, err := c.do(ctx, http.MethodPost, path, body, &reply)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}
