package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tftboard/tftboard/internal/domain"
)

func (c *Client) ListPosts(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	_, err := c.do(ctx, http.MethodGet, "/v1/posts", nil, &posts)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) GetPost(ctx context.Context, id domain.PostId) (*domain.Post, error) {
	var post domain.Post
	_, err := c.do(ctx, http.MethodGet, "/v1/posts/"+url.PathEscape(id), nil, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) InsertPost(ctx context.Context, draft domain.PostDraft) (*domain.Post, error) {
	var post domain.Post
	_, err := c.do(ctx, http.MethodPost, "/v1/posts", map[string]string{
		"title": draft.Title, "body": draft.Body,
	}, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
