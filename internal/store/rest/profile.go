package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tftboard/tftboard/internal/domain"
)

func (c *Client) UpsertProfile(ctx context.Context, profile domain.Profile) error {
	_, err := c.do(ctx, http.MethodPut, "/v1/profiles/me", map[string]string{
		"display_name": profile.DisplayName,
		"bio":          profile.Bio,
		"avatar_url":   profile.AvatarURL,
	}, nil)
	return err
}

func (c *Client) ProfileById(ctx context.Context, id domain.UserId) (*domain.Profile, error) {
	var profile domain.Profile
	_, err := c.do(ctx, http.MethodGet, "/v1/profiles/"+url.PathEscape(id), nil, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) ProfileByName(ctx context.Context, name string) (*domain.Profile, error) {
	var profile domain.Profile
	_, err := c.do(ctx, http.MethodGet, "/v1/profiles?display_name="+url.QueryEscape(name), nil, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
