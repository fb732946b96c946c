package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/spigell/hh-interviewer/internal/session"
)

const (
	apiLoginPath   = "/auth/login"
	apiRefreshPath = "/auth/refresh"
)

// Login runs the password flow and returns a fresh token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*session.Tokens, error) {
	values := url.Values{}
	values.Set("username", username)
	values.Set("password", password)

	var tokens session.Tokens
	if err := c.postForm(ctx, apiLoginPath, values, &tokens); err != nil {
		return nil, err
	}
	if tokens.Access == "" {
		return nil, errors.New("login returned no access token")
	}

	return &tokens, nil
}

// RefreshTokens implements session.Refresher.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (*session.Tokens, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, err
	}

	data, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        apiRefreshPath,
		body:        body,
		contentType: contentType,
		anonymous:   true,
	})
	if err != nil {
		return nil, err
	}

	var tokens session.Tokens
	if err := decodeJSON(data, &tokens); err != nil {
		return nil, err
	}

	return &tokens, nil
}

// SetSession attaches the session after a login.
func (c *Client) SetSession(sess *session.Session) {
	c.session = sess
}
