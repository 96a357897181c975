package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/skillbridge/resume-gateway/internal/core/domain"
)

// Resolve implements ports.IdentityProvider via the backend's token
// introspection endpoint.
func (c *Client) Resolve(ctx context.Context, credential string) (domain.Identity, error) {
	var payload struct {
		Email  string `json:"email"`
		RoleID int    `json:"role_id_fk"`
	}
	if err := c.get(ctx, "/auth/secure/", credential, &payload); err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{Email: payload.Email, Role: domain.RoleFromID(payload.RoleID)}, nil
}

// UserID implements ports.UserDirectory.
func (c *Client) UserID(ctx context.Context, credential, email string) (string, error) {
	var payload struct {
		UserID string `json:"user_id"`
	}
	if err := c.get(ctx, "/user/getUserId/"+url.PathEscape(email), credential, &payload); err != nil {
		return "", err
	}
	return payload.UserID, nil
}

// Login implements ports.Authenticator. The backend takes form-encoded
// credentials with the email in the username field.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base.JoinPath("/auth/login/").String(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := c.do(req, &payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: login response missing token", domain.ErrBackendUnavailable)
	}
	return payload.AccessToken, nil
}
