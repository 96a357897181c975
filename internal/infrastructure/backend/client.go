// Package backend implements the port interfaces against the platform
// backend's REST API.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/skillbridge/resume-gateway/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Client is a thin HTTP client for the backend API. It translates the
// backend's status codes and error details into the domain error taxonomy.
type Client struct {
	base *url.URL
	http *http.Client
	log  zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base: u,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}, nil
}

// errorDetail is the backend's error envelope.
type errorDetail struct {
	Detail string `json:"detail"`
}

func (c *Client) get(ctx context.Context, path, credential string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.JoinPath(path).String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path, credential string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base.JoinPath(path).String(), strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return c.mapError(res)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// mapError converts a backend error response into a domain error. The
// backend disambiguates its 403s and 404s only through the detail message.
func (c *Client) mapError(res *http.Response) error {
	var detail errorDetail
	_ = json.NewDecoder(res.Body).Decode(&detail)

	switch res.StatusCode {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		if strings.Contains(detail.Detail, "not yet been approved") {
			return domain.ErrNotApproved
		}
		return domain.ErrForbidden
	case http.StatusNotFound:
		switch {
		case strings.Contains(detail.Detail, "Chat not found"):
			return domain.ErrConversationNotFound
		case strings.Contains(detail.Detail, "User not found"):
			return domain.ErrUserNotFound
		default:
			return fmt.Errorf("%s: %s", res.Request.URL.Path, nonEmpty(detail.Detail, "not found"))
		}
	default:
		c.log.Warn().
			Int("status", res.StatusCode).
			Str("path", res.Request.URL.Path).
			Str("detail", detail.Detail).
			Msg("backend request failed")
		return fmt.Errorf("%w: status %d", domain.ErrBackendUnavailable, res.StatusCode)
	}
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
