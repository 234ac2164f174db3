// Package backend is the HTTP client for the remote ERP REST API. The
// gateway consumes it for credential verification and as the upstream of
// the authenticated proxy; it owns none of the backend's data model.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minierp/console-gateway/internal/core/domain"
	"github.com/minierp/console-gateway/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend client. A default timeout is applied when
// none is provided.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// userPayload mirrors the backend's user shape. Some deployments still
// return the legacy "_id" field instead of "id".
type userPayload struct {
	ID         string `json:"id"`
	LegacyID   string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsVerified bool   `json:"isVerified"`
	IsActive   bool   `json:"isActive"`
}

type loginEnvelope struct {
	Data struct {
		User  userPayload `json:"user"`
		Token string      `json:"token"`
	} `json:"data"`
}

type errorEnvelope struct {
	Message string `json:"message"`
}

// Login posts credentials to the backend auth endpoint and decodes the
// identity payload plus bearer token. Upstream rejections carry the
// backend's message so callers can classify them.
func (c *Client) Login(ctx context.Context, email, password string) (domain.Identity, string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return domain.Identity{}, "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return domain.Identity{}, "", fmt.Errorf("backend login: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return domain.Identity{}, "", fmt.Errorf("read login response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var e errorEnvelope
		_ = json.Unmarshal(raw, &e)
		return domain.Identity{}, "", &ports.RejectedError{StatusCode: res.StatusCode, Message: e.Message}
	}

	var env loginEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.Identity{}, "", fmt.Errorf("decode login response: %w", err)
	}

	user := env.Data.User
	id := user.ID
	if id == "" {
		id = user.LegacyID
	}

	return domain.Identity{
		ID:       id,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		Verified: user.IsVerified,
		Active:   user.IsActive,
	}, env.Data.Token, nil
}

// Register forwards a registration payload. The upstream status and body
// are returned untouched for pass-through rendering.
func (c *Client) Register(ctx context.Context, name, email, password, role string) (int, []byte, error) {
	payload := map[string]string{"name": name, "email": email, "password": password}
	if role != "" {
		payload["role"] = role
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/register", bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("build register request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("backend register: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read register response: %w", err)
	}
	return res.StatusCode, raw, nil
}

// Forward relays an arbitrary API request upstream, attaching the bearer
// credential when present. The caller owns the returned response body.
func (c *Client) Forward(ctx context.Context, method, path string, query url.Values, header http.Header, body io.Reader, bearer string) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	if ct := header.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if accept := header.Get("Accept"); accept != "" {
		req.Header.Set("Accept", accept)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	return res, nil
}

// Ping checks backend reachability for the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend ping: %w", err)
	}
	_ = res.Body.Close()
	return nil
}
