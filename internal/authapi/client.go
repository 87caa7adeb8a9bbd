package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Endpoint paths on the authentication service.
const (
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"
	mePath       = "/api/auth/me"
)

// Client calls the authentication service at Base.
type Client struct {
	Base string
	HTTP *http.Client
}

// New creates a client for the service at base. A zero timeout leaves
// requests bounded only by their context.
func New(base string, timeout time.Duration) *Client {
	return &Client{
		Base: strings.TrimRight(base, "/"),
		HTTP: &http.Client{Timeout: timeout},
	}
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.postJSON(ctx, loginPath, loginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, ErrMissingToken
	}
	return &out, nil
}

// Register creates an account and returns its token and profile.
func (c *Client) Register(ctx context.Context, name, email, password string) (*RegisterResponse, error) {
	var out RegisterResponse
	req := registerRequest{Name: name, Email: email, Password: password}
	if err := c.postJSON(ctx, registerPath, req, &out); err != nil {
		return nil, err
	}
	if out.Authorization.Token == "" {
		return nil, ErrMissingToken
	}
	return &out, nil
}

// Me returns the profile of the user owning token.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+mePath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var out User
	if err := c.do(req, mePath, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

// do sends req and decodes a 2xx body into out.
func (c *Client) do(req *http.Request, path string, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("auth api %s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newError(req.Method, path, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding auth api %s response: %w", path, err)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}
