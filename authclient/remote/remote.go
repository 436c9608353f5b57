// Package remote is an [authclient.Client] that talks to an authserver-style
// backend over HTTP.
package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/dojoauth/authclient"
	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
)

const (
	pathLogin    = "/v1/auth/login"
	pathRegister = "/v1/auth/register"
	pathInvites  = "/v1/invites"
)

type errorBody struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

// Client sends requests to BaseURL. It is safe for concurrent use.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request when the context carries no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient replaces the underlying fasthttp client.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the backend at baseURL, e.g. "http://127.0.0.1:8081".
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("remote auth base URL must be http(s): %q", baseURL)
	}

	c := &Client{
		baseURL: baseURL,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &fasthttp.Client{
			Name:                "dojoauth-remote",
			MaxIdleConnDuration: 30 * time.Second,
		}
	}
	return c, nil
}

func (c *Client) Login(ctx context.Context, req authclient.LoginRequest) (*authclient.LoginResponse, error) {
	var out authclient.LoginResponse
	if err := c.post(ctx, pathLogin, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req authclient.RegisterRequest) (*authclient.RegisterResponse, error) {
	var out authclient.RegisterResponse
	if err := c.post(ctx, pathRegister, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendInvite(ctx context.Context, req authclient.InviteRequest) (*authclient.InviteResponse, error) {
	var out authclient.InviteResponse
	if err := c.post(ctx, pathInvites, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := sonic.Marshal(in)
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBodyRaw(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%w: %v", authclient.ErrUnavailable, err)
	}

	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		if err := sonic.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("%w: malformed response: %v", authclient.ErrUnavailable, err)
		}
		return nil
	}
	return statusError(status, resp.Body())
}

func statusError(status int, body []byte) error {
	switch status {
	case fasthttp.StatusUnauthorized:
		return authclient.ErrInvalidCredentials
	case fasthttp.StatusConflict:
		return authclient.ErrAccountExists
	case fasthttp.StatusTooManyRequests:
		return authclient.ErrRateLimited
	}

	var eb errorBody
	_ = sonic.Unmarshal(body, &eb)
	msg := eb.Message
	if msg == "" {
		msg = fmt.Sprintf("status %d", status)
	}

	if status == fasthttp.StatusBadRequest || status == fasthttp.StatusUnprocessableEntity {
		msg = strings.TrimPrefix(msg, authclient.ErrRejected.Error()+": ")
		return fmt.Errorf("%w: %s", authclient.ErrRejected, msg)
	}
	return fmt.Errorf("%w: %s", authclient.ErrUnavailable, msg)
}
