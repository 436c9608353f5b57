package authserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/MrEthical07/dojoauth/authclient"
	"github.com/MrEthical07/dojoauth/authclient/mock"
	"github.com/MrEthical07/dojoauth/session"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func serve(t *testing.T, h fasthttp.RequestHandler, method, path, body string) *fasthttp.RequestCtx {
	t.Helper()
	var ctx fasthttp.RequestCtx
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(path)
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}
	ctx.Init(&req, &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4242}, nil)
	h(&ctx)
	return &ctx
}

func TestHealth(t *testing.T) {
	h := New(mock.New(), Config{}, nil).Handler()
	ctx := serve(t, h, fasthttp.MethodGet, PathHealth, "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	require.Equal(t, "OK", string(ctx.Response.Body()))
}

func TestLoginWithMock(t *testing.T) {
	h := New(mock.New(), Config{}, nil).Handler()
	ctx := serve(t, h, fasthttp.MethodPost, PathLogin, `{"email":"admin@dojo.io","password":"pw123456"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp authclient.LoginResponse
	require.NoError(t, sonic.Unmarshal(ctx.Response.Body(), &resp))
	require.Equal(t, session.RoleAdmin, resp.Session.Role)
	require.Equal(t, mock.DemoDisplayName, resp.Session.DisplayName)
}

func TestRegisterReturnsCreated(t *testing.T) {
	h := New(mock.New(), Config{}, nil).Handler()
	ctx := serve(t, h, fasthttp.MethodPost, PathRegister, `{"name":"Ana","email":"ana@x.io","password":"pw123456"}`)
	require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
}

func TestBadBodies(t *testing.T) {
	h := New(mock.New(), Config{}, nil).Handler()

	ctx := serve(t, h, fasthttp.MethodPost, PathLogin, "")
	require.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = serve(t, h, fasthttp.MethodPost, PathLogin, "{not json")
	require.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	var eb ErrorBody
	require.NoError(t, sonic.Unmarshal(ctx.Response.Body(), &eb))
	require.Equal(t, "bad_request", eb.Code)
}

func TestInviteFailureStatus(t *testing.T) {
	m := mock.New()
	m.InviteErr = fmt.Errorf("%w: mail relay down", authclient.ErrUnavailable)
	h := New(m, Config{}, nil).Handler()

	ctx := serve(t, h, fasthttp.MethodPost, PathInvites, `{"inviterId":"u1","email":"x@y.io","role":"collaborator"}`)
	require.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())
}

type sourceRecorder struct {
	authclient.Client
	source string
}

func (r *sourceRecorder) Login(ctx context.Context, req authclient.LoginRequest) (*authclient.LoginResponse, error) {
	r.source = authclient.SourceFromContext(ctx)
	return nil, authclient.ErrInvalidCredentials
}

func TestLoginPassesSourceAddress(t *testing.T) {
	rec := &sourceRecorder{}
	h := New(rec, Config{}, nil).Handler()
	ctx := serve(t, h, fasthttp.MethodPost, PathLogin, `{"email":"a@x.io","password":"pw123456"}`)
	require.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	require.Equal(t, "127.0.0.1", rec.source)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{authclient.ErrInvalidCredentials, fasthttp.StatusUnauthorized},
		{authclient.ErrAccountExists, fasthttp.StatusConflict},
		{fmt.Errorf("%w: org missing", authclient.ErrRejected), fasthttp.StatusUnprocessableEntity},
		{authclient.ErrRateLimited, fasthttp.StatusTooManyRequests},
		{authclient.ErrUnavailable, fasthttp.StatusServiceUnavailable},
		{errors.New("boom"), fasthttp.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), fasthttp.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		got, _ := StatusFor(tc.err)
		require.Equal(t, tc.want, got, "error %v", tc.err)
	}
}
