package authserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/MrEthical07/dojoauth/authclient"
	"github.com/bytedance/sonic"
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

const (
	PathLogin    = "/v1/auth/login"
	PathRegister = "/v1/auth/register"
	PathInvites  = "/v1/invites"
	PathHealth   = "/healthz"
)

// ErrorBody is the JSON payload of every non-2xx response.
type ErrorBody struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

// Config tunes the HTTP server.
type Config struct {
	RequestTimeout time.Duration
	MaxBodyBytes   int
}

// Server serves an authclient.Client.
type Server struct {
	client authclient.Client
	logger *slog.Logger
	cfg    Config
	srv    *fasthttp.Server
}

// New wires the routes for client. A nil logger discards output.
func New(client authclient.Client, cfg Config, logger *slog.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 10
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{client: client, logger: logger, cfg: cfg}
	s.srv = &fasthttp.Server{
		Handler:            s.routes(),
		Name:               "dojoauth",
		MaxRequestBodySize: cfg.MaxBodyBytes,
		ReadTimeout:        cfg.RequestTimeout,
		WriteTimeout:       cfg.RequestTimeout,
	}
	return s
}

// Handler returns the routed request handler.
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.srv.Handler
}

// ListenAndServe blocks serving on addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("auth server listening", slog.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

// Serve blocks serving connections from ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}

func (s *Server) routes() fasthttp.RequestHandler {
	r := router.New()

	r.GET(PathHealth, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		_, _ = ctx.WriteString("OK")
	})

	r.POST(PathLogin, func(ctx *fasthttp.RequestCtx) {
		var req authclient.LoginRequest
		if !s.decode(ctx, &req) {
			return
		}
		stdCtx, cancel := s.requestContext(ctx)
		defer cancel()

		resp, err := s.client.Login(stdCtx, req)
		if err != nil {
			s.fail(ctx, PathLogin, err)
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, resp)
	})

	r.POST(PathRegister, func(ctx *fasthttp.RequestCtx) {
		var req authclient.RegisterRequest
		if !s.decode(ctx, &req) {
			return
		}
		stdCtx, cancel := s.requestContext(ctx)
		defer cancel()

		resp, err := s.client.Register(stdCtx, req)
		if err != nil {
			s.fail(ctx, PathRegister, err)
			return
		}
		writeJSON(ctx, fasthttp.StatusCreated, resp)
	})

	r.POST(PathInvites, func(ctx *fasthttp.RequestCtx) {
		var req authclient.InviteRequest
		if !s.decode(ctx, &req) {
			return
		}
		stdCtx, cancel := s.requestContext(ctx)
		defer cancel()

		resp, err := s.client.SendInvite(stdCtx, req)
		if err != nil {
			s.fail(ctx, PathInvites, err)
			return
		}
		writeJSON(ctx, fasthttp.StatusCreated, resp)
	})

	return r.Handler
}

func (s *Server) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx := authclient.WithSource(context.Background(), ctx.RemoteIP().String())
	return context.WithTimeout(stdCtx, s.cfg.RequestTimeout)
}

func (s *Server) decode(ctx *fasthttp.RequestCtx, target any) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		writeJSON(ctx, fasthttp.StatusBadRequest, ErrorBody{Code: "bad_request", Message: "request body is empty"})
		return false
	}
	if err := sonic.Unmarshal(body, target); err != nil {
		writeJSON(ctx, fasthttp.StatusBadRequest, ErrorBody{Code: "bad_request", Message: "malformed JSON body"})
		return false
	}
	return true
}

func (s *Server) fail(ctx *fasthttp.RequestCtx, route string, err error) {
	status, code := StatusFor(err)
	if status >= fasthttp.StatusInternalServerError {
		s.logger.Warn("auth backend failure", slog.String("route", route), slog.Any("error", err))
	}
	writeJSON(ctx, status, ErrorBody{Code: code, Message: err.Error()})
}

// StatusFor maps an authclient error to its HTTP status and error code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, authclient.ErrInvalidCredentials):
		return fasthttp.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, authclient.ErrAccountExists):
		return fasthttp.StatusConflict, "account_exists"
	case errors.Is(err, authclient.ErrRejected):
		return fasthttp.StatusUnprocessableEntity, "rejected"
	case errors.Is(err, authclient.ErrRateLimited):
		return fasthttp.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, context.DeadlineExceeded):
		return fasthttp.StatusGatewayTimeout, "timeout"
	default:
		return fasthttp.StatusServiceUnavailable, "unavailable"
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	buf, err := sonic.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(buf)
}
