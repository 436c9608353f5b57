package test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/MrEthical07/dojoauth"
	"github.com/MrEthical07/dojoauth/authclient/directory"
	"github.com/MrEthical07/dojoauth/authclient/remote"
	"github.com/MrEthical07/dojoauth/authserver"
	"github.com/MrEthical07/dojoauth/password"
	"github.com/MrEthical07/dojoauth/storage/redisstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

const maxLoginAttempts = 3

// stack is a full deployment in one process: a Redis-throttled directory
// behind the HTTP auth server, and stores that reach it through the remote
// client and keep their record in the same Redis.
type stack struct {
	t     *testing.T
	redis *miniredis.Miniredis
	dir   *directory.Directory
	ln    *fasthttputil.InmemoryListener
}

func newStack(t *testing.T) *stack {
	t.Helper()

	mr := miniredis.RunT(t)

	hcfg := password.DefaultConfig()
	hcfg.Memory = 8 * 1024
	hcfg.Time = 1
	hcfg.Parallelism = 1
	hasher, err := password.NewHasher(hcfg)
	require.NoError(t, err)

	limiterClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = limiterClient.Close() })

	dir, err := directory.New(
		directory.WithHasher(hasher),
		directory.WithRedisLimiter(limiterClient, maxLoginAttempts, time.Minute, false),
	)
	require.NoError(t, err)

	ln := fasthttputil.NewInmemoryListener()
	srv := authserver.New(dir, authserver.Config{RequestTimeout: 2 * time.Second}, nil)
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		_ = ln.Close()
	})

	return &stack{t: t, redis: mr, dir: dir, ln: ln}
}

// store opens a fresh Store for profile, as a new process would.
func (s *stack) store(profile string) *dojoauth.Store {
	s.t.Helper()

	hc := &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return s.ln.Dial() },
	}
	client, err := remote.New("http://auth.test", remote.WithHTTPClient(hc), remote.WithTimeout(2*time.Second))
	require.NoError(s.t, err)

	backend, err := redisstore.New(
		redis.NewClient(&redis.Options{Addr: s.redis.Addr()}),
		redisstore.Config{Name: profile},
	)
	require.NoError(s.t, err)

	cfg := dojoauth.DefaultConfig()
	cfg.Storage.Driver = "redis"
	cfg.Storage.RedisAddr = s.redis.Addr()
	cfg.Storage.Profile = profile
	cfg.Auth.Backend = "remote"
	cfg.Auth.BaseURL = "http://auth.test"
	cfg.Auth.Timeout = 2 * time.Second
	cfg.Audit.Enabled = false

	st, err := dojoauth.New().
		WithConfig(cfg).
		WithBackend(backend).
		WithAuthClient(client).
		Build()
	require.NoError(s.t, err)
	s.t.Cleanup(func() { _ = st.Close() })
	return st
}
