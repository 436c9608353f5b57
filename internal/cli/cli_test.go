package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/dojoauth"
	"github.com/MrEthical07/dojoauth/authclient/mock"
	"github.com/MrEthical07/dojoauth/guard"
	"github.com/MrEthical07/dojoauth/storage"
	"github.com/stretchr/testify/require"
)

func env(vals map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vals[k]
		return v, ok
	}
}

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dojoauth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: memory
auth:
  timeout: 3s
registration:
  minPasswordLength: 10
`), 0o600))

	cfg, err := loadConfig(path, env(map[string]string{
		"DOJOAUTH_STORAGE_PROFILE": "work",
		"DOJOAUTH_AUTH_TIMEOUT":    "2s",
	}))
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.Storage.Driver)
	require.Equal(t, "work", cfg.Storage.Profile)
	require.Equal(t, 2*time.Second, cfg.Auth.Timeout)
	require.Equal(t, 10, cfg.Registration.MinPasswordLength)
	require.Equal(t, "mock", cfg.Auth.Backend)
}

func TestLoadConfigRejects(t *testing.T) {
	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("storage:\n  engine: sqlite\n"), 0o600))

	_, err := loadConfig(unknown, env(nil))
	require.Error(t, err)

	_, err = loadConfig("", env(map[string]string{"DOJOAUTH_AUTH_BACKEND": "remote"}))
	require.ErrorContains(t, err, "BaseURL")

	_, err = loadConfig("", env(map[string]string{"DOJOAUTH_AUTH_TIMEOUT": "soon"}))
	require.ErrorContains(t, err, "DOJOAUTH_AUTH_TIMEOUT")

	_, err = loadConfig(filepath.Join(dir, "missing.yaml"), env(nil))
	require.Error(t, err)
}

func TestMetricsDisabledByEnv(t *testing.T) {
	cfg, err := loadConfig("", env(map[string]string{"DOJOAUTH_METRICS_ENABLED": "false"}))
	require.NoError(t, err)
	require.False(t, cfg.Metrics.Enabled)
	require.False(t, cfg.Metrics.EnableLatencyHistograms)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSessionSurvivesBetweenCommands(t *testing.T) {
	t.Setenv("DOJOAUTH_STORAGE_DRIVER", "sqlite")
	t.Setenv("DOJOAUTH_STORAGE_PATH", filepath.Join(t.TempDir(), "session.db"))

	out, err := run(t, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "not signed in")

	out, err = run(t, "login", "--email", "company@dojo.io", "--password", "pw")
	require.NoError(t, err)
	require.Contains(t, out, "company-account")

	out, err = run(t, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "company@dojo.io")

	out, err = run(t, "check", "/empresa", "/dashboard", "/login")
	require.NoError(t, err)
	require.Contains(t, out, "/empresa\trender")
	require.Contains(t, out, "/dashboard\trender")
	require.Contains(t, out, "/login\tredirect /empresa")

	out, err = run(t, "invite", "new@dojo.io", "--role", "manager", "--path", "p1")
	require.NoError(t, err)
	require.Contains(t, out, "sent to new@dojo.io")

	_, err = run(t, "logout")
	require.NoError(t, err)

	out, err = run(t, "whoami", "--json")
	require.NoError(t, err)
	require.Equal(t, "null", strings.TrimSpace(out))

	out, err = run(t, "check", "/dashboard")
	require.NoError(t, err)
	require.Contains(t, out, "/dashboard\tredirect /login")
}

func TestRegisterCommandValidates(t *testing.T) {
	t.Setenv("DOJOAUTH_STORAGE_DRIVER", "memory")

	_, err := run(t, "register", "--name", "Ana", "--email", "ana@dojo.io",
		"--password", "longenough", "--confirm", "different")
	require.ErrorContains(t, err, "confirmPassword")

	out, err := run(t, "register", "--name", "Ana", "--email", "ana@dojo.io",
		"--password", "longenough", "--confirm", "longenough")
	require.NoError(t, err)
	require.Contains(t, out, "individual-collaborator")
}

func TestInviteRequiresSession(t *testing.T) {
	t.Setenv("DOJOAUTH_STORAGE_DRIVER", "memory")

	_, err := run(t, "invite", "x@dojo.io")
	require.ErrorIs(t, err, dojoauth.ErrUnauthenticated)
}

func TestSeedAccounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: Owner
  email: owner@dojo.io
  password: correct-horse
  accountKind: company-account
  role: company
  organizationName: Dojo
`), 0o600))

	dir := newTestDirectory(t)
	n, err := seedAccounts(dir, path)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Len(t, dir.Accounts(), 1)
}

func TestPageHandler(t *testing.T) {
	cfg := dojoauth.DefaultConfig()
	cfg.Storage.Driver = "memory"
	cfg.Audit.Enabled = false

	store, err := dojoauth.New().
		WithConfig(cfg).
		WithBackend(storage.NewMemory()).
		WithAuthClient(mock.New()).
		Build()
	require.NoError(t, err)
	defer store.Close()

	handler, closeFn, err := newPageHandler(store, guard.DefaultTable(), guard.DefaultPolicy())
	require.NoError(t, err)
	defer closeFn()

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	require.Equal(t, http.StatusServiceUnavailable, get("/dashboard").Code)

	ctx := context.Background()
	store.Initialize(ctx)
	require.Equal(t, http.StatusFound, get("/dashboard").Code)

	_, err = store.Login(ctx, "manager@dojo.io", "pw")
	require.NoError(t, err)

	rec := get("/collaborators")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "manager@dojo.io")

	rec = get("/empresa")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = get("/api/session")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"authenticated":true`)

	rec = get("/metrics")
	require.Contains(t, rec.Body.String(), "dojoauth_login_success_total 1")

	rec = get("/debug/otel")
	require.Contains(t, rec.Body.String(), `"dojoauth_login_success_total":1`)
}
