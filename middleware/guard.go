package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/MrEthical07/dojoauth/guard"
	"github.com/MrEthical07/dojoauth/session"
)

// StateSource supplies the current session state. *dojoauth.Store
// satisfies it.
type StateSource interface {
	State() session.State
}

type stateContextKey struct{}

// StateFromContext returns the state the guard evaluated for this request.
func StateFromContext(ctx context.Context) (session.State, bool) {
	st, ok := ctx.Value(stateContextKey{}).(session.State)
	return st, ok
}

// Guard evaluates every request path against table.
func Guard(source StateSource, table *guard.Table, policy guard.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if source == nil || table == nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
			st := source.State()
			serve(w, r, next, policy, st, table.Evaluate(policy, r.URL.Path, st))
		})
	}
}

// Require guards every request with a single requirement.
func Require(source StateSource, policy guard.Policy, req guard.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if source == nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
			st := source.State()
			serve(w, r, next, policy, st, policy.Decide(st, req))
		})
	}
}

func serve(w http.ResponseWriter, r *http.Request, next http.Handler, policy guard.Policy, st session.State, action guard.Action) {
	switch action.Kind {
	case guard.Render:
		ctx := context.WithValue(r.Context(), stateContextKey{}, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	case guard.Redirect:
		http.Redirect(w, r, redirectTarget(policy, action.Path, r), http.StatusFound)
	default:
		w.Header().Set("Retry-After", "1")
		http.Error(w, "session loading", http.StatusServiceUnavailable)
	}
}

// redirectTarget appends the original request to login redirects so the
// login page can send the user back.
func redirectTarget(policy guard.Policy, target string, r *http.Request) string {
	login := policy.LoginPath
	if login == "" {
		login = "/login"
	}
	if target != login {
		return target
	}
	return target + "?next=" + url.QueryEscape(r.URL.RequestURI())
}
