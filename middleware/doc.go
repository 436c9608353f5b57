// Package middleware adapts the route guard to net/http.
//
// # Guards
//
//   - [Guard] evaluates each request path against a [guard.Table].
//   - [Require] applies one [guard.Requirement] to every request.
//   - [RequireAuthenticated], [RequireCompany] and [RequireRoles] are
//     shorthands using [guard.DefaultPolicy].
//
// A Render decision calls the wrapped handler with the evaluated state in the
// request context ([StateFromContext]). Redirect answers 302; redirects to the
// login page carry the original request URI in a next parameter. ShowLoading
// answers 503 with Retry-After so clients retry once the store is ready.
//
// # Architecture boundaries
//
// This package translates guard decisions into HTTP responses. All access
// decisions are made by [guard.Policy.Decide].
//
// # What this package must NOT do
//
//   - Read or write session storage.
//   - Call Login, Logout or any other mutating store operation.
//   - Make access decisions of its own.
package middleware
