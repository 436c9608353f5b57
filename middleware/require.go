package middleware

import (
	"net/http"

	"github.com/MrEthical07/dojoauth/guard"
	"github.com/MrEthical07/dojoauth/session"
)

// RequireAuthenticated admits any signed-in user.
func RequireAuthenticated(source StateSource) func(http.Handler) http.Handler {
	return Require(source, guard.DefaultPolicy(), guard.Authenticated)
}

// RequireCompany admits company accounts only.
func RequireCompany(source StateSource) func(http.Handler) http.Handler {
	return Require(source, guard.DefaultPolicy(), guard.CompanyOnly)
}

// RequireRoles admits signed-in users holding one of roles.
func RequireRoles(source StateSource, roles ...session.Role) func(http.Handler) http.Handler {
	return Require(source, guard.DefaultPolicy(), guard.RolesAny(roles...))
}
