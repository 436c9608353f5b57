package guard

import (
	"fmt"

	"github.com/MrEthical07/dojoauth/session"
)

// ActionKind is the outcome of a guard decision.
type ActionKind uint8

const (
	ShowLoading ActionKind = iota
	Redirect
	Render
)

func (k ActionKind) String() string {
	switch k {
	case ShowLoading:
		return "show-loading"
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	default:
		return fmt.Sprintf("action(%d)", uint8(k))
	}
}

// Action is a guard decision. Path is set only for Redirect.
type Action struct {
	Kind ActionKind
	Path string
}

func (a Action) String() string {
	if a.Kind == Redirect {
		return "redirect " + a.Path
	}
	return a.Kind.String()
}

// Requirement is the static access metadata of a page. Declaring an
// AccountKind or Roles implies RequiresAuth.
type Requirement struct {
	RequiresAuth bool
	AccountKind  session.AccountKind
	Roles        session.RoleSet
	// GuestOnly pages (login, register) send signed-in users to their landing.
	GuestOnly bool
}

// Public is the requirement of a page anyone may see.
var Public = Requirement{}

// Authenticated requires any valid session.
var Authenticated = Requirement{RequiresAuth: true}

// Guest is the requirement of the login and register pages.
var Guest = Requirement{GuestOnly: true}

// Index is the entry page: signed-out users go to login, signed-in users to
// their landing.
var Index = Requirement{RequiresAuth: true, GuestOnly: true}

// CompanyOnly requires a company account.
var CompanyOnly = Requirement{RequiresAuth: true, AccountKind: session.KindCompany}

// RolesAny requires one of roles.
func RolesAny(roles ...session.Role) Requirement {
	return Requirement{RequiresAuth: true, Roles: session.NewRoleSet(roles...)}
}

func (r Requirement) needsAuth() bool {
	return r.RequiresAuth || r.AccountKind != "" || !r.Roles.Empty()
}

// Policy names the redirect targets.
type Policy struct {
	LoginPath      string
	DefaultLanding string
	Landing        map[session.AccountKind]string
}

// DefaultPolicy mirrors the platform's routes: individuals land on
// /dashboard, companies on /empresa.
func DefaultPolicy() Policy {
	return Policy{
		LoginPath:      "/login",
		DefaultLanding: "/dashboard",
		Landing: map[session.AccountKind]string{
			session.KindIndividual: "/dashboard",
			session.KindCompany:    "/empresa",
		},
	}
}

// LandingFor returns the landing page for kind, falling back to the default
// landing and then to "/".
func (p Policy) LandingFor(kind session.AccountKind) string {
	if path := p.Landing[kind]; path != "" {
		return path
	}
	return p.defaultLanding()
}

func (p Policy) defaultLanding() string {
	if p.DefaultLanding != "" {
		return p.DefaultLanding
	}
	return "/"
}

func (p Policy) loginPath() string {
	if p.LoginPath != "" {
		return p.LoginPath
	}
	return "/login"
}

// Decide evaluates req against st. It never panics and always returns the
// same Action for the same inputs.
func (p Policy) Decide(st session.State, req Requirement) Action {
	if st.Loading || !st.Ready {
		return Action{Kind: ShowLoading}
	}

	sess := st.Session
	signedIn := st.Authenticated && sess != nil && sess.Validate() == nil
	if !signedIn {
		if req.needsAuth() {
			return Action{Kind: Redirect, Path: p.loginPath()}
		}
		return Action{Kind: Render}
	}

	if req.AccountKind != "" && req.AccountKind != sess.AccountKind {
		return Action{Kind: Redirect, Path: p.LandingFor(sess.AccountKind)}
	}
	if !req.Roles.Empty() && !req.Roles.Has(sess.Role) {
		return Action{Kind: Redirect, Path: p.defaultLanding()}
	}
	if req.GuestOnly {
		return Action{Kind: Redirect, Path: p.LandingFor(sess.AccountKind)}
	}
	return Action{Kind: Render}
}

// Decide evaluates req with DefaultPolicy.
func Decide(st session.State, req Requirement) Action {
	return DefaultPolicy().Decide(st, req)
}
