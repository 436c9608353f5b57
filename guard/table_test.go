package guard

import (
	"strings"
	"testing"

	"github.com/MrEthical07/dojoauth/session"
)

func TestDefaultTableEvaluate(t *testing.T) {
	table := DefaultTable()
	policy := DefaultPolicy()

	collaborator := signedIn(session.KindIndividual, session.RoleCollaborator)
	manager := signedIn(session.KindIndividual, session.RoleManager)
	company := signedIn(session.KindCompany, session.RoleCompany)

	tests := []struct {
		path  string
		state session.State
		want  Action
	}{
		{"/", signedOut, redirect("/login")},
		{"/", collaborator, redirect("/dashboard")},
		{"/", company, redirect("/empresa")},
		{"/dashboard", signedOut, redirect("/login")},
		{"/login", signedOut, render},
		{"/login", collaborator, redirect("/dashboard")},
		{"/register", company, redirect("/empresa")},
		{"/collaborators", collaborator, redirect("/dashboard")},
		{"/collaborators", manager, render},
		{"/empresa", collaborator, redirect("/dashboard")},
		{"/empresa/convites", company, render},
		{"/empresa/trilhas/42", collaborator, redirect("/dashboard")},
		{"/empresa/trilhas/42", company, render},
		{"/empresa/ranking/", company, render},
		{"/training-results?id=3", signedOut, redirect("/login")},
		{"/does-not-exist", signedOut, render},
		{"/dashboard", session.State{Loading: true}, Action{Kind: ShowLoading}},
	}
	for _, tt := range tests {
		if got := table.Evaluate(policy, tt.path, tt.state); got != tt.want {
			t.Fatalf("%s: got %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDefaultLandingsRender(t *testing.T) {
	table := DefaultTable()
	policy := DefaultPolicy()
	for _, st := range []session.State{
		signedIn(session.KindIndividual, session.RoleAdmin),
		signedIn(session.KindIndividual, session.RoleCollaborator),
		signedIn(session.KindCompany, session.RoleCompany),
	} {
		landing := policy.LandingFor(st.Session.AccountKind)
		if got := table.Evaluate(policy, landing, st); got != render {
			t.Fatalf("landing %s must render for %s, got %v", landing, st.Session.AccountKind, got)
		}
	}
	if got := table.Evaluate(policy, policy.LoginPath, signedOut); got != render {
		t.Fatalf("login must render when signed out, got %v", got)
	}
}

func TestLookupDoesNotInheritRoot(t *testing.T) {
	table := NewTable(map[string]Requirement{"/": Authenticated})
	if _, ok := table.Lookup("/public/page"); ok {
		t.Fatal("root requirement must not be inherited")
	}
	if _, ok := table.Lookup(""); !ok {
		t.Fatal("empty path should resolve to /")
	}
}

func TestLoadTable(t *testing.T) {
	src := `
- path: /login
  guestOnly: true
- path: /reports
  roles: [admin, manager]
- path: /empresa
  accountKind: company-account
`
	table, err := LoadTable(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if got := table.Paths(); strings.Join(got, ",") != "/empresa,/login,/reports" {
		t.Fatalf("unexpected paths %v", got)
	}
	req, _ := table.Lookup("/reports")
	if !req.Roles.Has(session.RoleAdmin) || !req.Roles.Has(session.RoleManager) || req.Roles.Has(session.RoleCollaborator) {
		t.Fatalf("unexpected roles %v", req.Roles.Roles())
	}
}

func TestLoadTableRejects(t *testing.T) {
	bad := map[string]string{
		"unknown role":  "- path: /x\n  roles: [owner]\n",
		"unknown kind":  "- path: /x\n  accountKind: team\n",
		"relative path": "- path: x\n",
		"duplicate":     "- path: /x\n- path: /x/\n",
		"unknown field": "- path: /x\n  requireAuth: true\n",
	}
	for name, src := range bad {
		if _, err := LoadTable(strings.NewReader(src)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
