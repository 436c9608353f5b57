package guard

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/MrEthical07/dojoauth/session"
	"gopkg.in/yaml.v3"
)

// Table maps page paths to requirements. A path without an entry inherits the
// requirement of its nearest declared parent ("/empresa/trilhas/42" uses
// "/empresa/trilhas"); the root entry is never inherited. A Table is
// read-only after construction.
type Table struct {
	routes map[string]Requirement
}

// NewTable builds a table from routes. Paths are cleaned.
func NewTable(routes map[string]Requirement) *Table {
	t := &Table{routes: make(map[string]Requirement, len(routes))}
	for p, req := range routes {
		t.routes[cleanPath(p)] = req
	}
	return t
}

// DefaultTable is the platform's route map.
func DefaultTable() *Table {
	return NewTable(map[string]Requirement{
		"/login":    Guest,
		"/register": Guest,

		"/": Index,

		"/dashboard":        Authenticated,
		"/training-paths":   Authenticated,
		"/simulations":      Authenticated,
		"/profile":          Authenticated,
		"/settings":         Authenticated,
		"/training-results": Authenticated,

		"/collaborators": RolesAny(session.RoleAdmin, session.RoleManager),

		"/empresa":               CompanyOnly,
		"/empresa/colaboradores": CompanyOnly,
		"/empresa/trilhas":       CompanyOnly,
		"/empresa/convites":      CompanyOnly,
		"/empresa/simulacoes":    CompanyOnly,
		"/empresa/ranking":       CompanyOnly,
		"/empresa/configuracoes": CompanyOnly,
	})
}

// Lookup returns the requirement governing p.
func (t *Table) Lookup(p string) (Requirement, bool) {
	if t == nil {
		return Requirement{}, false
	}
	p = cleanPath(p)
	if req, ok := t.routes[p]; ok {
		return req, true
	}
	for p != "/" {
		p = path.Dir(p)
		if p == "/" {
			break
		}
		if req, ok := t.routes[p]; ok {
			return req, true
		}
	}
	return Requirement{}, false
}

// Evaluate decides the navigation to p. Unknown paths render so the
// not-found page stays public.
func (t *Table) Evaluate(policy Policy, p string, st session.State) Action {
	req, ok := t.Lookup(p)
	if !ok {
		return policy.Decide(st, Public)
	}
	return policy.Decide(st, req)
}

// Paths lists the declared paths in sorted order.
func (t *Table) Paths() []string {
	out := make([]string, 0, len(t.routes))
	for p := range t.routes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// RouteSpec is the YAML form of one table entry.
type RouteSpec struct {
	Path         string         `yaml:"path"`
	RequiresAuth bool           `yaml:"requiresAuth"`
	AccountKind  string         `yaml:"accountKind"`
	Roles        []session.Role `yaml:"roles"`
	GuestOnly    bool           `yaml:"guestOnly"`
}

// LoadTable reads a YAML list of RouteSpec. Unknown account kinds or roles
// are rejected rather than silently widening access.
func LoadTable(r io.Reader) (*Table, error) {
	var entries []RouteSpec
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode route table: %w", err)
	}

	routes := make(map[string]Requirement, len(entries))
	for i, entry := range entries {
		if !strings.HasPrefix(entry.Path, "/") {
			return nil, fmt.Errorf("route %d: path %q must start with /", i, entry.Path)
		}
		req := Requirement{RequiresAuth: entry.RequiresAuth, GuestOnly: entry.GuestOnly}
		if entry.AccountKind != "" {
			kind := session.AccountKind(entry.AccountKind)
			if !kind.Valid() {
				return nil, fmt.Errorf("route %s: unknown account kind %q", entry.Path, entry.AccountKind)
			}
			req.AccountKind = kind
		}
		for _, role := range entry.Roles {
			if !role.Valid() {
				return nil, fmt.Errorf("route %s: unknown role %q", entry.Path, role)
			}
			req.Roles = req.Roles.Add(role)
		}
		key := cleanPath(entry.Path)
		if _, dup := routes[key]; dup {
			return nil, fmt.Errorf("route %s declared twice", entry.Path)
		}
		routes[key] = req
	}
	return NewTable(routes), nil
}

func cleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" || p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}
