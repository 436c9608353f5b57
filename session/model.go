package session

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSession is returned by [Session.Validate] when a session record
// is incomplete or internally inconsistent.
var ErrInvalidSession = errors.New("invalid session")

// AccountKind tells whether the account is an individual collaborator or a
// company entity. It is fixed at registration.
type AccountKind string

const (
	// KindIndividual is an individual collaborator account.
	KindIndividual AccountKind = "individual-collaborator"
	// KindCompany is a company account.
	KindCompany AccountKind = "company-account"
)

// Valid reports whether k is a known account kind.
func (k AccountKind) Valid() bool {
	return k == KindIndividual || k == KindCompany
}

// Role is the authorization level of an account within its kind.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleManager      Role = "manager"
	RoleCollaborator Role = "collaborator"
	RoleCompany      Role = "company"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleBits[r]
	return ok
}

// AllowedFor reports whether r may be held by an account of kind k.
// Company accounts always carry RoleCompany; individual accounts never do.
func (r Role) AllowedFor(k AccountKind) bool {
	switch k {
	case KindCompany:
		return r == RoleCompany
	case KindIndividual:
		return r == RoleAdmin || r == RoleManager || r == RoleCollaborator
	default:
		return false
	}
}

// Status is a display-only lifecycle marker.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive || s == StatusPending
}

// Session is the authenticated identity of the current user together with the
// attributes used for authorization. A Session is replaced as a whole; fields
// are never patched in place once it has been published by the store.
type Session struct {
	UserID           string      `json:"id"`
	DisplayName      string      `json:"name"`
	Email            string      `json:"email"`
	AccountKind      AccountKind `json:"accountKind"`
	Role             Role        `json:"role"`
	OrganizationName string      `json:"organizationName,omitempty"`
	Status           Status      `json:"status"`
}

// Validate checks that every required field is set, that enum fields hold
// known values and that Role is consistent with AccountKind.
func (s *Session) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil session", ErrInvalidSession)
	}
	if strings.TrimSpace(s.UserID) == "" {
		return invalidField("id", "required")
	}
	if strings.TrimSpace(s.DisplayName) == "" {
		return invalidField("name", "required")
	}
	if strings.TrimSpace(s.Email) == "" {
		return invalidField("email", "required")
	}
	if !s.AccountKind.Valid() {
		return invalidField("accountKind", "unknown account kind")
	}
	if !s.Role.Valid() {
		return invalidField("role", "unknown role")
	}
	if !s.Role.AllowedFor(s.AccountKind) {
		return invalidField("role", "not allowed for "+string(s.AccountKind))
	}
	if s.AccountKind != KindCompany && s.OrganizationName != "" {
		return invalidField("organizationName", "only company accounts carry an organization")
	}
	if !s.Status.Valid() {
		return invalidField("status", "unknown status")
	}
	return nil
}

// Clone returns a copy of s. Clone of nil is nil.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}

// Equal reports whether a and b hold identical field values.
func Equal(a, b *Session) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func invalidField(field, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidSession, field, reason)
}
