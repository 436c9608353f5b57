// Package mock is a simulated account backend. Identities are derived from the
// email address alone so demos and tests get stable, predictable sessions:
//
//	contains "admin"   → individual-collaborator / admin
//	contains "company" → company-account / company
//	contains "manager" → individual-collaborator / manager
//	anything else      → individual-collaborator / collaborator
//
// Passwords are only checked for presence. Never use this client against real
// users.
package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/dojoauth/authclient"
	"github.com/MrEthical07/dojoauth/session"
	"github.com/google/uuid"
)

// DemoDisplayName is the display name of every session produced by Login.
const DemoDisplayName = "Demo User"

// DemoOrganization is the organization attached to company logins.
const DemoOrganization = "Demo Company"

var userNamespace = uuid.MustParse("7d3c8a9e-4f0b-4a53-9a9c-2f6d1c8e5b10")

// Client implements [authclient.Client] without any network I/O.
type Client struct {
	// Delay simulates backend latency; it honours context cancellation.
	Delay time.Duration
	// Deny lists lower-cased emails whose logins fail with ErrInvalidCredentials.
	Deny map[string]bool
	// InviteErr, when set, is returned by SendInvite.
	InviteErr error

	mu      sync.Mutex
	invites []authclient.InviteRequest
	newID   func() string
}

// New returns a mock client with no artificial delay.
func New() *Client {
	return &Client{}
}

// IdentityFor returns the account kind and role the mock assigns to email.
func IdentityFor(email string) (session.AccountKind, session.Role) {
	e := strings.ToLower(email)
	switch {
	case strings.Contains(e, "admin"):
		return session.KindIndividual, session.RoleAdmin
	case strings.Contains(e, "company"):
		return session.KindCompany, session.RoleCompany
	case strings.Contains(e, "manager"):
		return session.KindIndividual, session.RoleManager
	default:
		return session.KindIndividual, session.RoleCollaborator
	}
}

// UserIDFor returns the stable user id the mock assigns to email.
func UserIDFor(email string) string {
	return uuid.NewSHA1(userNamespace, []byte(strings.ToLower(email))).String()
}

func (c *Client) Login(ctx context.Context, req authclient.LoginRequest) (*authclient.LoginResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if req.Email == "" || req.Password == "" {
		return nil, authclient.ErrInvalidCredentials
	}
	if c.Deny[strings.ToLower(req.Email)] {
		return nil, authclient.ErrInvalidCredentials
	}

	kind, role := IdentityFor(req.Email)
	s := session.Session{
		UserID:      UserIDFor(req.Email),
		DisplayName: DemoDisplayName,
		Email:       req.Email,
		AccountKind: kind,
		Role:        role,
		Status:      session.StatusActive,
	}
	if kind == session.KindCompany {
		s.OrganizationName = DemoOrganization
	}
	return &authclient.LoginResponse{Session: s}, nil
}

func (c *Client) Register(ctx context.Context, req authclient.RegisterRequest) (*authclient.RegisterResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, authclient.ErrRejected
	}

	s := session.Session{
		UserID:      c.nextID(),
		DisplayName: req.Name,
		Email:       req.Email,
		AccountKind: session.KindIndividual,
		Role:        session.RoleCollaborator,
		Status:      session.StatusActive,
	}
	if req.AccountKind == session.KindCompany {
		if req.OrganizationName == "" {
			return nil, authclient.ErrRejected
		}
		s.AccountKind = session.KindCompany
		s.Role = session.RoleCompany
		s.OrganizationName = req.OrganizationName
	}
	return &authclient.RegisterResponse{Session: s}, nil
}

func (c *Client) SendInvite(ctx context.Context, req authclient.InviteRequest) (*authclient.InviteResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if c.InviteErr != nil {
		return nil, c.InviteErr
	}

	req.TrainingPathIDs = append([]string(nil), req.TrainingPathIDs...)
	c.mu.Lock()
	c.invites = append(c.invites, req)
	c.mu.Unlock()

	return &authclient.InviteResponse{InviteID: c.nextID()}, nil
}

// Invites returns the invitations accepted so far.
func (c *Client) Invites() []authclient.InviteRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]authclient.InviteRequest, len(c.invites))
	copy(out, c.invites)
	return out
}

func (c *Client) nextID() string {
	if c.newID != nil {
		return c.newID()
	}
	return uuid.NewString()
}

func (c *Client) wait(ctx context.Context) error {
	if c.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
