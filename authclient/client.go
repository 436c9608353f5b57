package authclient

import (
	"context"
	"errors"

	"github.com/MrEthical07/dojoauth/session"
)

var (
	// ErrInvalidCredentials means the backend rejected the email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountExists means registration hit an already registered email.
	ErrAccountExists = errors.New("account already exists")
	// ErrRejected means the backend refused the request as malformed.
	ErrRejected = errors.New("request rejected by auth backend")
	// ErrRateLimited means the backend throttled the caller.
	ErrRateLimited = errors.New("auth backend rate limited")
	// ErrUnavailable means the backend could not be reached or failed internally.
	ErrUnavailable = errors.New("auth backend unavailable")
)

// Client is the account backend as seen by the session store.
type Client interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	SendInvite(ctx context.Context, req InviteRequest) (*InviteResponse, error)
}

// LoginRequest carries the credentials typed by the user.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the session issued for valid credentials.
type LoginResponse struct {
	Session session.Session `json:"session"`
}

// RegisterRequest describes a new account.
type RegisterRequest struct {
	Name             string              `json:"name"`
	Email            string              `json:"email"`
	Password         string              `json:"password"`
	AccountKind      session.AccountKind `json:"accountKind"`
	OrganizationName string              `json:"organizationName,omitempty"`
}

// RegisterResponse carries the session of the freshly created account.
type RegisterResponse struct {
	Session session.Session `json:"session"`
}

// InviteRequest asks the backend to invite email into the inviter's
// organization with the given role and optional training paths.
type InviteRequest struct {
	InviterID       string       `json:"inviterId"`
	Email           string       `json:"email"`
	Role            session.Role `json:"role"`
	TrainingPathIDs []string     `json:"trainingPathIds,omitempty"`
}

// InviteResponse identifies the dispatched invitation.
type InviteResponse struct {
	InviteID string `json:"inviteId"`
}
