// Package directory is an in-process account backend. Passwords are stored
// as argon2id hashes; failed sign-ins can be throttled through Redis.
//
// It is the backend served by the reference auth server and is safe for
// concurrent use.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/dojoauth/authclient"
	"github.com/MrEthical07/dojoauth/internal/rate"
	"github.com/MrEthical07/dojoauth/password"
	"github.com/MrEthical07/dojoauth/session"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Invite is a pending invitation recorded by SendInvite.
type Invite struct {
	ID              string
	InviterID       string
	Email           string
	Role            session.Role
	TrainingPathIDs []string
	Status          session.Status
	CreatedAt       time.Time
}

// Account seeds the directory with an account whose role is chosen by the
// operator rather than derived at registration.
type Account struct {
	Name             string              `yaml:"name"`
	Email            string              `yaml:"email"`
	Password         string              `yaml:"password"`
	AccountKind      session.AccountKind `yaml:"accountKind"`
	Role             session.Role        `yaml:"role"`
	OrganizationName string              `yaml:"organizationName"`
}

type entry struct {
	session session.Session
	hash    string
}

// Directory implements [authclient.Client].
type Directory struct {
	mu      sync.RWMutex
	byEmail map[string]*entry
	byID    map[string]*entry
	invites []Invite
	hasher  *password.Hasher
	limiter *rate.Limiter
	// decoy is verified for unknown emails so both outcomes cost one argon2 run.
	decoy   string
	now     func() time.Time
	newID   func() string
}

// Option configures a Directory.
type Option func(*Directory)

// WithHasher replaces the default argon2id parameters.
func WithHasher(h *password.Hasher) Option {
	return func(d *Directory) { d.hasher = h }
}

// WithRedisLimiter throttles failed sign-ins per email (and per source
// address when throttleBySource is set) using Redis counters.
func WithRedisLimiter(client redis.UniversalClient, maxAttempts int, window time.Duration, throttleBySource bool) Option {
	return func(d *Directory) {
		d.limiter = rate.New(client, rate.Config{
			MaxAttempts:      maxAttempts,
			Window:           window,
			ThrottleBySource: throttleBySource,
		})
	}
}

// New returns an empty directory.
func New(opts ...Option) (*Directory, error) {
	d := &Directory{
		byEmail: make(map[string]*entry),
		byID:    make(map[string]*entry),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.hasher == nil {
		h, err := password.NewHasher(password.DefaultConfig())
		if err != nil {
			return nil, err
		}
		d.hasher = h
	}
	decoy, err := d.hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}
	d.decoy = decoy
	return d, nil
}

// Seed adds an account with an explicit role. It fails with
// authclient.ErrAccountExists for a known email and authclient.ErrRejected
// for an inconsistent record.
func (d *Directory) Seed(a Account) (*session.Session, error) {
	if a.AccountKind == "" {
		a.AccountKind = session.KindIndividual
	}
	if a.Role == "" {
		a.Role = session.RoleCollaborator
		if a.AccountKind == session.KindCompany {
			a.Role = session.RoleCompany
		}
	}
	s := session.Session{
		DisplayName:      strings.TrimSpace(a.Name),
		Email:            strings.TrimSpace(a.Email),
		AccountKind:      a.AccountKind,
		Role:             a.Role,
		OrganizationName: strings.TrimSpace(a.OrganizationName),
		Status:           session.StatusActive,
	}
	return d.create(s, a.Password)
}

func (d *Directory) Login(ctx context.Context, req authclient.LoginRequest) (*authclient.LoginResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)
	source := authclient.SourceFromContext(ctx)

	if d.limiter != nil {
		if err := d.limiter.Check(ctx, email, source); err != nil {
			return nil, limiterError(err)
		}
	}

	d.mu.RLock()
	e := d.byEmail[email]
	var hash string
	var s session.Session
	if e != nil {
		hash, s = e.hash, e.session
	}
	d.mu.RUnlock()

	if e == nil {
		hash = d.decoy
	}
	ok := false
	if req.Password != "" {
		var err error
		ok, err = d.hasher.Verify(req.Password, hash)
		if err != nil && !errors.Is(err, password.ErrPolicy) {
			return nil, fmt.Errorf("%w: %v", authclient.ErrUnavailable, err)
		}
		ok = ok && e != nil
	}
	if !ok {
		if d.limiter != nil {
			if err := d.limiter.Fail(ctx, email, source); err != nil {
				return nil, limiterError(err)
			}
		}
		return nil, authclient.ErrInvalidCredentials
	}

	if d.limiter != nil {
		if err := d.limiter.Reset(ctx, email, source); err != nil {
			return nil, limiterError(err)
		}
	}
	d.rehashIfNeeded(email, req.Password, hash)
	return &authclient.LoginResponse{Session: s}, nil
}

func (d *Directory) Register(ctx context.Context, req authclient.RegisterRequest) (*authclient.RegisterResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kind := req.AccountKind
	if kind == "" {
		kind = session.KindIndividual
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown account kind %q", authclient.ErrRejected, kind)
	}

	s := session.Session{
		DisplayName: strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		AccountKind: kind,
		Role:        session.RoleCollaborator,
		Status:      session.StatusActive,
	}
	if kind == session.KindCompany {
		s.Role = session.RoleCompany
		s.OrganizationName = strings.TrimSpace(req.OrganizationName)
		if s.OrganizationName == "" {
			return nil, fmt.Errorf("%w: organization name required", authclient.ErrRejected)
		}
	}

	created, err := d.create(s, req.Password)
	if err != nil {
		return nil, err
	}
	return &authclient.RegisterResponse{Session: *created}, nil
}

func (d *Directory) SendInvite(ctx context.Context, req authclient.InviteRequest) (*authclient.InviteResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: invitee email required", authclient.ErrRejected)
	}
	switch req.Role {
	case session.RoleAdmin, session.RoleManager, session.RoleCollaborator:
	default:
		return nil, fmt.Errorf("%w: role %q cannot be invited", authclient.ErrRejected, req.Role)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byID[req.InviterID]; !ok {
		return nil, fmt.Errorf("%w: unknown inviter", authclient.ErrRejected)
	}
	if _, ok := d.byEmail[email]; ok {
		return nil, authclient.ErrAccountExists
	}

	inv := Invite{
		ID:              d.newID(),
		InviterID:       req.InviterID,
		Email:           email,
		Role:            req.Role,
		TrainingPathIDs: append([]string(nil), req.TrainingPathIDs...),
		Status:          session.StatusPending,
		CreatedAt:       d.now().UTC(),
	}
	d.invites = append(d.invites, inv)
	return &authclient.InviteResponse{InviteID: inv.ID}, nil
}

// Invites returns the invitations sent by inviterID, oldest first.
func (d *Directory) Invites(inviterID string) []Invite {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []Invite
	for _, inv := range d.invites {
		if inv.InviterID == inviterID {
			inv.TrainingPathIDs = append([]string(nil), inv.TrainingPathIDs...)
			out = append(out, inv)
		}
	}
	return out
}

// Accounts returns the registered sessions ordered by email.
func (d *Directory) Accounts() []session.Session {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]session.Session, 0, len(d.byEmail))
	for _, e := range d.byEmail {
		out = append(out, e.session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

func (d *Directory) create(s session.Session, plain string) (*session.Session, error) {
	if s.DisplayName == "" || s.Email == "" || plain == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", authclient.ErrRejected)
	}
	hash, err := d.hasher.Hash(plain)
	if err != nil {
		if errors.Is(err, password.ErrPolicy) {
			return nil, fmt.Errorf("%w: %v", authclient.ErrRejected, err)
		}
		return nil, fmt.Errorf("%w: %v", authclient.ErrUnavailable, err)
	}

	key := normalizeEmail(s.Email)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byEmail[key]; ok {
		return nil, authclient.ErrAccountExists
	}
	s.UserID = d.newID()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", authclient.ErrRejected, err)
	}

	e := &entry{session: s, hash: hash}
	d.byEmail[key] = e
	d.byID[s.UserID] = e
	out := s
	return &out, nil
}

func (d *Directory) rehashIfNeeded(email, plain, hash string) {
	need, err := d.hasher.NeedsRehash(hash)
	if err != nil || !need {
		return
	}
	fresh, err := d.hasher.Hash(plain)
	if err != nil {
		return
	}
	d.mu.Lock()
	if e := d.byEmail[email]; e != nil && e.hash == hash {
		e.hash = fresh
	}
	d.mu.Unlock()
}

func limiterError(err error) error {
	if errors.Is(err, rate.ErrRateLimited) {
		return authclient.ErrRateLimited
	}
	return fmt.Errorf("%w: %v", authclient.ErrUnavailable, err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
