package dojoauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MrEthical07/dojoauth/authclient"
	"github.com/MrEthical07/dojoauth/internal/audit"
	"github.com/MrEthical07/dojoauth/session"
	"github.com/MrEthical07/dojoauth/storage"
)

// Store is the single source of truth for who is signed in. All methods are
// safe for concurrent use; mutating operations run one at a time.
//
// Subscribers are invoked synchronously after each state change, outside the
// store's state lock but while the triggering operation is still in flight.
// A subscriber must not call Login, Register, Logout or Initialize.
type Store struct {
	cfg     Config
	backend storage.Backend
	codec   session.Codec
	auth    authclient.Client
	logger  *slog.Logger
	audit   *audit.Dispatcher
	metrics *Metrics

	opMu sync.Mutex

	mu          sync.RWMutex
	state       session.State
	initialized bool
	closed      bool

	subMu   sync.Mutex
	subs    map[uint64]func(session.State)
	nextSub uint64

	closeOnce sync.Once
}

// Initialize hydrates the store from durable storage. Only the first call
// does any work; later calls return the current state. It never fails: an
// absent, corrupt or unreachable record leaves the store signed out.
func (s *Store) Initialize(ctx context.Context) session.State {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	done, closed := s.initialized, s.closed
	s.mu.RUnlock()
	if done || closed {
		return s.State()
	}

	restored := s.hydrate(ctx)

	s.mu.Lock()
	s.initialized = true
	s.state = session.State{
		Session:       restored,
		Authenticated: restored != nil,
		Loading:       false,
		Ready:         true,
	}
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return snapshot
}

func (s *Store) hydrate(ctx context.Context) *session.Session {
	data, err := s.backend.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.metrics.Inc(MetricSessionAbsent)
		s.emitAudit(ctx, AuditSessionAbsent, true, "", "", nil, nil)
		s.logger.Debug("no stored session")
		return nil
	case err != nil:
		s.metrics.Inc(MetricStorageUnavailable)
		s.emitAudit(ctx, AuditSessionAbsent, false, "", "", err, nil)
		s.logger.Warn("session storage unavailable, starting signed out", slog.Any("error", err))
		return nil
	}

	restored, err := s.codec.Decode(data)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrStorageCorrupt, err)
		s.metrics.Inc(MetricStorageCorrupt)
		s.emitAudit(ctx, AuditStorageCorrupt, false, "", "", err, nil)
		s.logger.Warn("discarding corrupt stored session", slog.Any("error", err))
		return nil
	}

	s.metrics.Inc(MetricSessionRestored)
	s.emitAudit(ctx, AuditSessionRestored, true, restored.UserID, restored.Email, nil, nil)
	s.logger.Info("session restored", slog.String("user_id", restored.UserID))
	return restored
}

// Login exchanges credentials for a session. On success the record is stored
// and then published; on any failure state and storage are unchanged.
func (s *Store) Login(ctx context.Context, email, password string) (*session.Session, error) {
	req := authclient.LoginRequest{Email: trimSpace(email), Password: password}
	if req.Email == "" {
		return nil, invalid("email", "required")
	}
	if req.Password == "" {
		return nil, invalid("password", "required")
	}

	return s.authenticate(ctx, AuditLoginSuccess, AuditLoginFailure, MetricLoginSuccess, MetricLoginFailure, req.Email,
		func(ctx context.Context) (*session.Session, error) {
			resp, err := s.auth.Login(ctx, req)
			if err != nil {
				return nil, err
			}
			return &resp.Session, nil
		})
}

// Register creates an account and signs it in. Input is checked before the
// auth backend is contacted; see RegisterInput.
func (s *Store) Register(ctx context.Context, in RegisterInput) (*session.Session, error) {
	req, err := in.request(s.cfg.Registration)
	if err != nil {
		s.metrics.Inc(MetricValidationRejected)
		return nil, err
	}

	return s.authenticate(ctx, AuditRegisterSuccess, AuditRegisterFailure, MetricRegisterSuccess, MetricRegisterFailure, req.Email,
		func(ctx context.Context) (*session.Session, error) {
			resp, err := s.auth.Register(ctx, req)
			if err != nil {
				return nil, err
			}
			return &resp.Session, nil
		})
}

func (s *Store) authenticate(
	ctx context.Context,
	okEvent, failEvent string,
	okMetric, failMetric MetricID,
	email string,
	exchange func(context.Context) (*session.Session, error),
) (*session.Session, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.usable(); err != nil {
		return nil, err
	}

	s.setLoading(true)
	published := false
	defer func() {
		if !published {
			s.setLoading(false)
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Auth.Timeout)
	start := time.Now()
	issued, err := exchange(callCtx)
	s.metrics.Observe(MetricAuthLatency, time.Since(start))
	err = backendTimeout(ctx, callCtx, err)
	cancel()

	if err == nil {
		if verr := issued.Validate(); verr != nil {
			err = fmt.Errorf("%w: backend issued an invalid session: %v", ErrAuthUnavailable, verr)
		}
	}
	if err != nil {
		s.metrics.Inc(failMetric)
		s.emitAudit(ctx, failEvent, false, "", email, err, nil)
		if !errors.Is(err, ErrInvalidCredentials) {
			s.logger.Warn("auth backend call failed", slog.String("event", failEvent), slog.Any("error", err))
		}
		return nil, err
	}

	if err := s.persist(ctx, issued); err != nil {
		s.metrics.Inc(MetricPersistFailure)
		s.emitAudit(ctx, failEvent, false, issued.UserID, email, err, nil)
		s.logger.Warn("session not persisted", slog.Any("error", err))
		return nil, err
	}

	s.mu.Lock()
	s.state = session.State{
		Session:       issued.Clone(),
		Authenticated: true,
		Loading:       false,
		Ready:         true,
	}
	snapshot := s.state.Clone()
	s.mu.Unlock()
	published = true

	s.metrics.Inc(okMetric)
	s.emitAudit(ctx, okEvent, true, issued.UserID, issued.Email, nil, map[string]string{
		"account_kind": string(issued.AccountKind),
		"role":         string(issued.Role),
	})
	s.notify(snapshot)
	return issued.Clone(), nil
}

// backendTimeout reports an expired Auth.Timeout as ErrAuthUnavailable. A
// cancellation or deadline owned by the caller's ctx passes through as is.
func backendTimeout(ctx, callCtx context.Context, err error) error {
	if err == nil || ctx.Err() != nil || callCtx.Err() == nil {
		return err
	}
	if errors.Is(err, ErrAuthUnavailable) {
		return err
	}
	return fmt.Errorf("%w: no response within auth timeout: %v", ErrAuthUnavailable, err)
}

func (s *Store) persist(ctx context.Context, sess *session.Session) error {
	data, err := s.codec.Encode(sess)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionPersist, err)
	}
	if err := s.backend.Save(ctx, data); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionPersist, err)
	}
	return nil
}

// Logout removes the stored record and then clears the current session.
// Calling it while signed out does nothing. If storage cannot be cleared the
// session stays current and the error wraps ErrSessionClear.
func (s *Store) Logout(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.usable(); err != nil {
		return err
	}

	s.mu.RLock()
	current := s.state.Session.Clone()
	s.mu.RUnlock()
	if current == nil {
		return nil
	}

	if err := s.backend.Remove(ctx); err != nil {
		err = fmt.Errorf("%w: %v", ErrSessionClear, err)
		s.emitAudit(ctx, AuditLogout, false, current.UserID, current.Email, err, nil)
		s.logger.Warn("logout could not clear stored session", slog.Any("error", err))
		return err
	}

	s.mu.Lock()
	s.state = session.State{Ready: true}
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.metrics.Inc(MetricLogout)
	s.emitAudit(ctx, AuditLogout, true, current.UserID, current.Email, nil, nil)
	s.notify(snapshot)
	return nil
}

// State returns a copy of the current state.
func (s *Store) State() session.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Ready reports whether Initialize has completed.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Ready
}

// Subscribe registers fn to receive every state change and returns a
// function that removes it.
func (s *Store) Subscribe(fn func(session.State)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// MetricsSnapshot returns the current counters.
func (s *Store) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// AuditDropped reports audit events lost to a full dispatcher buffer.
func (s *Store) AuditDropped() uint64 {
	return s.audit.Dropped()
}

// Close flushes pending audit events and closes the storage backend. The
// in-memory session is left as is; use Logout to sign out.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.opMu.Lock()
		defer s.opMu.Unlock()

		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.audit.Close()
		err = s.backend.Close()
	})
	return err
}

func (s *Store) usable() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.closed:
		return ErrStoreClosed
	case !s.initialized:
		return ErrStoreNotReady
	}
	return nil
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	if s.state.Loading == loading {
		s.mu.Unlock()
		return
	}
	s.state.Loading = loading
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *Store) notify(st session.State) {
	s.subMu.Lock()
	fns := make([]func(session.State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(st.Clone())
	}
}
