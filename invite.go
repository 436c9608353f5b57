package dojoauth

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/dojoauth/authclient"
	"github.com/MrEthical07/dojoauth/session"
)

// SendInvite asks the auth backend to invite email with role and optional
// training paths on behalf of the current user. It never changes the store's
// state. Backend failures wrap ErrInviteDispatchFailed; see Retryable.
func (s *Store) SendInvite(ctx context.Context, email string, role session.Role, trainingPathIDs ...string) (string, error) {
	if err := s.usable(); err != nil {
		return "", err
	}
	current := s.State().Session
	if current == nil {
		return "", ErrUnauthenticated
	}

	email = trimSpace(email)
	if email == "" {
		return "", invalid("email", "required")
	}
	if !validEmail(email) {
		return "", invalid("email", "not a valid address")
	}
	switch role {
	case session.RoleAdmin, session.RoleManager, session.RoleCollaborator:
	default:
		return "", invalid("role", "must be admin, manager or collaborator")
	}

	paths := make([]string, 0, len(trainingPathIDs))
	for _, id := range trainingPathIDs {
		if id = strings.TrimSpace(id); id != "" {
			paths = append(paths, id)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Auth.Timeout)
	defer cancel()
	start := time.Now()
	resp, err := s.auth.SendInvite(callCtx, authclient.InviteRequest{
		InviterID:       current.UserID,
		Email:           email,
		Role:            role,
		TrainingPathIDs: paths,
	})
	s.metrics.Observe(MetricAuthLatency, time.Since(start))
	err = backendTimeout(ctx, callCtx, err)

	meta := map[string]string{
		"invitee":        email,
		"role":           string(role),
		"training_paths": strconv.Itoa(len(paths)),
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrInviteDispatchFailed, err)
		s.metrics.Inc(MetricInviteFailed)
		s.emitAudit(ctx, AuditInviteFailed, false, current.UserID, current.Email, err, meta)
		s.logger.Warn("invite dispatch failed", slog.Bool("retryable", Retryable(err)), slog.Any("error", err))
		return "", err
	}

	meta["invite_id"] = resp.InviteID
	s.metrics.Inc(MetricInviteSent)
	s.emitAudit(ctx, AuditInviteSent, true, current.UserID, current.Email, nil, meta)
	return resp.InviteID, nil
}
