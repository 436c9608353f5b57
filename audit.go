package dojoauth

import (
	"context"
	"io"
	"log/slog"

	"github.com/MrEthical07/dojoauth/internal/audit"
)

// Audit event types emitted by the store.
const (
	AuditSessionRestored = "session_restored"
	AuditSessionAbsent   = "session_absent"
	AuditStorageCorrupt  = "storage_corrupt"
	AuditLoginSuccess    = "login_success"
	AuditLoginFailure    = "login_failure"
	AuditRegisterSuccess = "register_success"
	AuditRegisterFailure = "register_failure"
	AuditLogout          = "logout"
	AuditInviteSent      = "invite_sent"
	AuditInviteFailed    = "invite_failed"
)

// AuditEvent is one audit record.
type AuditEvent = audit.Event

// AuditSink receives audit events from the store's dispatcher goroutine.
type AuditSink = audit.Sink

// NoOpSink discards events.
type NoOpSink = audit.NoOpSink

// ChannelSink buffers events in a channel; see NewChannelSink.
type ChannelSink = audit.ChannelSink

// JSONWriterSink writes events as JSON lines; see NewJSONWriterSink.
type JSONWriterSink = audit.JSONWriterSink

// NewChannelSink returns a sink backed by a channel of the given capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing one JSON object per line to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// SlogSink logs events through a structured logger.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink returns a sink logging at info level (warn for failures).
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Emit(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("event_type", event.Type),
		slog.Bool("success", event.Success),
		slog.Time("timestamp", event.Timestamp),
	}
	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.Email != "" {
		attrs = append(attrs, slog.String("email", event.Email))
	}
	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}
	for k, v := range event.Metadata {
		attrs = append(attrs, slog.String(k, v))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(ctx, level, "audit", attrs...)
}

func (s *Store) emitAudit(ctx context.Context, eventType string, success bool, userID, email string, err error, metadata map[string]string) {
	if s.audit == nil {
		return
	}
	event := AuditEvent{
		Type:     eventType,
		UserID:   userID,
		Email:    email,
		Success:  success,
		Metadata: metadata,
	}
	if err != nil {
		event.Error = err.Error()
	}
	s.audit.Emit(ctx, event)
}
