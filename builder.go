package dojoauth

import (
	"errors"
	"log/slog"

	"github.com/MrEthical07/dojoauth/authclient"
	"github.com/MrEthical07/dojoauth/internal/audit"
	"github.com/MrEthical07/dojoauth/session"
	"github.com/MrEthical07/dojoauth/storage"
)

// Builder assembles a Store. A Builder can be used once.
type Builder struct {
	config    Config
	backend   storage.Backend
	codec     session.Codec
	auth      authclient.Client
	auditSink AuditSink
	logger    *slog.Logger

	built bool
}

// New returns a Builder starting from DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithBackend sets the durable storage for the session record. Required.
func (b *Builder) WithBackend(backend storage.Backend) *Builder {
	b.backend = backend
	return b
}

// WithCodec overrides the record codec derived from Config.Session.
func (b *Builder) WithCodec(codec session.Codec) *Builder {
	b.codec = codec
	return b
}

// WithAuthClient sets the account backend. Required.
func (b *Builder) WithAuthClient(client authclient.Client) *Builder {
	b.auth = client
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. The default discards everything.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and returns a Store awaiting Initialize.
func (b *Builder) Build() (*Store, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.backend == nil {
		return nil, errors.New("storage backend required")
	}
	if b.auth == nil {
		return nil, errors.New("auth client required")
	}

	codec := b.codec
	if codec == nil {
		var err error
		codec, err = codecFor(cfg.Session)
		if err != nil {
			return nil, err
		}
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	b.built = true
	return &Store{
		cfg:     cfg,
		backend: b.backend,
		codec:   codec,
		auth:    b.auth,
		logger:  logger,
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		state:   session.State{Loading: true},
		subs:    make(map[uint64]func(session.State)),
	}, nil
}

func codecFor(cfg SessionConfig) (session.Codec, error) {
	if cfg.Encoding == "signed" {
		return session.NewSignedCodec([]byte(cfg.SigningKey), cfg.MaxAge)
	}
	return session.JSONCodec{}, nil
}
