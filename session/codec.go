package session

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// ErrCorrupt is returned by codecs when a stored record cannot be turned back
// into a valid [Session].
var ErrCorrupt = errors.New("session record corrupt")

const recordVersionCurrent = 1

// Codec converts a Session to and from its durable-storage representation.
// Decode must either return a session that passes [Session.Validate] or an
// error wrapping [ErrCorrupt].
type Codec interface {
	Encode(s *Session) ([]byte, error)
	Decode(data []byte) (*Session, error)
}

type record struct {
	Version int      `json:"v"`
	Session *Session `json:"session"`
}

var strictJSON = sonic.Config{
	DisallowUnknownFields: true,
	EscapeHTML:            true,
	SortMapKeys:           true,
	ValidateString:        true,
}.Froze()

// JSONCodec stores sessions as a versioned JSON envelope.
type JSONCodec struct{}

// Encode validates s and serializes it.
func (JSONCodec) Encode(s *Session) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return strictJSON.Marshal(record{Version: recordVersionCurrent, Session: s})
}

// Decode parses data, rejecting unknown fields and record versions, and
// validates the resulting session.
func (JSONCodec) Decode(data []byte) (*Session, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty record", ErrCorrupt)
	}

	var rec record
	if err := strictJSON.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if rec.Version != recordVersionCurrent {
		return nil, fmt.Errorf("%w: unsupported record version %d", ErrCorrupt, rec.Version)
	}
	if err := rec.Session.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return rec.Session, nil
}
