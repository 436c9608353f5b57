package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	signedIssuer   = "dojoauth"
	minSigningKey  = 32
	maxSignedAge   = 365 * 24 * time.Hour
	signedAlgoName = "HS256"
)

// SignedCodec stores sessions as HS256 tokens. It does not hide the record's
// contents; it only makes edits to it detectable.
type SignedCodec struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

type sessionClaims struct {
	Session Session `json:"ses"`
	jwt.RegisteredClaims
}

// NewSignedCodec returns a codec signing records with key. When maxAge is
// positive, records older than maxAge decode as corrupt.
func NewSignedCodec(key []byte, maxAge time.Duration) (*SignedCodec, error) {
	if len(key) < minSigningKey {
		return nil, fmt.Errorf("signing key must be at least %d bytes", minSigningKey)
	}
	if maxAge < 0 || maxAge > maxSignedAge {
		return nil, errors.New("invalid signed record max age")
	}

	k := make([]byte, len(key))
	copy(k, key)
	return &SignedCodec{key: k, maxAge: maxAge, now: time.Now}, nil
}

// Encode validates s and signs it.
func (c *SignedCodec) Encode(s *Session) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	now := c.now()
	claims := sessionClaims{
		Session: *s,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   signedIssuer,
			Subject:  s.UserID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if c.maxAge > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.maxAge))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.key)
	if err != nil {
		return nil, err
	}
	return []byte(signed), nil
}

// Decode verifies the signature, issuer and expiry before validating the
// embedded session.
func (c *SignedCodec) Decode(data []byte) (*Session, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty record", ErrCorrupt)
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(
		string(data),
		claims,
		func(*jwt.Token) (interface{}, error) { return c.key, nil },
		jwt.WithValidMethods([]string{signedAlgoName}),
		jwt.WithIssuer(signedIssuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if claims.Subject != claims.Session.UserID {
		return nil, fmt.Errorf("%w: subject mismatch", ErrCorrupt)
	}

	s := claims.Session
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &s, nil
}
