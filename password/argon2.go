package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	floorMemoryKB   uint32 = 8 * 1024
	floorSaltLength uint32 = 16
	floorKeyLength  uint32 = 16
	phcAlgorithm           = "argon2id"
)

var (
	// ErrPolicy is returned when a plaintext password is outside the
	// configured length bounds.
	ErrPolicy = errors.New("password outside length policy")
	// ErrMalformedHash is returned when a stored hash is not a PHC argon2id string.
	ErrMalformedHash = errors.New("malformed password hash")
)

// Config tunes the argon2id cost parameters and the accepted plaintext length.
type Config struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	MinPasswordBytes int
	// MaxPasswordBytes caps hashing cost for hostile inputs. Zero means 1024.
	MaxPasswordBytes int
}

// DefaultConfig returns interactive-login parameters: 64 MiB, 3 passes,
// 2 lanes, 8..1024 byte passwords.
func DefaultConfig() Config {
	return Config{
		Memory:           64 * 1024,
		Time:             3,
		Parallelism:      2,
		SaltLength:       16,
		KeyLength:        32,
		MinPasswordBytes: 8,
		MaxPasswordBytes: 1024,
	}
}

// Hasher hashes and verifies passwords. It is immutable after construction
// and safe for concurrent use.
type Hasher struct {
	cfg Config
}

type phc struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	sum         []byte
}

// NewHasher validates cfg and returns a Hasher.
func NewHasher(cfg Config) (*Hasher, error) {
	if cfg.MaxPasswordBytes == 0 {
		cfg.MaxPasswordBytes = 1024
	}
	switch {
	case cfg.Memory < floorMemoryKB:
		return nil, errors.New("password memory must be >= 8192 KiB")
	case cfg.Time < 1:
		return nil, errors.New("password time must be >= 1")
	case cfg.Parallelism < 1:
		return nil, errors.New("password parallelism must be >= 1")
	case cfg.SaltLength < floorSaltLength:
		return nil, errors.New("password salt length must be >= 16")
	case cfg.KeyLength < floorKeyLength:
		return nil, errors.New("password key length must be >= 16")
	case cfg.MinPasswordBytes < 1:
		return nil, errors.New("password minimum length must be >= 1")
	case cfg.MaxPasswordBytes < cfg.MinPasswordBytes:
		return nil, errors.New("password maximum length must be >= minimum length")
	}
	return &Hasher{cfg: cfg}, nil
}

// Hash returns the PHC encoding of password. Bytes are hashed exactly as
// given; no Unicode normalization is applied.
func (h *Hasher) Hash(password string) (string, error) {
	if err := h.checkLength(password); err != nil {
		return "", err
	}

	salt := make([]byte, h.cfg.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	sum := argon2.IDKey([]byte(password), salt, h.cfg.Time, h.cfg.Memory, h.cfg.Parallelism, h.cfg.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		phcAlgorithm,
		argon2.Version,
		h.cfg.Memory, h.cfg.Time, h.cfg.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify reports whether password matches encoded. Over-long passwords are
// rejected before any hashing work.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	if len(password) > h.cfg.MaxPasswordBytes {
		return false, ErrPolicy
	}
	p, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}

	sum := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.parallelism, uint32(len(p.sum)))
	return subtle.ConstantTimeCompare(sum, p.sum) == 1, nil
}

// NeedsRehash reports whether encoded was produced with weaker parameters
// than the Hasher's current ones.
func (h *Hasher) NeedsRehash(encoded string) (bool, error) {
	p, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}
	return h.cfg.Memory > p.memory ||
		h.cfg.Time > p.time ||
		h.cfg.Parallelism > p.parallelism ||
		h.cfg.KeyLength != uint32(len(p.sum)), nil
}

func (h *Hasher) checkLength(password string) error {
	if len(password) < h.cfg.MinPasswordBytes || len(password) > h.cfg.MaxPasswordBytes {
		return fmt.Errorf("%w: must be %d..%d bytes", ErrPolicy, h.cfg.MinPasswordBytes, h.cfg.MaxPasswordBytes)
	}
	return nil
}

func parsePHC(encoded string) (*phc, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != phcAlgorithm {
		return nil, ErrMalformedHash
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrMalformedHash, parts[2])
	}

	p := &phc{}
	seen := 0
	for _, kv := range strings.Split(parts[3], ",") {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, ErrMalformedHash
		}
		n, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return nil, ErrMalformedHash
		}
		switch key {
		case "m":
			if uint32(n) < floorMemoryKB {
				return nil, ErrMalformedHash
			}
			p.memory = uint32(n)
		case "t":
			if n < 1 {
				return nil, ErrMalformedHash
			}
			p.time = uint32(n)
		case "p":
			if n < 1 || n > 255 {
				return nil, ErrMalformedHash
			}
			p.parallelism = uint8(n)
		default:
			return nil, ErrMalformedHash
		}
		seen++
	}
	if seen != 3 || p.memory == 0 || p.time == 0 || p.parallelism == 0 {
		return nil, ErrMalformedHash
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(p.salt) < int(floorSaltLength) {
		return nil, ErrMalformedHash
	}
	if p.sum, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(p.sum) == 0 {
		return nil, ErrMalformedHash
	}
	return p, nil
}
