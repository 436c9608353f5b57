package password

import (
	"errors"
	"strings"
	"testing"
)

// Cheap parameters keep the suite fast; they still pass NewHasher's floors.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Memory = 8 * 1024
	cfg.Time = 1
	cfg.Parallelism = 1
	return cfg
}

func newTestHasher(t *testing.T, cfg Config) *Hasher {
	t.Helper()
	h, err := NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func TestHashAndVerify(t *testing.T) {
	h := newTestHasher(t, testConfig())

	encoded, err := h.Hash("pw123456")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", encoded)
	}

	ok, err := h.Verify("pw123456", encoded)
	if err != nil || !ok {
		t.Fatalf("expected match, ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify("pw1234567", encoded)
	if err != nil || ok {
		t.Fatalf("expected mismatch, ok=%v err=%v", ok, err)
	}
}

func TestHashSaltsDiffer(t *testing.T) {
	h := newTestHasher(t, testConfig())
	a, _ := h.Hash("same-password")
	b, _ := h.Hash("same-password")
	if a == b {
		t.Fatal("expected distinct salts to produce distinct hashes")
	}
}

func TestLengthPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPasswordBytes = 16
	h := newTestHasher(t, cfg)

	if _, err := h.Hash("short"); !errors.Is(err, ErrPolicy) {
		t.Fatalf("expected ErrPolicy for short password, got %v", err)
	}
	if _, err := h.Hash(strings.Repeat("a", 17)); !errors.Is(err, ErrPolicy) {
		t.Fatalf("expected ErrPolicy for long password, got %v", err)
	}
	if _, err := h.Verify(strings.Repeat("a", 17), "$argon2id$v=19$m=8192,t=1,p=1$AAAA$AAAA"); !errors.Is(err, ErrPolicy) {
		t.Fatalf("expected ErrPolicy before parsing, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	h := newTestHasher(t, testConfig())
	good, err := h.Hash("version-test")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	cases := map[string]string{
		"not phc":       "not-a-phc-hash",
		"wrong algo":    strings.Replace(good, "argon2id", "argon2i", 1),
		"wrong version": strings.Replace(good, "$v=19$", "$v=18$", 1),
		"weak memory":   strings.Replace(good, "m=8192", "m=1024", 1),
		"extra param":   strings.Replace(good, "p=1", "p=1,x=2", 1),
	}
	for name, encoded := range cases {
		if _, err := h.Verify("version-test", encoded); !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("%s: expected ErrMalformedHash, got %v", name, err)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := newTestHasher(t, testConfig())
	encoded, err := weak.Hash("upgrade-me")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	stronger := testConfig()
	stronger.Time = 2
	strong := newTestHasher(t, stronger)

	if need, err := strong.NeedsRehash(encoded); err != nil || !need {
		t.Fatalf("expected rehash, need=%v err=%v", need, err)
	}
	if need, err := weak.NeedsRehash(encoded); err != nil || need {
		t.Fatalf("expected no rehash, need=%v err=%v", need, err)
	}
}

func TestNewHasherRejectsWeakConfig(t *testing.T) {
	mutations := map[string]func(*Config){
		"memory":      func(c *Config) { c.Memory = 1024 },
		"time":        func(c *Config) { c.Time = 0 },
		"parallelism": func(c *Config) { c.Parallelism = 0 },
		"salt":        func(c *Config) { c.SaltLength = 8 },
		"key":         func(c *Config) { c.KeyLength = 8 },
		"min length":  func(c *Config) { c.MinPasswordBytes = 0 },
		"max < min":   func(c *Config) { c.MaxPasswordBytes = 4 },
	}
	for name, mutate := range mutations {
		cfg := testConfig()
		mutate(&cfg)
		if _, err := NewHasher(cfg); err == nil {
			t.Fatalf("%s: expected config rejection", name)
		}
	}
}
