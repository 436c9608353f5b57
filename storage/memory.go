package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Backend. It does not survive a restart and is meant
// for tests and ephemeral sessions.
type Memory struct {
	mu     sync.Mutex
	data   []byte
	set    bool
	closed bool
	fail   error
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(); err != nil {
		return nil, err
	}
	if !m.set {
		return nil, ErrNotFound
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

func (m *Memory) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(); err != nil {
		return err
	}
	m.data = append(m.data[:0], data...)
	m.set = true
	return nil
}

func (m *Memory) Remove(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(); err != nil {
		return err
	}
	m.data = nil
	m.set = false
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Has reports whether a record is currently stored.
func (m *Memory) Has() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set
}

// SetFail makes every later operation return err until it is reset with nil.
func (m *Memory) SetFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func (m *Memory) check() error {
	if m.closed {
		return ErrClosed
	}
	return m.fail
}
