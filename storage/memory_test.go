package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty backend, got %v", err)
	}

	payload := []byte("record")
	if err := m.Save(ctx, payload); err != nil {
		t.Fatalf("save: %v", err)
	}
	payload[0] = 'X'

	got, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != "record" {
		t.Fatalf("stored bytes aliased caller buffer: %q", got)
	}

	if err := m.Remove(ctx); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if err := m.Remove(ctx); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if m.Has() {
		t.Fatal("record still present after remove")
	}

	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := m.Save(ctx, payload); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestMemoryInjectedFailure(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("disk full")
	m.SetFail(boom)

	if err := m.Save(ctx, []byte("x")); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if m.Has() {
		t.Fatal("failed save must not store data")
	}

	m.SetFail(nil)
	if err := m.Save(ctx, []byte("x")); err != nil {
		t.Fatalf("save after reset: %v", err)
	}
	if !m.Has() {
		t.Fatal("expected stored record after reset")
	}
}
