package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher hands events to a Sink on a single background goroutine, so a
// slow sink never runs on the caller's stack.
type Dispatcher struct {
	sink       Sink
	queue      chan Event
	dropOnFull bool

	// mu guards closed and the close of queue; emitters hold it shared.
	mu     sync.RWMutex
	closed bool

	stop     chan struct{}
	finished chan struct{}
	stopOnce sync.Once

	dropped atomic.Uint64
}

// NewDispatcher starts the delivery goroutine. It returns nil when cfg is
// disabled; a nil Dispatcher accepts and discards every call.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	size := cfg.BufferSize
	if size < 1 {
		size = 1
	}

	d := &Dispatcher{
		sink:       sink,
		queue:      make(chan Event, size),
		dropOnFull: cfg.DropIfFull,
		stop:       make(chan struct{}),
		finished:   make(chan struct{}),
	}
	go d.deliver()
	return d
}

// deliver runs until queue is closed, which only Close does.
func (d *Dispatcher) deliver() {
	defer close(d.finished)
	ctx := context.Background()
	for ev := range d.queue {
		d.sink.Emit(ctx, ev)
	}
}

// Emit queues event, stamping it when Timestamp is zero. With DropIfFull a
// full buffer counts a drop instead of blocking; otherwise Emit waits for
// room, ctx, or Close.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if d.dropOnFull {
		select {
		case d.queue <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.stop:
	}
}

// Close rejects further events and returns once everything already queued
// has reached the sink.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		// Release emitters parked on a full queue before taking the lock.
		close(d.stop)

		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	<-d.finished
}

// Dropped reports how many events were discarded on a full buffer.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
