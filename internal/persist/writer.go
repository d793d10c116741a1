package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"budgetbook/internal/kv"
	applog "budgetbook/internal/log"
)

// ErrWriterClosed is returned by Flush once the writer has been closed.
var ErrWriterClosed = errors.New("persist: writer closed")

// Writer serializes writes to a kv.Store on a single goroutine. Each key has
// one pending slot: scheduling a key that is still waiting replaces its
// payload, so the last scheduled value is the one that ends up durable.
type Writer struct {
	store   kv.Store
	logger  *applog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[string][]byte
	order   []string
	closed  bool

	wake    chan struct{}
	flushCh chan chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWriter starts the writer goroutine. A zero timeout means writes run
// without a deadline.
func NewWriter(store kv.Store, logger *applog.Logger, timeout time.Duration) *Writer {
	if logger == nil {
		logger = applog.Discard()
	}
	w := &Writer{
		store:   store,
		logger:  logger.WithComponent(applog.ComponentPersistence),
		timeout: timeout,
		pending: make(map[string][]byte),
		wake:    make(chan struct{}, 1),
		flushCh: make(chan chan struct{}),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Schedule queues value for key and returns immediately.
func (w *Writer) Schedule(key string, value []byte) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn("Write scheduled after close, dropping", applog.FieldKey, key)
		return
	}
	if _, queued := w.pending[key]; !queued {
		w.order = append(w.order, key)
	}
	w.pending[key] = value
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of keys waiting to be written.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Flush blocks until everything scheduled before the call has been written
// (or has failed and been logged).
func (w *Writer) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case w.flushCh <- ack:
	case <-w.doneCh:
		return ErrWriterClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending writes and stops the goroutine.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		return nil
	case <-ctx.Done():
		w.logger.Warn("Writer close timed out", applog.FieldCount, w.Pending())
		return ctx.Err()
	}
}

func (w *Writer) run() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.wake:
			w.drain()
		case ack := <-w.flushCh:
			w.drain()
			close(ack)
		case <-w.stopCh:
			w.drain()
			return
		}
	}
}

// drain writes pending payloads in the order their keys were first queued
// until no payload is left. Values scheduled while a write is in flight are
// picked up by the next iteration.
func (w *Writer) drain() {
	for {
		w.mu.Lock()
		if len(w.order) == 0 {
			w.mu.Unlock()
			return
		}
		key := w.order[0]
		w.order = w.order[1:]
		value := w.pending[key]
		delete(w.pending, key)
		w.mu.Unlock()

		w.write(key, value)
	}
}

func (w *Writer) write(key string, value []byte) {
	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := w.store.Set(ctx, key, value); err != nil {
		fields := applog.NewFields().
			WithKey(key).
			WithOperation(applog.OpSave).
			WithErrorType(applog.ErrorTypeWriteFailure).
			WithError(err)
		w.logger.Error("Persisting state failed, keeping in-memory state", fields.ToSlice()...)
		return
	}

	w.logger.Debug("State persisted",
		applog.FieldKey, key,
		applog.FieldBytes, len(value),
		applog.FieldDurationMs, time.Since(start).Milliseconds())
}
