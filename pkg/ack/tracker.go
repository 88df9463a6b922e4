package ack

import (
	"context"
	"sync"
	"time"
)

// Params configures retry/timeout behavior (Spec Section 5 defaults).
type Params struct {
	// Timeout bounds how long a single attempt waits for an ACK/NACK.
	Timeout time.Duration
	// MaxAttempts is the total number of send attempts (the first send
	// plus up to MaxAttempts-1 retries) before surfacing ErrTimeout.
	MaxAttempts int
	// RetryDelay is the fixed delay between attempts.
	RetryDelay time.Duration
}

// DefaultParams returns the Spec Section 5 defaults: 5s ACK wait, 3
// attempts, 500ms retry delay.
func DefaultParams() Params {
	return Params{
		Timeout:     5 * time.Second,
		MaxAttempts: 3,
		RetryDelay:  500 * time.Millisecond,
	}
}

type waiter struct {
	result  chan bool
	aborted chan struct{}
}

// Tracker correlates outbound message counters with inbound ACK/NACK,
// retrying sends on timeout or NACK up to Params.MaxAttempts (Spec
// Section 4.6).
type Tracker struct {
	params Params

	mu        sync.Mutex
	waiters   map[int]*waiter
	connected bool
	closed    bool
}

// New creates a Tracker with the given parameters.
func New(params Params) *Tracker {
	return &Tracker{
		params:  params,
		waiters: make(map[int]*waiter),
	}
}

// SetConnected toggles the connectivity flag gating SendWithRetry. When
// set to false, all pending waiters are resolved as failed (Spec Section
// 5, TransportClosed propagation).
func (t *Tracker) SetConnected(connected bool) {
	t.mu.Lock()
	t.connected = connected
	var pending []*waiter
	if !connected {
		for mc, w := range t.waiters {
			pending = append(pending, w)
			delete(t.waiters, mc)
		}
	}
	t.mu.Unlock()

	for _, w := range pending {
		close(w.aborted)
	}
}

// Clear aborts every pending waiter as failed and marks the tracker
// closed; subsequent SendWithRetry calls fail with ErrClosed. Used by
// Cleanup (Spec Section 5, cancellation).
func (t *Tracker) Clear() {
	t.mu.Lock()
	t.closed = true
	var pending []*waiter
	for mc, w := range t.waiters {
		pending = append(pending, w)
		delete(t.waiters, mc)
	}
	t.mu.Unlock()

	for _, w := range pending {
		close(w.aborted)
	}
}

// Resolve is called by the router when an ACK (success=true) or NACK
// (success=false) arrives referencing mc.
func (t *Tracker) Resolve(mc int, success bool) {
	t.mu.Lock()
	w, ok := t.waiters[mc]
	if ok {
		delete(t.waiters, mc)
	}
	t.mu.Unlock()

	if ok {
		nonBlockingSend(w.result, success)
	}
}

func nonBlockingSend(ch chan bool, v bool) {
	select {
	case ch <- v:
	default:
	}
}

// SendWithRetry sends a message via send, then — if hasMc is true — waits
// for a matching ACK, retrying on timeout or NACK up to Params.MaxAttempts
// (Spec Section 4.6). If hasMc is false the call succeeds as soon as send
// returns without error.
func (t *Tracker) SendWithRetry(ctx context.Context, mc int, hasMc bool, send func() error) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if !t.connected {
		t.mu.Unlock()
		return ErrNotConnected
	}
	t.mu.Unlock()

	if err := send(); err != nil {
		return err
	}
	if !hasMc {
		return nil
	}

	maxAttempts := t.params.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		w := &waiter{result: make(chan bool, 1), aborted: make(chan struct{})}
		t.mu.Lock()
		t.waiters[mc] = w
		t.mu.Unlock()

		var acked, nacked bool
		select {
		case acked = <-w.result:
			nacked = !acked
		case <-w.aborted:
			return ErrNotConnected
		case <-time.After(t.params.Timeout):
		case <-ctx.Done():
			t.mu.Lock()
			delete(t.waiters, mc)
			t.mu.Unlock()
			return ctx.Err()
		}

		t.mu.Lock()
		delete(t.waiters, mc)
		t.mu.Unlock()

		if acked {
			return nil
		}

		if attempt >= maxAttempts {
			if nacked {
				return ErrNacked
			}
			return ErrTimeout
		}

		select {
		case <-time.After(t.params.RetryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}

		if err := send(); err != nil {
			return err
		}
	}
}

// Count returns the number of pending waiters, for tests/diagnostics.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.waiters)
}
