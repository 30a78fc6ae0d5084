// SPDX-License-Identifier: GPL-3.0-or-later

package localtransport

import (
	"context"
	"time"
)

// MemSample is a loaned, written sample backed by a plain channel send.
type MemSample[T any] struct {
	ch    chan T
	value T
}

// Send implements [Sample].
func (s *MemSample[T]) Send() error {
	s.ch <- s.value
	return nil
}

// MemUninitSample is a loaned, not-yet-written sample.
type MemUninitSample[T any] struct {
	ch chan T
}

// Write implements [UninitSample].
func (s *MemUninitSample[T]) Write(value T) Sample[T] {
	return &MemSample[T]{ch: s.ch, value: value}
}

// MemChannel is a buffered in-process channel standing in for one
// iceoryx2 publish/subscribe topic: it implements both [Publisher] and
// [Subscriber] over the same buffered channel, since there is no real
// shared-memory segment to separate the two sides of (see DESIGN.md on
// internal/localtransport).
type MemChannel[T any] struct {
	ch chan T
}

// NewMemChannel returns a channel with the given sample buffer depth.
func NewMemChannel[T any](depth int) *MemChannel[T] {
	if depth < 1 {
		depth = 1
	}
	return &MemChannel[T]{ch: make(chan T, depth)}
}

// LoanUninit implements [Publisher].
func (c *MemChannel[T]) LoanUninit() (UninitSample[T], error) {
	return &MemUninitSample[T]{ch: c.ch}, nil
}

// Subscribe implements [Subscriber]. depth is accepted for interface
// compatibility but ignored: the channel's own buffer depth, fixed at
// construction, is the only backlog this reference transport models.
func (c *MemChannel[T]) Subscribe(depth int) (Subscription[T], error) {
	return &memSubscription[T]{ch: c.ch}, nil
}

type memSubscription[T any] struct {
	ch chan T
}

// ReceiveWithContext implements [Subscription].
func (s *memSubscription[T]) ReceiveWithContext(ctx context.Context, pollInterval time.Duration) (T, error) {
	select {
	case v := <-s.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Unsubscribe implements [Subscription]. A MemChannel has no subscriber
// registry to remove an entry from; this is a no-op.
func (s *memSubscription[T]) Unsubscribe() {}
