// SPDX-License-Identifier: GPL-3.0-or-later

package bridge

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Starter is anything with a blocking Start(ctx) lifecycle, satisfied by
// *EgressBridge.
type Starter interface {
	Start(ctx context.Context) error
}

// OutgoingRunner runs every registered egress bridge concurrently and
// surfaces the first failure, cancelling the rest, following the
// first-error-wins pattern.
type OutgoingRunner struct {
	starters []Starter
}

// NewOutgoingRunner returns an empty OutgoingRunner.
func NewOutgoingRunner() *OutgoingRunner {
	return &OutgoingRunner{}
}

// Insert registers a bridge to be started by RunAll.
func (r *OutgoingRunner) Insert(starter Starter) {
	r.starters = append(r.starters, starter)
}

// RunAll starts every registered bridge and blocks until all have returned
// or ctx is cancelled, returning the first non-nil error.
func (r *OutgoingRunner) RunAll(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)
	for _, starter := range r.starters {
		starter := starter
		group.Go(func() error { return starter.Start(gctx) })
	}
	return group.Wait()
}
