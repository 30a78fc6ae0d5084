// SPDX-License-Identifier: GPL-3.0-or-later

package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeStarter struct {
	started chan struct{}
	err     error
	block   chan struct{}
}

func (s *fakeStarter) Start(ctx context.Context) error {
	close(s.started)
	select {
	case <-s.block:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.err
}

func TestOutgoingRunnerRunAllSucceeds(t *testing.T) {
	a := &fakeStarter{started: make(chan struct{}), block: make(chan struct{})}
	b := &fakeStarter{started: make(chan struct{}), block: make(chan struct{})}
	close(a.block)
	close(b.block)

	runner := NewOutgoingRunner()
	runner.Insert(a)
	runner.Insert(b)

	require.NoError(t, runner.RunAll(context.Background()))
}

func TestOutgoingRunnerRunAllFirstErrorWins(t *testing.T) {
	failing := &fakeStarter{started: make(chan struct{}), block: make(chan struct{}), err: errors.New("boom")}
	close(failing.block)
	hanging := &fakeStarter{started: make(chan struct{}), block: make(chan struct{})}

	runner := NewOutgoingRunner()
	runner.Insert(failing)
	runner.Insert(hanging)

	err := runner.RunAll(context.Background())
	require.EqualError(t, err, "boom")
}
