// SPDX-License-Identifier: GPL-3.0-or-later

package e2e

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvelopeFromLocalShortCircuits(t *testing.T) {
	env := FromLocal(42)
	v, err := env.CheckedWith(func(uint32) bool {
		t.Fatal("checker should not be consulted for a locally-produced envelope")
		return false
	})
	require.NoError(t, err)
	require.Equal(t, 42, *v)
}

func TestEnvelopeCheckedWithNoErrorConsultsChecker(t *testing.T) {
	env := FromGateway(ptr(7), 99, StatusNoError)

	v, err := env.CheckedWith(func(raw uint32) bool { return raw == 99 })
	require.NoError(t, err)
	require.Equal(t, 7, *v)

	_, err = env.CheckedWith(func(raw uint32) bool { return raw != 99 })
	require.ErrorIs(t, err, ErrLocalCheckFailed)
}

func TestEnvelopeCrcError(t *testing.T) {
	env := FromGateway[int](nil, 1, StatusCrcError)
	_, err := env.CheckedWith(func(uint32) bool { return true })
	require.ErrorIs(t, err, ErrCrcError)
}

func TestEnvelopeSequenceError(t *testing.T) {
	env := FromGateway(ptr(5), 3, StatusSequenceError)
	_, err := env.CheckedWith(func(uint32) bool { return true })

	var seqErr *SequenceError[int]
	require.ErrorAs(t, err, &seqErr)
	require.Equal(t, uint32(3), seqErr.RawE2E)
	require.True(t, IsSequenceError(err))
}

func TestIsSequenceErrorFalseForOtherErrors(t *testing.T) {
	require.False(t, IsSequenceError(ErrCrcError))
}

func ptr[T any](v T) *T { return &v }
