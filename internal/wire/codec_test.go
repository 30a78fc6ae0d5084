// SPDX-License-Identifier: GPL-3.0-or-later

package wire

import (
	"errors"
	"testing"

	"github.com/ivykit/someip-gateway/internal/e2e"
	"github.com/stretchr/testify/require"
)

func byteFromWire(data []byte, _ e2e.Profile) (uint8, error) {
	if len(data) == 0 {
		return 0, errors.New("empty payload")
	}
	return data[0], nil
}

func byteToWire(value uint8, buf *Buffer, _ e2e.Profile) error {
	buf.Free()[0] = value
	buf.Advance(1)
	return nil
}

func TestEnvelopeToWirePrefixPlacement(t *testing.T) {
	toWire := EnvelopeToWire[uint8](byteToWire, e2e.ShowcaseProfile{})
	buf := NewBuffer(MinCapacity)

	env := e2e.FromLocal(uint8(12))
	require.NoError(t, toWire(env, buf, nil))
	require.Equal(t, []byte{12, 12}, buf.Bytes())
}

func TestEnvelopeFromWireRoundTrip(t *testing.T) {
	fromWire := EnvelopeFromWire[uint8](byteFromWire, e2e.ShowcaseProfile{})

	env, err := fromWire([]byte{12, 12}, nil)
	require.NoError(t, err)
	v, err := env.CheckedWith(func(uint32) bool { return true })
	require.NoError(t, err)
	require.Equal(t, uint8(12), *v)
}

func TestEnvelopeFromWireCrcMismatch(t *testing.T) {
	fromWire := EnvelopeFromWire[uint8](byteFromWire, e2e.ShowcaseProfile{})

	env, err := fromWire([]byte{1, 12}, nil)
	require.NoError(t, err)
	require.Equal(t, e2e.StatusCrcError, env.Status())

	_, err = env.CheckedWith(func(uint32) bool { return true })
	require.ErrorIs(t, err, e2e.ErrCrcError)
}

// trailerProfile places its one-byte integrity value right after two fixed
// data bytes instead of in a leading prefix, exercising EnvelopeToWire's
// offset>0 shift-and-place branch.
type trailerProfile struct{}

var _ e2e.Profile = trailerProfile{}

func (trailerProfile) ProfileID() uint8 { return 0xFE }
func (trailerProfile) Offset() uint32   { return 2 }
func (trailerProfile) Size() uint8      { return 1 }

func (trailerProfile) Check(payload []byte) ([]byte, uint32, e2e.Status) {
	if len(payload) < 3 {
		return nil, 0, e2e.StatusCrcError
	}
	sum := uint32(payload[0]) + uint32(payload[1])
	if uint32(payload[2]) != sum%256 {
		return nil, uint32(payload[2]), e2e.StatusCrcError
	}
	return payload[0:2], uint32(payload[2]), e2e.StatusNoError
}

func (trailerProfile) Compute(data []byte) (uint32, bool) {
	if len(data) < 2 {
		return 0, false
	}
	return (uint32(data[0]) + uint32(data[1])) % 256, true
}

func twoBytesToWire(value [2]byte, buf *Buffer, _ e2e.Profile) error {
	copy(buf.Free(), value[:])
	buf.Advance(2)
	return nil
}

func TestEnvelopeToWireTrailerPlacement(t *testing.T) {
	toWire := EnvelopeToWire[[2]byte](twoBytesToWire, trailerProfile{})
	buf := NewBuffer(MinCapacity)

	env := e2e.FromLocal([2]byte{10, 20})
	require.NoError(t, toWire(env, buf, nil))
	require.Equal(t, []byte{10, 20, 30}, buf.Bytes())
}
