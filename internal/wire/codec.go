// SPDX-License-Identifier: GPL-3.0-or-later

package wire

import (
	"github.com/ivykit/someip-gateway/internal/e2e"
	"github.com/ivykit/someip-gateway/internal/gwerrors"
)

// FromWireFunc interprets wire bytes as T. profile may be nil
// when T carries no E2E protection.
type FromWireFunc[T any] func(data []byte, profile e2e.Profile) (T, error)

// ToWireFunc appends T to buf. profile may be nil when T carries
// no E2E protection.
type ToWireFunc[T any] func(value T, buf *Buffer, profile e2e.Profile) error

// EnvelopeFromWire builds the blanket FromWire adapter for
// an E2E-protected envelope type: it runs profile.Check first; on
// success it calls inner on the naked data slice and returns
// e2e.FromGateway(Some(inner), raw_e2e, NoError); on CrcError it returns
// e2e.FromGateway(None, raw_e2e, CrcError). SequenceError is surfaced
// identically to CrcError for codec purposes.
func EnvelopeFromWire[T any](inner FromWireFunc[T], profile e2e.Profile) FromWireFunc[e2e.Envelope[T]] {
	return func(data []byte, _ e2e.Profile) (e2e.Envelope[T], error) {
		naked, rawE2E, status := profile.Check(data)
		if status == e2e.StatusNoError {
			v, err := inner(naked, nil)
			if err != nil {
				return e2e.Envelope[T]{}, &gwerrors.CodecError{Op: "FromWire", Err: err}
			}
			return e2e.FromGateway(&v, rawE2E, e2e.StatusNoError), nil
		}
		return e2e.FromGateway[T](nil, rawE2E, status), nil
	}
}

// EnvelopeToWire builds the blanket ToWire adapter for
// an E2E-protected envelope type, implementing the six-step placement
// protocol: reserve a prefix when Offset()==0, serialize the inner value,
// compute the integrity value over the data just written, make room when
// Offset()>0, and copy the integrity bytes into place.
func EnvelopeToWire[T any](inner ToWireFunc[T], profile e2e.Profile) ToWireFunc[e2e.Envelope[T]] {
	return func(env e2e.Envelope[T], buf *Buffer, _ e2e.Profile) error {
		offset := profile.Offset()
		size := profile.Size()

		dataStart := buf.Filled()
		if offset == 0 && size > 0 {
			buf.Reserve(int(size))
			dataStart = buf.Filled()
		}

		// Locally-produced envelopes always short-circuit to success.
		v, err := env.CheckedWith(func(uint32) bool { return true })
		if err != nil {
			return &gwerrors.CodecError{Op: "ToWire", Err: err}
		}

		if err := inner(*v, buf, nil); err != nil {
			return &gwerrors.CodecError{Op: "ToWire", Err: err}
		}

		data := buf.Since(dataStart)
		rawE2E, ok := profile.Compute(data)
		if !ok {
			return nil
		}

		if offset > 0 {
			buf.ShiftRight(int(offset), int(size))
		}
		buf.WriteAt(offset, size, rawE2E)
		return nil
	}
}
