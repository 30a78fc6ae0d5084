// SPDX-License-Identifier: GPL-3.0-or-later

package bridge

import "github.com/ivykit/someip-gateway/internal/localtransport"

// producerState holds the exclusive Unoffered/Offered lifecycle of a local
// producer. Exactly one field is non-nil,
// except for the instant between a state transition's two halves, during
// which both are nil (the transient "None" state the original bridges.rs
// builds with core::mem::replace to satisfy the borrow checker; here it
// exists only so a transition's failure path can't observe a half-updated
// bridge).
type producerState struct {
	unoffered localtransport.Producer
	offered   localtransport.OfferedProducer
}

func unofferedState(p localtransport.Producer) producerState {
	return producerState{unoffered: p}
}

func (s producerState) String() string {
	switch {
	case s.unoffered != nil:
		return "Unoffered"
	case s.offered != nil:
		return "Offered"
	default:
		return "None"
	}
}
