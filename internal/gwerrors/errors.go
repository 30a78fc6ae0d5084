// SPDX-License-Identifier: GPL-3.0-or-later

// Package gwerrors defines the gateway's error taxonomy.
//
// Every error the bridging engine can produce is one of the types below.
// They exist so that telemetry.ErrClassifier implementations and callers can use
// errors.As instead of string matching, and so that the propagation policy
// ("everything transient is absorbed at the nearest bridge and logged; only
// a fatal transport or offer failure propagates upward") can be expressed
// as a simple type switch.
package gwerrors

import "fmt"

// WireError means a tunnel frame was malformed or carried an unknown opcode.
// Always logged and dropped; never propagates.
type WireError struct {
	Reason string
}

func (e *WireError) Error() string { return fmt.Sprintf("wire: %s", e.Reason) }

// RoutingError means no bridge is registered for a (service_id, instance_id)
// pair, or an event_id has no mapping. Always logged and dropped.
type RoutingError struct {
	ServiceID  uint16
	InstanceID uint16
	EventID    uint16
	Reason     string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("routing: service=%#04x instance=%#04x event=%#04x: %s",
		e.ServiceID, e.InstanceID, e.EventID, e.Reason)
}

// CodecError wraps a FromWire/ToWire failure. Ingress: log, drop the frame.
// Egress: log, skip the sample, continue the pump.
type CodecError struct {
	Op  string // "FromWire" or "ToWire"
	Err error
}

func (e *CodecError) Error() string { return fmt.Sprintf("codec %s: %v", e.Op, e.Err) }
func (e *CodecError) Unwrap() error { return e.Err }

// TransportError wraps a local pub/sub send or receive failure. Ingress
// publish failures are logged and the frame is dropped. Egress receive
// failures other than timeout are fatal to the owning pump.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// OfferTransitionError wraps an offer()/unoffer() failure. Fatal: it
// terminates the owning ingress bridge.
type OfferTransitionError struct {
	Err error
}

func (e *OfferTransitionError) Error() string { return fmt.Sprintf("offer transition: %v", e.Err) }
func (e *OfferTransitionError) Unwrap() error { return e.Err }
