// SPDX-License-Identifier: GPL-3.0-or-later

// Package someiptunnel implements the fixed-layout tunnel protocol the
// gateway speaks to the remote SOME/IP stack over a local zero-copy
// publish/subscribe pair: message framing, the [Tunnel] interface with its
// startup liveness handshake call, and the timing constants for the
// handshake retry and the find-service throttle. The retry and the throttle
// themselves are applied by the orchestrator; [MemTunnel], the only Tunnel
// implementation here, performs no handshake.
package someiptunnel

// MsgType is the tunnel frame's message discriminant.
type MsgType uint8

const (
	MsgOfferService MsgType = iota
	MsgFindService
	MsgOfferServiceAck
	MsgFindServiceAck
	MsgMessage
	MsgEvent
)

func (t MsgType) String() string {
	switch t {
	case MsgOfferService:
		return "OfferService"
	case MsgFindService:
		return "FindService"
	case MsgOfferServiceAck:
		return "OfferServiceAck"
	case MsgFindServiceAck:
		return "FindServiceAck"
	case MsgMessage:
		return "Message"
	case MsgEvent:
		return "Event"
	default:
		return "Unknown"
	}
}

// EventType distinguishes a SOME/IP field (has a getter/setter and an
// initial value) from a plain event.
type EventType uint8

const (
	EventTypeField EventType = iota
	EventTypeEvent
)

// MaxServiceDescEvents bounds the fixed-size event table embedded in a
// FindService/OfferService frame's metadata.
const MaxServiceDescEvents = 10

// EventDesc describes one event within a service's offer/find metadata.
type EventDesc struct {
	EventID     uint16
	EventGroups [4]uint16
	Len         uint8
	Typ         EventType
}

// ServiceDesc is the fixed-capacity event table carried by OfferService and
// FindService frames.
type ServiceDesc struct {
	Events [MaxServiceDescEvents]EventDesc
	Len    uint8
}

// Append adds an event to the table. It panics if the table is already at
// MaxServiceDescEvents: a service description generated with more events
// than the tunnel protocol supports is a build-time bug, not a runtime
// condition callers can recover from.
func (d *ServiceDesc) Append(desc EventDesc) {
	if int(d.Len) >= MaxServiceDescEvents {
		panic("someiptunnel: service description exceeds MaxServiceDescEvents")
	}
	d.Events[d.Len] = desc
	d.Len++
}

// Entries returns the populated prefix of Events.
func (d *ServiceDesc) Entries() []EventDesc { return d.Events[:d.Len] }

// Header is the fixed-layout tunnel frame header. Some fields are meaningful only for a subset of Typ
// values, matching the original protocol's "fields optional based on type"
// shortcut.
type Header struct {
	Typ MsgType

	ServiceID  uint16
	InstanceID uint16
	MethodID   uint16

	// ServiceMetadata carries the offered/interested event table; only
	// populated for MsgOfferService and MsgFindService frames.
	ServiceMetadata ServiceDesc

	// IsActive is the FindServiceAck payload: whether the remote instance
	// is currently available.
	IsActive bool

	// ID correlates a request with its acknowledgement; it is rewritten on
	// every response.
	ID uint64
}

// CorrelationID packs a (service, instance) pair into the Header.ID shape
// used by OfferService/FindService frames.
func CorrelationID(serviceID, instanceID uint16) uint64 {
	return uint64(serviceID)<<16 | uint64(instanceID)
}

// IsEventMethod reports whether methodID identifies an event notification
// rather than a reserved RPC method, per the tunnel's method_id split at
// 0x8000.
func IsEventMethod(methodID uint16) bool {
	return methodID >= 0x8000
}
