// SPDX-License-Identifier: GPL-3.0-or-later

package someiptunnel

import (
	"context"
	"time"

	"github.com/ivykit/someip-gateway/internal/wire"
)

// HandshakeBackoff is the default interval between retries of a failed
// liveness handshake.
const HandshakeBackoff = 20 * time.Millisecond

// FindServiceThrottle is the minimum spacing between consecutive
// FindService frames sent for different service clients, to avoid
// overwhelming the tunnel, which has trouble keeping up when frames arrive
// too fast.
const FindServiceThrottle = 500 * time.Millisecond

// Tunnel is the transport this package's protocol logic is built on: one
// fixed-layout frame channel in each direction between the gateway and the
// remote SOME/IP stack.
type Tunnel interface {
	// Handshake performs the startup liveness handshake and returns nil once
	// both sides of the tunnel have announced liveness. It is called before
	// any Send or Receive. It makes one attempt; a caller that gets an error
	// calls it again (the orchestrator does so at its configured handshake
	// backoff, [HandshakeBackoff] by default).
	Handshake(ctx context.Context) error

	// Send transmits one frame. payload may be nil for frames that carry no
	// body (OfferService, FindService acks).
	Send(ctx context.Context, header Header, payload *wire.Buffer) error

	// Receive blocks for the next inbound frame.
	Receive(ctx context.Context) (Header, *wire.Buffer, error)
}

// OfferServiceFrame builds the frame a producer sends when it starts
// offering a service, carrying the set of events it will publish.
func OfferServiceFrame(serviceID, instanceID uint16, events ServiceDesc) Header {
	return Header{
		Typ:             MsgOfferService,
		ServiceID:       serviceID,
		InstanceID:      instanceID,
		ServiceMetadata: events,
		ID:              CorrelationID(serviceID, instanceID),
	}
}

// FindServiceFrame builds the frame a consumer sends to request discovery
// of a remote service, carrying the events it is interested in.
func FindServiceFrame(serviceID, instanceID uint16, interests ServiceDesc) Header {
	return Header{
		Typ:             MsgFindService,
		ServiceID:       serviceID,
		InstanceID:      instanceID,
		ServiceMetadata: interests,
		ID:              CorrelationID(serviceID, instanceID),
	}
}

// EventFrame builds the frame the egress side sends to notify the remote
// SOME/IP stack of a locally-produced sample; method_id carries the event
// id, which IsEventMethod expects to be >= 0x8000.
func EventFrame(serviceID, instanceID, eventID uint16) Header {
	return Header{
		Typ:        MsgEvent,
		ServiceID:  serviceID,
		InstanceID: instanceID,
		MethodID:   eventID,
		IsActive:   true,
		ID:         CorrelationID(serviceID, instanceID),
	}
}

// MessageFrame builds the frame the remote SOME/IP stack sends inbound to
// the gateway carrying one event notification; method_id carries the event
// id, which IsEventMethod expects to be >= 0x8000. This is the only frame
// type the ingress receive loop routes to a bridge's ReceiveEvent.
func MessageFrame(serviceID, instanceID, eventID uint16) Header {
	return Header{
		Typ:        MsgMessage,
		ServiceID:  serviceID,
		InstanceID: instanceID,
		MethodID:   eventID,
		ID:         CorrelationID(serviceID, instanceID),
	}
}
