// SPDX-License-Identifier: GPL-3.0-or-later

// Package localtransport declares the interfaces the bridging engine
// consumes from the local, zero-copy, shared-memory publish/subscribe
// transport. The transport itself - service naming,
// publisher/subscriber construction, sample allocation - is out of scope;
// this package defines only its shape, modeled after the real iceoryx2 Go
// binding's PortFactoryPubSub / PublisherBuilder / SubscriberBuilder API
// (service name, history size, subscriber_max_buffer_size).
package localtransport

import (
	"context"
	"time"

	"github.com/ivykit/someip-gateway/internal/e2e"
	"github.com/ivykit/someip-gateway/internal/gwerrors"
	"github.com/ivykit/someip-gateway/internal/mapping"
	"github.com/ivykit/someip-gateway/internal/wire"
)

// InstanceSpecifier is the opaque textual identifier for a local service
// instance, e.g. "RainSensor".
type InstanceSpecifier string

// Producer is a local service instance not yet discoverable by consumers.
type Producer interface {
	// Offer makes the producer discoverable. offer()/unoffer() are
	// considered infallible for the state-machine's purposes;
	// an error here is fatal and terminates the owning ingress bridge.
	Offer(ctx context.Context) (OfferedProducer, error)
}

// OfferedProducer is a local service instance currently offered to
// consumers.
type OfferedProducer interface {
	// Unoffer withdraws the producer from discovery, returning it to the
	// Unoffered state.
	Unoffer(ctx context.Context) (Producer, error)

	// Publisher locates the publisher field for mapping within this
	// record (ingress path only). Implementations
	// panic on an unknown mapping, which can only happen due to a
	// build-time bug (inconsistent code generation), matching
	// [mapping.Registry.CreateE2EInstance]'s panic contract.
	Publisher(m mapping.EventMapping) mapping.BridgeableEvent
}

// Consumer is a bound local consumer record (a compound subscriber
// aggregate). It carries no methods of its own here: the bridge
// package's Bridgeable interface, implemented by concrete per-interface
// consumer records, is what the egress engine actually drives.
type Consumer interface{}

// InstanceHandle identifies one discovered instance of a local service
//.
type InstanceHandle interface {
	InstanceID() uint16
	Build() (Consumer, error)
}

// ServiceFinder enumerates currently-available instances of a local service
// (mirrors runtime.find_service<Interface>(specifier).get_available_instances() in the real binding).
type ServiceFinder interface {
	AvailableInstances(ctx context.Context) ([]InstanceHandle, error)
}

// ProducerBuilder builds an Unoffered [Producer] bound to one interface and
// specifier (mirrors runtime.producer_builder<Interface>(specifier).build() in the real binding).
type ProducerBuilder interface {
	Build() (Producer, error)
}

// Runtime is the local transport's entry point (mirrors RuntimeBuilder.build() in the real binding).
type Runtime interface {
	ProducerBuilder(specifier InstanceSpecifier) ProducerBuilder
	FindService(specifier InstanceSpecifier) ServiceFinder
}

// Sample is a loaned, written sample ready to be sent (mirrors the real
// iceoryx2 Go binding's SampleMut.Send).
type Sample[T any] interface {
	Send() error
}

// UninitSample is a loaned, not-yet-written sample (mirrors SampleMut
// before WritePayloadAs/Write is called).
type UninitSample[T any] interface {
	Write(value T) Sample[T]
}

// Publisher produces samples of T for one event (mirrors
// Publisher.LoanUninit in the iceoryx2 Go binding).
type Publisher[T any] interface {
	LoanUninit() (UninitSample[T], error)
}

// Subscription is a live subscription to samples of T (mirrors the real
// binding's Subscriber.ReceiveWithContext, which polls internally at
// pollInterval until a sample is ready, ctx is done, or the subscription
// fails).
type Subscription[T any] interface {
	ReceiveWithContext(ctx context.Context, pollInterval time.Duration) (T, error)
	Unsubscribe()
}

// Subscriber builds a [Subscription] with the given history depth (mirrors
// SubscriberBuilder.Create/Subscribe).
type Subscriber[T any] interface {
	Subscribe(depth int) (Subscription[T], error)
}

// EventPublisher adapts a typed [Publisher] plus its wire decoder into
// [mapping.BridgeableEvent], the type-erased surface an ingress bridge's
// producer record exposes through Publisher(mapping).
type EventPublisher[T any] struct {
	Publisher Publisher[T]
	FromWire  wire.FromWireFunc[T]
}

var _ mapping.BridgeableEvent = (*EventPublisher[int])(nil)

// BridgeEvent implements [mapping.BridgeableEvent].
func (p *EventPublisher[T]) BridgeEvent(data []byte, profile e2e.Profile) error {
	value, err := p.FromWire(data, profile)
	if err != nil {
		return &gwerrors.CodecError{Op: "FromWire", Err: err}
	}
	uninit, err := p.Publisher.LoanUninit()
	if err != nil {
		return &gwerrors.TransportError{Err: err}
	}
	if err := uninit.Write(value).Send(); err != nil {
		return &gwerrors.TransportError{Err: err}
	}
	return nil
}
