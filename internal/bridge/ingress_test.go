// SPDX-License-Identifier: GPL-3.0-or-later

package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/ivykit/someip-gateway/internal/e2e"
	"github.com/ivykit/someip-gateway/internal/mapping"
	"github.com/ivykit/someip-gateway/internal/someiptunnel"
	"github.com/stretchr/testify/require"
)

type fakeBridgeableEvent struct {
	received [][]byte
	err      error
}

func (f *fakeBridgeableEvent) BridgeEvent(data []byte, _ e2e.Profile) error {
	if f.err != nil {
		return f.err
	}
	f.received = append(f.received, data)
	return nil
}

func TestIngressBridgeReceiveEventWhileUnofferedDrops(t *testing.T) {
	registry := mapping.NewRegistry()
	registry.Register("rain_sensor", func() e2e.Profile { return e2e.ShowcaseProfile{} })

	producer := newFakeProducer()
	b := NewIngressBridge(
		ServiceDescription{ServiceID: 0x1001, InstanceID: 1},
		[]NamedEvent{{Desc: someiptunnel.EventDesc{EventID: 0x8004}, Name: "rain_sensor"}},
		registry, producer, nil, nil, nil,
	)

	b.ReceiveEvent(context.Background(), 0x8004, []byte{1, 2})
	// No publisher was ever reached because the producer stays Unoffered;
	// nothing to assert beyond "it did not panic".
}

func TestIngressBridgeOfferThenReceiveEventDispatches(t *testing.T) {
	registry := mapping.NewRegistry()
	m := registry.Register("rain_sensor", func() e2e.Profile { return e2e.ShowcaseProfile{} })

	event := &fakeBridgeableEvent{}
	producer := newFakeProducer()
	producer.offered.publishers = map[mapping.EventMapping]mapping.BridgeableEvent{m: event}

	b := NewIngressBridge(
		ServiceDescription{ServiceID: 0x1001, InstanceID: 1},
		[]NamedEvent{{Desc: someiptunnel.EventDesc{EventID: 0x8004}, Name: "rain_sensor"}},
		registry, producer, nil, nil, nil,
	)

	require.NoError(t, b.ServiceStateChanged(context.Background(), true))
	b.ReceiveEvent(context.Background(), 0x8004, []byte{1, 2})
	require.Equal(t, [][]byte{{1, 2}}, event.received)
}

func TestIngressBridgeReceiveEventUnknownIDDrops(t *testing.T) {
	registry := mapping.NewRegistry()
	m := registry.Register("rain_sensor", func() e2e.Profile { return e2e.ShowcaseProfile{} })

	event := &fakeBridgeableEvent{}
	producer := newFakeProducer()
	producer.offered.publishers = map[mapping.EventMapping]mapping.BridgeableEvent{m: event}

	b := NewIngressBridge(
		ServiceDescription{ServiceID: 0x1001, InstanceID: 1},
		[]NamedEvent{{Desc: someiptunnel.EventDesc{EventID: 0x8004}, Name: "rain_sensor"}},
		registry, producer, nil, nil, nil,
	)
	require.NoError(t, b.ServiceStateChanged(context.Background(), true))

	b.ReceiveEvent(context.Background(), 0x9999, []byte{1})
	require.Empty(t, event.received)
}

func TestIngressBridgeServiceStateChangedOutOfOrderIgnored(t *testing.T) {
	registry := mapping.NewRegistry()
	producer := newFakeProducer()
	b := NewIngressBridge(
		ServiceDescription{ServiceID: 0x1001, InstanceID: 1}, nil, registry, producer, nil, nil, nil,
	)

	// Already unoffered; another "unavailable" notification is out of order.
	require.NoError(t, b.ServiceStateChanged(context.Background(), false))
}

func TestIngressBridgeServiceStateChangedOfferFailurePropagates(t *testing.T) {
	registry := mapping.NewRegistry()
	producer := newFakeProducer()
	producer.offerErr = errors.New("local offer failed")

	b := NewIngressBridge(
		ServiceDescription{ServiceID: 0x1001, InstanceID: 1}, nil, registry, producer, nil, nil, nil,
	)

	err := b.ServiceStateChanged(context.Background(), true)
	require.Error(t, err)
}

func TestNewIngressBridgePanicsOnUnknownEventName(t *testing.T) {
	registry := mapping.NewRegistry()
	producer := newFakeProducer()

	require.Panics(t, func() {
		NewIngressBridge(
			ServiceDescription{ServiceID: 0x1001, InstanceID: 1},
			[]NamedEvent{{Desc: someiptunnel.EventDesc{EventID: 1}, Name: "nonexistent"}},
			registry, producer, nil, nil, nil,
		)
	})
}
