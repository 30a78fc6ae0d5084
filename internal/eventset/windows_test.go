// SPDX-License-Identifier: GPL-3.0-or-later

package eventset

import (
	"context"
	"testing"

	"github.com/ivykit/someip-gateway/internal/localtransport"
	"github.com/ivykit/someip-gateway/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestWindowsPositionFromWireRoundTrip(t *testing.T) {
	buf := wire.NewBuffer(wire.MinCapacity)
	want := WindowsPosition{FL: 10, FR: 20, RL: 30, RR: 40}
	require.NoError(t, WindowsPositionToWire(want, buf, nil))

	got, err := WindowsPositionFromWire(buf.Bytes(), nil)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestWindowsPositionFromWireRejectsShortPayload(t *testing.T) {
	_, err := WindowsPositionFromWire([]byte{1, 2}, nil)
	require.Error(t, err)
}

func TestNewWindowsProducerDispatchesEvent(t *testing.T) {
	registry := NewWindowsRegistry()
	svc := localtransport.NewMemService()
	channel := localtransport.NewMemChannel[WindowsPosition](1)

	producer := NewWindowsProducer(registry, svc, func(context.Context) (localtransport.Publisher[WindowsPosition], error) {
		return channel, nil
	})

	offered, err := producer.Offer(context.Background())
	require.NoError(t, err)

	m, ok := registry.EventMappingFor(WindowsPositionEventName)
	require.True(t, ok)

	event := offered.Publisher(m)
	require.NoError(t, event.BridgeEvent([]byte{1, 2, 3, 4}, registry.CreateE2EInstance(m)))

	sub, err := channel.Subscribe(1)
	require.NoError(t, err)
	received, err := sub.ReceiveWithContext(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, WindowsPosition{FL: 1, FR: 2, RL: 3, RR: 4}, received)
}
