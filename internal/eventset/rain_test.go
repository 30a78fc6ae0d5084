// SPDX-License-Identifier: GPL-3.0-or-later

package eventset

import (
	"context"
	"testing"

	"github.com/ivykit/someip-gateway/internal/e2e"
	"github.com/ivykit/someip-gateway/internal/localtransport"
	"github.com/ivykit/someip-gateway/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestRainSensorFromWireRoundTrip(t *testing.T) {
	buf := wire.NewBuffer(wire.MinCapacity)
	require.NoError(t, RainSensorToWire(RainSensor{IsWet: true}, buf, nil))

	decoded, err := RainSensorFromWire(buf.Bytes(), nil)
	require.NoError(t, err)
	require.Equal(t, RainSensor{IsWet: true}, decoded)
}

func TestRainSensorFromWireRejectsInvalidByte(t *testing.T) {
	_, err := RainSensorFromWire([]byte{7}, nil)
	require.Error(t, err)
}

func TestRainSensorFromWireRejectsEmptyPayload(t *testing.T) {
	_, err := RainSensorFromWire(nil, nil)
	require.Error(t, err)
}

func newRainChannel() *localtransport.MemChannel[e2e.Envelope[RainSensor]] {
	return localtransport.NewMemChannel[e2e.Envelope[RainSensor]](1)
}

func TestNewRainProducerOfferUnofferCycle(t *testing.T) {
	registry := NewRainRegistry()
	svc := localtransport.NewMemService()
	channel := newRainChannel()

	producer := NewRainProducer(registry, svc, func(context.Context) (localtransport.Publisher[e2e.Envelope[RainSensor]], error) {
		return channel, nil
	})

	offered, err := producer.Offer(context.Background())
	require.NoError(t, err)
	require.True(t, svc.Offered())

	m, ok := registry.EventMappingFor(RainSensorEventName)
	require.True(t, ok)

	// A well-formed showcase-profile payload: raw_e2e then a data byte whose
	// modulo-45 matches it.
	buf := wire.NewBuffer(wire.MinCapacity)
	require.NoError(t, wire.EnvelopeToWire[RainSensor](RainSensorToWire, e2e.ShowcaseProfile{})(e2e.FromLocal(RainSensor{IsWet: true}), buf, e2e.ShowcaseProfile{}))

	event := offered.Publisher(m)
	require.NoError(t, event.BridgeEvent(buf.Bytes(), registry.CreateE2EInstance(m)))

	sub, err := channel.Subscribe(1)
	require.NoError(t, err)
	received, err := sub.ReceiveWithContext(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, e2e.StatusNoError, received.Status())
	v, err := received.CheckedWith(func(uint32) bool { return true })
	require.NoError(t, err)
	require.Equal(t, RainSensor{IsWet: true}, *v)

	unoffered, err := offered.Unoffer(context.Background())
	require.NoError(t, err)
	require.False(t, svc.Offered())
	require.NotNil(t, unoffered)
}

func TestNewRainProducerForwardsCrcFailureAsEmptyEnvelope(t *testing.T) {
	registry := NewRainRegistry()
	svc := localtransport.NewMemService()
	channel := newRainChannel()

	producer := NewRainProducer(registry, svc, func(context.Context) (localtransport.Publisher[e2e.Envelope[RainSensor]], error) {
		return channel, nil
	})
	offered, err := producer.Offer(context.Background())
	require.NoError(t, err)

	m, ok := registry.EventMappingFor(RainSensorEventName)
	require.True(t, ok)

	event := offered.Publisher(m)
	// raw_e2e=0, data byte=1 -> expected = 1%45 = 1 != 0, a CRC mismatch.
	require.NoError(t, event.BridgeEvent([]byte{0, 1}, registry.CreateE2EInstance(m)))

	sub, err := channel.Subscribe(1)
	require.NoError(t, err)
	received, err := sub.ReceiveWithContext(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, e2e.StatusCrcError, received.Status())
	_, err = received.CheckedWith(func(uint32) bool { return true })
	require.ErrorIs(t, err, e2e.ErrCrcError)
}

func TestRainOfferedProducerPublisherPanicsOnUnknownMapping(t *testing.T) {
	registry := NewRainRegistry()
	other := NewWindowsRegistry()
	svc := localtransport.NewMemService()
	channel := newRainChannel()

	producer := NewRainProducer(registry, svc, func(context.Context) (localtransport.Publisher[e2e.Envelope[RainSensor]], error) {
		return channel, nil
	})
	offered, err := producer.Offer(context.Background())
	require.NoError(t, err)

	otherMapping, ok := other.EventMappingFor(WindowsPositionEventName)
	require.True(t, ok)

	require.Panics(t, func() { offered.Publisher(otherMapping) })
}
