// SPDX-License-Identifier: GPL-3.0-or-later

package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/ivykit/someip-gateway/internal/bridge"
	"github.com/ivykit/someip-gateway/internal/e2e"
	"github.com/ivykit/someip-gateway/internal/eventset"
	"github.com/ivykit/someip-gateway/internal/localtransport"
	"github.com/ivykit/someip-gateway/internal/someiptunnel"
	"github.com/ivykit/someip-gateway/internal/wire"
	"github.com/stretchr/testify/require"
)

const testThrottle = 5 * time.Millisecond

func newRainIngress(t *testing.T, channel *localtransport.MemChannel[e2e.Envelope[eventset.RainSensor]]) *bridge.IngressBridge {
	t.Helper()
	registry := eventset.NewRainRegistry()
	svc := localtransport.NewMemService()
	producer := eventset.NewRainProducer(registry, svc, func(context.Context) (localtransport.Publisher[e2e.Envelope[eventset.RainSensor]], error) {
		return channel, nil
	})
	return bridge.NewIngressBridge(
		bridge.ServiceDescription{ServiceID: 0x1001, InstanceID: 1, Specifier: "RainSensor"},
		[]bridge.NamedEvent{{Desc: someiptunnel.EventDesc{EventID: 0x8001}, Name: eventset.RainSensorEventName}},
		registry, producer, nil, nil, nil,
	)
}

// TestOrchestratorAnnouncesOffersAndDeliversIngressEvent drives a full
// ingress cycle against a loopback tunnel: the announce loop sends
// FindService, a remote stub acks it active, and the orchestrator then
// republishes an incoming event frame on the local channel.
func TestOrchestratorAnnouncesOffersAndDeliversIngressEvent(t *testing.T) {
	channel := localtransport.NewMemChannel[e2e.Envelope[eventset.RainSensor]](1)
	ib := newRainIngress(t, channel)

	gatewaySide, remoteSide := someiptunnel.NewMemTunnelPair(4)
	orch := New(gatewaySide, testThrottle, time.Millisecond, nil, nil, nil)
	orch.RegisterIngress(ib)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- orch.Run(ctx) }()

	findHeader, _, err := remoteSide.Receive(context.Background())
	require.NoError(t, err)
	require.Equal(t, someiptunnel.MsgFindService, findHeader.Typ)
	require.Equal(t, uint16(0x1001), findHeader.ServiceID)

	ack := findHeader
	ack.Typ = someiptunnel.MsgFindServiceAck
	ack.IsActive = true
	require.NoError(t, remoteSide.Send(context.Background(), ack, nil))

	buf := wire.NewBuffer(wire.MinCapacity)
	env := e2e.FromLocal(eventset.RainSensor{IsWet: true})
	require.NoError(t, wire.EnvelopeToWire[eventset.RainSensor](eventset.RainSensorToWire, e2e.ShowcaseProfile{})(env, buf, e2e.ShowcaseProfile{}))

	eventHeader := someiptunnel.MessageFrame(0x1001, 1, 0x8001)
	require.NoError(t, remoteSide.Send(context.Background(), eventHeader, buf))

	sub, err := channel.Subscribe(1)
	require.NoError(t, err)
	ctxRecv, cancelRecv := context.WithTimeout(context.Background(), time.Second)
	defer cancelRecv()
	received, err := sub.ReceiveWithContext(ctxRecv, time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, e2e.StatusNoError, received.Status())
	v, err := received.CheckedWith(func(uint32) bool { return true })
	require.NoError(t, err)
	require.Equal(t, eventset.RainSensor{IsWet: true}, *v)

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

// TestOrchestratorHandleFindServiceAckUnknownServiceDropped exercises the
// "no registered bridge for this correlation id" branch directly: an ack
// for a service nobody registered must not panic.
func TestOrchestratorHandleFindServiceAckUnknownServiceDropped(t *testing.T) {
	gatewaySide, _ := someiptunnel.NewMemTunnelPair(1)
	orch := New(gatewaySide, testThrottle, time.Millisecond, nil, nil, nil)

	orch.handleFindServiceAck(context.Background(), someiptunnel.Header{ServiceID: 0x9999, InstanceID: 1})
}

// TestOrchestratorOfferTransitionErrorDeregistersBridge verifies that a
// failing ServiceStateChanged call removes the owning bridge from dispatch
// rather than failing the whole orchestrator.
func TestOrchestratorOfferTransitionErrorDeregistersBridge(t *testing.T) {
	registry := eventset.NewRainRegistry()
	producer := failingOfferProducer{}
	ib := bridge.NewIngressBridge(
		bridge.ServiceDescription{ServiceID: 0x1001, InstanceID: 1, Specifier: "RainSensor"},
		[]bridge.NamedEvent{{Desc: someiptunnel.EventDesc{EventID: 0x8001}, Name: eventset.RainSensorEventName}},
		registry, producer, nil, nil, nil,
	)

	gatewaySide, _ := someiptunnel.NewMemTunnelPair(1)
	orch := New(gatewaySide, testThrottle, time.Millisecond, nil, nil, nil)
	orch.RegisterIngress(ib)

	key := someiptunnel.CorrelationID(0x1001, 1)
	require.Contains(t, orch.ingress, key)

	orch.handleFindServiceAck(context.Background(), someiptunnel.Header{ServiceID: 0x1001, InstanceID: 1, IsActive: true})
	require.NotContains(t, orch.ingress, key)
}

type failingOfferProducer struct{}

func (failingOfferProducer) Offer(context.Context) (localtransport.OfferedProducer, error) {
	return nil, errOfferFailed
}

var errOfferFailed = &testOfferError{}

type testOfferError struct{}

func (*testOfferError) Error() string { return "offer failed" }
