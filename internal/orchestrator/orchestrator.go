// SPDX-License-Identifier: GPL-3.0-or-later

// Package orchestrator assembles a [someiptunnel.Tunnel], a set of
// [bridge.IngressBridge]s, and a set of egress [bridge.EgressBridge]s into
// one running gateway: it performs the startup liveness handshake,
// periodically re-announces interest in every ingress service,
// demultiplexes incoming tunnel frames to the right ingress bridge, and
// runs every egress bridge to completion via [bridge.OutgoingRunner].
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/ivykit/someip-gateway/internal/bridge"
	"github.com/ivykit/someip-gateway/internal/gwerrors"
	"github.com/ivykit/someip-gateway/internal/someiptunnel"
	"github.com/ivykit/someip-gateway/internal/telemetry"
	"github.com/ivykit/someip-gateway/internal/wire"
	"golang.org/x/sync/errgroup"
)

// Orchestrator owns the tunnel receive loop and every bridge in the
// gateway. It is built once at startup from a fixed topology; per the
// explicit Non-goal against dynamic reconfiguration, RegisterIngress and
// RegisterEgress are not called once [Orchestrator.Run] has started. The
// only change after that point is the receive loop removing an ingress
// bridge whose offer transition failed.
type Orchestrator struct {
	tunnel              someiptunnel.Tunnel
	findServiceThrottle time.Duration
	handshakeBackoff    time.Duration
	ingress             map[uint64]*bridge.IngressBridge
	runner              *bridge.OutgoingRunner
	logger              telemetry.SLogger
	classifier          telemetry.ErrClassifier
	metrics             telemetry.Metrics
}

// New builds an empty Orchestrator bound to tunnel. Register every bridge
// with RegisterIngress/RegisterEgress before calling Run. handshakeBackoff is
// the interval Run waits between retries of a failed startup handshake.
func New(
	tunnel someiptunnel.Tunnel,
	findServiceThrottle time.Duration,
	handshakeBackoff time.Duration,
	logger telemetry.SLogger,
	classifier telemetry.ErrClassifier,
	metrics telemetry.Metrics,
) *Orchestrator {
	if logger == nil {
		logger = telemetry.DefaultSLogger()
	}
	if classifier == nil {
		classifier = telemetry.DefaultErrClassifier
	}
	if metrics == nil {
		metrics = telemetry.DefaultMetrics()
	}
	return &Orchestrator{
		tunnel:              tunnel,
		findServiceThrottle: findServiceThrottle,
		handshakeBackoff:    handshakeBackoff,
		ingress:             make(map[uint64]*bridge.IngressBridge),
		runner:              bridge.NewOutgoingRunner(),
		logger:              logger,
		classifier:          classifier,
		metrics:             metrics,
	}
}

// RegisterIngress adds b to the set of bridges the receive loop dispatches
// tunnel frames to, keyed by its (service_id, instance_id).
func (o *Orchestrator) RegisterIngress(b *bridge.IngressBridge) {
	desc := b.ServiceDescription()
	o.ingress[someiptunnel.CorrelationID(desc.ServiceID, desc.InstanceID)] = b
}

// RegisterEgress adds b to the set of egress bridges [bridge.OutgoingRunner]
// runs concurrently.
func (o *Orchestrator) RegisterEgress(b *bridge.EgressBridge) {
	o.runner.Insert(b)
}

// Run performs the tunnel handshake, then runs the find-service announcer,
// the frame receive loop, and every egress bridge concurrently until ctx is
// cancelled or any of them fails. It blocks for the gateway's lifetime and
// returns the first error encountered, or ctx.Err() on a clean shutdown.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.handshake(ctx); err != nil {
		return err
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return o.announceLoop(gctx) })
	group.Go(func() error { return o.receiveLoop(gctx) })
	group.Go(func() error { return o.runner.RunAll(gctx) })
	return group.Wait()
}

// handshake retries the tunnel's startup liveness handshake at
// handshakeBackoff until it succeeds or ctx is cancelled.
func (o *Orchestrator) handshake(ctx context.Context) error {
	ticker := time.NewTicker(o.handshakeBackoff)
	defer ticker.Stop()

	for {
		err := o.tunnel.Handshake(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &gwerrors.TransportError{Err: err}
		}
		o.logger.Warn("tunnel handshake failed, retrying", "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// announceLoop periodically re-sends a FindService frame for every
// registered ingress bridge not yet offered, waiting findServiceThrottle
// between consecutive frames, until ctx is cancelled.
func (o *Orchestrator) announceLoop(ctx context.Context) error {
	for {
		sent := false
		for _, b := range o.ingress {
			if b.Offered() {
				continue
			}
			if sent {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(o.findServiceThrottle):
				}
			}
			sent = true
			desc := b.ServiceDescription()
			var interests someiptunnel.ServiceDesc
			for _, ev := range b.EventInterests() {
				interests.Append(ev)
			}
			frame := someiptunnel.FindServiceFrame(desc.ServiceID, desc.InstanceID, interests)
			if err := o.tunnel.Send(ctx, frame, nil); err != nil {
				o.metrics.TunnelSendError(desc.ServiceID)
				o.logger.Warn("find-service send failed", "service_id", desc.ServiceID, "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(o.findServiceThrottle):
		}
	}
}

// receiveLoop reads tunnel frames and dispatches them to the matching
// ingress bridge, demuxing on Header.Typ: a FindServiceAck transitions the
// bridge's producer state, and a Message frame whose method_id is in the
// event range (IsEventMethod) is republished locally. Any other frame type,
// including an Event frame (which only ever flows gateway-to-remote on the
// egress path), is warned about and dropped. A receive failure other than
// context cancellation is treated as a fatal tunnel failure and returned.
func (o *Orchestrator) receiveLoop(ctx context.Context) error {
	for {
		header, payload, err := o.tunnel.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return &gwerrors.TransportError{Err: err}
		}

		switch header.Typ {
		case someiptunnel.MsgFindServiceAck:
			o.handleFindServiceAck(ctx, header)
		case someiptunnel.MsgMessage:
			o.handleIncomingFrame(ctx, header, payload)
		default:
			o.logger.Warn("dropping frame of unexpected type on receive loop", "type", header.Typ.String())
		}
	}
}

func (o *Orchestrator) handleFindServiceAck(ctx context.Context, header someiptunnel.Header) {
	key := someiptunnel.CorrelationID(header.ServiceID, header.InstanceID)
	b, ok := o.ingress[key]
	if !ok {
		o.logger.Warn("dropping FindServiceAck for unregistered service",
			"service_id", header.ServiceID, "instance_id", header.InstanceID)
		return
	}
	if err := b.ServiceStateChanged(ctx, header.IsActive); err != nil {
		o.logger.Error("ingress bridge offer transition failed, bridge terminated",
			"service_id", header.ServiceID, "err_class", o.classifier.Classify(err), "error", err)
		delete(o.ingress, key)
	}
}

func (o *Orchestrator) handleIncomingFrame(ctx context.Context, header someiptunnel.Header, payload *wire.Buffer) {
	if !someiptunnel.IsEventMethod(header.MethodID) {
		o.logger.Debug("dropping reserved method frame", "method_id", header.MethodID)
		return
	}
	key := someiptunnel.CorrelationID(header.ServiceID, header.InstanceID)
	b, ok := o.ingress[key]
	if !ok {
		o.logger.Warn("dropping event for unregistered service",
			"service_id", header.ServiceID, "instance_id", header.InstanceID, "event_id", header.MethodID)
		return
	}
	b.ReceiveEvent(ctx, header.MethodID, payload.Bytes())
}
