// SPDX-License-Identifier: GPL-3.0-or-later

package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/ivykit/someip-gateway/internal/e2e"
	"github.com/ivykit/someip-gateway/internal/gwerrors"
	"github.com/ivykit/someip-gateway/internal/localtransport"
	"github.com/ivykit/someip-gateway/internal/mapping"
	"github.com/ivykit/someip-gateway/internal/someiptunnel"
	"github.com/ivykit/someip-gateway/internal/telemetry"
	"github.com/ivykit/someip-gateway/internal/wire"
	"golang.org/x/sync/errgroup"
)

// ReceiveBackoff is the poll interval a [Subscription.ReceiveWithContext]
// call retries at while no sample is ready, mirroring the 20ms sleep the
// original protocol's SubscriberProxy used between receive attempts.
const ReceiveBackoff = 20 * time.Millisecond

// Pumpable drives one local subscription's samples onto the SOME/IP tunnel
// until ctx is cancelled or a fatal transport error occurs.
type Pumpable interface {
	Pump(ctx context.Context) error
}

// Bridgeable is implemented by a concrete local consumer record to build
// its set of event pumps. tunnel is the one the built proxies must send
// frames on: it belongs to
// the owning EgressBridge, not to the consumer record itself.
type Bridgeable interface {
	BuildProxies(registry *mapping.Registry, events map[mapping.EventMapping]someiptunnel.EventDesc, tunnel someiptunnel.Tunnel) ([]Pumpable, error)
}

// SubscriberProxy pumps samples of one subscribed event type T from the
// local transport to the SOME/IP tunnel.
type SubscriberProxy[T any] struct {
	Subscription   localtransport.Subscription[T]
	ToWire         wire.ToWireFunc[e2e.Envelope[T]]
	Profile        e2e.Profile
	Desc           someiptunnel.EventDesc
	ServiceID      uint16
	InstanceID     uint16
	Tunnel         someiptunnel.Tunnel
	Logger         telemetry.SLogger
	Classifier     telemetry.ErrClassifier
	Metrics        telemetry.Metrics
	ReceiveBackoff time.Duration
}

var _ Pumpable = (*SubscriberProxy[int])(nil)

// SetReceiveBackoff implements the proxyConfigurable interface
// [EgressBridge.Start] uses to configure every proxy a [Bridgeable] builds
// without widening [Bridgeable.BuildProxies]'s signature.
func (p *SubscriberProxy[T]) SetReceiveBackoff(d time.Duration) { p.ReceiveBackoff = d }

// SetMetrics implements the proxyConfigurable interface.
func (p *SubscriberProxy[T]) SetMetrics(m telemetry.Metrics) { p.Metrics = m }

// SetLogger implements the proxyConfigurable interface.
func (p *SubscriberProxy[T]) SetLogger(l telemetry.SLogger) { p.Logger = l }

// Pump implements [Pumpable].
func (p *SubscriberProxy[T]) Pump(ctx context.Context) error {
	logger := p.Logger
	if logger == nil {
		logger = telemetry.DefaultSLogger()
	}
	classifier := p.Classifier
	if classifier == nil {
		classifier = telemetry.DefaultErrClassifier
	}
	metrics := p.Metrics
	if metrics == nil {
		metrics = telemetry.DefaultMetrics()
	}
	backoff := p.ReceiveBackoff
	if backoff == 0 {
		backoff = ReceiveBackoff
	}

	for {
		sample, err := p.receiveSample(ctx, backoff, metrics)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				p.Subscription.Unsubscribe()
				return err
			}
			p.Subscription.Unsubscribe()
			txErr := &gwerrors.TransportError{Err: err}
			logger.Error("subscription receive failed, stopping pump",
				"event_id", p.Desc.EventID, "err_class", classifier.Classify(txErr), "error", txErr)
			return txErr
		}

		if err := p.pumpOne(ctx, sample, logger, classifier, metrics); err != nil {
			logger.Warn("dropping outgoing sample",
				"event_id", p.Desc.EventID, "err_class", classifier.Classify(err), "error", err)
		}
	}
}

// receiveSample polls the subscription at backoff intervals until a sample
// arrives or ctx is cancelled, recording an EgressRetry for every interval
// that finds nothing ready.
func (p *SubscriberProxy[T]) receiveSample(ctx context.Context, backoff time.Duration, metrics telemetry.Metrics) (T, error) {
	for {
		pollCtx, cancel := context.WithTimeout(ctx, backoff)
		sample, err := p.Subscription.ReceiveWithContext(pollCtx, backoff)
		cancel()
		if err == nil {
			return sample, nil
		}
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			metrics.EgressRetry(p.ServiceID)
			continue
		}
		if ctx.Err() != nil {
			return sample, ctx.Err()
		}
		return sample, err
	}
}

func (p *SubscriberProxy[T]) pumpOne(ctx context.Context, sample T, logger telemetry.SLogger, classifier telemetry.ErrClassifier, metrics telemetry.Metrics) error {
	spanID := telemetry.NewSpanID()
	_, span := telemetry.StartSpan(ctx, "bridge.SubscriberProxy.pumpOne")
	defer span.End()

	buf := someiptunnel.NewPayload()
	env := e2e.FromLocal(sample)
	if err := p.ToWire(env, buf, p.Profile); err != nil {
		return &gwerrors.CodecError{Op: "ToWire", Err: err}
	}

	header := someiptunnel.EventFrame(p.ServiceID, p.InstanceID, p.Desc.EventID)
	if err := p.Tunnel.Send(ctx, header, buf); err != nil {
		metrics.TunnelSendError(p.ServiceID)
		logger.Debug("tunnel send failed", "event_id", p.Desc.EventID, "spanID", spanID,
			"err_class", classifier.Classify(err))
		return &gwerrors.TransportError{Err: err}
	}
	metrics.FrameBridged(p.ServiceID, "egress")
	return nil
}

// EgressBridge discovers a local consumer and bridges its events onto the
// SOME/IP tunnel. One EgressBridge exists
// per outgoing interface.
type EgressBridge struct {
	desc                  ServiceDescription
	events                map[mapping.EventMapping]someiptunnel.EventDesc
	registry              *mapping.Registry
	runtime               localtransport.Runtime
	tunnel                someiptunnel.Tunnel
	discoveryPollInterval time.Duration
	receiveBackoff        time.Duration
	logger                telemetry.SLogger
	metrics               telemetry.Metrics
}

// NewEgressBridge builds an EgressBridge. events maps each mapping to the
// wire descriptor advertised in the startup OfferService frame.
// receiveBackoff is the poll interval every built [SubscriberProxy] uses
// between local-transport receive attempts.
func NewEgressBridge(
	desc ServiceDescription,
	events map[mapping.EventMapping]someiptunnel.EventDesc,
	registry *mapping.Registry,
	runtime localtransport.Runtime,
	tunnel someiptunnel.Tunnel,
	discoveryPollInterval time.Duration,
	receiveBackoff time.Duration,
	logger telemetry.SLogger,
	metrics telemetry.Metrics,
) *EgressBridge {
	if logger == nil {
		logger = telemetry.DefaultSLogger()
	}
	if metrics == nil {
		metrics = telemetry.DefaultMetrics()
	}
	return &EgressBridge{
		desc:                  desc,
		events:                events,
		registry:              registry,
		runtime:               runtime,
		tunnel:                tunnel,
		discoveryPollInterval: discoveryPollInterval,
		receiveBackoff:        receiveBackoff,
		logger:                logger,
		metrics:               metrics,
	}
}

// proxyConfigurable is implemented by every [SubscriberProxy] regardless of
// its sample type, letting [EgressBridge.Start] configure ambient
// dependencies on a []Pumpable returned by [Bridgeable.BuildProxies] without
// widening that interface's signature.
type proxyConfigurable interface {
	SetReceiveBackoff(time.Duration)
	SetMetrics(telemetry.Metrics)
	SetLogger(telemetry.SLogger)
}

// Start performs the full startup sequence: find the
// local consumer, offer the service over the tunnel, then bridge every
// event until ctx is cancelled or any pump fails fatally. It blocks for the
// lifetime of the bridge. The sequence runs under one span, so a later pump
// failure's span can be correlated back to the startup that produced it.
func (b *EgressBridge) Start(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "bridge.EgressBridge.Start")
	defer span.End()

	consumer, err := b.findConsumer(ctx)
	if err != nil {
		return err
	}

	bridgeable, ok := consumer.(Bridgeable)
	if !ok {
		return &gwerrors.RoutingError{
			ServiceID: b.desc.ServiceID, InstanceID: b.desc.InstanceID,
			Reason: "consumer record does not implement Bridgeable",
		}
	}

	var offer someiptunnel.ServiceDesc
	for _, desc := range b.events {
		offer.Append(desc)
	}
	if err := b.tunnel.Send(ctx, someiptunnel.OfferServiceFrame(b.desc.ServiceID, b.desc.InstanceID, offer), nil); err != nil {
		b.metrics.TunnelSendError(b.desc.ServiceID)
		return &gwerrors.TransportError{Err: err}
	}

	proxies, err := bridgeable.BuildProxies(b.registry, b.events, b.tunnel)
	if err != nil {
		return err
	}
	for _, proxy := range proxies {
		if c, ok := proxy.(proxyConfigurable); ok {
			c.SetReceiveBackoff(b.receiveBackoff)
			c.SetMetrics(b.metrics)
			c.SetLogger(b.logger)
		}
	}

	group, gctx := errgroup.WithContext(ctx)
	for _, proxy := range proxies {
		proxy := proxy
		group.Go(func() error { return proxy.Pump(gctx) })
	}
	return group.Wait()
}

func (b *EgressBridge) findConsumer(ctx context.Context) (localtransport.Consumer, error) {
	finder := b.runtime.FindService(b.desc.Specifier)
	ticker := time.NewTicker(b.discoveryPollInterval)
	defer ticker.Stop()

	for {
		instances, err := finder.AvailableInstances(ctx)
		if err != nil {
			return nil, &gwerrors.TransportError{Err: err}
		}
		for _, instance := range instances {
			if instance.InstanceID() == b.desc.InstanceID {
				return instance.Build()
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
