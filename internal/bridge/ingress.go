// SPDX-License-Identifier: GPL-3.0-or-later

package bridge

import (
	"context"
	"fmt"

	"github.com/ivykit/someip-gateway/internal/e2e"
	"github.com/ivykit/someip-gateway/internal/gwerrors"
	"github.com/ivykit/someip-gateway/internal/localtransport"
	"github.com/ivykit/someip-gateway/internal/mapping"
	"github.com/ivykit/someip-gateway/internal/someiptunnel"
	"github.com/ivykit/someip-gateway/internal/telemetry"
)

// NamedEvent pairs a wire event descriptor with the local event name used
// to resolve its mapping in the owning [mapping.Registry].
type NamedEvent struct {
	Desc someiptunnel.EventDesc
	Name string
}

// IngressBridge receives SOME/IP events over the tunnel and republishes
// them on the local transport. One
// IngressBridge exists per local producer interface.
type IngressBridge struct {
	desc       ServiceDescription
	producer   producerState
	registry   *mapping.Registry
	eventByID  map[uint16]mapping.EventMapping
	profiles   map[mapping.EventMapping]e2e.Profile
	events     []someiptunnel.EventDesc
	logger     telemetry.SLogger
	classifier telemetry.ErrClassifier
	metrics    telemetry.Metrics
}

// NewIngressBridge builds an IngressBridge bound to an as-yet-unoffered
// local producer. Every name in events must already be registered in
// registry: an unresolved name can only be a build-time mismatch between
// the tunnel's configured event table and the interface's generated
// mapping, so NewIngressBridge panics rather than returning an error for
// that case, extending CreateE2EInstance's own panic contract to the
// lookup that feeds it.
func NewIngressBridge(
	desc ServiceDescription,
	events []NamedEvent,
	registry *mapping.Registry,
	unoffered localtransport.Producer,
	logger telemetry.SLogger,
	classifier telemetry.ErrClassifier,
	metrics telemetry.Metrics,
) *IngressBridge {
	if logger == nil {
		logger = telemetry.DefaultSLogger()
	}
	if classifier == nil {
		classifier = telemetry.DefaultErrClassifier
	}
	if metrics == nil {
		metrics = telemetry.DefaultMetrics()
	}

	eventByID := make(map[uint16]mapping.EventMapping, len(events))
	profiles := make(map[mapping.EventMapping]e2e.Profile, len(events))
	descs := make([]someiptunnel.EventDesc, 0, len(events))

	for _, ev := range events {
		m, ok := registry.EventMappingFor(ev.Name)
		if !ok {
			panic(fmt.Sprintf("bridge: no event mapping for %q (build-time bug)", ev.Name))
		}
		eventByID[ev.Desc.EventID] = m
		profiles[m] = registry.CreateE2EInstance(m)
		descs = append(descs, ev.Desc)
	}

	return &IngressBridge{
		desc:       desc,
		producer:   unofferedState(unoffered),
		registry:   registry,
		eventByID:  eventByID,
		profiles:   profiles,
		events:     descs,
		logger:     logger,
		classifier: classifier,
		metrics:    metrics,
	}
}

// ServiceDescription returns the service this bridge produces for.
func (b *IngressBridge) ServiceDescription() ServiceDescription { return b.desc }

// EventInterests returns the event table to advertise in a FindService
// frame for this service.
func (b *IngressBridge) EventInterests() []someiptunnel.EventDesc { return b.events }

// Offered reports whether the local producer is currently offered, i.e.
// whether the remote service this bridge tracks is currently available.
func (b *IngressBridge) Offered() bool { return b.producer.offered != nil }

// ReceiveEvent dispatches one incoming tunnel event to the local producer.
// Any failure is logged and absorbed: an
// ingress frame that cannot be bridged is dropped, never propagated. It opens
// one span for the dispatch and tags every log line it emits with the
// dispatch's span id, so a later error line can be correlated back to it.
func (b *IngressBridge) ReceiveEvent(ctx context.Context, eventID uint16, data []byte) {
	_, span := telemetry.StartSpan(ctx, "bridge.IngressBridge.ReceiveEvent")
	defer span.End()
	spanID := telemetry.NewSpanID()

	if b.producer.offered == nil {
		b.logger.Warn("producer not offered, dropping incoming event",
			"service_id", b.desc.ServiceID, "event_id", eventID, "producer_state", b.producer.String(), "spanID", spanID)
		return
	}

	m, ok := b.eventByID[eventID]
	if !ok {
		err := &gwerrors.RoutingError{
			ServiceID: b.desc.ServiceID, InstanceID: b.desc.InstanceID, EventID: eventID,
			Reason: "no event mapping",
		}
		b.logger.Warn("dropping incoming event", "err_class", b.classifier.Classify(err), "error", err, "spanID", spanID)
		return
	}

	publisher := b.producer.offered.Publisher(m)
	profile := b.profiles[m]
	err := publisher.BridgeEvent(data, profile)
	status := "ok"
	if err != nil {
		status = b.classifier.Classify(err)
		if status == "" {
			status = "error"
		}
		b.logger.Warn("failed to bridge incoming event",
			"service_id", b.desc.ServiceID, "event_id", eventID,
			"err_class", status, "error", err, "spanID", spanID)
	} else {
		b.metrics.FrameBridged(b.desc.ServiceID, "ingress")
	}
	b.metrics.E2EOutcome(b.desc.ServiceID, status)
}

// ServiceStateChanged transitions the producer between Unoffered and
// Offered as the remote service comes and goes. A transition attempted
// from the wrong state is
// logged and ignored rather than treated as an error, since it reflects a
// duplicate or out-of-order availability notification from the tunnel, not
// a programming error. A failed offer()/unoffer() call is returned as a
// *gwerrors.OfferTransitionError, which is fatal and the
// caller is expected to terminate this bridge.
func (b *IngressBridge) ServiceStateChanged(ctx context.Context, available bool) error {
	prev := b.producer
	b.producer = producerState{}

	switch {
	case prev.unoffered != nil && available:
		offered, err := prev.unoffered.Offer(ctx)
		if err != nil {
			b.producer = prev
			return &gwerrors.OfferTransitionError{Err: err}
		}
		b.producer = producerState{offered: offered}
		b.metrics.SetProducerOffered(b.desc.ServiceID, true)

	case prev.offered != nil && !available:
		unoffered, err := prev.offered.Unoffer(ctx)
		if err != nil {
			b.producer = prev
			return &gwerrors.OfferTransitionError{Err: err}
		}
		b.producer = producerState{unoffered: unoffered}
		b.metrics.SetProducerOffered(b.desc.ServiceID, false)

	default:
		b.producer = prev
		b.logger.Warn("ignoring out-of-order availability notification",
			"service_id", b.desc.ServiceID, "producer_state", prev.String(), "available", available)
	}
	return nil
}
