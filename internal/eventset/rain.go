// SPDX-License-Identifier: GPL-3.0-or-later

// Package eventset is the generated-code stand-in: one file per bridged
// interface, each wiring a Go value type, its wire codec, its event mapping,
// and the local producer/consumer record that plugs into internal/bridge.
// A real deployment's build step would emit this package from an interface
// description; here it is hand-written against the fixed demo topology
// (rain_sensor, windows_position, close_windows).
package eventset

import (
	"context"
	"fmt"

	"github.com/ivykit/someip-gateway/internal/e2e"
	"github.com/ivykit/someip-gateway/internal/localtransport"
	"github.com/ivykit/someip-gateway/internal/mapping"
	"github.com/ivykit/someip-gateway/internal/wire"
)

// RainSensorEventName is the local event name rain_sensor is registered
// under.
const RainSensorEventName = "rain_sensor"

// RainSensorProfileID pins the E2E profile RainSensorFromWire/ToWire were
// written against. The package init() asserts that [e2e.ShowcaseProfile],
// the profile NewRainRegistry wires for rain_sensor, reports this id, catching a mismatch
// between codec and registry wiring at process start rather than at the
// first malformed payload.
const RainSensorProfileID = e2e.ShowcaseProfileID

func init() {
	assertProfileID("rain_sensor", (e2e.ShowcaseProfile{}).ProfileID(), RainSensorProfileID)
}

// RainSensor reports whether the windshield rain sensor currently detects
// moisture.
type RainSensor struct {
	IsWet bool
}

// RainSensorFromWire decodes a one-byte rain_sensor payload already
// stripped of its E2E integrity byte. It is the "inner" codec
// [wire.EnvelopeFromWire] wraps with the profile check; profile is unused
// here because that check has already run.
func RainSensorFromWire(data []byte, _ e2e.Profile) (RainSensor, error) {
	if len(data) == 0 {
		return RainSensor{}, fmt.Errorf("eventset: empty rain_sensor payload")
	}
	switch data[0] {
	case 0:
		return RainSensor{IsWet: false}, nil
	case 1:
		return RainSensor{IsWet: true}, nil
	default:
		return RainSensor{}, fmt.Errorf("eventset: invalid rain_sensor byte %d", data[0])
	}
}

// RainSensorToWire encodes a rain_sensor sample as a single 0/1 byte.
func RainSensorToWire(value RainSensor, buf *wire.Buffer, _ e2e.Profile) error {
	if value.IsWet {
		buf.Free()[0] = 1
	} else {
		buf.Free()[0] = 0
	}
	buf.Advance(1)
	return nil
}

// NewRainRegistry returns a mapping registry with rain_sensor bound to
// [e2e.ShowcaseProfile].
func NewRainRegistry() *mapping.Registry {
	r := mapping.NewRegistry()
	r.Register(RainSensorEventName, func() e2e.Profile { return e2e.ShowcaseProfile{} })
	return r
}

// rainUnofferedProducer is the Unoffered half of the rain_sensor producer
// record.
type rainUnofferedProducer struct {
	mapping  mapping.EventMapping
	registry *mapping.Registry
	svc      *localtransport.MemService
	build    func(ctx context.Context) (localtransport.Publisher[e2e.Envelope[RainSensor]], error)
}

// NewRainProducer builds a local producer record for rain_sensor. build
// constructs (or reuses) the underlying typed publisher, which carries
// [e2e.Envelope] rather than a bare RainSensor: a CRC-failed frame is
// forwarded to the local subscriber as an envelope with no value rather
// than silently dropped, per this gateway's default CRC-failure policy.
// svc tracks the producer's offer state for a [localtransport.MemFinder]
// consumer of the same service, when one exists.
func NewRainProducer(
	registry *mapping.Registry,
	svc *localtransport.MemService,
	build func(ctx context.Context) (localtransport.Publisher[e2e.Envelope[RainSensor]], error),
) localtransport.Producer {
	m, ok := registry.EventMappingFor(RainSensorEventName)
	if !ok {
		panic("eventset: rain_sensor not registered (build-time bug)")
	}
	return &rainUnofferedProducer{mapping: m, registry: registry, svc: svc, build: build}
}

func (p *rainUnofferedProducer) Offer(ctx context.Context) (localtransport.OfferedProducer, error) {
	publisher, err := p.build(ctx)
	if err != nil {
		return nil, err
	}
	p.svc.SetOffered(true)
	profile := p.registry.CreateE2EInstance(p.mapping)
	return &rainOfferedProducer{
		unoffered: p,
		event: &localtransport.EventPublisher[e2e.Envelope[RainSensor]]{
			Publisher: publisher,
			FromWire:  wire.EnvelopeFromWire[RainSensor](RainSensorFromWire, profile),
		},
	}, nil
}

type rainOfferedProducer struct {
	unoffered *rainUnofferedProducer
	event     mapping.BridgeableEvent
}

func (o *rainOfferedProducer) Unoffer(context.Context) (localtransport.Producer, error) {
	o.unoffered.svc.SetOffered(false)
	return o.unoffered, nil
}

func (o *rainOfferedProducer) Publisher(m mapping.EventMapping) mapping.BridgeableEvent {
	if m != o.unoffered.mapping {
		panic("eventset: unknown mapping for rain_sensor producer (build-time bug)")
	}
	return o.event
}
