// SPDX-License-Identifier: GPL-3.0-or-later

package eventset

import (
	"context"
	"fmt"

	"github.com/ivykit/someip-gateway/internal/e2e"
	"github.com/ivykit/someip-gateway/internal/localtransport"
	"github.com/ivykit/someip-gateway/internal/mapping"
	"github.com/ivykit/someip-gateway/internal/wire"
)

// WindowsPositionEventName is the local event name windows_position is
// registered under.
const WindowsPositionEventName = "windows_position"

// WindowsPositionProfileID pins the profile WindowsPositionFromWire/ToWire
// were written against: no E2E protection at all.
const WindowsPositionProfileID = uint8(0)

func init() {
	assertProfileID("windows_position", (e2e.NoneProfile{}).ProfileID(), WindowsPositionProfileID)
}

// WindowsPosition reports each door window's position as a raw 0-255 scale,
// one byte per corner: front-left, front-right, rear-left, rear-right.
type WindowsPosition struct {
	FL, FR, RL, RR byte
}

// WindowsPositionFromWire decodes a four-byte windows_position payload.
func WindowsPositionFromWire(data []byte, _ e2e.Profile) (WindowsPosition, error) {
	if len(data) < 4 {
		return WindowsPosition{}, fmt.Errorf("eventset: windows_position payload too short: %d bytes", len(data))
	}
	return WindowsPosition{FL: data[0], FR: data[1], RL: data[2], RR: data[3]}, nil
}

// WindowsPositionToWire encodes a windows_position sample as four raw bytes.
func WindowsPositionToWire(value WindowsPosition, buf *wire.Buffer, _ e2e.Profile) error {
	free := buf.Free()
	free[0], free[1], free[2], free[3] = value.FL, value.FR, value.RL, value.RR
	buf.Advance(4)
	return nil
}

// NewWindowsRegistry returns a mapping registry with windows_position bound
// to [e2e.NoneProfile].
func NewWindowsRegistry() *mapping.Registry {
	r := mapping.NewRegistry()
	r.Register(WindowsPositionEventName, func() e2e.Profile { return e2e.NoneProfile{} })
	return r
}

// windowsUnofferedProducer is the Unoffered half of the windows_position
// producer record.
type windowsUnofferedProducer struct {
	mapping mapping.EventMapping
	svc     *localtransport.MemService
	build   func(ctx context.Context) (localtransport.Publisher[WindowsPosition], error)
}

// NewWindowsProducer builds a local producer record for windows_position.
func NewWindowsProducer(
	registry *mapping.Registry,
	svc *localtransport.MemService,
	build func(ctx context.Context) (localtransport.Publisher[WindowsPosition], error),
) localtransport.Producer {
	m, ok := registry.EventMappingFor(WindowsPositionEventName)
	if !ok {
		panic("eventset: windows_position not registered (build-time bug)")
	}
	return &windowsUnofferedProducer{mapping: m, svc: svc, build: build}
}

func (p *windowsUnofferedProducer) Offer(ctx context.Context) (localtransport.OfferedProducer, error) {
	publisher, err := p.build(ctx)
	if err != nil {
		return nil, err
	}
	p.svc.SetOffered(true)
	return &windowsOfferedProducer{
		unoffered: p,
		event:     &localtransport.EventPublisher[WindowsPosition]{Publisher: publisher, FromWire: WindowsPositionFromWire},
	}, nil
}

type windowsOfferedProducer struct {
	unoffered *windowsUnofferedProducer
	event     mapping.BridgeableEvent
}

func (o *windowsOfferedProducer) Unoffer(context.Context) (localtransport.Producer, error) {
	o.unoffered.svc.SetOffered(false)
	return o.unoffered, nil
}

func (o *windowsOfferedProducer) Publisher(m mapping.EventMapping) mapping.BridgeableEvent {
	if m != o.unoffered.mapping {
		panic("eventset: unknown mapping for windows_position producer (build-time bug)")
	}
	return o.event
}
