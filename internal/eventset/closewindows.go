// SPDX-License-Identifier: GPL-3.0-or-later

package eventset

import (
	"fmt"

	"github.com/ivykit/someip-gateway/internal/bridge"
	"github.com/ivykit/someip-gateway/internal/e2e"
	"github.com/ivykit/someip-gateway/internal/localtransport"
	"github.com/ivykit/someip-gateway/internal/mapping"
	"github.com/ivykit/someip-gateway/internal/someiptunnel"
	"github.com/ivykit/someip-gateway/internal/wire"
)

// CloseWindowsEventName is the local event name close_windows is registered
// under.
const CloseWindowsEventName = "close_windows"

// CloseWindowsProfileID pins the profile CloseWindowsFromWire/ToWire were
// written against: no E2E protection at all.
const CloseWindowsProfileID = uint8(0)

func init() {
	assertProfileID("close_windows", (e2e.NoneProfile{}).ProfileID(), CloseWindowsProfileID)
}

// CloseWindows is a command event requesting all windows be closed.
type CloseWindows struct {
	Close bool
}

// CloseWindowsFromWire decodes a one-byte close_windows payload.
func CloseWindowsFromWire(data []byte, _ e2e.Profile) (CloseWindows, error) {
	if len(data) == 0 {
		return CloseWindows{}, fmt.Errorf("eventset: empty close_windows payload")
	}
	return CloseWindows{Close: data[0] != 0}, nil
}

// CloseWindowsToWire encodes a close_windows sample as a single 0/1 byte.
func CloseWindowsToWire(value CloseWindows, buf *wire.Buffer, _ e2e.Profile) error {
	if value.Close {
		buf.Free()[0] = 1
	} else {
		buf.Free()[0] = 0
	}
	buf.Advance(1)
	return nil
}

// NewCloseWindowsRegistry returns a mapping registry with close_windows
// bound to [e2e.NoneProfile].
func NewCloseWindowsRegistry() *mapping.Registry {
	r := mapping.NewRegistry()
	r.Register(CloseWindowsEventName, func() e2e.Profile { return e2e.NoneProfile{} })
	return r
}

// CloseWindowsConsumer is the local consumer record for the close_windows
// egress interface: one subscription, bridged to the SOME/IP tunnel as the
// service/instance it was built for.
type CloseWindowsConsumer struct {
	Subscription localtransport.Subscription[CloseWindows]
	ServiceID    uint16
	InstanceID   uint16
}

var _ bridge.Bridgeable = (*CloseWindowsConsumer)(nil)

// BuildProxies implements [bridge.Bridgeable].
func (c *CloseWindowsConsumer) BuildProxies(
	registry *mapping.Registry,
	events map[mapping.EventMapping]someiptunnel.EventDesc,
	tunnel someiptunnel.Tunnel,
) ([]bridge.Pumpable, error) {
	m, ok := registry.EventMappingFor(CloseWindowsEventName)
	if !ok {
		panic("eventset: close_windows not registered (build-time bug)")
	}
	desc, ok := events[m]
	if !ok {
		return nil, fmt.Errorf("eventset: no tunnel descriptor for close_windows")
	}

	profile := registry.CreateE2EInstance(m)
	return []bridge.Pumpable{
		&bridge.SubscriberProxy[CloseWindows]{
			Subscription: c.Subscription,
			ToWire:       wire.EnvelopeToWire[CloseWindows](CloseWindowsToWire, profile),
			Profile:      profile,
			Desc:         desc,
			ServiceID:    c.ServiceID,
			InstanceID:   c.InstanceID,
			Tunnel:       tunnel,
		},
	}, nil
}
