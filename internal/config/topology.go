// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"os"

	"github.com/ivykit/someip-gateway/internal/someiptunnel"
	"gopkg.in/yaml.v3"
)

// Direction is which way a topology entry's events flow across the tunnel.
type Direction string

const (
	// DirectionIngress means SOME/IP -> local: the gateway owns a local
	// producer record and republishes frames the tunnel delivers.
	DirectionIngress Direction = "ingress"
	// DirectionEgress means local -> SOME/IP: the gateway discovers a local
	// consumer record and forwards its samples onto the tunnel.
	DirectionEgress Direction = "egress"
)

// EventEntry is one bridged event within a [ServiceEntry].
type EventEntry struct {
	Name        string   `yaml:"name"`
	EventID     uint16   `yaml:"event_id"`
	EventGroups []uint16 `yaml:"event_groups"`
}

// ServiceEntry describes one bridged interface: its SOME/IP identity,
// bridging direction, and event table.
type ServiceEntry struct {
	Name       string       `yaml:"name"`
	Direction  Direction    `yaml:"direction"`
	ServiceID  uint16       `yaml:"service_id"`
	InstanceID uint16       `yaml:"instance_id"`
	Specifier  string       `yaml:"specifier"`
	Events     []EventEntry `yaml:"events"`
}

// Topology is the gateway's fixed startup configuration: the set of
// services to bridge and, for each, its direction and event table. It is a
// deliberate extension point: the service/event identities
// embedded in internal/eventset could instead be read from a file shaped
// like this one, without any change to the bridging engine itself.
//
// Per the explicit Non-goal against dynamic reconfiguration, a Topology is
// loaded once at startup and never re-read.
type Topology struct {
	Services []ServiceEntry `yaml:"services"`
}

// LoadTopology reads and parses a YAML topology file.
//
// It rejects a service entry carrying more than
// [someiptunnel.MaxServiceDescEvents] events with an error here, at load
// time, rather than letting the count surface later as a panic out of
// [someiptunnel.ServiceDesc.Append] when the entry's events are assembled
// into a FindService/OfferService frame.
func LoadTopology(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading topology file: %w", err)
	}
	var t Topology
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("config: parsing topology file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks every service entry's event count against the tunnel
// protocol's fixed-capacity ServiceDesc table.
func (t *Topology) Validate() error {
	for _, svc := range t.Services {
		if len(svc.Events) > someiptunnel.MaxServiceDescEvents {
			return fmt.Errorf("config: service %q has %d events, exceeds someiptunnel.MaxServiceDescEvents (%d)",
				svc.Name, len(svc.Events), someiptunnel.MaxServiceDescEvents)
		}
	}
	return nil
}
