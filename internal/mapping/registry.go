// SPDX-License-Identifier: GPL-3.0-or-later

// Package mapping implements the event mapping registry: the
// per-interface dispatch table that turns a wire event name into the opaque
// token used everywhere else in the bridging engine, and that token back
// into the E2E profile instance the event was generated with.
//
// A Registry is built once at startup (typically from a generated or
// hand-written init function per interface, mirroring gateway_generated's
// SomeIPMappingTrait impls) and never mutated afterward; it holds no
// per-connection state.
package mapping

import (
	"fmt"

	"github.com/ivykit/someip-gateway/internal/e2e"
)

// EventMapping is an opaque token identifying one event within one
// interface. It is stable for the lifetime of the process that built the
// owning [Registry], but carries no meaning across processes or releases.
type EventMapping struct {
	token uint64
}

// BridgeableEvent is the type-erased ingress publishing surface a
// [Registry] hands back for a given mapping. Concrete implementations adapt a typed local Publisher plus its
// FromWireFunc into this single method.
type BridgeableEvent interface {
	// BridgeEvent decodes data under profile and publishes the result to the
	// local transport. profile is the same instance CreateE2EInstance
	// returned for this event's mapping.
	BridgeEvent(data []byte, profile e2e.Profile) error
}

type registryEntry struct {
	token      EventMapping
	newProfile func() e2e.Profile
}

// Registry is a name-indexed event mapping table for a single interface.
type Registry struct {
	byName  map[string]registryEntry
	byToken map[EventMapping]registryEntry
	next    uint64
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]registryEntry),
		byToken: make(map[EventMapping]registryEntry),
	}
}

// Register associates an event name with the factory that produces a fresh
// instance of its E2E profile, returning the mapping token other components
// use to refer to this event. Register is meant to be called only during
// Registry construction; it is not safe for concurrent use with lookups.
func (r *Registry) Register(name string, newProfile func() e2e.Profile) EventMapping {
	r.next++
	token := EventMapping{token: r.next}
	entry := registryEntry{token: token, newProfile: newProfile}
	r.byName[name] = entry
	r.byToken[token] = entry
	return token
}

// EventMappingFor looks up the mapping token for an event name.
func (r *Registry) EventMappingFor(name string) (EventMapping, bool) {
	entry, ok := r.byName[name]
	return entry.token, ok
}

// CreateE2EInstance builds a fresh E2E profile for mapping. It panics if mapping was not produced by this
// Registry's Register calls: that can only happen from a build-time bug
// such as a mapping token crossing between two unrelated interfaces.
func (r *Registry) CreateE2EInstance(mapping EventMapping) e2e.Profile {
	entry, ok := r.byToken[mapping]
	if !ok {
		panic(fmt.Sprintf("mapping: no profile registered for mapping %v (build-time bug)", mapping))
	}
	return entry.newProfile()
}
