// SPDX-License-Identifier: GPL-3.0-or-later

package localtransport

import (
	"context"
	"sync"
)

// MemRuntime is an in-process reference [Runtime]: specifiers are resolved
// against builder/finder functions registered ahead of time, with no actual
// shared-memory transport underneath. It exists so the orchestrator and its
// tests can exercise the full discovery/offer/bridge lifecycle without the
// real iceoryx2 cgo binding, which this module only consumes an interface
// shape from (see DESIGN.md).
type MemRuntime struct {
	mu        sync.Mutex
	producers map[InstanceSpecifier]ProducerBuilder
	finders   map[InstanceSpecifier]ServiceFinder
}

// NewMemRuntime returns an empty runtime; call RegisterProducer/RegisterFinder
// before handing it to an ingress or egress bridge.
func NewMemRuntime() *MemRuntime {
	return &MemRuntime{
		producers: make(map[InstanceSpecifier]ProducerBuilder),
		finders:   make(map[InstanceSpecifier]ServiceFinder),
	}
}

// RegisterProducer binds specifier to a builder for a local producer record.
func (r *MemRuntime) RegisterProducer(specifier InstanceSpecifier, builder ProducerBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.producers[specifier] = builder
}

// RegisterFinder binds specifier to a service finder for a local consumer
// record.
func (r *MemRuntime) RegisterFinder(specifier InstanceSpecifier, finder ServiceFinder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finders[specifier] = finder
}

// ProducerBuilder implements [Runtime].
func (r *MemRuntime) ProducerBuilder(specifier InstanceSpecifier) ProducerBuilder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.producers[specifier]
}

// FindService implements [Runtime].
func (r *MemRuntime) FindService(specifier InstanceSpecifier) ServiceFinder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finders[specifier]
}

// memProducerBuilderFunc adapts a plain build function to [ProducerBuilder].
type memProducerBuilderFunc func() (Producer, error)

func (f memProducerBuilderFunc) Build() (Producer, error) { return f() }

// NewMemProducerBuilder wraps build as a [ProducerBuilder] suitable for
// [MemRuntime.RegisterProducer].
func NewMemProducerBuilder(build func() (Producer, error)) ProducerBuilder {
	return memProducerBuilderFunc(build)
}

// MemInstanceHandle is a fixed, statically-known instance of a local
// consumer record, discoverable once its backing [MemService] is offered.
type MemInstanceHandle struct {
	instanceID uint16
	build      func() (Consumer, error)
}

// InstanceID implements [InstanceHandle].
func (h *MemInstanceHandle) InstanceID() uint16 { return h.instanceID }

// Build implements [InstanceHandle].
func (h *MemInstanceHandle) Build() (Consumer, error) { return h.build() }

// MemFinder is a [ServiceFinder] backed by one [MemService]: it reports the
// handle available whenever the service is offered, matching the real
// runtime's polling-based discovery without an actual network round trip.
type MemFinder struct {
	Service    *MemService
	InstanceID uint16
	Build      func() (Consumer, error)
}

// AvailableInstances implements [ServiceFinder].
func (f *MemFinder) AvailableInstances(ctx context.Context) ([]InstanceHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !f.Service.Offered() {
		return nil, nil
	}
	return []InstanceHandle{&MemInstanceHandle{instanceID: f.InstanceID, build: f.Build}}, nil
}
