// SPDX-License-Identifier: GPL-3.0-or-later

package bridge

import (
	"context"

	"github.com/ivykit/someip-gateway/internal/localtransport"
	"github.com/ivykit/someip-gateway/internal/mapping"
)

// fakeProducer and fakeOfferedProducer implement localtransport.Producer /
// localtransport.OfferedProducer for exercising IngressBridge without a
// real local transport.
type fakeProducer struct {
	offerErr error
	offered  *fakeOfferedProducer
}

func newFakeProducer() *fakeProducer {
	return &fakeProducer{offered: &fakeOfferedProducer{publishers: map[mapping.EventMapping]mapping.BridgeableEvent{}}}
}

var _ localtransport.Producer = (*fakeProducer)(nil)

func (p *fakeProducer) Offer(context.Context) (localtransport.OfferedProducer, error) {
	if p.offerErr != nil {
		return nil, p.offerErr
	}
	p.offered.unoffered = p
	return p.offered, nil
}

type fakeOfferedProducer struct {
	unoffered  *fakeProducer
	unofferErr error
	publishers map[mapping.EventMapping]mapping.BridgeableEvent
}

var _ localtransport.OfferedProducer = (*fakeOfferedProducer)(nil)

func (o *fakeOfferedProducer) Unoffer(context.Context) (localtransport.Producer, error) {
	if o.unofferErr != nil {
		return nil, o.unofferErr
	}
	return o.unoffered, nil
}

func (o *fakeOfferedProducer) Publisher(m mapping.EventMapping) mapping.BridgeableEvent {
	event, ok := o.publishers[m]
	if !ok {
		panic("bridge: no publisher registered for mapping (test fixture bug)")
	}
	return event
}
