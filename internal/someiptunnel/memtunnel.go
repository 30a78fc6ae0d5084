// SPDX-License-Identifier: GPL-3.0-or-later

package someiptunnel

import (
	"context"

	"github.com/ivykit/someip-gateway/internal/wire"
)

type frame struct {
	header  Header
	payload *wire.Buffer
}

// MemTunnel is an in-process [Tunnel] backed by buffered channels, used to
// exercise the bridging engine without a real remote SOME/IP stack. Two
// linked MemTunnel values, created by NewMemTunnelPair, form a loopback: one
// side's Send feeds the other side's Receive.
type MemTunnel struct {
	out chan frame
	in  chan frame
}

var _ Tunnel = (*MemTunnel)(nil)

// NewMemTunnelPair returns two MemTunnel values wired so that gateway.Send
// delivers to remote.Receive and vice versa.
func NewMemTunnelPair(capacity int) (gateway, remote *MemTunnel) {
	ab := make(chan frame, capacity)
	ba := make(chan frame, capacity)
	gateway = &MemTunnel{out: ab, in: ba}
	remote = &MemTunnel{out: ba, in: ab}
	return gateway, remote
}

// Handshake is a no-op for MemTunnel: there is no separate liveness channel
// to stand up, the pair is ready as soon as it is constructed.
func (t *MemTunnel) Handshake(ctx context.Context) error {
	return ctx.Err()
}

func (t *MemTunnel) Send(ctx context.Context, header Header, payload *wire.Buffer) error {
	select {
	case t.out <- frame{header: header, payload: payload}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *MemTunnel) Receive(ctx context.Context) (Header, *wire.Buffer, error) {
	select {
	case f := <-t.in:
		return f.header, f.payload, nil
	case <-ctx.Done():
		return Header{}, nil, ctx.Err()
	}
}
