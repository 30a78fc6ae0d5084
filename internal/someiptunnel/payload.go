// SPDX-License-Identifier: GPL-3.0-or-later

package someiptunnel

import "github.com/ivykit/someip-gateway/internal/wire"

// PayloadCapacity is the tunnel frame payload's fixed capacity, matching
// the original protocol's SomeipTunnelPayload.payload: [u8; 1500].
const PayloadCapacity = wire.MinCapacity

// NewPayload returns a scratch [wire.Buffer] sized exactly to the tunnel's
// fixed payload capacity. Egress codecs write into it via ToWireFunc;
// ingress reads its filled prefix via Bytes.
func NewPayload() *wire.Buffer {
	return wire.NewBuffer(PayloadCapacity)
}
