// SPDX-License-Identifier: GPL-3.0-or-later

// Package bridge implements the two bridging engines that move events
// between the local transport and the SOME/IP tunnel: an
// IngressBridge per SOME/IP-to-local producer, and an EgressBridge per
// local-to-SOME/IP consumer.
package bridge

import "github.com/ivykit/someip-gateway/internal/localtransport"

// ServiceDescription names one SOME/IP service instance and the local
// specifier it is bound to.
type ServiceDescription struct {
	ServiceID  uint16
	InstanceID uint16
	Specifier  localtransport.InstanceSpecifier
}
