// SPDX-License-Identifier: GPL-3.0-or-later

package telemetry

// Metrics is the bridging engine's counters/gauge surface, kept as a small
// interface here rather than importing prometheus directly into
// internal/bridge, internal/orchestrator, or internal/someiptunnel, the
// same way [SLogger] keeps those packages independent of log/slog.
type Metrics interface {
	// FrameBridged records one frame successfully moved between the tunnel
	// and the local transport. direction is "ingress" or "egress".
	FrameBridged(serviceID uint16, direction string)

	// E2EOutcome records one E2E profile check result for serviceID.
	E2EOutcome(serviceID uint16, status string)

	// EgressRetry records one SubscriberProxy receive attempt that found no
	// sample ready and is about to retry.
	EgressRetry(serviceID uint16)

	// TunnelSendError records one failed Tunnel.Send call for serviceID.
	TunnelSendError(serviceID uint16)

	// SetProducerOffered records whether serviceID's local producer is
	// currently offered.
	SetProducerOffered(serviceID uint16, offered bool)
}

// DefaultMetrics returns the default [Metrics]: a no-op implementation, so
// the gateway records nothing unless a caller configures a real one.
func DefaultMetrics() Metrics { return noopMetrics{} }

type noopMetrics struct{}

var _ Metrics = noopMetrics{}

func (noopMetrics) FrameBridged(uint16, string)     {}
func (noopMetrics) E2EOutcome(uint16, string)       {}
func (noopMetrics) EgressRetry(uint16)              {}
func (noopMetrics) TunnelSendError(uint16)          {}
func (noopMetrics) SetProducerOffered(uint16, bool) {}
