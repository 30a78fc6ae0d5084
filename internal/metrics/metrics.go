// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exposes the gateway's Prometheus instrumentation: frame
// counts, E2E outcomes, producer offer state, and egress retry counts. It
// is opt-in ambient telemetry: [Metrics] satisfies [telemetry.Metrics], the
// small interface internal/bridge and internal/orchestrator actually
// depend on, so neither package imports prometheus directly.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ivykit/someip-gateway/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector the gateway registers.
type Metrics struct {
	FramesBridgedTotal   *prometheus.CounterVec
	E2EOutcomesTotal     *prometheus.CounterVec
	ProducerOffered      *prometheus.GaugeVec
	EgressRetriesTotal   *prometheus.CounterVec
	TunnelSendErrorsTotal *prometheus.CounterVec
}

// New registers every collector against reg and returns the handle used to
// record them. Passing a fresh [prometheus.NewRegistry] keeps tests
// isolated from the global default registry.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		FramesBridgedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "someip_gateway",
			Name:      "frames_bridged_total",
			Help:      "Frames bridged between the SOME/IP tunnel and the local transport.",
		}, []string{"service_id", "direction"}),
		E2EOutcomesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "someip_gateway",
			Name:      "e2e_outcomes_total",
			Help:      "E2E profile check outcomes by status.",
		}, []string{"service_id", "status"}),
		ProducerOffered: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "someip_gateway",
			Name:      "producer_offered",
			Help:      "1 if a local producer is currently offered, 0 otherwise.",
		}, []string{"service_id"}),
		EgressRetriesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "someip_gateway",
			Name:      "egress_retries_total",
			Help:      "Egress subscription receive retries due to no sample being ready.",
		}, []string{"service_id"}),
		TunnelSendErrorsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "someip_gateway",
			Name:      "tunnel_send_errors_total",
			Help:      "Failed Tunnel.Send calls.",
		}, []string{"service_id"}),
	}
}

var _ telemetry.Metrics = (*Metrics)(nil)

func serviceIDLabel(serviceID uint16) string { return fmt.Sprintf("%#x", serviceID) }

// FrameBridged implements [telemetry.Metrics].
func (m *Metrics) FrameBridged(serviceID uint16, direction string) {
	m.FramesBridgedTotal.WithLabelValues(serviceIDLabel(serviceID), direction).Inc()
}

// E2EOutcome implements [telemetry.Metrics].
func (m *Metrics) E2EOutcome(serviceID uint16, status string) {
	m.E2EOutcomesTotal.WithLabelValues(serviceIDLabel(serviceID), status).Inc()
}

// EgressRetry implements [telemetry.Metrics].
func (m *Metrics) EgressRetry(serviceID uint16) {
	m.EgressRetriesTotal.WithLabelValues(serviceIDLabel(serviceID)).Inc()
}

// TunnelSendError implements [telemetry.Metrics].
func (m *Metrics) TunnelSendError(serviceID uint16) {
	m.TunnelSendErrorsTotal.WithLabelValues(serviceIDLabel(serviceID)).Inc()
}

// SetProducerOffered implements [telemetry.Metrics].
func (m *Metrics) SetProducerOffered(serviceID uint16, offered bool) {
	v := 0.0
	if offered {
		v = 1.0
	}
	m.ProducerOffered.WithLabelValues(serviceIDLabel(serviceID)).Set(v)
}

// Handler returns the HTTP handler to mount at /metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ServeContext runs an HTTP server exposing /metrics on addr until ctx is
// cancelled, then shuts it down. It blocks for the server's lifetime.
func ServeContext(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
