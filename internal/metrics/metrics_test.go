// SPDX-License-Identifier: GPL-3.0-or-later

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.FramesBridgedTotal.WithLabelValues("0x1001", "ingress").Inc()
	m.ProducerOffered.WithLabelValues("0x1001").Set(1)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	var sawFrames bool
	for _, f := range families {
		if f.GetName() == "someip_gateway_frames_bridged_total" {
			sawFrames = true
			require.Equal(t, dto.MetricType_COUNTER, f.GetType())
		}
	}
	require.True(t, sawFrames)
}

func TestMetricsImplementsTelemetryMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.FrameBridged(0x1001, "ingress")
	m.E2EOutcome(0x1001, "ok")
	m.EgressRetry(0x1010)
	m.TunnelSendError(0x1010)
	m.SetProducerOffered(0x1001, true)

	require.Equal(t, float64(1), testutilCounterValue(t, m.FramesBridgedTotal.WithLabelValues("0x1001", "ingress")))
	require.Equal(t, float64(1), testutilCounterValue(t, m.E2EOutcomesTotal.WithLabelValues("0x1001", "ok")))
	require.Equal(t, float64(1), testutilCounterValue(t, m.EgressRetriesTotal.WithLabelValues("0x1010")))
	require.Equal(t, float64(1), testutilCounterValue(t, m.TunnelSendErrorsTotal.WithLabelValues("0x1010")))

	m.SetProducerOffered(0x1001, false)
}

func testutilCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, c.Write(&out))
	return out.GetCounter().GetValue()
}
