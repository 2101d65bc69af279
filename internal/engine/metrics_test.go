package engine

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; !ok || want != lp.GetValue() {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() == name {
			for _, m := range mf.GetMetric() {
				return m.GetGauge().GetValue()
			}
		}
	}
	return 0
}

func TestMetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := newTestEngine(t, WithRegisterer(reg))
	ctx := context.Background()

	_, err := e.AnalyzeError(ctx, dbEntry("m-1", 0))
	require.NoError(t, err)
	_, err = e.AnalyzeError(ctx, dbEntry("m-2", time.Minute))
	require.NoError(t, err)

	assert.Equal(t, 2.0, counterValue(t, reg, "faultline_analyses_total", map[string]string{"category": "infrastructure"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "faultline_pattern_matches_total", map[string]string{"pattern": "database_connection"}))

	// both lookups missed the correlation cache; only the second, which
	// found a correlation, populated it
	assert.Equal(t, 2.0, counterValue(t, reg, "faultline_correlation_cache_misses_total", nil))
	assert.Equal(t, 1.0, gaugeValue(t, reg, "faultline_correlation_cache_entries"))
}

func TestMetricsBatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := newTestEngine(t, WithRegisterer(reg))

	entries := batchEntries()
	entries[0].ID = "" // one skipped record

	_, err := e.AnalyzeErrorBatch(context.Background(), entries)
	require.NoError(t, err)

	assert.Equal(t, 1.0, counterValue(t, reg, "faultline_batches_total", nil))
	assert.Equal(t, 1.0, counterValue(t, reg, "faultline_batch_errors_total", nil))
}
