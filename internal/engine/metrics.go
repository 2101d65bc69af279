package engine

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/moolen/faultline/internal/models"
)

// Metrics holds Prometheus metrics for engine observability.
type Metrics struct {
	AnalysesTotal       *prometheus.CounterVec // analyses by entry category
	PatternMatchesTotal *prometheus.CounterVec // matches by pattern id
	BatchesTotal        prometheus.Counter     // batches analyzed
	BatchErrorsTotal    prometheus.Counter     // records skipped inside batches
}

// NewMetrics creates engine metrics registered on the given registerer.
// Injecting the registerer keeps tests isolated from the global
// registry. cacheInfo feeds the correlation-cache gauges.
func NewMetrics(reg prometheus.Registerer, cacheInfo func() models.CorrelationCacheInfo) *Metrics {
	analysesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "faultline_analyses_total",
		Help: "Total number of analyzed error entries",
	}, []string{"category"})

	patternMatchesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "faultline_pattern_matches_total",
		Help: "Total number of pattern matches",
	}, []string{"pattern"})

	batchesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "faultline_batches_total",
		Help: "Total number of analyzed batches",
	})

	batchErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "faultline_batch_errors_total",
		Help: "Total number of records skipped inside batches",
	})

	reg.MustRegister(analysesTotal)
	reg.MustRegister(patternMatchesTotal)
	reg.MustRegister(batchesTotal)
	reg.MustRegister(batchErrorsTotal)

	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "faultline_correlation_cache_entries",
		Help: "Current number of entries in the correlation cache",
	}, func() float64 { return float64(cacheInfo().Entries) }))
	reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "faultline_correlation_cache_hits_total",
		Help: "Total number of correlation cache hits",
	}, func() float64 { return float64(cacheInfo().Hits) }))
	reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "faultline_correlation_cache_misses_total",
		Help: "Total number of correlation cache misses",
	}, func() float64 { return float64(cacheInfo().Misses) }))
	reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "faultline_correlation_cache_evictions_total",
		Help: "Total number of correlation cache evictions",
	}, func() float64 { return float64(cacheInfo().Evictions) }))

	return &Metrics{
		AnalysesTotal:       analysesTotal,
		PatternMatchesTotal: patternMatchesTotal,
		BatchesTotal:        batchesTotal,
		BatchErrorsTotal:    batchErrorsTotal,
	}
}
