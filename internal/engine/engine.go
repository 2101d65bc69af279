// Package engine is the error analysis and categorization engine: it
// classifies error records against a failure-pattern catalog, detects
// temporal and component correlations, infers probable root causes,
// scores impact, and in batch mode detects trends across a sliding
// observation window.
//
// The engine is pure in-process analysis over data handed to it. It
// performs no network, disk or external calls; persistence, alerting
// and rendering are external collaborators consuming its results.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/moolen/faultline/internal/catalog"
	"github.com/moolen/faultline/internal/config"
	"github.com/moolen/faultline/internal/correlation"
	"github.com/moolen/faultline/internal/impact"
	"github.com/moolen/faultline/internal/logging"
	"github.com/moolen/faultline/internal/models"
	"github.com/moolen/faultline/internal/rootcause"
	"github.com/moolen/faultline/internal/trend"
)

// tracerName identifies the engine's instrumentation scope
const tracerName = "github.com/moolen/faultline/internal/engine"

// Result-confidence composition. Pattern evidence dominates; a
// correlation adds a small bonus and the root-cause confidence
// contributes proportionally.
const (
	confidenceBaseMatched     = 0.7
	confidenceBaseFallback    = 0.3
	confidenceCorrelationBump = 0.1
	confidenceRootCauseWeight = 0.2
)

// Engine owns the pattern catalog, the error history and the
// correlation cache. All state has an explicit lifecycle: initialized
// at construction, grown by every AnalyzeError call, and reset only by
// ClearErrorHistory.
type Engine struct {
	cfg        *config.Config
	catalog    *catalog.Catalog
	classifier *catalog.Classifier
	finder     *correlation.Finder
	rootCause  *rootcause.Analyzer
	impact     *impact.Assessor
	trends     *trend.Analyzer
	metrics    *Metrics
	logger     *logging.Logger
	tracer     trace.Tracer

	mu      sync.Mutex
	history []models.ErrorEntry
}

// Option customizes engine construction
type Option func(*options)

type options struct {
	catalog    *catalog.Catalog
	registerer prometheus.Registerer
	clock      func() time.Time
}

// WithCatalog injects a pre-built pattern catalog, overriding both the
// built-in definitions and cfg.CatalogPath.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *options) { o.catalog = c }
}

// WithRegisterer registers the engine's metrics on the given registerer
// instead of a private one.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithClock overrides the engine's notion of "now" for trend analysis.
// Tests and replay runs use this for reproducibility.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// New constructs an engine from configuration. A nil cfg uses the
// defaults. The pattern catalog comes from, in order of precedence,
// WithCatalog, cfg.CatalogPath, or the built-in definitions.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cat := o.catalog
	if cat == nil {
		if cfg.CatalogPath != "" {
			loaded, err := catalog.NewFromFile(cfg.CatalogPath)
			if err != nil {
				return nil, err
			}
			cat = loaded
		} else {
			cat = catalog.NewDefault()
		}
	}

	finder, err := correlation.NewFinder(cfg.CorrelationWindow, cfg.GlobalCorrelationWindow, cfg.CorrelationCacheSize)
	if err != nil {
		return nil, err
	}

	reg := o.registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	trends := trend.NewAnalyzer(cfg.TrendWindow)
	if o.clock != nil {
		trends.WithClock(o.clock)
	}

	return &Engine{
		cfg:        cfg,
		catalog:    cat,
		classifier: catalog.NewClassifier(cat),
		finder:     finder,
		rootCause:  rootcause.NewAnalyzer(),
		impact:     impact.NewAssessor(cfg),
		trends:     trends,
		metrics:    NewMetrics(reg, finder.CacheInfo),
		logger:     logging.GetLogger("engine"),
		tracer:     otel.Tracer(tracerName),
	}, nil
}

// Catalog exposes the engine's pattern catalog, e.g. for attaching a
// catalog file Watcher or exporting the active definitions.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// AnalyzeError analyzes a single error record. Side effects: the entry
// is appended to the history and every matched catalog pattern's
// frequency counter is incremented.
//
// The returned result always carries at least one pattern.
func (e *Engine) AnalyzeError(ctx context.Context, entry *models.ErrorEntry) (*ErrorAnalysisResult, error) {
	_, span := e.tracer.Start(ctx, "engine.AnalyzeError")
	defer span.End()

	if entry == nil {
		return nil, models.NewValidationError("entry must not be nil")
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("entry.id", entry.ID),
		attribute.String("entry.category", string(entry.Category)),
		attribute.String("entry.severity", string(entry.Severity)),
	)

	patterns := e.classifier.Classify(entry)

	// Snapshot the history before appending so the entry never
	// correlates with itself; both steps under one lock so concurrent
	// batch workers see a consistent history.
	e.mu.Lock()
	snapshot := e.history
	e.history = append(e.history, *entry)
	e.mu.Unlock()

	correlations := e.finder.Correlate(entry, snapshot)
	rootCause := e.rootCause.Analyze(entry, patterns, correlations)
	impactAssessment := e.impact.Assess(entry, patterns)

	result := &ErrorAnalysisResult{
		AnalysisID:      uuid.NewString(),
		Entry:           *entry,
		Patterns:        patterns,
		Correlations:    correlations,
		RootCause:       rootCause,
		Impact:          impactAssessment,
		Recommendations: buildRecommendations(entry, patterns, rootCause),
		Confidence:      resultConfidence(patterns, correlations, rootCause),
	}

	e.metrics.AnalysesTotal.WithLabelValues(string(entry.Category)).Inc()
	for _, p := range patterns {
		e.metrics.PatternMatchesTotal.WithLabelValues(p.ID).Inc()
	}

	e.logger.DebugWithFields("entry analyzed",
		logging.Field("entry_id", entry.ID),
		logging.Field("patterns", len(patterns)),
		logging.Field("correlations", len(correlations)),
		logging.Field("overall_severity", impactAssessment.OverallSeverity),
	)

	return result, nil
}

// GetErrorStatistics returns a read-only snapshot of accumulated
// history and catalog state. Distribution maps always contain every
// category and severity key.
func (e *Engine) GetErrorStatistics() models.Statistics {
	e.mu.Lock()
	history := e.history
	e.mu.Unlock()

	categories := make(map[models.Category]int, len(models.Categories))
	for _, c := range models.Categories {
		categories[c] = 0
	}
	severities := make(map[models.Severity]int, len(models.Severities))
	for _, s := range models.Severities {
		severities[s] = 0
	}
	for i := range history {
		categories[history[i].Category]++
		severities[history[i].Severity]++
	}

	return models.Statistics{
		TotalErrors:          len(history),
		PatternFrequencies:   e.catalog.Frequencies(),
		CategoryDistribution: categories,
		SeverityDistribution: severities,
		CorrelationCache:     e.finder.CacheInfo(),
	}
}

// ClearErrorHistory resets the history, purges the correlation cache,
// and zeroes every pattern's frequency counter. The catalog definitions
// themselves are kept. Idempotent.
func (e *Engine) ClearErrorHistory() {
	e.mu.Lock()
	e.history = nil
	e.mu.Unlock()

	e.finder.Purge()
	e.catalog.ResetFrequencies()
	e.logger.Info("error history cleared")
}

// buildRecommendations merges pattern fixes, root-cause actions and
// category-specific advice into one deduplicated list, preserving
// first-occurrence order.
func buildRecommendations(entry *models.ErrorEntry, patterns []*catalog.Pattern, rootCause models.RootCauseAnalysis) []string {
	var recommendations []string
	seen := make(map[string]struct{})
	add := func(rec string) {
		if _, dup := seen[rec]; dup || rec == "" {
			return
		}
		seen[rec] = struct{}{}
		recommendations = append(recommendations, rec)
	}

	for _, p := range patterns {
		for _, fix := range p.SuggestedFixes {
			add(fix)
		}
	}
	for _, action := range rootCause.RecommendedActions {
		add(action.Action)
	}

	switch entry.Category {
	case models.CategorySecurity:
		add("Schedule a security audit of the affected component")
	case models.CategoryPerformance:
		add("Capture performance profiles on the affected path")
	case models.CategoryDataQuality:
		add("Reconcile the affected records against their source of truth")
	}

	return recommendations
}

// resultConfidence derives the overall [0,1] confidence of one result
func resultConfidence(patterns []*catalog.Pattern, correlations []models.ErrorCorrelation, rootCause models.RootCauseAnalysis) float64 {
	confidence := confidenceBaseFallback
	for _, p := range patterns {
		if !p.IsFallback() {
			confidence = confidenceBaseMatched
			break
		}
	}
	if len(correlations) > 0 {
		confidence += confidenceCorrelationBump
	}
	confidence += confidenceRootCauseWeight * rootCause.Confidence
	return models.Clamp01(confidence)
}
