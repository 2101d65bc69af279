// Package correlation finds temporal, component and category proximity
// between error records. Per-entry results are memoized in a bounded
// LRU cache keyed by (component, category).
package correlation

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/moolen/faultline/internal/logging"
	"github.com/moolen/faultline/internal/models"
)

// Finder scans error history for records related to the one under
// analysis. Safe for concurrent use.
type Finder struct {
	window       time.Duration
	globalWindow time.Duration
	cache        *lru.Cache[string, []models.ErrorCorrelation]
	logger       *logging.Logger

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewFinder creates a correlation finder. window is the pairwise
// correlation window around an entry's timestamp, globalWindow the
// forward-scan window for batch-wide clustering, cacheSize the LRU
// bound of the memoization cache.
func NewFinder(window, globalWindow time.Duration, cacheSize int) (*Finder, error) {
	if cacheSize <= 0 {
		return nil, fmt.Errorf("cacheSize must be positive, got %d", cacheSize)
	}

	f := &Finder{
		window:       window,
		globalWindow: globalWindow,
		logger:       logging.GetLogger("correlation"),
	}

	cache, err := lru.NewWithEvict[string, []models.ErrorCorrelation](cacheSize, func(string, []models.ErrorCorrelation) {
		f.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	f.cache = cache
	return f, nil
}

// CacheKey is the memoization key for an entry's correlations
func CacheKey(entry *models.ErrorEntry) string {
	return fmt.Sprintf("%s_%s", entry.Component, entry.Category)
}

// Correlate returns the correlations for entry against history.
//
// A cached result for the entry's (component, category) key is returned
// unchanged regardless of the entry's own timestamp. That staleness is
// deliberate: the cache is a memo of "what does this component/category
// pair correlate with", bounded by LRU eviction and purged on history
// clear.
func (f *Finder) Correlate(entry *models.ErrorEntry, history []models.ErrorEntry) []models.ErrorCorrelation {
	key := CacheKey(entry)
	if cached, ok := f.cache.Get(key); ok {
		f.hits.Add(1)
		out := make([]models.ErrorCorrelation, len(cached))
		copy(out, cached)
		return out
	}
	f.misses.Add(1)

	correlations := f.compute(entry, history)

	// Empty results are not memoized: the first entry of a
	// (component, category) pair necessarily finds nothing, and caching
	// that would blind every later entry of the pair.
	if len(correlations) > 0 {
		f.cache.Add(key, correlations)
	}

	out := make([]models.ErrorCorrelation, len(correlations))
	copy(out, correlations)
	return out
}

// compute filters history to entries within the window of the entry's
// timestamp (both before and after), excluding the entry itself, and
// emits one correlation per non-empty grouping.
func (f *Finder) compute(entry *models.ErrorEntry, history []models.ErrorEntry) []models.ErrorCorrelation {
	var sameComponent, sameCategory []string

	for i := range history {
		prior := &history[i]
		if prior.ID == entry.ID {
			continue
		}
		if absDuration(entry.Timestamp.Sub(prior.Timestamp)) > f.window {
			continue
		}
		if prior.Component == entry.Component {
			sameComponent = append(sameComponent, prior.ID)
		}
		if prior.Category == entry.Category {
			sameCategory = append(sameCategory, prior.ID)
		}
	}

	var correlations []models.ErrorCorrelation

	// Strength scales with the size of the whole cluster, the entry
	// under analysis included: two errors in one component score
	// 2/5 = 0.4.
	if len(sameComponent) > 0 {
		correlations = append(correlations, models.ErrorCorrelation{
			PrimaryErrorID:      entry.ID,
			RelatedErrorIDs:     sameComponent,
			CorrelationStrength: models.Clamp01(float64(len(sameComponent)+1) / 5),
			TimeWindow:          f.window,
			Pattern:             models.CorrelationComponentRelated,
			RootCause:           fmt.Sprintf("Multiple errors in component: %s", entry.Component),
		})
	}

	if len(sameCategory) > 0 {
		correlations = append(correlations, models.ErrorCorrelation{
			PrimaryErrorID:      entry.ID,
			RelatedErrorIDs:     sameCategory,
			CorrelationStrength: models.Clamp01(float64(len(sameCategory)+1) / 3),
			TimeWindow:          f.window,
			Pattern:             models.CorrelationCategoryRelated,
			RootCause:           fmt.Sprintf("Multiple %s errors detected", entry.Category),
		})
	}

	if len(correlations) > 0 {
		f.logger.DebugWithFields("correlations found",
			logging.Field("entry_id", entry.ID),
			logging.Field("component_related", len(sameComponent)),
			logging.Field("category_related", len(sameCategory)),
		)
	}

	return correlations
}

// FindGlobalCorrelations runs the batch-wide temporal clustering pass:
// the batch is sorted by timestamp and, for every entry, entries within
// the forward scan window are collected. Clusters of at least two
// related entries are reported as temporal_cluster correlations.
//
// Results are independent of the per-entry cache and never stored in it.
func (f *Finder) FindGlobalCorrelations(entries []models.ErrorEntry) []models.ErrorCorrelation {
	if len(entries) < 3 {
		return nil
	}

	sorted := make([]models.ErrorEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var correlations []models.ErrorCorrelation
	for i := range sorted {
		var related []string
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].Timestamp.Sub(sorted[i].Timestamp) > f.globalWindow {
				break
			}
			related = append(related, sorted[j].ID)
		}
		if len(related) < 2 {
			continue
		}
		correlations = append(correlations, models.ErrorCorrelation{
			PrimaryErrorID:      sorted[i].ID,
			RelatedErrorIDs:     related,
			CorrelationStrength: models.Clamp01(float64(len(related)+1) / 5),
			TimeWindow:          f.globalWindow,
			Pattern:             models.CorrelationTemporalCluster,
			RootCause:           "Potential system-wide issue or cascading failure",
		})
	}

	return correlations
}

// Purge drops every cached correlation result
func (f *Finder) Purge() {
	f.cache.Purge()
}

// CacheInfo returns a snapshot of cache behavior counters
func (f *Finder) CacheInfo() models.CorrelationCacheInfo {
	return models.CorrelationCacheInfo{
		Entries:   f.cache.Len(),
		Hits:      f.hits.Load(),
		Misses:    f.misses.Load(),
		Evictions: f.evictions.Load(),
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
