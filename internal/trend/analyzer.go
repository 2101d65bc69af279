// Package trend buckets historical errors into fixed-width time slots
// per (category, component) group and classifies the direction and
// strength of change between the older and newer half of the window.
package trend

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/moolen/faultline/internal/logging"
	"github.com/moolen/faultline/internal/models"
)

// stableBand is the change ratio below which a group counts as stable
const stableBand = 0.2

// spikeThreshold is the unclamped change ratio above which a group
// counts as a spike rather than a plain increase
const spikeThreshold = 2.0

// Analyzer computes error trends over a sliding observation window.
// The clock is injectable so replays and tests are deterministic.
type Analyzer struct {
	window time.Duration
	now    func() time.Time
	logger *logging.Logger
}

// NewAnalyzer creates a trend analyzer with the given bucket width
func NewAnalyzer(window time.Duration) *Analyzer {
	return &Analyzer{
		window: window,
		now:    time.Now,
		logger: logging.GetLogger("trend"),
	}
}

// WithClock overrides the analyzer's clock. Used by tests and replay runs.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

// AnalyzeTrends groups entries by (category, component), buckets each
// group into window-wide time slots measured backward from now, and
// classifies the change between the first and second half of the
// buckets. Groups with fewer than two entries are skipped. Results are
// sorted by descending trend strength.
func (a *Analyzer) AnalyzeTrends(entries []models.ErrorEntry) []models.ErrorTrend {
	groups := make(map[string][]models.ErrorEntry)
	for _, e := range entries {
		key := fmt.Sprintf("%s_%s", e.Category, e.Component)
		groups[key] = append(groups[key], e)
	}

	now := a.now()
	var trends []models.ErrorTrend
	for key, group := range groups {
		if len(group) < 2 {
			continue
		}
		trends = append(trends, a.analyzeGroup(key, group, now))
	}

	a.logger.Debug("analyzed %d trend groups from %d entries", len(trends), len(entries))

	sort.SliceStable(trends, func(i, j int) bool {
		if trends[i].TrendStrength != trends[j].TrendStrength {
			return trends[i].TrendStrength > trends[j].TrendStrength
		}
		return trends[i].ErrorType < trends[j].ErrorType
	})

	return trends
}

func (a *Analyzer) analyzeGroup(key string, group []models.ErrorEntry, now time.Time) models.ErrorTrend {
	type bucket struct {
		count       int
		severitySum int
	}

	// Slot s covers [now-(s+1)*window, now-s*window). Entries from the
	// future clamp into slot 0.
	maxSlot := 0
	slots := make(map[int]*bucket)
	severitySum := 0
	for _, e := range group {
		slot := int(now.Sub(e.Timestamp) / a.window)
		if slot < 0 {
			slot = 0
		}
		if slot > maxSlot {
			maxSlot = slot
		}
		b := slots[slot]
		if b == nil {
			b = &bucket{}
			slots[slot] = b
		}
		b.count++
		b.severitySum += e.Severity.Rank()
		severitySum += e.Severity.Rank()
	}

	// Buckets ordered oldest to newest; slots without entries stay at
	// zero so gaps count against the half they fall into.
	occurrences := make([]models.TrendPoint, 0, maxSlot+1)
	counts := make([]float64, 0, maxSlot+1)
	for slot := maxSlot; slot >= 0; slot-- {
		point := models.TrendPoint{
			Timestamp: now.Add(-time.Duration(slot+1) * a.window),
			Severity:  models.SeverityLow,
		}
		if b := slots[slot]; b != nil {
			point.Count = b.count
			point.Severity = severityFromRank(float64(b.severitySum) / float64(b.count))
		}
		occurrences = append(occurrences, point)
		counts = append(counts, float64(point.Count))
	}

	change := halfChangeRatio(counts)
	strength := models.Clamp01(math.Abs(change))
	direction := classify(change)
	avgSeverity := severityFromRank(float64(severitySum) / float64(len(group)))

	return models.ErrorTrend{
		ErrorType:       key,
		Category:        group[0].Category,
		Occurrences:     occurrences,
		Trend:           direction,
		TrendStrength:   strength,
		ProjectedImpact: projectedImpact(direction, avgSeverity),
	}
}

// halfChangeRatio splits the bucket counts into first and second halves
// and returns (secondAvg - firstAvg) / firstAvg. A zero first-half
// average with a non-zero second half is treated as a full increase.
func halfChangeRatio(counts []float64) float64 {
	if len(counts) < 2 {
		return 0
	}

	mid := len(counts) / 2
	firstAvg := mean(counts[:mid])
	secondAvg := mean(counts[mid:])

	if firstAvg == 0 {
		if secondAvg == 0 {
			return 0
		}
		return 1
	}
	return (secondAvg - firstAvg) / firstAvg
}

// classify maps the unclamped change ratio to a direction. Spikes are
// decided on the raw ratio; the reported strength is clamped to [0,1]
// separately.
func classify(change float64) models.TrendDirection {
	switch {
	case math.Abs(change) > spikeThreshold:
		return models.TrendSpike
	case change > stableBand:
		return models.TrendIncreasing
	case change < -stableBand:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

func projectedImpact(direction models.TrendDirection, severity models.Severity) string {
	switch direction {
	case models.TrendIncreasing:
		return fmt.Sprintf("Error rate is increasing; expect growing %s-severity impact if unaddressed", severity)
	case models.TrendDecreasing:
		return fmt.Sprintf("Error rate is decreasing; residual %s-severity impact should subside", severity)
	case models.TrendSpike:
		return fmt.Sprintf("Error rate spiked sharply; immediate %s-severity impact likely", severity)
	default:
		return fmt.Sprintf("Error rate is stable at %s severity", severity)
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// severityFromRank renders an average severity rank back to the nearest
// ordinal severity.
func severityFromRank(rank float64) models.Severity {
	switch r := int(math.Round(rank)); {
	case r >= 4:
		return models.SeverityCritical
	case r == 3:
		return models.SeverityHigh
	case r == 2:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
