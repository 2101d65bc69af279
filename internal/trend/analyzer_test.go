package trend

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/faultline/internal/models"
)

var testNow = time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(time.Hour).WithClock(func() time.Time { return testNow })
}

// entriesWithCounts builds one entry group where counts[i] errors land
// in the i-th bucket, oldest first. Entries sit mid-bucket so they
// cannot straddle a slot boundary.
func entriesWithCounts(component string, category models.Category, severity models.Severity, counts []int) []models.ErrorEntry {
	var entries []models.ErrorEntry
	slots := len(counts)
	for i, n := range counts {
		slot := slots - 1 - i
		ts := testNow.Add(-time.Duration(slot)*time.Hour - 30*time.Minute)
		for j := 0; j < n; j++ {
			entries = append(entries, models.ErrorEntry{
				ID:          fmt.Sprintf("%s-%d-%d", component, slot, j),
				Timestamp:   ts,
				Description: "trend sample",
				Category:    category,
				Severity:    severity,
				Component:   component,
			})
		}
	}
	return entries
}

func TestAnalyzeTrendsDirections(t *testing.T) {
	tests := []struct {
		name         string
		counts       []int
		wantTrend    models.TrendDirection
		wantStrength float64
	}{
		{
			// halves avg 1 vs 3: change ratio exactly 2.0 stays below
			// the spike threshold
			name:         "increasing",
			counts:       []int{1, 1, 1, 4, 4},
			wantTrend:    models.TrendIncreasing,
			wantStrength: 1.0,
		},
		{
			name:         "decreasing",
			counts:       []int{4, 4, 1, 1},
			wantTrend:    models.TrendDecreasing,
			wantStrength: 0.75,
		},
		{
			name:         "stable",
			counts:       []int{3, 3, 3, 3},
			wantTrend:    models.TrendStable,
			wantStrength: 0.0,
		},
		{
			// halves avg 1 vs 4: change ratio 3.0 exceeds the spike
			// threshold; reported strength is still clamped
			name:         "spike",
			counts:       []int{1, 1, 4, 4},
			wantTrend:    models.TrendSpike,
			wantStrength: 1.0,
		},
		{
			// small drift within the stable band
			name:         "stable band",
			counts:       []int{5, 5, 6, 5},
			wantTrend:    models.TrendStable,
			wantStrength: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAnalyzer()
			entries := entriesWithCounts("checkout", models.CategoryFunctional, models.SeverityHigh, tt.counts)

			got := a.AnalyzeTrends(entries)
			require.Len(t, got, 1)

			trend := got[0]
			assert.Equal(t, "functional_checkout", trend.ErrorType)
			assert.Equal(t, models.CategoryFunctional, trend.Category)
			assert.Equal(t, tt.wantTrend, trend.Trend)
			assert.InDelta(t, tt.wantStrength, trend.TrendStrength, 1e-9)
		})
	}
}

func TestAnalyzeTrendsOccurrences(t *testing.T) {
	a := newTestAnalyzer()
	entries := entriesWithCounts("search", models.CategoryPerformance, models.SeverityMedium, []int{2, 0, 3})

	got := a.AnalyzeTrends(entries)
	require.Len(t, got, 1)

	points := got[0].Occurrences
	require.Len(t, points, 3, "empty slots appear as zero buckets")

	assert.Equal(t, testNow.Add(-3*time.Hour), points[0].Timestamp)
	assert.Equal(t, 2, points[0].Count)
	assert.Equal(t, models.SeverityMedium, points[0].Severity)

	assert.Equal(t, testNow.Add(-2*time.Hour), points[1].Timestamp)
	assert.Equal(t, 0, points[1].Count)
	assert.Equal(t, models.SeverityLow, points[1].Severity)

	assert.Equal(t, testNow.Add(-time.Hour), points[2].Timestamp)
	assert.Equal(t, 3, points[2].Count)
}

func TestAnalyzeTrendsGapCountsAgainstItsHalf(t *testing.T) {
	a := newTestAnalyzer()
	entries := entriesWithCounts("booking", models.CategoryIntegration, models.SeverityHigh, []int{1, 0, 0, 0, 4})

	got := a.AnalyzeTrends(entries)
	require.Len(t, got, 1)

	// halves avg 0.5 vs 4/3: ratio ~1.67, clamped strength 1
	assert.Equal(t, models.TrendIncreasing, got[0].Trend)
	assert.InDelta(t, 1.0, got[0].TrendStrength, 1e-9)
}

func TestAnalyzeTrendsSkipsSparseGroups(t *testing.T) {
	a := newTestAnalyzer()
	entries := entriesWithCounts("checkout", models.CategoryFunctional, models.SeverityHigh, []int{2, 2})
	entries = append(entries, models.ErrorEntry{
		ID:        "lonely",
		Timestamp: testNow.Add(-time.Minute),
		Category:  models.CategorySecurity,
		Severity:  models.SeverityLow,
		Component: "auth",
	})

	got := a.AnalyzeTrends(entries)
	require.Len(t, got, 1)
	assert.Equal(t, "functional_checkout", got[0].ErrorType)
}

func TestAnalyzeTrendsSorted(t *testing.T) {
	a := newTestAnalyzer()

	var entries []models.ErrorEntry
	// strength 0: stable
	entries = append(entries, entriesWithCounts("stable-comp", models.CategoryFunctional, models.SeverityLow, []int{2, 2})...)
	// strength 0.75: decreasing
	entries = append(entries, entriesWithCounts("falling-comp", models.CategoryPerformance, models.SeverityLow, []int{4, 4, 1, 1})...)
	// strength 1.0: spike
	entries = append(entries, entriesWithCounts("spiking-comp", models.CategorySecurity, models.SeverityLow, []int{1, 1, 4, 4})...)

	got := a.AnalyzeTrends(entries)
	require.Len(t, got, 3)
	assert.Equal(t, "security_spiking-comp", got[0].ErrorType)
	assert.Equal(t, "performance_falling-comp", got[1].ErrorType)
	assert.Equal(t, "functional_stable-comp", got[2].ErrorType)
}

func TestAnalyzeTrendsFutureEntriesClampToNewestBucket(t *testing.T) {
	a := newTestAnalyzer()
	entries := []models.ErrorEntry{
		{ID: "past", Timestamp: testNow.Add(-90 * time.Minute), Category: models.CategoryFunctional, Severity: models.SeverityLow, Component: "c"},
		{ID: "future", Timestamp: testNow.Add(time.Minute), Category: models.CategoryFunctional, Severity: models.SeverityLow, Component: "c"},
	}

	got := a.AnalyzeTrends(entries)
	require.Len(t, got, 1)
	require.Len(t, got[0].Occurrences, 2)
	assert.Equal(t, 1, got[0].Occurrences[1].Count)
}

func TestProjectedImpact(t *testing.T) {
	a := newTestAnalyzer()
	entries := entriesWithCounts("checkout", models.CategoryFunctional, models.SeverityCritical, []int{1, 1, 4, 4})

	got := a.AnalyzeTrends(entries)
	require.Len(t, got, 1)
	assert.Equal(t, "Error rate spiked sharply; immediate critical-severity impact likely", got[0].ProjectedImpact)
}

func TestHalfChangeRatio(t *testing.T) {
	tests := []struct {
		name   string
		counts []float64
		want   float64
	}{
		{name: "too short", counts: []float64{3}, want: 0},
		{name: "flat", counts: []float64{2, 2, 2, 2}, want: 0},
		{name: "doubling", counts: []float64{1, 1, 2, 2}, want: 1},
		{name: "zero first half", counts: []float64{0, 0, 2, 2}, want: 1},
		{name: "all zero", counts: []float64{0, 0, 0, 0}, want: 0},
		{name: "odd length", counts: []float64{2, 4, 4}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, halfChangeRatio(tt.counts), 1e-9)
		})
	}
}

func TestSeverityFromRank(t *testing.T) {
	assert.Equal(t, models.SeverityLow, severityFromRank(1.2))
	assert.Equal(t, models.SeverityMedium, severityFromRank(1.6))
	assert.Equal(t, models.SeverityHigh, severityFromRank(3.4))
	assert.Equal(t, models.SeverityCritical, severityFromRank(3.9))
}
