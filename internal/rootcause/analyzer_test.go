package rootcause

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/faultline/internal/catalog"
	"github.com/moolen/faultline/internal/models"
)

func testEntry() *models.ErrorEntry {
	return &models.ErrorEntry{
		ID:          "err-1",
		Timestamp:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Description: "connection refused to database",
		Category:    models.CategoryInfrastructure,
		Severity:    models.SeverityCritical,
		Component:   "booking",
	}
}

func patternWithCauses(t *testing.T, id string, causes ...string) *catalog.Pattern {
	t.Helper()
	cat, err := catalog.New([]catalog.Definition{{
		ID:           id,
		Name:         "Test Pattern " + id,
		Matcher:      "unmatched-" + id,
		Category:     models.CategoryInfrastructure,
		Severity:     models.SeverityHigh,
		CommonCauses: causes,
	}})
	require.NoError(t, err)
	p := cat.Get(id)
	require.NotNil(t, p)
	return p
}

func TestAnalyzePatternCauses(t *testing.T) {
	a := NewAnalyzer()
	entry := testEntry()
	p := patternWithCauses(t, "p1", "Database server down or unreachable", "Connection pool exhausted")

	got := a.Analyze(entry, []*catalog.Pattern{p}, nil)

	assert.Equal(t, "err-1", got.ErrorID)
	require.Len(t, got.PossibleCauses, 2)
	for _, c := range got.PossibleCauses {
		assert.InDelta(t, 0.7, c.Probability, 1e-9)
		assert.Equal(t, causeCategoryInfrastructure, c.Category)
		require.Len(t, c.Evidence, 2)
		assert.Equal(t, "Matched pattern: Test Pattern p1", c.Evidence[0])
		assert.Equal(t, "Error description: connection refused to database", c.Evidence[1])
	}

	// No correlations: confidence is the plain average
	assert.InDelta(t, 0.7, got.Confidence, 1e-9)
}

func TestAnalyzeCorrelationCauses(t *testing.T) {
	a := NewAnalyzer()
	entry := testEntry()

	correlations := []models.ErrorCorrelation{
		{
			PrimaryErrorID:      "err-1",
			RelatedErrorIDs:     []string{"err-0"},
			CorrelationStrength: 0.4,
			TimeWindow:          5 * time.Minute,
			Pattern:             models.CorrelationComponentRelated,
			RootCause:           "Multiple errors in component: booking",
		},
		{
			PrimaryErrorID:  "err-1",
			RelatedErrorIDs: []string{"err-0"},
			Pattern:         models.CorrelationCategoryRelated,
			// No root cause text, must be skipped
		},
	}

	got := a.Analyze(entry, nil, correlations)

	require.Len(t, got.PossibleCauses, 1)
	c := got.PossibleCauses[0]
	assert.Equal(t, "Multiple errors in component: booking", c.Cause)
	assert.InDelta(t, 0.4, c.Probability, 1e-9)
	assert.Equal(t, causeCategoryInfrastructure, c.Category)
	require.Len(t, c.Evidence, 1)
	assert.Equal(t, "1 related errors within 5m0s", c.Evidence[0])

	// 0.4 average plus the correlation bonus
	assert.InDelta(t, 0.6, got.Confidence, 1e-9)
}

func TestAnalyzeContextHeuristics(t *testing.T) {
	tests := []struct {
		name        string
		context     map[string]string
		wantCause   string
		wantProb    float64
		wantCat     string
		wantMissing string
	}{
		{
			name:        "mobile user agent",
			context:     map[string]string{models.ContextKeyUserAgent: "Mozilla/5.0 (iPhone) Mobile Safari"},
			wantCause:   "Mobile-specific issue",
			wantProb:    0.6,
			wantCat:     causeCategoryCode,
			wantMissing: "Development environment issue",
		},
		{
			name:        "localhost url",
			context:     map[string]string{models.ContextKeyURL: "http://localhost:3000/checkout"},
			wantCause:   "Development environment issue",
			wantProb:    0.8,
			wantCat:     causeCategoryConfiguration,
			wantMissing: "Mobile-specific issue",
		},
		{
			name:        "desktop production context",
			context:     map[string]string{models.ContextKeyUserAgent: "Mozilla/5.0 (X11; Linux)", models.ContextKeyURL: "https://example.com"},
			wantMissing: "Mobile-specific issue",
		},
	}

	a := NewAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := testEntry()
			entry.Context = tt.context

			got := a.Analyze(entry, nil, nil)

			causes := map[string]models.PossibleCause{}
			for _, c := range got.PossibleCauses {
				causes[c.Cause] = c
			}

			if tt.wantCause != "" {
				c, ok := causes[tt.wantCause]
				require.True(t, ok, "expected cause %q", tt.wantCause)
				assert.InDelta(t, tt.wantProb, c.Probability, 1e-9)
				assert.Equal(t, tt.wantCat, c.Category)
			}
			assert.NotContains(t, causes, tt.wantMissing)
		})
	}
}

func TestAnalyzeDeduplicatesFirstWins(t *testing.T) {
	a := NewAnalyzer()
	entry := testEntry()

	// Same cause text from a pattern (0.7) and from a correlation
	// (strength 0.9): the first occurrence keeps its probability.
	p := patternWithCauses(t, "p1", "Multiple errors in component: booking")
	correlations := []models.ErrorCorrelation{{
		PrimaryErrorID:      "err-1",
		RelatedErrorIDs:     []string{"a", "b", "c"},
		CorrelationStrength: 0.9,
		TimeWindow:          5 * time.Minute,
		Pattern:             models.CorrelationComponentRelated,
		RootCause:           "Multiple errors in component: booking",
	}}

	got := a.Analyze(entry, []*catalog.Pattern{p}, correlations)

	require.Len(t, got.PossibleCauses, 1)
	assert.InDelta(t, 0.7, got.PossibleCauses[0].Probability, 1e-9)
}

func TestAnalyzeRankingAndTruncation(t *testing.T) {
	a := NewAnalyzer()
	entry := testEntry()
	entry.Context = map[string]string{
		models.ContextKeyUserAgent: "Mobile",
		models.ContextKeyURL:       "http://localhost/app",
	}

	causes := make([]string, 5)
	for i := range causes {
		causes[i] = fmt.Sprintf("Pattern cause %d", i)
	}
	p := patternWithCauses(t, "p1", causes...)

	got := a.Analyze(entry, []*catalog.Pattern{p}, nil)

	require.Len(t, got.PossibleCauses, 5, "seven candidates truncate to five")
	assert.Equal(t, "Development environment issue", got.PossibleCauses[0].Cause)
	for i := 1; i < 5; i++ {
		assert.InDelta(t, 0.7, got.PossibleCauses[i].Probability, 1e-9)
	}
	// Stable sort keeps insertion order among the 0.7 pattern causes
	assert.Equal(t, "Pattern cause 0", got.PossibleCauses[1].Cause)
	assert.Equal(t, "Pattern cause 1", got.PossibleCauses[2].Cause)
}

func TestRecommendActions(t *testing.T) {
	a := NewAnalyzer()
	entry := testEntry()
	p := patternWithCauses(t, "p1",
		"Misconfigured connection string", // configuration
		"Database server down",            // infrastructure
		"Corrupt payload received",        // data
		"Third-party provider outage",     // external, beyond top three
	)

	got := a.Analyze(entry, []*catalog.Pattern{p}, nil)

	require.Len(t, got.RecommendedActions, 3)
	assert.Equal(t, "Update configuration for the affected component", got.RecommendedActions[0].Action)
	assert.Equal(t, "high", got.RecommendedActions[0].Priority)
	assert.Equal(t, "low", got.RecommendedActions[0].Effort)
	assert.Equal(t, "Check infrastructure components and their capacity", got.RecommendedActions[1].Action)
	assert.Equal(t, "Validate and clean data feeding the affected flow", got.RecommendedActions[2].Action)
}

func TestRecommendActionsDeduplicated(t *testing.T) {
	a := NewAnalyzer()
	entry := testEntry()
	// Three causes in the same category collapse to one action
	p := patternWithCauses(t, "p1",
		"Database server down",
		"Network partition between services",
		"Memory capacity exceeded",
	)

	got := a.Analyze(entry, []*catalog.Pattern{p}, nil)

	require.Len(t, got.RecommendedActions, 1)
	assert.Equal(t, "Check infrastructure components and their capacity", got.RecommendedActions[0].Action)
}

func TestAnalyzeConfidenceClamped(t *testing.T) {
	a := NewAnalyzer()
	entry := testEntry()
	entry.Context = map[string]string{models.ContextKeyURL: "http://localhost/app"}

	correlations := []models.ErrorCorrelation{{
		PrimaryErrorID:      "err-1",
		RelatedErrorIDs:     []string{"a", "b", "c", "d"},
		CorrelationStrength: 1.0,
		TimeWindow:          5 * time.Minute,
		Pattern:             models.CorrelationComponentRelated,
		RootCause:           "Multiple errors in component: booking",
	}}

	got := a.Analyze(entry, nil, correlations)

	// avg(1.0, 0.8) = 0.9, plus 0.2 bonus, clamped to 1
	assert.Equal(t, 1.0, got.Confidence)
}

func TestAnalyzeNoCandidates(t *testing.T) {
	a := NewAnalyzer()
	got := a.Analyze(testEntry(), nil, nil)

	assert.Empty(t, got.PossibleCauses)
	assert.Empty(t, got.RecommendedActions)
	assert.Zero(t, got.Confidence)
}

func TestClassifyCauseCategory(t *testing.T) {
	tests := []struct {
		cause string
		want  string
	}{
		{"Misconfigured environment variable", causeCategoryConfiguration},
		{"Third-party payment gateway outage", causeCategoryExternal},
		{"Database connection pool exhausted", causeCategoryInfrastructure},
		{"Multiple errors in component: booking", causeCategoryInfrastructure},
		{"Schema migration left inconsistent rows", causeCategoryData},
		{"Unhandled nil pointer in handler", causeCategoryCode},
	}

	for _, tt := range tests {
		t.Run(tt.cause, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyCauseCategory(tt.cause))
		})
	}
}
