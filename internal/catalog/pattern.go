package catalog

import (
	"fmt"
	"regexp"
	"sync/atomic"

	"github.com/moolen/faultline/internal/models"
)

// FallbackPatternID is the synthetic pattern returned when no catalog
// pattern matches. It guarantees downstream stages never operate on an
// empty pattern set.
const FallbackPatternID = "unknown_error"

// Matcher decides whether a pattern accepts a piece of error text.
// The classifier lower-cases text before matching, so implementations
// can assume lower-case input. Alternative matchers (token-based,
// scored) can be substituted without touching the classifier loop.
type Matcher interface {
	Matches(text string) bool
}

// RegexMatcher is the stock Matcher backed by a compiled regular expression
type RegexMatcher struct {
	re *regexp.Regexp
}

// NewRegexMatcher compiles expr into a RegexMatcher
func NewRegexMatcher(expr string) (*RegexMatcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid matcher expression %q: %w", expr, err)
	}
	return &RegexMatcher{re: re}, nil
}

// Matches reports whether the expression accepts text
func (m *RegexMatcher) Matches(text string) bool {
	return m.re.MatchString(text)
}

// String returns the underlying expression
func (m *RegexMatcher) String() string {
	return m.re.String()
}

// Pattern is one named failure pattern of the catalog. Everything except
// the match counter is immutable after construction.
type Pattern struct {
	// ID uniquely identifies the pattern within the catalog
	ID string `json:"id"`

	// Name is the human-readable pattern name
	Name string `json:"name"`

	// Matcher accepts or rejects lower-cased error text
	Matcher Matcher `json:"-"`

	// Category is the error category the pattern classifies into
	Category models.Category `json:"category"`

	// Severity is the severity the pattern implies
	Severity models.Severity `json:"severity"`

	// Description explains what the pattern detects
	Description string `json:"description"`

	// CommonCauses are candidate root causes for this failure class
	CommonCauses []string `json:"commonCauses"`

	// SuggestedFixes are remediation suggestions for this failure class
	SuggestedFixes []string `json:"suggestedFixes"`

	// BusinessImpact is the business-impact tier of this failure class
	BusinessImpact models.BusinessImpact `json:"businessImpact"`

	// frequency counts matches since construction or the last reset.
	// Monotonically non-decreasing between resets.
	frequency atomic.Int64
}

// Frequency returns the number of matches recorded for the pattern
func (p *Pattern) Frequency() int64 {
	return p.frequency.Load()
}

// recordMatch increments the match counter
func (p *Pattern) recordMatch() {
	p.frequency.Add(1)
}

// resetFrequency zeroes the match counter
func (p *Pattern) resetFrequency() {
	p.frequency.Store(0)
}

// IsFallback reports whether the pattern is the synthetic fallback
func (p *Pattern) IsFallback() bool {
	return p.ID == FallbackPatternID
}

// newFallbackPattern builds the synthetic unknown_error pattern for an
// entry nothing else matched. Category and severity are copied from the
// entry; the pattern is never stored in the catalog and its frequency is
// not tracked.
func newFallbackPattern(entry *models.ErrorEntry) *Pattern {
	return &Pattern{
		ID:             FallbackPatternID,
		Name:           "Unknown Error",
		Category:       entry.Category,
		Severity:       entry.Severity,
		Description:    "Error did not match any known failure pattern",
		CommonCauses:   []string{"Unknown cause"},
		SuggestedFixes: []string{"Collect additional diagnostics and reproduce the failure"},
		BusinessImpact: models.BusinessImpactMedium,
	}
}
