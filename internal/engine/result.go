package engine

import (
	"github.com/moolen/faultline/internal/catalog"
	"github.com/moolen/faultline/internal/models"
)

// ErrorAnalysisResult aggregates one analyzed error with every analysis
// stage's output and a derived overall confidence score.
type ErrorAnalysisResult struct {
	// AnalysisID uniquely identifies this analysis run
	AnalysisID string `json:"analysisId"`

	// Entry is the analyzed error record
	Entry models.ErrorEntry `json:"entry"`

	// Patterns are the matched failure patterns, never empty: when no
	// catalog pattern matches, the synthetic unknown_error pattern is
	// present instead.
	Patterns []*catalog.Pattern `json:"patterns"`

	// Correlations are the temporal/component/category correlations
	// found against the history at analysis time
	Correlations []models.ErrorCorrelation `json:"correlations"`

	// RootCause is the ranked root-cause analysis
	RootCause models.RootCauseAnalysis `json:"rootCause"`

	// Impact is the user/business/technical impact assessment
	Impact models.ImpactAssessment `json:"impact"`

	// Recommendations is the deduplicated remediation list combining
	// pattern fixes, root-cause actions and category-specific advice
	Recommendations []string `json:"recommendations"`

	// Confidence is the [0,1] measure of how much evidence backs this result
	Confidence float64 `json:"confidence"`
}

// BatchResult is the output of analyzing a batch of errors
type BatchResult struct {
	// Analyses holds one result per successfully analyzed entry, in
	// submission order
	Analyses []*ErrorAnalysisResult `json:"analyses"`

	// Trends are the per-(category, component) trend classifications
	// over the batch
	Trends []models.ErrorTrend `json:"trends"`

	// GlobalCorrelations are batch-wide temporal clusters
	GlobalCorrelations []models.ErrorCorrelation `json:"globalCorrelations"`

	// Summary aggregates counts and top patterns across the batch
	Summary models.BatchSummary `json:"summary"`

	// Errors marks records that were skipped; the batch continues past
	// them
	Errors []models.BatchError `json:"errors,omitempty"`
}
