package models

import "time"

// Correlation pattern labels emitted by the correlation finder.
const (
	CorrelationComponentRelated = "component_related"
	CorrelationCategoryRelated  = "category_related"
	CorrelationTemporalCluster  = "temporal_cluster"
)

// ErrorCorrelation links one error to other errors observed close to it
// in time, component or category.
type ErrorCorrelation struct {
	// PrimaryErrorID is the entry the correlation was computed for
	PrimaryErrorID string `json:"primaryErrorId"`

	// RelatedErrorIDs are the entries found within the correlation window
	RelatedErrorIDs []string `json:"relatedErrorIds"`

	// CorrelationStrength is the [0,1] strength of the grouping
	CorrelationStrength float64 `json:"correlationStrength"`

	// TimeWindow is the window the related entries were found in
	TimeWindow time.Duration `json:"timeWindow"`

	// Pattern labels the kind of correlation (component_related,
	// category_related, temporal_cluster)
	Pattern string `json:"pattern"`

	// RootCause is an optional templated explanation of the grouping
	RootCause string `json:"rootCause,omitempty"`
}

// PossibleCause is one ranked root-cause candidate
type PossibleCause struct {
	Cause       string   `json:"cause"`
	Probability float64  `json:"probability"`
	Evidence    []string `json:"evidence"`
	Category    string   `json:"category"`
}

// RecommendedAction is a remediation suggestion derived from a cause
type RecommendedAction struct {
	Action   string `json:"action"`
	Priority string `json:"priority"`
	Effort   string `json:"effort"`
	Impact   string `json:"impact"`
}

// RootCauseAnalysis is the ranked, deduplicated cause list for one error
type RootCauseAnalysis struct {
	ErrorID            string              `json:"errorId"`
	PossibleCauses     []PossibleCause     `json:"possibleCauses"`
	RecommendedActions []RecommendedAction `json:"recommendedActions"`
	Confidence         float64             `json:"confidence"`
}

// UserImpact describes how the error disrupts user journeys
type UserImpact struct {
	// UserJourneyDisruption is one of minor, moderate, major, blocking
	UserJourneyDisruption string `json:"userJourneyDisruption"`

	// EstimatedAffectedUsers is the per-component base figure scaled by
	// the per-category multiplier
	EstimatedAffectedUsers int `json:"estimatedAffectedUsers"`

	// AffectedFeatures lists the component plus every matched pattern name
	AffectedFeatures []string `json:"affectedFeatures"`
}

// BusinessImpactDetail describes revenue, reputation and compliance exposure
type BusinessImpactDetail struct {
	// RevenueExposure is the estimated exposure in currency units
	RevenueExposure float64 `json:"revenueExposure"`

	// ReputationRisk is an ordinal risk level
	ReputationRisk string `json:"reputationRisk"`

	// ComplianceRisk is an ordinal risk level
	ComplianceRisk string `json:"complianceRisk"`
}

// TechnicalImpact describes system-level consequences
type TechnicalImpact struct {
	// SystemStability is one of stable, degraded, unstable
	SystemStability string `json:"systemStability"`

	// PerformanceDegradation is the expected degradation percentage
	PerformanceDegradation int `json:"performanceDegradation"`

	// CascadingFailures lists subsystems likely to fail next
	CascadingFailures []string `json:"cascadingFailures,omitempty"`
}

// ImpactAssessment folds user, business and technical impact into one
// overall severity.
type ImpactAssessment struct {
	ErrorID         string               `json:"errorId"`
	UserImpact      UserImpact           `json:"userImpact"`
	BusinessImpact  BusinessImpactDetail `json:"businessImpact"`
	TechnicalImpact TechnicalImpact      `json:"technicalImpact"`
	OverallSeverity Severity             `json:"overallSeverity"`
}

// TrendPoint is one time bucket of a trend group
type TrendPoint struct {
	// Timestamp is the start of the bucket
	Timestamp time.Time `json:"timestamp"`

	// Count is the number of entries in the bucket
	Count int `json:"count"`

	// Severity is the average severity of the bucket, rendered back to
	// the nearest ordinal
	Severity Severity `json:"severity"`
}

// ErrorTrend describes the direction of change of one
// (category, component) group across the observation window.
type ErrorTrend struct {
	ErrorType       string         `json:"errorType"`
	Category        Category       `json:"category"`
	Occurrences     []TrendPoint   `json:"occurrences"`
	Trend           TrendDirection `json:"trend"`
	TrendStrength   float64        `json:"trendStrength"`
	ProjectedImpact string         `json:"projectedImpact"`
}

// Statistics is a read-only snapshot of accumulated history and catalog state
type Statistics struct {
	TotalErrors          int                  `json:"totalErrors"`
	PatternFrequencies   map[string]int64     `json:"patternFrequencies"`
	CategoryDistribution map[Category]int     `json:"categoryDistribution"`
	SeverityDistribution map[Severity]int     `json:"severityDistribution"`
	CorrelationCache     CorrelationCacheInfo `json:"correlationCache"`
}

// CorrelationCacheInfo exposes cache behavior for observability
type CorrelationCacheInfo struct {
	Entries   int    `json:"entries"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// BatchSummary aggregates category/severity counts and top patterns
// across one analyzed batch.
type BatchSummary struct {
	TotalErrors    int              `json:"totalErrors"`
	CriticalErrors int              `json:"criticalErrors"`
	CategoryCounts map[Category]int `json:"categoryCounts"`
	SeverityCounts map[Severity]int `json:"severityCounts"`
	TopPatterns    []PatternCount   `json:"topPatterns"`
}

// PatternCount is one entry of the batch top-pattern ranking
type PatternCount struct {
	PatternID string `json:"patternId"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
}

// BatchError marks a record that was skipped inside a batch.
// The batch continues past it.
type BatchError struct {
	// Index is the position of the record in the submitted batch
	Index int `json:"index"`

	// EntryID is the record's id when it carried one
	EntryID string `json:"entryId,omitempty"`

	// Message is the validation or analysis failure message
	Message string `json:"message"`
}
