package models

// Category classifies the functional area an error belongs to
type Category string

const (
	// CategoryFunctional represents feature or behavior defects
	CategoryFunctional Category = "functional"
	// CategoryPerformance represents latency and throughput problems
	CategoryPerformance Category = "performance"
	// CategorySecurity represents authentication, authorization and audit problems
	CategorySecurity Category = "security"
	// CategoryUsability represents UX-level problems
	CategoryUsability Category = "usability"
	// CategoryIntegration represents failures at third-party boundaries
	CategoryIntegration Category = "integration"
	// CategoryInfrastructure represents platform and resource failures
	CategoryInfrastructure Category = "infrastructure"
	// CategoryDataQuality represents corrupt, missing or inconsistent data
	CategoryDataQuality Category = "data_quality"
	// CategoryBusinessLogic represents domain-rule violations
	CategoryBusinessLogic Category = "business_logic"
)

// Categories lists every valid category in a stable order
var Categories = []Category{
	CategoryFunctional,
	CategoryPerformance,
	CategorySecurity,
	CategoryUsability,
	CategoryIntegration,
	CategoryInfrastructure,
	CategoryDataQuality,
	CategoryBusinessLogic,
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Severity is the ordinal ranking low < medium < high < critical
type Severity string

const (
	// SeverityLow represents cosmetic or negligible failures
	SeverityLow Severity = "low"
	// SeverityMedium represents failures with a workaround
	SeverityMedium Severity = "medium"
	// SeverityHigh represents failures blocking a significant flow
	SeverityHigh Severity = "high"
	// SeverityCritical represents failures requiring immediate response
	SeverityCritical Severity = "critical"
)

// Severities lists every valid severity from lowest to highest
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Valid reports whether s is one of the known severities
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// Rank returns the ordinal position (1=low .. 4=critical), 0 for unknown values
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// BusinessImpact is the ordinal tier minimal < low < medium < high < critical
type BusinessImpact string

const (
	// BusinessImpactMinimal has no measurable business cost
	BusinessImpactMinimal BusinessImpact = "minimal"
	// BusinessImpactLow has marginal business cost
	BusinessImpactLow BusinessImpact = "low"
	// BusinessImpactMedium affects a revenue-adjacent flow
	BusinessImpactMedium BusinessImpact = "medium"
	// BusinessImpactHigh affects a revenue-critical flow
	BusinessImpactHigh BusinessImpact = "high"
	// BusinessImpactCritical threatens revenue, reputation or compliance directly
	BusinessImpactCritical BusinessImpact = "critical"
)

// Weight converts the tier to its 1..5 numeric weight, defaulting unknown
// values to 1.0 as documented in the lookup-fallback policy.
func (b BusinessImpact) Weight() float64 {
	switch b {
	case BusinessImpactMinimal:
		return 1
	case BusinessImpactLow:
		return 2
	case BusinessImpactMedium:
		return 3
	case BusinessImpactHigh:
		return 4
	case BusinessImpactCritical:
		return 5
	default:
		return 1
	}
}

// Valid reports whether b is one of the known business-impact tiers
func (b BusinessImpact) Valid() bool {
	switch b {
	case BusinessImpactMinimal, BusinessImpactLow, BusinessImpactMedium,
		BusinessImpactHigh, BusinessImpactCritical:
		return true
	default:
		return false
	}
}

// TrendDirection classifies bucket-to-bucket movement of a trend group
type TrendDirection string

const (
	// TrendIncreasing means the error rate grew beyond the stable band
	TrendIncreasing TrendDirection = "increasing"
	// TrendDecreasing means the error rate shrank beyond the stable band
	TrendDecreasing TrendDirection = "decreasing"
	// TrendStable means the error rate stayed within the stable band
	TrendStable TrendDirection = "stable"
	// TrendSpike means the error rate jumped by more than 2x between halves
	TrendSpike TrendDirection = "spike"
)

// Clamp01 bounds v to the closed interval [0, 1].
// Every probability, strength and confidence value passes through here.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
