// Package impact scores user-journey disruption, business exposure and
// technical consequences of an error and folds them into one overall
// severity. Every score is a lookup over fixed rule tables; unknown
// lookup keys fall back to documented defaults.
package impact

import (
	"github.com/moolen/faultline/internal/catalog"
	"github.com/moolen/faultline/internal/config"
	"github.com/moolen/faultline/internal/models"
)

// Disruption levels, ordered weakest to strongest
const (
	DisruptionMinor    = "minor"
	DisruptionModerate = "moderate"
	DisruptionMajor    = "major"
	DisruptionBlocking = "blocking"
)

// Stability levels
const (
	StabilityStable   = "stable"
	StabilityDegraded = "degraded"
	StabilityUnstable = "unstable"
)

// Risk levels, ordered weakest to strongest
var riskLevels = []string{"minimal", "low", "medium", "high", "critical"}

// userJourneyDisruption by error category; unlisted categories are minor
var disruptionByCategory = map[models.Category]string{
	models.CategoryFunctional:  DisruptionMajor,
	models.CategorySecurity:    DisruptionBlocking,
	models.CategoryPerformance: DisruptionMinor,
	models.CategoryUsability:   DisruptionMinor,
}

// affected-user multiplier by category; unlisted categories are 1.0
var userMultiplierByCategory = map[models.Category]float64{
	models.CategorySecurity:    2.0,
	models.CategoryFunctional:  1.5,
	models.CategoryPerformance: 1.2,
	models.CategoryUsability:   1.0,
}

// revenue base per severity, in currency units
var revenueBaseBySeverity = map[models.Severity]float64{
	models.SeverityCritical: 10000,
	models.SeverityHigh:     5000,
	models.SeverityMedium:   1000,
	models.SeverityLow:      100,
}

type technicalProfile struct {
	stability         string
	degradationPct    int
	cascadingFailures []string
}

// technical impact by category; unlisted categories get the stable default
var technicalByCategory = map[models.Category]technicalProfile{
	models.CategoryInfrastructure: {
		stability:         StabilityUnstable,
		degradationPct:    50,
		cascadingFailures: []string{"Database connections", "API responses"},
	},
	models.CategoryPerformance: {stability: StabilityDegraded, degradationPct: 25},
	models.CategoryIntegration: {stability: StabilityDegraded, degradationPct: 15},
}

var defaultTechnical = technicalProfile{stability: StabilityStable, degradationPct: 5}

// Assessor scores the impact of an error. The per-component user-base
// table comes from configuration; components missing from it fall back
// to the configured default (100 users).
type Assessor struct {
	defaultUserBase   int
	componentUserBase map[string]int
}

// NewAssessor creates an impact assessor from engine configuration
func NewAssessor(cfg *config.Config) *Assessor {
	return &Assessor{
		defaultUserBase:   cfg.DefaultUserBase,
		componentUserBase: cfg.ComponentUserBase,
	}
}

// Assess scores one error against its matched patterns
func (a *Assessor) Assess(entry *models.ErrorEntry, patterns []*catalog.Pattern) models.ImpactAssessment {
	user := a.assessUserImpact(entry, patterns)
	business := assessBusinessImpact(entry, patterns)
	technical := assessTechnicalImpact(entry)

	return models.ImpactAssessment{
		ErrorID:         entry.ID,
		UserImpact:      user,
		BusinessImpact:  business,
		TechnicalImpact: technical,
		OverallSeverity: overallSeverity(user, business, technical),
	}
}

func (a *Assessor) assessUserImpact(entry *models.ErrorEntry, patterns []*catalog.Pattern) models.UserImpact {
	disruption, ok := disruptionByCategory[entry.Category]
	if !ok {
		disruption = DisruptionMinor
	}

	base, ok := a.componentUserBase[entry.Component]
	if !ok {
		base = a.defaultUserBase
	}
	multiplier, ok := userMultiplierByCategory[entry.Category]
	if !ok {
		multiplier = 1.0
	}

	features := []string{entry.Component}
	seen := map[string]struct{}{entry.Component: {}}
	for _, p := range patterns {
		if _, dup := seen[p.Name]; dup {
			continue
		}
		seen[p.Name] = struct{}{}
		features = append(features, p.Name)
	}

	return models.UserImpact{
		UserJourneyDisruption:  disruption,
		EstimatedAffectedUsers: int(float64(base) * multiplier),
		AffectedFeatures:       features,
	}
}

func assessBusinessImpact(entry *models.ErrorEntry, patterns []*catalog.Pattern) models.BusinessImpactDetail {
	// Highest business-impact tier across matched patterns; unknown
	// tiers weigh 1.0
	maxTier := 1.0
	for _, p := range patterns {
		if w := p.BusinessImpact.Weight(); w > maxTier {
			maxTier = w
		}
	}

	base, ok := revenueBaseBySeverity[entry.Severity]
	if !ok {
		base = revenueBaseBySeverity[models.SeverityLow]
	}

	isSecurity := entry.Category == models.CategorySecurity

	return models.BusinessImpactDetail{
		RevenueExposure: maxTier * base,
		ReputationRisk:  reputationRisk(entry.Severity, isSecurity),
		ComplianceRisk:  complianceRisk(entry.Severity, isSecurity),
	}
}

// reputationRisk maps severity to a risk level, bumped one level for
// security errors.
func reputationRisk(severity models.Severity, isSecurity bool) string {
	var idx int
	switch severity {
	case models.SeverityCritical:
		idx = 3 // high
	case models.SeverityHigh:
		idx = 2 // medium
	case models.SeverityMedium:
		idx = 1 // low
	default:
		idx = 0 // minimal
	}
	if isSecurity && idx < len(riskLevels)-1 {
		idx++
	}
	return riskLevels[idx]
}

func complianceRisk(severity models.Severity, isSecurity bool) string {
	if isSecurity {
		switch severity {
		case models.SeverityCritical:
			return "critical"
		case models.SeverityHigh:
			return "high"
		default:
			return "medium"
		}
	}
	if severity == models.SeverityCritical {
		return "medium"
	}
	return "low"
}

func assessTechnicalImpact(entry *models.ErrorEntry) models.TechnicalImpact {
	profile, ok := technicalByCategory[entry.Category]
	if !ok {
		profile = defaultTechnical
	}
	return models.TechnicalImpact{
		SystemStability:        profile.stability,
		PerformanceDegradation: profile.degradationPct,
		CascadingFailures:      profile.cascadingFailures,
	}
}

// overallSeverity folds the three impact dimensions into one ordinal
// severity via a weighted point score:
//
//	disruption   0-4 (blocking 4, major 3, moderate 2, minor 1)
//	revenue      0-3 (>=50000: 3, >=10000: 2, >=1000: 1)
//	reputation   0-2 (critical/high 2, medium 1)
//	stability    0-3 (unstable 3, degraded 1)
//	degradation  0-2 (>=40%: 2, >=15%: 1)
//
// Thresholds: >=8 critical, >=5 high, >=2 medium, else low.
func overallSeverity(user models.UserImpact, business models.BusinessImpactDetail, technical models.TechnicalImpact) models.Severity {
	points := 0

	switch user.UserJourneyDisruption {
	case DisruptionBlocking:
		points += 4
	case DisruptionMajor:
		points += 3
	case DisruptionModerate:
		points += 2
	case DisruptionMinor:
		points++
	}

	switch {
	case business.RevenueExposure >= 50000:
		points += 3
	case business.RevenueExposure >= 10000:
		points += 2
	case business.RevenueExposure >= 1000:
		points++
	}

	switch business.ReputationRisk {
	case "critical", "high":
		points += 2
	case "medium":
		points++
	}

	switch technical.SystemStability {
	case StabilityUnstable:
		points += 3
	case StabilityDegraded:
		points++
	}

	switch {
	case technical.PerformanceDegradation >= 40:
		points += 2
	case technical.PerformanceDegradation >= 15:
		points++
	}

	switch {
	case points >= 8:
		return models.SeverityCritical
	case points >= 5:
		return models.SeverityHigh
	case points >= 2:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
