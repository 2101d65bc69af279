// Package rootcause ranks probable root causes for an analyzed error by
// combining matched-pattern causes, correlation-derived causes and
// context heuristics into a deduplicated probability-ordered list.
package rootcause

import (
	"fmt"
	"sort"
	"strings"

	"github.com/moolen/faultline/internal/catalog"
	"github.com/moolen/faultline/internal/logging"
	"github.com/moolen/faultline/internal/models"
)

// Base probabilities and bonuses of the ranking. These are part of the
// rule configuration, not learned.
const (
	patternCauseProbability    = 0.7
	mobileCauseProbability     = 0.6
	devEnvCauseProbability     = 0.8
	correlationConfidenceBonus = 0.2

	maxCauses  = 5
	maxActions = 3
)

// Cause categories used to select recommended actions
const (
	causeCategoryCode           = "code"
	causeCategoryConfiguration  = "configuration"
	causeCategoryInfrastructure = "infrastructure"
	causeCategoryData           = "data"
	causeCategoryExternal       = "external"
)

// Analyzer infers probable root causes. Stateless and safe for
// concurrent use.
type Analyzer struct {
	logger *logging.Logger
}

// NewAnalyzer creates a root-cause analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{logger: logging.GetLogger("rootcause")}
}

// Analyze builds the ranked cause list for one error.
//
// Candidates come from three sources: every common cause of every
// matched pattern (flat base probability), every correlation's root
// cause (probability equal to the correlation strength), and context
// heuristics over the entry's userAgent/url values. Candidates are
// deduplicated by exact cause text (first occurrence wins), sorted by
// descending probability and truncated to the top five. The top three
// surviving causes each contribute a recommended action selected by
// their cause category.
func (a *Analyzer) Analyze(entry *models.ErrorEntry, patterns []*catalog.Pattern, correlations []models.ErrorCorrelation) models.RootCauseAnalysis {
	var candidates []models.PossibleCause

	for _, p := range patterns {
		for _, cause := range p.CommonCauses {
			candidates = append(candidates, models.PossibleCause{
				Cause:       cause,
				Probability: patternCauseProbability,
				Evidence: []string{
					fmt.Sprintf("Matched pattern: %s", p.Name),
					fmt.Sprintf("Error description: %s", entry.Description),
				},
				Category: classifyCauseCategory(cause),
			})
		}
	}

	for _, corr := range correlations {
		if corr.RootCause == "" {
			continue
		}
		candidates = append(candidates, models.PossibleCause{
			Cause:       corr.RootCause,
			Probability: models.Clamp01(corr.CorrelationStrength),
			Evidence: []string{
				fmt.Sprintf("%d related errors within %s", len(corr.RelatedErrorIDs), corr.TimeWindow),
			},
			Category: classifyCauseCategory(corr.RootCause),
		})
	}

	candidates = append(candidates, contextCauses(entry)...)

	causes := rankCauses(candidates)
	actions := recommendActions(causes)

	a.logger.DebugWithFields("root cause candidates ranked",
		logging.Field("entry_id", entry.ID),
		logging.Field("candidates", len(candidates)),
		logging.Field("retained", len(causes)),
	)

	confidence := 0.0
	if len(causes) > 0 {
		sum := 0.0
		for _, c := range causes {
			sum += c.Probability
		}
		confidence = sum / float64(len(causes))
	}
	if len(correlations) > 0 {
		confidence += correlationConfidenceBonus
	}

	return models.RootCauseAnalysis{
		ErrorID:            entry.ID,
		PossibleCauses:     causes,
		RecommendedActions: actions,
		Confidence:         models.Clamp01(confidence),
	}
}

// contextCauses derives causes from the entry's context map
func contextCauses(entry *models.ErrorEntry) []models.PossibleCause {
	var causes []models.PossibleCause

	if strings.Contains(entry.ContextValue(models.ContextKeyUserAgent), "Mobile") {
		causes = append(causes, models.PossibleCause{
			Cause:       "Mobile-specific issue",
			Probability: mobileCauseProbability,
			Evidence:    []string{"User agent indicates a mobile client"},
			Category:    causeCategoryCode,
		})
	}

	if strings.Contains(entry.ContextValue(models.ContextKeyURL), "localhost") {
		causes = append(causes, models.PossibleCause{
			Cause:       "Development environment issue",
			Probability: devEnvCauseProbability,
			Evidence:    []string{"URL points at localhost"},
			Category:    causeCategoryConfiguration,
		})
	}

	return causes
}

// rankCauses deduplicates by exact cause text (first occurrence wins),
// sorts by descending probability and keeps the top five. The sort is
// stable so equal probabilities keep insertion order and results stay
// deterministic.
func rankCauses(candidates []models.PossibleCause) []models.PossibleCause {
	seen := make(map[string]struct{}, len(candidates))
	deduped := make([]models.PossibleCause, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.Cause]; dup {
			continue
		}
		seen[c.Cause] = struct{}{}
		c.Probability = models.Clamp01(c.Probability)
		deduped = append(deduped, c)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Probability > deduped[j].Probability
	})

	if len(deduped) > maxCauses {
		deduped = deduped[:maxCauses]
	}
	return deduped
}

// recommendActions maps the top three causes to actions by cause
// category, deduplicating identical actions.
func recommendActions(causes []models.PossibleCause) []models.RecommendedAction {
	limit := len(causes)
	if limit > maxActions {
		limit = maxActions
	}

	seen := make(map[string]struct{}, limit)
	var actions []models.RecommendedAction
	for _, cause := range causes[:limit] {
		action := actionForCategory(cause.Category)
		if _, dup := seen[action.Action]; dup {
			continue
		}
		seen[action.Action] = struct{}{}
		actions = append(actions, action)
	}
	return actions
}

func actionForCategory(category string) models.RecommendedAction {
	switch category {
	case causeCategoryConfiguration:
		return models.RecommendedAction{
			Action:   "Update configuration for the affected component",
			Priority: "high",
			Effort:   "low",
			Impact:   "high",
		}
	case causeCategoryInfrastructure:
		return models.RecommendedAction{
			Action:   "Check infrastructure components and their capacity",
			Priority: "high",
			Effort:   "high",
			Impact:   "high",
		}
	case causeCategoryData:
		return models.RecommendedAction{
			Action:   "Validate and clean data feeding the affected flow",
			Priority: "medium",
			Effort:   "medium",
			Impact:   "medium",
		}
	case causeCategoryExternal:
		return models.RecommendedAction{
			Action:   "Monitor external dependencies and engage their providers",
			Priority: "low",
			Effort:   "low",
			Impact:   "low",
		}
	default:
		return models.RecommendedAction{
			Action:   "Review and fix code in the affected component",
			Priority: "high",
			Effort:   "medium",
			Impact:   "high",
		}
	}
}

// classifyCauseCategory assigns a cause to an action category by
// keyword. Rule order matters: configuration and external cues win over
// the broader infrastructure bucket.
func classifyCauseCategory(cause string) string {
	lower := strings.ToLower(cause)

	switch {
	case containsAny(lower, "config", "environment", "setting", "misconfigur"):
		return causeCategoryConfiguration
	case containsAny(lower, "third-party", "external", "provider", "outage", "gateway", "dependency", "quota", "upstream"):
		return causeCategoryExternal
	case containsAny(lower, "database", "connection", "network", "server", "infrastructure", "memory", "capacity", "partition",
		"multiple errors", "cascading", "system-wide", "load balancer", "dns"):
		return causeCategoryInfrastructure
	case containsAny(lower, "data", "schema", "input", "migration", "corrupt", "payload"):
		return causeCategoryData
	default:
		return causeCategoryCode
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
