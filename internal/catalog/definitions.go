package catalog

import "github.com/moolen/faultline/internal/models"

// Definition is the serializable form of one pattern. It is what catalog
// files contain and what the built-in catalog is expressed as. Matcher
// expressions are applied to lower-cased text, so they are written in
// lower case.
type Definition struct {
	ID             string                `yaml:"id" json:"id"`
	Name           string                `yaml:"name" json:"name"`
	Matcher        string                `yaml:"matcher" json:"matcher"`
	Category       models.Category       `yaml:"category" json:"category"`
	Severity       models.Severity       `yaml:"severity" json:"severity"`
	Description    string                `yaml:"description" json:"description"`
	CommonCauses   []string              `yaml:"commonCauses" json:"commonCauses"`
	SuggestedFixes []string              `yaml:"suggestedFixes" json:"suggestedFixes"`
	BusinessImpact models.BusinessImpact `yaml:"businessImpact" json:"businessImpact"`
}

// BuiltinDefinitions returns the default pattern catalog. Callers get a
// fresh copy and may modify it before constructing a Catalog.
func BuiltinDefinitions() []Definition {
	defs := make([]Definition, len(builtinDefinitions))
	copy(defs, builtinDefinitions)
	return defs
}

var builtinDefinitions = []Definition{
	{
		ID:          "database_connection",
		Name:        "Database Connection Failure",
		Matcher:     `(database|db|sql).*(connection|refused|timeout|unavailable)|connection refused|econnrefused|too many connections`,
		Category:    models.CategoryInfrastructure,
		Severity:    models.SeverityCritical,
		Description: "The service cannot reach or hold a connection to its database",
		CommonCauses: []string{
			"Database server down or unreachable",
			"Connection pool exhaustion",
			"Network partition between service and database",
		},
		SuggestedFixes: []string{
			"Verify database availability and credentials",
			"Increase connection pool limits",
			"Add retry with exponential backoff",
		},
		BusinessImpact: models.BusinessImpactCritical,
	},
	{
		ID:          "authentication_failure",
		Name:        "Authentication Failure",
		Matcher:     `unauthorized|401|authentication failed|invalid (token|credentials)|session expired|login failed`,
		Category:    models.CategorySecurity,
		Severity:    models.SeverityHigh,
		Description: "A request was rejected because the caller could not be authenticated",
		CommonCauses: []string{
			"Expired or malformed auth token",
			"Identity provider outage",
			"Clock skew between services",
		},
		SuggestedFixes: []string{
			"Refresh token handling and re-login flow",
			"Run a security audit of the authentication flow",
			"Check identity provider status",
		},
		BusinessImpact: models.BusinessImpactHigh,
	},
	{
		ID:          "permission_denied",
		Name:        "Permission Denied",
		Matcher:     `forbidden|403|permission denied|access denied|insufficient privileges`,
		Category:    models.CategorySecurity,
		Severity:    models.SeverityMedium,
		Description: "An authenticated caller attempted an operation it is not allowed to perform",
		CommonCauses: []string{
			"Role or scope misconfiguration",
			"Stale permission cache",
		},
		SuggestedFixes: []string{
			"Review role assignments for the affected principal",
			"Invalidate cached permissions after role changes",
		},
		BusinessImpact: models.BusinessImpactHigh,
	},
	{
		ID:          "request_timeout",
		Name:        "Request Timeout",
		Matcher:     `(request|response|operation|gateway|upstream).*(timed? ?out)|timeout after|deadline exceeded|504|etimedout`,
		Category:    models.CategoryPerformance,
		Severity:    models.SeverityHigh,
		Description: "An operation exceeded its allotted time budget",
		CommonCauses: []string{
			"Slow downstream dependency",
			"Undersized timeout configuration",
			"Resource contention under load",
		},
		SuggestedFixes: []string{
			"Profile the slow call path",
			"Tune timeout and retry configuration",
			"Add load shedding for peak traffic",
		},
		BusinessImpact: models.BusinessImpactMedium,
	},
	{
		ID:          "network_failure",
		Name:        "Network Failure",
		Matcher:     `network (error|unreachable)|dns (failure|lookup)|socket hang ?up|econnreset|no route to host`,
		Category:    models.CategoryInfrastructure,
		Severity:    models.SeverityHigh,
		Description: "Connectivity between components was interrupted",
		CommonCauses: []string{
			"Transient network partition",
			"DNS resolution failure",
			"Load balancer misconfiguration",
		},
		SuggestedFixes: []string{
			"Check network path and DNS health",
			"Verify load balancer target health",
		},
		BusinessImpact: models.BusinessImpactHigh,
	},
	{
		ID:          "memory_exhaustion",
		Name:        "Memory Exhaustion",
		Matcher:     `out of memory|oomkilled|heap (limit|overflow)|memory (limit|leak)|allocation failed`,
		Category:    models.CategoryInfrastructure,
		Severity:    models.SeverityCritical,
		Description: "A process ran out of memory or is leaking it",
		CommonCauses: []string{
			"Memory leak in long-running process",
			"Undersized memory limits",
			"Unbounded cache or buffer growth",
		},
		SuggestedFixes: []string{
			"Capture a heap profile at failure time",
			"Raise memory limits after verifying actual usage",
			"Bound in-memory caches and queues",
		},
		BusinessImpact: models.BusinessImpactHigh,
	},
	{
		ID:          "null_reference",
		Name:        "Null Reference",
		Matcher:     `null (pointer|reference)|nil pointer dereference|undefined is not a function|cannot read propert(y|ies)`,
		Category:    models.CategoryFunctional,
		Severity:    models.SeverityMedium,
		Description: "Code dereferenced a value that was not initialized",
		CommonCauses: []string{
			"Missing nil/None check on optional data",
			"API response shape changed",
		},
		SuggestedFixes: []string{
			"Guard optional fields before dereferencing",
			"Validate upstream response schemas",
		},
		BusinessImpact: models.BusinessImpactMedium,
	},
	{
		ID:          "validation_error",
		Name:        "Input Validation Error",
		Matcher:     `validation (failed|error)|invalid (input|payload|parameter|format)|schema mismatch|bad request|400`,
		Category:    models.CategoryDataQuality,
		Severity:    models.SeverityMedium,
		Description: "A request or record failed input validation",
		CommonCauses: []string{
			"Client sending malformed data",
			"Schema drift between producer and consumer",
		},
		SuggestedFixes: []string{
			"Validate and clean inbound data at the boundary",
			"Version and test schema changes",
		},
		BusinessImpact: models.BusinessImpactLow,
	},
	{
		ID:          "rate_limited",
		Name:        "Rate Limited",
		Matcher:     `rate limit|too many requests|429|quota exceeded|throttl(ed|ing)`,
		Category:    models.CategoryIntegration,
		Severity:    models.SeverityMedium,
		Description: "A third-party or internal API rejected requests for exceeding its quota",
		CommonCauses: []string{
			"Third-party quota exceeded",
			"Missing client-side rate limiting",
			"Retry storm amplifying traffic",
		},
		SuggestedFixes: []string{
			"Monitor external dependency quotas",
			"Add client-side rate limiting with jittered backoff",
		},
		BusinessImpact: models.BusinessImpactMedium,
	},
	{
		ID:          "payment_declined",
		Name:        "Payment Declined",
		Matcher:     `payment (declined|failed|rejected)|card declined|insufficient funds|gateway rejected`,
		Category:    models.CategoryBusinessLogic,
		Severity:    models.SeverityHigh,
		Description: "A payment could not be completed",
		CommonCauses: []string{
			"Payment gateway outage",
			"Fraud rules rejecting legitimate transactions",
			"Card network declines",
		},
		SuggestedFixes: []string{
			"Monitor external dependencies of the payment flow",
			"Review fraud-rule false-positive rate",
			"Offer an alternative payment method on decline",
		},
		BusinessImpact: models.BusinessImpactCritical,
	},
	{
		ID:          "ui_render_failure",
		Name:        "UI Render Failure",
		Matcher:     `failed to render|hydration (failed|mismatch)|component (crashed|failed to mount)|blank (page|screen)`,
		Category:    models.CategoryUsability,
		Severity:    models.SeverityMedium,
		Description: "The user interface failed to render a view",
		CommonCauses: []string{
			"Frontend bundle incompatible with API response",
			"Unhandled exception in view code",
		},
		SuggestedFixes: []string{
			"Add an error boundary around the failing view",
			"Pin and test frontend/API contract versions",
		},
		BusinessImpact: models.BusinessImpactLow,
	},
	{
		ID:          "data_corruption",
		Name:        "Data Corruption",
		Matcher:     `corrupt(ed)? data|checksum mismatch|inconsistent state|constraint violation|duplicate key`,
		Category:    models.CategoryDataQuality,
		Severity:    models.SeverityHigh,
		Description: "Stored data violates its integrity expectations",
		CommonCauses: []string{
			"Partial write during a failure",
			"Concurrent writers without coordination",
			"Migration applied out of order",
		},
		SuggestedFixes: []string{
			"Validate and clean the affected records",
			"Wrap multi-step writes in transactions",
		},
		BusinessImpact: models.BusinessImpactHigh,
	},
	{
		ID:          "dependency_failure",
		Name:        "Upstream Dependency Failure",
		Matcher:     `upstream (error|failure)|service unavailable|502|503|circuit breaker (open|tripped)|bad gateway`,
		Category:    models.CategoryIntegration,
		Severity:    models.SeverityHigh,
		Description: "A dependency this service calls is failing",
		CommonCauses: []string{
			"Third-party service outage",
			"Cascading failure from an upstream incident",
		},
		SuggestedFixes: []string{
			"Monitor external dependencies and their status pages",
			"Serve degraded responses while the dependency recovers",
		},
		BusinessImpact: models.BusinessImpactHigh,
	},
}
