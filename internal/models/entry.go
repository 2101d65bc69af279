package models

import "time"

// Context keys inspected by the analysis heuristics. All other keys are
// carried through untouched.
const (
	ContextKeyUserAgent = "userAgent"
	ContextKeyURL       = "url"
)

// ErrorEntry is one incoming incident record. Entries are created by an
// external producer, consumed exactly once per analysis call, and never
// mutated after creation.
type ErrorEntry struct {
	// ID is a caller-unique identifier for the record
	ID string `json:"id"`

	// Timestamp is when the error occurred
	Timestamp time.Time `json:"timestamp"`

	// Description is the free-text error message
	Description string `json:"description"`

	// StackTrace is the optional stack trace captured with the error
	StackTrace string `json:"stackTrace,omitempty"`

	// Category is one of the eight enumerated error categories
	Category Category `json:"category"`

	// Severity is one of the four enumerated severities
	Severity Severity `json:"severity"`

	// Component is a free-text identifier of the failing component
	Component string `json:"component"`

	// Context is an optional free-form key/value map. Only the
	// "userAgent" and "url" keys are inspected by the engine.
	Context map[string]string `json:"context,omitempty"`
}

// Validate checks that the entry carries every required field.
// Missing required fields fail fast instead of silently defaulting.
func (e *ErrorEntry) Validate() error {
	if e.ID == "" {
		return NewValidationError("id must not be empty")
	}
	if e.Component == "" {
		return NewValidationError("component must not be empty")
	}
	if !e.Category.Valid() {
		return NewValidationError("category %q is not one of the known categories", e.Category)
	}
	if !e.Severity.Valid() {
		return NewValidationError("severity %q is not one of the known severities", e.Severity)
	}
	return nil
}

// ContextValue returns the context value for key, or "" when the entry
// carries no context.
func (e *ErrorEntry) ContextValue(key string) string {
	if e.Context == nil {
		return ""
	}
	return e.Context[key]
}
