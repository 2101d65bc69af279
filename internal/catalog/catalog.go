// Package catalog holds the failure-pattern catalog and the classifier
// that matches error records against it. Pattern definitions are
// configuration: they are either compiled in (BuiltinDefinitions) or
// loaded from a YAML file, optionally hot-reloaded by a Watcher.
package catalog

import (
	"fmt"
	"sync"
)

// Catalog is an ordered collection of named failure patterns. Pattern
// order is the definition order; the classifier tests every pattern, so
// order only affects result ordering, not which patterns match.
//
// A Catalog is safe for concurrent use. Reload swaps the pattern set
// while preserving match counters for patterns that survive.
type Catalog struct {
	mu       sync.RWMutex
	patterns []*Pattern
	byID     map[string]*Pattern
}

// New builds a catalog from pattern definitions. Definitions are
// validated and their matcher expressions compiled; an invalid
// definition fails construction.
func New(defs []Definition) (*Catalog, error) {
	patterns, byID, err := compile(defs)
	if err != nil {
		return nil, err
	}
	return &Catalog{patterns: patterns, byID: byID}, nil
}

// NewDefault builds a catalog from the built-in definitions.
// The built-in set is covered by tests, so compilation cannot fail.
func NewDefault() *Catalog {
	c, err := New(BuiltinDefinitions())
	if err != nil {
		panic(fmt.Sprintf("builtin pattern catalog is invalid: %v", err))
	}
	return c
}

func compile(defs []Definition) ([]*Pattern, map[string]*Pattern, error) {
	if len(defs) == 0 {
		return nil, nil, fmt.Errorf("pattern catalog must contain at least one definition")
	}

	patterns := make([]*Pattern, 0, len(defs))
	byID := make(map[string]*Pattern, len(defs))

	for i, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		if _, dup := byID[def.ID]; dup {
			return nil, nil, fmt.Errorf("duplicate pattern id %q", def.ID)
		}

		matcher, err := NewRegexMatcher(def.Matcher)
		if err != nil {
			return nil, nil, fmt.Errorf("pattern %q: %w", def.ID, err)
		}

		p := &Pattern{
			ID:             def.ID,
			Name:           def.Name,
			Matcher:        matcher,
			Category:       def.Category,
			Severity:       def.Severity,
			Description:    def.Description,
			CommonCauses:   def.CommonCauses,
			SuggestedFixes: def.SuggestedFixes,
			BusinessImpact: def.BusinessImpact,
		}
		patterns = append(patterns, p)
		byID[def.ID] = p
	}

	return patterns, byID, nil
}

// Validate checks that a definition is complete and well-formed
func (d Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("id must not be empty")
	}
	if d.ID == FallbackPatternID {
		return fmt.Errorf("id %q is reserved for the fallback pattern", FallbackPatternID)
	}
	if d.Name == "" {
		return fmt.Errorf("pattern %q: name must not be empty", d.ID)
	}
	if d.Matcher == "" {
		return fmt.Errorf("pattern %q: matcher must not be empty", d.ID)
	}
	if !d.Category.Valid() {
		return fmt.Errorf("pattern %q: unknown category %q", d.ID, d.Category)
	}
	if !d.Severity.Valid() {
		return fmt.Errorf("pattern %q: unknown severity %q", d.ID, d.Severity)
	}
	// Unknown business-impact tiers default to a weight of 1 at scoring
	// time, but catalog files should still name a real tier.
	if d.BusinessImpact != "" && !d.BusinessImpact.Valid() {
		return fmt.Errorf("pattern %q: unknown business impact %q", d.ID, d.BusinessImpact)
	}
	return nil
}

// Patterns returns the patterns in definition order. The returned slice
// is a copy; the pointed-to patterns are shared.
func (c *Catalog) Patterns() []*Pattern {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Pattern, len(c.patterns))
	copy(out, c.patterns)
	return out
}

// Get returns the pattern with the given id, or nil
func (c *Catalog) Get(id string) *Pattern {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byID[id]
}

// Len returns the number of patterns in the catalog
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.patterns)
}

// Frequencies returns a snapshot of every pattern's match counter
func (c *Catalog) Frequencies() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int64, len(c.patterns))
	for _, p := range c.patterns {
		out[p.ID] = p.Frequency()
	}
	return out
}

// ResetFrequencies zeroes every pattern's match counter. The pattern
// definitions themselves are never discarded.
func (c *Catalog) ResetFrequencies() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.patterns {
		p.resetFrequency()
	}
}

// Definitions returns the serializable form of the current pattern set
func (c *Catalog) Definitions() []Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	defs := make([]Definition, 0, len(c.patterns))
	for _, p := range c.patterns {
		matcher := ""
		if rm, ok := p.Matcher.(*RegexMatcher); ok {
			matcher = rm.String()
		}
		defs = append(defs, Definition{
			ID:             p.ID,
			Name:           p.Name,
			Matcher:        matcher,
			Category:       p.Category,
			Severity:       p.Severity,
			Description:    p.Description,
			CommonCauses:   p.CommonCauses,
			SuggestedFixes: p.SuggestedFixes,
			BusinessImpact: p.BusinessImpact,
		})
	}
	return defs
}

// Reload replaces the pattern set with a new definition list. Match
// counters of patterns whose id survives the reload are preserved; new
// patterns start at zero. On error the current set stays active.
func (c *Catalog) Reload(defs []Definition) error {
	patterns, byID, err := compile(defs)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range patterns {
		if prev, ok := c.byID[p.ID]; ok {
			p.frequency.Store(prev.Frequency())
		}
	}
	c.patterns = patterns
	c.byID = byID
	return nil
}

// classify matches lower-cased error text against every pattern and
// records a match on each accepting pattern.
func (c *Catalog) classify(text string) []*Pattern {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var matched []*Pattern
	for _, p := range c.patterns {
		if p.Matcher.Matches(text) {
			p.recordMatch()
			matched = append(matched, p)
		}
	}
	return matched
}
