package catalog

import (
	"strings"

	"github.com/moolen/faultline/internal/logging"
	"github.com/moolen/faultline/internal/models"
)

// Classifier matches one error record's text against every pattern in
// the catalog. Classification is exception-free by construction: when
// nothing matches, a synthetic fallback pattern is returned so
// downstream stages never operate on an empty set.
type Classifier struct {
	catalog *Catalog
	logger  *logging.Logger
}

// NewClassifier creates a classifier over the given catalog
func NewClassifier(c *Catalog) *Classifier {
	return &Classifier{
		catalog: c,
		logger:  logging.GetLogger("classifier"),
	}
}

// Classify returns every pattern whose matcher accepts the entry's
// text. All matches count; ties are not broken. Each matched catalog
// pattern's frequency counter is incremented as a side effect.
func (cl *Classifier) Classify(entry *models.ErrorEntry) []*Pattern {
	text := entry.Description
	if entry.StackTrace != "" {
		text += "\n" + entry.StackTrace
	}
	text = strings.ToLower(text)

	matched := cl.catalog.classify(text)
	if len(matched) == 0 {
		cl.logger.DebugWithFields("no pattern matched, using fallback",
			logging.Field("entry_id", entry.ID),
			logging.Field("category", entry.Category),
		)
		return []*Pattern{newFallbackPattern(entry)}
	}
	return matched
}
