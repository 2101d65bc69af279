package engine

import (
	"context"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/moolen/faultline/internal/logging"
	"github.com/moolen/faultline/internal/models"
)

// topPatternLimit bounds the batch summary's pattern ranking
const topPatternLimit = 10

// AnalyzeErrorBatch analyzes every entry, then runs trend analysis,
// batch-wide temporal clustering and summarization over the same batch.
//
// Records failing validation are skipped and surfaced as BatchError
// markers; the batch continues past them. With cfg.BatchWorkers > 1 the
// per-entry analyses run on a bounded worker pool; results keep
// submission order either way. Trend and time-bucket math is
// order-independent since it keys off entry timestamps, not processing
// order.
//
// Returns an error only when ctx is cancelled before the batch completes.
func (e *Engine) AnalyzeErrorBatch(ctx context.Context, entries []models.ErrorEntry) (*BatchResult, error) {
	ctx, span := e.tracer.Start(ctx, "engine.AnalyzeErrorBatch")
	defer span.End()
	span.SetAttributes(attribute.Int("batch.size", len(entries)))

	results := make([]*ErrorAnalysisResult, len(entries))
	batchErrors := make([]models.BatchError, 0)

	if e.cfg.BatchWorkers > 1 {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.cfg.BatchWorkers)

		for i := range entries {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				result, err := e.AnalyzeError(gctx, &entries[i])
				if err != nil {
					mu.Lock()
					batchErrors = append(batchErrors, models.BatchError{
						Index:   i,
						EntryID: entries[i].ID,
						Message: err.Error(),
					})
					mu.Unlock()
					return nil
				}
				results[i] = result
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			result, err := e.AnalyzeError(ctx, &entries[i])
			if err != nil {
				batchErrors = append(batchErrors, models.BatchError{
					Index:   i,
					EntryID: entries[i].ID,
					Message: err.Error(),
				})
				continue
			}
			results[i] = result
		}
	}

	// Compact to submission order, dropping skipped slots
	analyses := make([]*ErrorAnalysisResult, 0, len(results))
	analyzed := make([]models.ErrorEntry, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		analyses = append(analyses, r)
		analyzed = append(analyzed, r.Entry)
	}
	sort.SliceStable(batchErrors, func(i, j int) bool {
		return batchErrors[i].Index < batchErrors[j].Index
	})

	e.metrics.BatchesTotal.Inc()
	e.metrics.BatchErrorsTotal.Add(float64(len(batchErrors)))

	e.logger.InfoWithFields("batch analyzed",
		logging.Field("entries", len(entries)),
		logging.Field("skipped", len(batchErrors)),
		logging.Field("workers", e.cfg.BatchWorkers),
	)

	return &BatchResult{
		Analyses:           analyses,
		Trends:             e.trends.AnalyzeTrends(analyzed),
		GlobalCorrelations: e.finder.FindGlobalCorrelations(analyzed),
		Summary:            summarize(analyses),
		Errors:             batchErrors,
	}, nil
}

// summarize tallies the fixed categories and severities across the
// batch and ranks the matched patterns by frequency.
func summarize(analyses []*ErrorAnalysisResult) models.BatchSummary {
	categoryCounts := make(map[models.Category]int, len(models.Categories))
	for _, c := range models.Categories {
		categoryCounts[c] = 0
	}
	severityCounts := make(map[models.Severity]int, len(models.Severities))
	for _, s := range models.Severities {
		severityCounts[s] = 0
	}

	critical := 0
	patternCounts := make(map[string]*models.PatternCount)
	for _, a := range analyses {
		categoryCounts[a.Entry.Category]++
		severityCounts[a.Entry.Severity]++

		switch a.Impact.OverallSeverity {
		case models.SeverityCritical, models.SeverityHigh:
			critical++
		}

		for _, p := range a.Patterns {
			pc := patternCounts[p.ID]
			if pc == nil {
				pc = &models.PatternCount{PatternID: p.ID, Name: p.Name}
				patternCounts[p.ID] = pc
			}
			pc.Count++
		}
	}

	top := make([]models.PatternCount, 0, len(patternCounts))
	for _, pc := range patternCounts {
		top = append(top, *pc)
	}
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].PatternID < top[j].PatternID
	})
	if len(top) > topPatternLimit {
		top = top[:topPatternLimit]
	}

	return models.BatchSummary{
		TotalErrors:    len(analyses),
		CriticalErrors: critical,
		CategoryCounts: categoryCounts,
		SeverityCounts: severityCounts,
		TopPatterns:    top,
	}
}
