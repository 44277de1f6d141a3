package extract

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome of one document in a batch.
type BatchResult struct {
	Source Source
	Result Result
	Err    error
}

// ExtractBatch extracts every source with at most limit documents in flight.
// Results keep the input order. A failing document never stops the others;
// only cancellation of ctx does, and the remaining documents then report the
// context error.
func (e *Extractor) ExtractBatch(ctx context.Context, sources []Source, limit int) []BatchResult {
	results := make([]BatchResult, len(sources))
	if limit <= 0 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, src := range sources {
		i, src := i, src
		results[i].Source = src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			res, err := e.Extract(gctx, src)
			if err != nil {
				e.log.Warn().Err(err).Str("source", src.Name()).Msg("Extraction failed")
			}
			results[i].Result = res
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	return results
}
