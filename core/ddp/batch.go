package ddp

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"resale-pricing/core/types"
)

// BatchItem pairs an input with a caller-supplied id
type BatchItem struct {
	ID    string `json:"id"`
	Input Input  `json:"input"`
}

// BatchOptions tunes batch execution
type BatchOptions struct {
	// Concurrency bounds the worker pool. Values below 2 mean strictly
	// sequential processing, the default, to bound repository load.
	Concurrency int
}

// OptimizeBatch prices every item and never aborts on individual
// failure: a failed item yields a Success=false result in its slot.
// Output order matches input order.
func (o *Optimizer) OptimizeBatch(ctx context.Context, items []BatchItem, opts BatchOptions) []types.BatchItemResult {
	results := make([]types.BatchItemResult, len(items))

	if opts.Concurrency < 2 {
		for i, item := range items {
			results[i] = types.BatchItemResult{ID: item.ID, Result: o.Optimize(ctx, item.Input)}
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, opts.Concurrency)
		for i, item := range items {
			wg.Add(1)
			go func(i int, item BatchItem) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				results[i] = types.BatchItemResult{ID: item.ID, Result: o.Optimize(ctx, item.Input)}
			}(i, item)
		}
		wg.Wait()
	}

	var failures error
	failed := 0
	for _, r := range results {
		if !r.Result.Success {
			failed++
			failures = multierr.Append(failures, fmt.Errorf("item %s: %s", r.ID, r.Result.Error))
		}
	}
	if failed > 0 {
		o.logger.Warn("batch pricing completed with failures",
			zap.Int("total", len(items)),
			zap.Int("failed", failed),
			zap.Error(failures))
	} else {
		o.logger.Info("batch pricing completed", zap.Int("total", len(items)))
	}

	return results
}
