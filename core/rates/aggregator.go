// Package rates aggregates shipping rates across carrier sources.
// Sources are queried concurrently; a failing source contributes nothing
// and never aborts the others.
package rates

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"resale-pricing/core/types"
	"resale-pricing/internal/logging"
)

// Query describes one rate lookup
type Query struct {
	// Weight is the package's actual weight and dimensions
	Weight types.WeightSpec

	// DestinationCountry is the ISO country code
	DestinationCountry string

	// DeclaredValue is the declared item value for insurance
	DeclaredValue decimal.Decimal

	NeedInsurance bool
	NeedSignature bool

	// Month is the calendar month used for demand surcharge gating.
	// Injected so two identical queries always price identically.
	Month time.Month
}

// Source produces priced rate results for one carrier or rate table
type Source interface {
	// ID identifies the source for logging
	ID() string

	// Fetch returns priced results for the query, ascending by total price.
	// A source that does not serve the destination returns an empty slice.
	Fetch(ctx context.Context, q Query) ([]types.RateResult, error)
}

// Aggregator fans a query out to all sources and merges the results
type Aggregator struct {
	sources []Source
	logger  *zap.Logger
}

// NewAggregator creates an aggregator over the given sources
func NewAggregator(sources ...Source) *Aggregator {
	return &Aggregator{
		sources: sources,
		logger:  logging.Logger,
	}
}

// Aggregate queries every source concurrently and returns the merged
// result list, ascending by total price. A source failure is logged and
// treated as an empty contribution.
func (a *Aggregator) Aggregate(ctx context.Context, q Query) ([]types.RateResult, error) {
	type contribution struct {
		source  string
		results []types.RateResult
		err     error
	}

	contributions := make(chan contribution, len(a.sources))
	var wg sync.WaitGroup

	for _, src := range a.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			results, err := src.Fetch(ctx, q)
			contributions <- contribution{source: src.ID(), results: results, err: err}
		}(src)
	}

	wg.Wait()
	close(contributions)

	var merged []types.RateResult
	for c := range contributions {
		if c.err != nil {
			a.logger.Warn("rate source failed, skipping its contribution",
				zap.String("source", c.source),
				zap.String("destination", q.DestinationCountry),
				zap.Error(c.err))
			continue
		}
		merged = append(merged, c.results...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].TotalPrice.Equal(merged[j].TotalPrice) {
			return merged[i].TotalPrice.LessThan(merged[j].TotalPrice)
		}
		return merged[i].ID < merged[j].ID
	})

	return merged, nil
}
