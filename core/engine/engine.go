// Package engine wires the pricing engines over a single repository and
// exposes the public entry points consumed by the CLI and the API.
package engine

import (
	"context"

	"resale-pricing/core/customs"
	"resale-pricing/core/ddp"
	"resale-pricing/core/platform"
	"resale-pricing/core/rates"
	"resale-pricing/core/repository"
	"resale-pricing/core/surcharge"
	"resale-pricing/core/types"
)

// Engine bundles the aggregator, resolvers, and optimizers over one
// repository. It holds no mutable state; concurrent use is safe.
type Engine struct {
	repo       repository.Repository
	aggregator *rates.Aggregator
	resolver   *customs.Resolver
	optimizer  *ddp.Optimizer
	platform   *platform.Calculator
}

// New builds an engine over a repository. Carrier sources come from the
// repository's carrier list; the DDP policy table joins as one more
// source.
func New(ctx context.Context, repo repository.Repository) (*Engine, error) {
	carriers, err := repo.GetCarriers(ctx)
	if err != nil {
		return nil, err
	}

	calc := surcharge.NewCalculator(repo)
	sources := make([]rates.Source, 0, len(carriers)+1)
	for _, c := range carriers {
		sources = append(sources, rates.NewCarrierSource(c, repo, calc))
	}
	sources = append(sources, rates.NewDdpPolicySource(repo))

	aggregator := rates.NewAggregator(sources...)
	resolver := customs.NewResolver(repo)

	return &Engine{
		repo:       repo,
		aggregator: aggregator,
		resolver:   resolver,
		optimizer:  ddp.NewOptimizer(aggregator, resolver),
		platform:   platform.NewCalculator(repo, resolver),
	}, nil
}

// AggregateShippingRates returns all priced shipping options for a query,
// ascending by total price
func (e *Engine) AggregateShippingRates(ctx context.Context, q rates.Query) ([]types.RateResult, error) {
	return e.aggregator.Aggregate(ctx, q)
}

// ResolveDuty resolves a duty entry with prefix and DEFAULT fallback
func (e *Engine) ResolveDuty(ctx context.Context, code, countryCode string) (types.DutyEntry, bool) {
	return e.resolver.ResolveDuty(ctx, code, countryCode)
}

// ResolveFee resolves a marketplace fee entry; it never fails
func (e *Engine) ResolveFee(ctx context.Context, platform, countryCode, category string) types.FeeEntry {
	return e.resolver.ResolveFee(ctx, platform, countryCode, category)
}

// OptimizeDdpPrice runs the staged DDP price optimization
func (e *Engine) OptimizeDdpPrice(ctx context.Context, in ddp.Input) types.PricingResult {
	return e.optimizer.Optimize(ctx, in)
}

// BatchOptimizeDdpPrice prices many items, continuing past failures
func (e *Engine) BatchOptimizeDdpPrice(ctx context.Context, items []ddp.BatchItem, opts ddp.BatchOptions) []types.BatchItemResult {
	return e.optimizer.OptimizeBatch(ctx, items, opts)
}

// CalculatePlatformPrice runs the single-pass platform calculator
func (e *Engine) CalculatePlatformPrice(ctx context.Context, in platform.Input, minMargin float64) (types.PlatformPriceResult, error) {
	return e.platform.Calculate(ctx, in, minMargin)
}
