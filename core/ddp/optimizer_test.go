package ddp_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resale-pricing/core/customs"
	"resale-pricing/core/ddp"
	"resale-pricing/core/rates"
	"resale-pricing/core/repository"
	"resale-pricing/core/types"
)

// policyFixture provides a duty table and a four-tier DDP policy band for
// packages between 1.0 and 1.5 kg.
func policyFixture() *repository.Memory {
	repo := repository.NewMemory()
	repo.DutyEntries = []types.DutyEntry{
		{Code: "950440", CountryCode: "US", Rate: 0.042, Description: "playing cards"},
	}
	repo.DdpPolicies = []types.DdpPolicy{
		{ID: "E-150-A", Name: "Economy 150", WeightMinKg: 1.0, WeightMaxKg: 1.5,
			ProductPriceTier: decimal.NewFromInt(150),
			BaseShipping:     decimal.NewFromInt(18), TotalShipping: decimal.NewFromInt(25)},
		{ID: "E-200-B", Name: "Economy 200", WeightMinKg: 1.0, WeightMaxKg: 1.5,
			ProductPriceTier: decimal.NewFromInt(200),
			BaseShipping:     decimal.NewFromInt(20), TotalShipping: decimal.NewFromInt(42)},
		{ID: "E-300-C", Name: "Economy 300", WeightMinKg: 1.0, WeightMaxKg: 1.5,
			ProductPriceTier: decimal.NewFromInt(300),
			BaseShipping:     decimal.NewFromInt(22), TotalShipping: decimal.NewFromInt(55)},
		{ID: "E-500-D", Name: "Economy 500", WeightMinKg: 1.0, WeightMaxKg: 1.5,
			ProductPriceTier: decimal.NewFromInt(500),
			BaseShipping:     decimal.NewFromInt(25), TotalShipping: decimal.NewFromInt(72)},
	}
	return repo
}

func newOptimizer(repo *repository.Memory) *ddp.Optimizer {
	agg := rates.NewAggregator(rates.NewDdpPolicySource(repo))
	return ddp.NewOptimizer(agg, customs.NewResolver(repo))
}

func baseInput() ddp.Input {
	return ddp.Input{
		Cost:               decimal.NewFromInt(15000),
		ExchangeRate:       150,
		Weight:             types.WeightSpec{ActualKg: 1.2},
		ClassificationCode: "950440",
		OriginCountry:      "JP",
	}
}

func TestOptimizeScenario(t *testing.T) {
	opt := newOptimizer(policyFixture())

	result := opt.Optimize(context.Background(), baseInput())
	require.True(t, result.Success, "optimize failed: %s", result.Error)
	require.NotNil(t, result.Recommended)
	require.NotNil(t, result.Alternative)

	// Converted cost: 15000 / 150 = 100; effective rate 4.2% + 8% sales tax
	assert.True(t, result.CostConverted.Equal(decimal.NewFromInt(100)),
		"cost converted = %s", result.CostConverted)
	assert.InDelta(t, 0.042, result.TariffRate, 1e-9)
	assert.InDelta(t, 0.122, result.EffectiveDDPRate, 1e-9)

	// The DDP budget rules out everything but the 500-tier policy; the
	// product price rounds to 150 against the baseline revenue of 220.
	rec := result.Recommended
	assert.True(t, rec.IsRecommended)
	assert.Contains(t, rec.PolicyName, "Economy 500")
	assert.Equal(t, "150.00", rec.ProductPrice.StringFixed(2))
	assert.Equal(t, "72.00", rec.ShippingPrice.StringFixed(2))
	assert.Equal(t, "222.00", rec.TotalRevenue.StringFixed(2))
	assert.InDelta(t, 0.1225, rec.ProfitMargin, 0.001)

	// The alternative is the cheapest eligible policy at the baseline price
	alt := result.Alternative
	assert.False(t, alt.IsRecommended)
	assert.Contains(t, alt.PolicyName, "Economy 150")
	assert.Equal(t, "195.00", alt.ProductPrice.StringFixed(2))
	assert.Equal(t, "220.00", alt.TotalRevenue.StringFixed(2))

	// Consumption tax refund is reported separately from profit
	assert.Equal(t, "12.11", result.RefundEstimate.StringFixed(2))
	assert.True(t, result.ProfitWithRefund.GreaterThan(rec.Profit))

	assert.NotEmpty(t, result.CalculationSteps)
	assert.NotEmpty(t, result.Breakdown)
}

func TestOptimizeInvariants(t *testing.T) {
	opt := newOptimizer(policyFixture())
	result := opt.Optimize(context.Background(), baseInput())
	require.True(t, result.Success)

	for _, option := range []*types.PricingOption{result.Recommended, result.Alternative} {
		// Revenue decomposes exactly into product price and shipping
		assert.True(t, option.TotalRevenue.Equal(option.ProductPrice.Add(option.ShippingPrice)),
			"%s: revenue %s != product %s + shipping %s",
			option.PolicyName, option.TotalRevenue, option.ProductPrice, option.ShippingPrice)

		// Margin is profit over revenue
		wantMargin, _ := option.Profit.Div(option.TotalRevenue).Float64()
		assert.InDelta(t, wantMargin, option.ProfitMargin, 1e-6, option.PolicyName)

		// DDP total decomposes into its components
		sum := option.TariffAmount.Add(option.MPF).Add(option.HMF).Add(option.DDPServiceFee)
		assert.True(t, option.DDPTotal.Equal(sum), "%s: ddp total %s != %s", option.PolicyName, option.DDPTotal, sum)
	}
}

func TestOptimizeIdempotent(t *testing.T) {
	opt := newOptimizer(policyFixture())
	first := opt.Optimize(context.Background(), baseInput())
	require.True(t, first.Success)

	for i := 0; i < 5; i++ {
		again := opt.Optimize(context.Background(), baseInput())
		require.True(t, again.Success)
		assert.True(t, again.Recommended.ProductPrice.Equal(first.Recommended.ProductPrice))
		assert.True(t, again.Recommended.Profit.Equal(first.Recommended.Profit))
		assert.Equal(t, first.Recommended.PolicyID, again.Recommended.PolicyID)
	}
}

func TestOptimizeValidation(t *testing.T) {
	opt := newOptimizer(policyFixture())

	tests := []struct {
		name    string
		mutate  func(*ddp.Input)
		message string
	}{
		{"zero cost", func(in *ddp.Input) { in.Cost = decimal.Zero }, "cost must be positive"},
		{"negative cost", func(in *ddp.Input) { in.Cost = decimal.NewFromInt(-5) }, "cost must be positive"},
		{"zero weight", func(in *ddp.Input) { in.Weight.ActualKg = 0 }, "weight must be positive"},
		{"missing code", func(in *ddp.Input) { in.ClassificationCode = "" }, "classification code is required"},
		{"missing origin", func(in *ddp.Input) { in.OriginCountry = "" }, "origin country is required"},
		{"zero exchange rate", func(in *ddp.Input) { in.ExchangeRate = 0 }, "exchange rate must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.mutate(&in)
			result := opt.Optimize(context.Background(), in)
			assert.False(t, result.Success)
			assert.Equal(t, tt.message, result.Error)
			assert.Nil(t, result.Recommended)
		})
	}
}

func TestOptimizeUnknownClassificationCode(t *testing.T) {
	opt := newOptimizer(policyFixture())
	in := baseInput()
	in.ClassificationCode = "99999999"

	result := opt.Optimize(context.Background(), in)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "99999999")
}

func TestOptimizeNoPolicyForWeight(t *testing.T) {
	opt := newOptimizer(policyFixture())
	in := baseInput()
	in.Weight.ActualKg = 30

	result := opt.Optimize(context.Background(), in)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "no shipping policy")
	assert.Contains(t, result.Error, "30.00")
}

func TestOptimizeWeightBandBoundaries(t *testing.T) {
	opt := newOptimizer(policyFixture())

	// Min-inclusive: exactly 1.0 kg prices
	in := baseInput()
	in.Weight.ActualKg = 1.0
	assert.True(t, opt.Optimize(context.Background(), in).Success)

	// Max-exclusive: exactly 1.5 kg does not
	in.Weight.ActualKg = 1.5
	assert.False(t, opt.Optimize(context.Background(), in).Success)
}

func TestOptimizeBudgetUnattainableFallback(t *testing.T) {
	// Only the cheapest policy exists: nothing can fund the DDP budget,
	// so the baseline is kept with an explanatory reason.
	repo := policyFixture()
	repo.DdpPolicies = repo.DdpPolicies[:1]
	opt := newOptimizer(repo)

	result := opt.Optimize(context.Background(), baseInput())
	require.True(t, result.Success)
	require.NotNil(t, result.Recommended)
	assert.Nil(t, result.Alternative)
	assert.Equal(t, "cheapest policy, DDP budget unattainable", result.Recommended.Reason)
	assert.Contains(t, result.Recommended.PolicyName, "Economy 150")
}

func TestOptimizeExcessiveMarginFails(t *testing.T) {
	opt := newOptimizer(policyFixture())
	in := baseInput()
	in.TargetMargin = 0.80

	result := opt.Optimize(context.Background(), in)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "variable fees")
}

func TestOptimizeStoreTierDiscount(t *testing.T) {
	opt := newOptimizer(policyFixture())

	none := opt.Optimize(context.Background(), baseInput())
	require.True(t, none.Success)

	in := baseInput()
	in.StoreTier = types.StoreAnchor
	anchor := opt.Optimize(context.Background(), in)
	require.True(t, anchor.Success)

	// An 8-point FVF discount lowers variable fees, so the same listing
	// needs less revenue and keeps more profit at equal prices.
	assert.True(t, anchor.Recommended.TotalRevenue.LessThanOrEqual(none.Recommended.TotalRevenue))
	if anchor.Recommended.TotalRevenue.Equal(none.Recommended.TotalRevenue) {
		assert.True(t, anchor.Recommended.Profit.GreaterThan(none.Recommended.Profit))
	}
}

func TestOptimizeRoundingPolicyOverride(t *testing.T) {
	opt := newOptimizer(policyFixture())
	in := baseInput()
	in.Rounding = ddp.RoundToCent

	result := opt.Optimize(context.Background(), in)
	require.True(t, result.Success)

	// Without nearest-5 rounding the alternative keeps the raw baseline
	// price: 218.39 required revenue minus 25.00 policy total
	assert.Equal(t, "193.39", result.Alternative.ProductPrice.StringFixed(2))
}

func TestOptimizeOriginAdditionalTariff(t *testing.T) {
	repo := policyFixture()
	repo.CountryTariffs = []types.CountryTariff{
		{CountryCode: "CN", AdditionalRate: 0.25, TariffType: "section 301", Active: true},
	}
	opt := newOptimizer(repo)

	in := baseInput()
	in.OriginCountry = "CN"
	result := opt.Optimize(context.Background(), in)
	require.True(t, result.Success)
	assert.InDelta(t, 0.292, result.TariffRate, 1e-9)
	assert.InDelta(t, 0.372, result.EffectiveDDPRate, 1e-9)
}

func TestOptimizePrefixResolvedCode(t *testing.T) {
	opt := newOptimizer(policyFixture())
	in := baseInput()
	in.ClassificationCode = "9504.40.0000"

	result := opt.Optimize(context.Background(), in)
	require.True(t, result.Success, "prefix-resolvable code failed: %s", result.Error)
	assert.InDelta(t, 0.042, result.TariffRate, 1e-9)
}

func TestOptimizeBreakdownConsistency(t *testing.T) {
	opt := newOptimizer(policyFixture())
	result := opt.Optimize(context.Background(), baseInput())
	require.True(t, result.Success)

	// Every breakdown value is a parseable fixed-point amount
	for key, value := range result.Breakdown {
		d, err := decimal.NewFromString(value)
		require.NoError(t, err, "breakdown[%s] = %q", key, value)
		assert.False(t, d.IsNegative(), "breakdown[%s] = %q", key, value)
	}

	// The itemized costs account for revenue minus profit, within the
	// rounding of the printed amounts
	total := decimal.Zero
	for _, value := range result.Breakdown {
		d, _ := decimal.NewFromString(value)
		total = total.Add(d)
	}
	wantTotal := result.Recommended.TotalRevenue.Sub(result.Recommended.Profit)
	diff := total.Sub(wantTotal).Abs()
	assert.True(t, diff.LessThan(decimal.NewFromFloat(0.05)),
		"breakdown sum %s vs revenue-profit %s", total, wantTotal)
}
