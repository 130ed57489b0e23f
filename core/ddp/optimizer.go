// Package ddp implements the delivered-duty-paid price optimizer: a
// staged, forward-only search for a product/shipping price split that
// funds the destination duty while holding margin and display-ratio
// targets.
package ddp

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"resale-pricing/core/customs"
	"resale-pricing/core/rates"
	"resale-pricing/core/types"
	"resale-pricing/internal/logging"
)

// Pricing constants for the US DDP path
const (
	// salesTaxRate is the destination sales-tax component of the
	// effective DDP rate
	salesTaxRate = 0.08

	// mpfRate is the Merchandise Processing Fee, ad valorem on the
	// product price
	mpfRate = 0.003464

	// consumptionTaxRate is the origin-side consumption tax used for the
	// refund estimate
	consumptionTaxRate = 0.10

	// Variable fee rates stacked on top of the marketplace FVF
	paymentProcessingRate = 0.02
	promotedListingRate   = 0.02
	exchangeLossRate      = 0.03
	internationalFeeRate  = 0.015

	// estimatedPriceMarkup estimates the product price from cost for
	// baseline policy eligibility
	estimatedPriceMarkup = 1.5

	// provisionalDDPFactor sizes the provisional duty allowance in the
	// baseline revenue formula
	provisionalDDPFactor = 0.2

	// DefaultTargetMargin is the default target profit margin
	DefaultTargetMargin = 0.15

	// DefaultPriceRatio is the default product-price-to-total-price ratio
	DefaultPriceRatio = 0.8

	// DefaultFVFRate is the default marketplace final value fee rate
	DefaultFVFRate = 0.1315
)

var (
	// ddpServiceFee is the flat customs-clearance service fee per shipment
	ddpServiceFee = decimal.NewFromInt(15)

	// insertionFee is the flat marketplace listing fee
	insertionFee = decimal.NewFromFloat(0.35)
)

// Input is one DDP pricing request. Cost is in the domestic (sourcing)
// currency; ExchangeRate converts it into the pricing currency and must
// be supplied explicitly.
type Input struct {
	// Cost is the sourcing cost in the domestic currency
	Cost decimal.Decimal `json:"cost"`

	// ExchangeRate is domestic currency units per pricing currency unit
	ExchangeRate float64 `json:"exchange_rate"`

	// Weight is the package weight and dimensions
	Weight types.WeightSpec `json:"weight"`

	// ClassificationCode is the HS/HTS code
	ClassificationCode string `json:"classification_code"`

	// OriginCountry is the country of origin for additional tariffs
	OriginCountry string `json:"origin_country"`

	// DestinationCountry defaults to US, the only DDP destination
	DestinationCountry string `json:"destination_country,omitempty"`

	// TargetMargin defaults to DefaultTargetMargin when zero
	TargetMargin float64 `json:"target_margin,omitempty"`

	// TargetPriceRatio defaults to DefaultPriceRatio when zero
	TargetPriceRatio float64 `json:"target_price_ratio,omitempty"`

	// StoreTier discounts the FVF
	StoreTier types.StoreTier `json:"store_tier,omitempty"`

	// FVFRate defaults to DefaultFVFRate when zero
	FVFRate float64 `json:"fvf_rate,omitempty"`

	// Month gates demand surcharges; injected for determinism
	Month time.Month `json:"month,omitempty"`

	// Rounding overrides the product price rounding policy
	Rounding RoundingPolicy `json:"-"`
}

// Optimizer runs the staged DDP price search
type Optimizer struct {
	agg      *rates.Aggregator
	resolver *customs.Resolver
	logger   *zap.Logger
}

// NewOptimizer creates an optimizer over an aggregator and resolver
func NewOptimizer(agg *rates.Aggregator, resolver *customs.Resolver) *Optimizer {
	return &Optimizer{
		agg:      agg,
		resolver: resolver,
		logger:   logging.Logger,
	}
}

// Optimize produces a recommended and an alternative price/shipping pair
// with a full audit trail. Business failures come back as
// Success=false results; Optimize never panics across its boundary.
func (o *Optimizer) Optimize(ctx context.Context, in Input) (result types.PricingResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("ddp optimizer panic", zap.Any("panic", r))
			result = types.Failure(fmt.Sprintf("internal pricing error: %v", r))
		}
	}()

	if msg := validate(in); msg != "" {
		return types.Failure(msg)
	}
	in = applyDefaults(in)

	var steps []types.CalculationStep

	// Stage 1: effective duty rate
	duty, found := o.resolver.ResolveDuty(ctx, in.ClassificationCode, in.DestinationCountry)
	if !found {
		return types.Failure(fmt.Sprintf("classification code not found: %s", in.ClassificationCode))
	}
	additionalRate, tariffType := o.resolver.OriginAdditionalRate(ctx, in.OriginCountry)
	tariffRate := duty.Rate + additionalRate
	effectiveRate := tariffRate + salesTaxRate

	tariffDesc := fmt.Sprintf("%s: %.2f%%", in.OriginCountry, tariffRate*100)
	if additionalRate > 0 {
		tariffDesc = fmt.Sprintf("%s: base %.2f%% + additional %.2f%% (%s)",
			in.OriginCountry, duty.Rate*100, additionalRate*100, tariffType)
	}
	steps = append(steps, types.CalculationStep{
		Step:  "effective duty rate",
		Value: fmt.Sprintf("%.2f%%", effectiveRate*100),
		Description: fmt.Sprintf("%s + sales tax %.2f%% (%s)",
			tariffDesc, salesTaxRate*100, duty.Description),
	})

	// Stage 2: baseline revenue from the cheapest eligible policy
	all, err := o.agg.Aggregate(ctx, rates.Query{
		Weight:             in.Weight,
		DestinationCountry: in.DestinationCountry,
		Month:              in.Month,
	})
	if err != nil {
		return types.Failure(fmt.Sprintf("rate aggregation failed: %v", err))
	}
	policies := policyRows(all)
	if len(policies) == 0 {
		return types.Failure(fmt.Sprintf("no shipping policy for weight %.2fkg", in.Weight.ActualKg))
	}

	fx := decimal.NewFromFloat(in.ExchangeRate)
	cost := in.Cost.Div(fx).Round(4)
	estimatedPrice := cost.Mul(decimal.NewFromFloat(estimatedPriceMarkup))

	baseline := policies[0]
	for _, p := range policies {
		if p.ProductPriceTier.GreaterThanOrEqual(estimatedPrice) {
			baseline = p
			break
		}
	}

	finalFVF := math.Max(0, in.FVFRate-in.StoreTier.FVFDiscount())
	variableRate := finalFVF + paymentProcessingRate + promotedListingRate + exchangeLossRate + internationalFeeRate
	if variableRate+in.TargetMargin >= 1 {
		return types.Failure(fmt.Sprintf("target margin %.2f leaves no revenue after variable fees", in.TargetMargin))
	}

	provisionalDDP := cost.Mul(decimal.NewFromFloat(provisionalDDPFactor))
	fixedCost := cost.Add(baseline.BasePrice).Add(insertionFee).Add(provisionalDDP)
	requiredRevenue := fixedCost.Div(decimal.NewFromFloat(1 - variableRate - in.TargetMargin))

	baseProductPrice := in.Rounding(requiredRevenue.Sub(baseline.TotalPrice))
	baseTotalRevenue := baseProductPrice.Add(baseline.TotalPrice)

	steps = append(steps, types.CalculationStep{
		Step:  "baseline revenue",
		Value: baseTotalRevenue.StringFixed(2),
		Description: fmt.Sprintf("cheapest eligible policy %s: product %s + shipping %s",
			baseline.ServiceName, baseProductPrice.StringFixed(2), baseline.TotalPrice.StringFixed(2)),
	})

	// Stage 3: policies whose shipping funds the DDP budget
	requiredTariff := mulRate(baseProductPrice, effectiveRate)
	requiredMPF := mulRate(baseProductPrice, mpfRate)
	requiredDDP := requiredTariff.Add(requiredMPF).Add(ddpServiceFee)
	requiredShipping := baseline.BasePrice.Add(requiredDDP)

	var candidates []types.RateResult
	for _, p := range policies {
		if p.TotalPrice.GreaterThanOrEqual(requiredShipping) {
			candidates = append(candidates, p)
		}
	}

	steps = append(steps, types.CalculationStep{
		Step:  "ddp budget",
		Value: requiredDDP.StringFixed(2),
		Description: fmt.Sprintf("shipping must cover base %s + tariff %s + MPF %s + service fee %s",
			baseline.BasePrice.StringFixed(2), requiredTariff.StringFixed(2),
			requiredMPF.StringFixed(2), ddpServiceFee.StringFixed(2)),
	})

	if len(candidates) == 0 {
		// Terminal fallback: the budget is unattainable, not an error
		option := o.settle(baseline, baseProductPrice, baseTotalRevenue, cost, tariffRate, variableRate)
		option.IsRecommended = true
		option.Reason = "cheapest policy, DDP budget unattainable"
		steps = append(steps, types.CalculationStep{
			Step:        "fallback",
			Value:       option.PolicyName,
			Description: "no policy funds the DDP budget; baseline policy kept",
		})
		return o.buildResult(in, option, nil, cost, baseTotalRevenue, finalFVF, tariffRate, effectiveRate, steps)
	}

	// Stage 4: optimize the product-price display ratio
	chosen, chosenPrice := selectClosestRatio(candidates, baseTotalRevenue, in.TargetPriceRatio, in.Rounding)

	steps = append(steps, types.CalculationStep{
		Step:  "ratio optimization",
		Value: fmt.Sprintf("%.1f%%", ratioOf(chosenPrice, baseTotalRevenue)*100),
		Description: fmt.Sprintf("policy %s selected against target ratio %.0f%%",
			chosen.ServiceName, in.TargetPriceRatio*100),
	})

	// Stage 5: final settlement
	recommended := o.settle(chosen, chosenPrice, baseTotalRevenue, cost, tariffRate, variableRate)
	recommended.IsRecommended = true
	recommended.Reason = fmt.Sprintf("product price ratio %.1f%% (margin %.2f%%)",
		recommended.ProductPriceRatio*100, recommended.ProfitMargin*100)

	alternative := o.settle(baseline, baseProductPrice, baseTotalRevenue, cost, tariffRate, variableRate)
	alternative.Reason = "cheapest shipping"

	steps = append(steps, types.CalculationStep{
		Step:  "settlement",
		Value: recommended.TotalRevenue.StringFixed(2),
		Description: fmt.Sprintf("product %s + shipping %s, profit %s (%.2f%%)",
			recommended.ProductPrice.StringFixed(2), recommended.ShippingPrice.StringFixed(2),
			recommended.Profit.StringFixed(2), recommended.ProfitMargin*100),
	})

	return o.buildResult(in, recommended, &alternative, cost, baseTotalRevenue, finalFVF, tariffRate, effectiveRate, steps)
}

// settle computes the full cost detail of one policy at a product price.
// Variable fees are charged against the baseline total revenue, which is
// the marketplace-facing listing total.
func (o *Optimizer) settle(policy types.RateResult, productPrice, baseTotalRevenue, cost decimal.Decimal, tariffRate, variableRate float64) types.PricingOption {
	tariff := mulRate(productPrice, tariffRate)
	mpf := mulRate(productPrice, mpfRate)
	hmf := decimal.Zero // air freight carries no Harbor Maintenance Fee
	ddpTotal := tariff.Add(mpf).Add(hmf).Add(ddpServiceFee)

	revenue := productPrice.Add(policy.TotalPrice)
	variableFees := mulRate(baseTotalRevenue, variableRate)
	totalCost := cost.Add(policy.BasePrice).Add(ddpTotal).Add(insertionFee).Add(variableFees)
	profit := revenue.Sub(totalCost)

	margin := 0.0
	if revenue.IsPositive() {
		margin, _ = profit.Div(revenue).Float64()
	}

	return types.PricingOption{
		PolicyID:          policy.ServiceCode,
		PolicyName:        fmt.Sprintf("%s (product price tier %s)", policy.ServiceName, policy.ProductPriceTier.StringFixed(0)),
		ProductPrice:      productPrice,
		ShippingPrice:     policy.TotalPrice,
		TotalRevenue:      revenue,
		Profit:            profit,
		ProfitMargin:      margin,
		BaseShipping:      policy.BasePrice,
		TariffAmount:      tariff,
		MPF:               mpf,
		HMF:               hmf,
		DDPServiceFee:     ddpServiceFee,
		DDPTotal:          ddpTotal,
		ProductPriceRatio: ratioOf(productPrice, revenue),
	}
}

func (o *Optimizer) buildResult(in Input, recommended types.PricingOption, alternative *types.PricingOption, cost, feeBase decimal.Decimal, finalFVF, tariffRate, effectiveRate float64, steps []types.CalculationStep) types.PricingResult {
	fx := decimal.NewFromFloat(in.ExchangeRate)

	// Consumption-tax refund estimate on the domestic cost plus the
	// marketplace fees expected to be paid. Reported separately, never
	// folded into profit.
	estimatedRevenue := in.Cost.Mul(decimal.NewFromFloat(2.5))
	estimatedFVF := mulRate(estimatedRevenue, finalFVF)
	refundableFees := estimatedFVF.Add(insertionFee.Mul(fx))
	taxable := in.Cost.Add(refundableFees)
	refundDomestic := taxable.Mul(decimal.NewFromFloat(consumptionTaxRate)).
		Div(decimal.NewFromFloat(1 + consumptionTaxRate))
	refund := refundDomestic.Div(fx).Round(2)

	// Variable fees are itemized against the same listing-total base the
	// settlement charged them on, so the breakdown sums to revenue minus
	// profit.
	breakdown := map[string]string{
		"cost":               cost.StringFixed(2),
		"base_shipping":      recommended.BaseShipping.StringFixed(2),
		"tariff":             recommended.TariffAmount.StringFixed(2),
		"mpf":                recommended.MPF.StringFixed(2),
		"hmf":                recommended.HMF.StringFixed(2),
		"ddp_service_fee":    recommended.DDPServiceFee.StringFixed(2),
		"insertion_fee":      insertionFee.StringFixed(2),
		"fvf":                mulRate(feeBase, finalFVF).StringFixed(2),
		"payment_processing": mulRate(feeBase, paymentProcessingRate).StringFixed(2),
		"promoted_listing":   mulRate(feeBase, promotedListingRate).StringFixed(2),
		"exchange_loss":      mulRate(feeBase, exchangeLossRate).StringFixed(2),
		"international_fee":  mulRate(feeBase, internationalFeeRate).StringFixed(2),
	}

	return types.PricingResult{
		Success:          true,
		Recommended:      &recommended,
		Alternative:      alternative,
		TariffRate:       tariffRate,
		EffectiveDDPRate: effectiveRate,
		CostConverted:    cost,
		RefundEstimate:   refund,
		ProfitWithRefund: recommended.Profit.Add(refund),
		Breakdown:        breakdown,
		CalculationSteps: steps,
	}
}

// selectClosestRatio picks the candidate whose rounded product price
// yields the display ratio nearest the target. Ties keep the first
// candidate in the given ascending-price order; the rule deliberately
// lives in one place.
func selectClosestRatio(candidates []types.RateResult, baseTotalRevenue decimal.Decimal, targetRatio float64, round RoundingPolicy) (types.RateResult, decimal.Decimal) {
	best := candidates[0]
	bestPrice := round(baseTotalRevenue.Sub(best.TotalPrice))
	bestDiff := math.Abs(ratioOf(bestPrice, baseTotalRevenue) - targetRatio)

	for _, c := range candidates[1:] {
		price := round(baseTotalRevenue.Sub(c.TotalPrice))
		diff := math.Abs(ratioOf(price, baseTotalRevenue) - targetRatio)
		if diff < bestDiff {
			best = c
			bestPrice = price
			bestDiff = diff
		}
	}
	return best, bestPrice
}

// policyRows filters aggregator output down to DDP policy rows
func policyRows(results []types.RateResult) []types.RateResult {
	var out []types.RateResult
	for _, r := range results {
		if r.ProductPriceTier.IsPositive() {
			out = append(out, r)
		}
	}
	return out
}

func validate(in Input) string {
	switch {
	case !in.Cost.IsPositive():
		return "cost must be positive"
	case in.Weight.ActualKg <= 0:
		return "weight must be positive"
	case in.ClassificationCode == "":
		return "classification code is required"
	case in.OriginCountry == "":
		return "origin country is required"
	case in.ExchangeRate <= 0:
		return "exchange rate must be positive"
	}
	return ""
}

func applyDefaults(in Input) Input {
	if in.DestinationCountry == "" {
		in.DestinationCountry = "US"
	}
	if in.TargetMargin == 0 {
		in.TargetMargin = DefaultTargetMargin
	}
	if in.TargetPriceRatio == 0 {
		in.TargetPriceRatio = DefaultPriceRatio
	}
	if in.FVFRate == 0 {
		in.FVFRate = DefaultFVFRate
	}
	if in.Month == 0 {
		in.Month = time.January
	}
	if in.Rounding == nil {
		in.Rounding = RoundToNearest5
	}
	return in
}

func mulRate(amount decimal.Decimal, rate float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(rate)).Round(4)
}

func ratioOf(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	ratio, _ := part.Div(whole).Float64()
	return ratio
}
