// Package platform implements the single-pass price calculator for
// marketplaces without a customs step: flat fee rate, flat shipping
// table, margin floor.
package platform

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"resale-pricing/core/customs"
	"resale-pricing/core/repository"
	"resale-pricing/core/types"
	"resale-pricing/internal/errors"
)

// DefaultMinMargin is the default minimum profit margin
const DefaultMinMargin = 0.20

// defaultPaymentFeeRate applies when the platform has no configured
// payment processing rate
const defaultPaymentFeeRate = 0.02

// Input is one platform price request
type Input struct {
	// Cost is the sourcing cost in the domestic currency
	Cost decimal.Decimal `json:"cost"`

	// WeightG is the package weight in grams
	WeightG float64 `json:"weight_g"`

	Platform    string `json:"platform"`
	CountryCode string `json:"country_code"`
	Category    string `json:"category,omitempty"`

	// ShippingMethod selects a row set in the platform shipping table;
	// empty picks the platform default
	ShippingMethod string `json:"shipping_method,omitempty"`

	// ExchangeRate is domestic currency units per target currency unit
	ExchangeRate float64 `json:"exchange_rate"`

	// Currency is the target currency code, for display only
	Currency string `json:"currency,omitempty"`

	// PaymentFeeRate overrides the payment processing rate when positive
	PaymentFeeRate float64 `json:"payment_fee_rate,omitempty"`
}

// Calculator computes single-pass platform prices
type Calculator struct {
	repo     repository.Repository
	resolver *customs.Resolver
}

// NewCalculator creates a platform calculator
func NewCalculator(repo repository.Repository, resolver *customs.Resolver) *Calculator {
	return &Calculator{repo: repo, resolver: resolver}
}

// Calculate prices one listing. Margin shortfalls produce warnings, not
// errors; the only hard failures are invalid inputs.
func (c *Calculator) Calculate(ctx context.Context, in Input, minMargin float64) (types.PlatformPriceResult, error) {
	if !in.Cost.IsPositive() {
		return types.PlatformPriceResult{}, errors.Input("cost must be positive")
	}
	if in.ExchangeRate <= 0 {
		return types.PlatformPriceResult{}, errors.Input("exchange rate must be positive")
	}
	if minMargin <= 0 {
		minMargin = DefaultMinMargin
	}
	if minMargin >= 1 {
		return types.PlatformPriceResult{}, errors.Input("minimum margin must be below 1")
	}

	var warnings []string

	cost := in.Cost.Div(decimal.NewFromFloat(in.ExchangeRate)).Round(4)

	shipping, warn, err := c.shippingCost(ctx, in)
	if err != nil {
		return types.PlatformPriceResult{}, err
	}
	if warn != "" {
		warnings = append(warnings, warn)
	}

	fee := c.resolver.ResolveFee(ctx, in.Platform, in.CountryCode, in.Category)

	marginDivisor := decimal.NewFromFloat(1 - minMargin)
	price := cost.Add(shipping).Div(marginDivisor)

	platformFee := price.Mul(decimal.NewFromFloat(fee.Rate)).Add(fee.FixedFee).Round(4)
	payRate := in.PaymentFeeRate
	if payRate <= 0 {
		payRate = defaultPaymentFeeRate
	}
	paymentFee := price.Mul(decimal.NewFromFloat(payRate)).Round(4)

	totalCost := cost.Add(shipping).Add(platformFee).Add(paymentFee)
	breakEven := totalCost

	minPriceWithProfit := totalCost.Div(marginDivisor)
	if price.LessThan(minPriceWithProfit) {
		price = minPriceWithProfit
	}

	profit := price.Sub(totalCost)
	margin := 0.0
	if price.IsPositive() {
		margin, _ = profit.Div(price).Float64()
	}

	if margin < minMargin-1e-9 {
		warnings = append(warnings, fmt.Sprintf("profit margin %.1f%% is below the %.1f%% target", margin*100, minMargin*100))
	}
	if price.LessThan(breakEven) {
		warnings = append(warnings, "price is below break-even")
	}

	return types.PlatformPriceResult{
		Platform:       in.Platform,
		Currency:       in.Currency,
		SellingPrice:   price.Round(2),
		ProductCost:    cost.Round(2),
		ShippingCost:   shipping.Round(2),
		PlatformFee:    platformFee.Round(2),
		PaymentFee:     paymentFee.Round(2),
		Profit:         profit.Round(2),
		ProfitMargin:   margin,
		BreakEvenPrice: breakEven.Round(2),
		Warnings:       warnings,
	}, nil
}

// shippingCost looks the weight up in the platform's flat table. The
// last band covers everything above its ceiling.
func (c *Calculator) shippingCost(ctx context.Context, in Input) (decimal.Decimal, string, error) {
	bands, err := c.repo.GetPlatformShippingRates(ctx, in.Platform, in.ShippingMethod)
	if err != nil {
		return decimal.Zero, "", err
	}
	if len(bands) == 0 {
		return decimal.Zero, fmt.Sprintf("no shipping table for platform %s; shipping priced at zero", in.Platform), nil
	}

	for _, band := range bands {
		if in.WeightG <= band.MaxWeightG {
			return band.Cost, "", nil
		}
	}
	return bands[len(bands)-1].Cost, "", nil
}

// CalculateAll prices one listing across several platforms, sequentially
func (c *Calculator) CalculateAll(ctx context.Context, inputs []Input, minMargin float64) ([]types.PlatformPriceResult, error) {
	results := make([]types.PlatformPriceResult, 0, len(inputs))
	for _, in := range inputs {
		r, err := c.Calculate(ctx, in, minMargin)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// BestByProfit returns the result with the highest absolute profit.
// Margins converge on the floor when the price is grossed up, so profit
// is the discriminating number.
func BestByProfit(results []types.PlatformPriceResult) (types.PlatformPriceResult, bool) {
	if len(results) == 0 {
		return types.PlatformPriceResult{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Profit.GreaterThan(best.Profit) {
			best = r
		}
	}
	return best, true
}
