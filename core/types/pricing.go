// Package types - Pricing result types
package types

import "github.com/shopspring/decimal"

// CalculationStep is one entry in the human-readable audit trail
type CalculationStep struct {
	Step        string `json:"step"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// StoreTier is a marketplace store subscription level
type StoreTier string

const (
	StoreNone    StoreTier = "none"
	StoreBasic   StoreTier = "basic"
	StorePremium StoreTier = "premium"
	StoreAnchor  StoreTier = "anchor"
)

// FVFDiscount returns the final value fee discount for the tier
func (s StoreTier) FVFDiscount() float64 {
	switch s {
	case StoreBasic:
		return 0.04
	case StorePremium:
		return 0.06
	case StoreAnchor:
		return 0.08
	default:
		return 0
	}
}

// PricingOption is one candidate price/shipping split with its full cost detail
type PricingOption struct {
	// PolicyID identifies the shipping policy behind the option
	PolicyID string `json:"policy_id"`

	// PolicyName is the display name of the policy
	PolicyName string `json:"policy_name"`

	ProductPrice  decimal.Decimal `json:"product_price"`
	ShippingPrice decimal.Decimal `json:"shipping_price"`

	// TotalRevenue is always ProductPrice + ShippingPrice
	TotalRevenue decimal.Decimal `json:"total_revenue"`

	Profit       decimal.Decimal `json:"profit"`
	ProfitMargin float64         `json:"profit_margin"`

	// BaseShipping is the carrier cost portion of ShippingPrice
	BaseShipping decimal.Decimal `json:"base_shipping"`

	TariffAmount  decimal.Decimal `json:"tariff_amount"`
	MPF           decimal.Decimal `json:"mpf"`
	HMF           decimal.Decimal `json:"hmf"`
	DDPServiceFee decimal.Decimal `json:"ddp_service_fee"`
	DDPTotal      decimal.Decimal `json:"ddp_total"`

	ProductPriceRatio float64 `json:"product_price_ratio"`

	IsRecommended bool `json:"is_recommended"`

	// Reason explains why the option was chosen; never empty
	Reason string `json:"reason"`
}

// PricingResult is the discriminated success/failure value every public
// pricing entry point returns. Business failures set Success=false and
// Error; no error escapes as a Go error across the public boundary.
type PricingResult struct {
	Success bool `json:"success"`

	Recommended *PricingOption `json:"recommended,omitempty"`
	Alternative *PricingOption `json:"alternative,omitempty"`

	TariffRate       float64 `json:"tariff_rate,omitempty"`
	EffectiveDDPRate float64 `json:"effective_ddp_rate,omitempty"`

	CostConverted decimal.Decimal `json:"cost_converted,omitempty"`

	// RefundEstimate is the consumption-tax refund, reported separately
	// from profit, in the pricing currency
	RefundEstimate decimal.Decimal `json:"refund_estimate,omitempty"`

	// ProfitWithRefund is Recommended.Profit + RefundEstimate
	ProfitWithRefund decimal.Decimal `json:"profit_with_refund,omitempty"`

	// Breakdown itemizes cost components as fixed-point display strings
	Breakdown map[string]string `json:"breakdown,omitempty"`

	// CalculationSteps is the ordered audit trail
	CalculationSteps []CalculationStep `json:"calculation_steps,omitempty"`

	Error string `json:"error,omitempty"`
}

// Failure builds a failed PricingResult
func Failure(msg string) PricingResult {
	return PricingResult{Success: false, Error: msg}
}

// PlatformPriceResult is the generic multi-platform calculator output
type PlatformPriceResult struct {
	Platform string `json:"platform"`
	Currency string `json:"currency"`

	SellingPrice decimal.Decimal `json:"selling_price"`

	ProductCost  decimal.Decimal `json:"product_cost"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	PlatformFee  decimal.Decimal `json:"platform_fee"`
	PaymentFee   decimal.Decimal `json:"payment_fee"`

	Profit         decimal.Decimal `json:"profit"`
	ProfitMargin   float64         `json:"profit_margin"`
	BreakEvenPrice decimal.Decimal `json:"break_even_price"`

	// Warnings flag margin shortfalls; they never fail the calculation
	Warnings []string `json:"warnings,omitempty"`
}

// BatchItemResult pairs an input id with its pricing outcome
type BatchItemResult struct {
	ID     string        `json:"id"`
	Result PricingResult `json:"result"`
}
