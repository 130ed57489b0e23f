// Package types - Shipping reference data and rate result types
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Carrier identifies a shipping carrier source
type Carrier struct {
	// ID is the carrier code (e.g. "CPASS", "ELOJI_DHL", "JPPOST")
	ID string `json:"id"`

	// Name is the display name
	Name string `json:"name"`
}

// RateRow is an immutable carrier rate table row.
// Weight bands per (carrier, zone) are contiguous and non-overlapping.
type RateRow struct {
	// ID uniquely identifies the row
	ID string `json:"id"`

	// CarrierID is the owning carrier
	CarrierID string `json:"carrier_id"`

	// ServiceCode identifies the carrier service
	ServiceCode string `json:"service_code"`

	// ServiceName is the display name of the service
	ServiceName string `json:"service_name"`

	// ZoneCode is the carrier-specific destination zone
	ZoneCode string `json:"zone_code"`

	// WeightFromKg is the inclusive lower bound of the weight band
	WeightFromKg float64 `json:"weight_from_kg"`

	// WeightToKg is the inclusive upper bound of the weight band
	WeightToKg float64 `json:"weight_to_kg"`

	// BasePrice is the base rate before surcharges
	BasePrice decimal.Decimal `json:"base_price"`
}

// ZoneMapping maps a destination country to a carrier zone.
// Absence of a mapping means the carrier does not serve the country.
type ZoneMapping struct {
	CountryCode string `json:"country_code"`
	CarrierID   string `json:"carrier_id"`
	ZoneID      string `json:"zone_id"`
}

// WeightSpec describes a package's physical weight and dimensions
type WeightSpec struct {
	ActualKg float64 `json:"actual_kg"`
	LengthCm float64 `json:"length_cm"`
	WidthCm  float64 `json:"width_cm"`
	HeightCm float64 `json:"height_cm"`
}

// HasDimensions reports whether all three dimensions are set
func (w WeightSpec) HasDimensions() bool {
	return w.LengthCm > 0 && w.WidthCm > 0 && w.HeightCm > 0
}

// FuelSurcharge is a carrier's fuel surcharge for one effective month
type FuelSurcharge struct {
	CarrierID string `json:"carrier_id"`

	// EffectiveMonth is the month the rate took effect ("2025-06")
	EffectiveMonth string `json:"effective_month"`

	// RatePercent is the surcharge as a percentage of the base price
	RatePercent float64 `json:"rate_percent"`
}

// DemandSurchargeType classifies a demand surcharge
type DemandSurchargeType string

const (
	DemandPeak             DemandSurchargeType = "PEAK"
	DemandResidential      DemandSurchargeType = "RESIDENTIAL"
	DemandRemoteArea       DemandSurchargeType = "REMOTE_AREA"
	DemandCustomsClearance DemandSurchargeType = "CUSTOMS_CLEARANCE"
)

// DemandSurcharge is a carrier demand surcharge rule.
// Either RatePercent or FixedAmount applies, never both.
type DemandSurcharge struct {
	CarrierID string              `json:"carrier_id"`
	Type      DemandSurchargeType `json:"type"`

	// RatePercent is the surcharge as a percentage of the base price
	RatePercent float64 `json:"rate_percent,omitempty"`

	// FixedAmount is a flat surcharge amount
	FixedAmount decimal.Decimal `json:"fixed_amount,omitempty"`

	// ApplicableMonths gates the surcharge to specific calendar months.
	// Empty means the surcharge applies year-round.
	ApplicableMonths []time.Month `json:"applicable_months,omitempty"`

	// Active disables the rule without deleting it
	Active bool `json:"active"`
}

// AppliesIn reports whether the surcharge is in effect for the given month
func (d DemandSurcharge) AppliesIn(month time.Month) bool {
	if !d.Active {
		return false
	}
	if len(d.ApplicableMonths) == 0 {
		return true
	}
	for _, m := range d.ApplicableMonths {
		if m == month {
			return true
		}
	}
	return false
}

// OversizeRuleType identifies which measurement an oversize rule checks
type OversizeRuleType string

const (
	OversizeLength OversizeRuleType = "length"
	OversizeWidth  OversizeRuleType = "width"
	OversizeHeight OversizeRuleType = "height"
	OversizeWeight OversizeRuleType = "weight"
	OversizeGirth  OversizeRuleType = "girth"
)

// OversizeRule adds a flat surcharge when a measurement exceeds a threshold.
// Girth is 2*(width+height)+length.
type OversizeRule struct {
	ServiceCode string           `json:"service_code"`
	Type        OversizeRuleType `json:"type"`
	Threshold   float64          `json:"threshold"`
	Surcharge   decimal.Decimal  `json:"surcharge"`
}

// InsuranceTier maps a declared value band to an insurance fee
type InsuranceTier struct {
	ServiceCode string          `json:"service_code"`
	ValueFrom   decimal.Decimal `json:"value_from"`
	ValueTo     decimal.Decimal `json:"value_to"`
	Fee         decimal.Decimal `json:"fee"`
}

// SignatureFee is a service's signature-on-delivery fee.
// Included means the service bundles signature at no extra cost.
type SignatureFee struct {
	ServiceCode string          `json:"service_code"`
	Fee         decimal.Decimal `json:"fee"`
	Included    bool            `json:"included"`
}

// RateResult is one fully priced shipping option
type RateResult struct {
	// ID uniquely identifies the result ("cpass_42")
	ID string `json:"id"`

	CarrierID   string `json:"carrier_id"`
	CarrierName string `json:"carrier_name"`
	ServiceCode string `json:"service_code"`
	ServiceName string `json:"service_name"`
	ZoneCode    string `json:"zone_code"`

	ActualWeightKg     float64 `json:"actual_weight_kg"`
	VolumetricWeightKg float64 `json:"volumetric_weight_kg"`
	ChargeableWeightKg float64 `json:"chargeable_weight_kg"`

	BasePrice decimal.Decimal `json:"base_price"`

	FuelSurcharge       decimal.Decimal `json:"fuel_surcharge"`
	PeakSurcharge       decimal.Decimal `json:"peak_surcharge"`
	ResidentialCharge   decimal.Decimal `json:"residential_surcharge"`
	RemoteAreaCharge    decimal.Decimal `json:"remote_area_surcharge"`
	CustomsClearanceFee decimal.Decimal `json:"customs_clearance_fee"`
	OversizeFee         decimal.Decimal `json:"oversize_fee"`
	InsuranceFee        decimal.Decimal `json:"insurance_fee"`
	SignatureFee        decimal.Decimal `json:"signature_fee"`

	// TotalPrice is the base price plus all applicable surcharges
	TotalPrice decimal.Decimal `json:"total_price"`

	// ProductPriceTier is set only for DDP policy rows: the listed
	// product-price tier the policy's shipping budget supports.
	ProductPriceTier decimal.Decimal `json:"product_price_tier,omitempty"`
}

// DdpPolicy is a delivered-duty-paid shipping policy row.
// TotalShipping bundles the base shipping cost with a prepaid duty budget.
type DdpPolicy struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	WeightMinKg float64 `json:"weight_min_kg"`
	WeightMaxKg float64 `json:"weight_max_kg"`

	// ProductPriceTier is the listed product price the policy is sized for
	ProductPriceTier decimal.Decimal `json:"product_price_tier"`

	// BaseShipping is the carrier shipping cost without the duty budget
	BaseShipping decimal.Decimal `json:"base_shipping"`

	// TotalShipping is the buyer-facing shipping price including the duty budget
	TotalShipping decimal.Decimal `json:"total_shipping"`
}

// WeightBandCost is a flat platform shipping table row (weight in grams)
type WeightBandCost struct {
	MaxWeightG float64         `json:"max_weight_g"`
	Cost       decimal.Decimal `json:"cost"`
}
