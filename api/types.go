// Package api - API types for the pricing endpoints.
// The API is stateless, idempotent, and deterministic.
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"resale-pricing/core/ddp"
	"resale-pricing/core/platform"
	"resale-pricing/core/types"
)

// RatesRequest is the input to POST /rates
type RatesRequest struct {
	// Weight and dimensions of the package
	ActualKg float64 `json:"actual_kg"`
	LengthCm float64 `json:"length_cm,omitempty"`
	WidthCm  float64 `json:"width_cm,omitempty"`
	HeightCm float64 `json:"height_cm,omitempty"`

	DestinationCountry string `json:"destination_country"`

	// DeclaredValue is used for insurance tier lookup
	DeclaredValue float64 `json:"declared_value,omitempty"`
	NeedInsurance bool    `json:"need_insurance,omitempty"`
	NeedSignature bool    `json:"need_signature,omitempty"`

	// Month gates demand surcharges; 1-12, defaults to January
	Month int `json:"month,omitempty"`
}

// RatesResponse is the output of POST /rates
type RatesResponse struct {
	Results  []types.RateResult `json:"results"`
	Count    int                `json:"count"`
	Metadata *ResponseMetadata  `json:"metadata,omitempty"`
}

// PriceRequest is the input to POST /price
type PriceRequest struct {
	Cost               decimal.Decimal `json:"cost"`
	ExchangeRate       float64         `json:"exchange_rate"`
	ActualKg           float64         `json:"actual_kg"`
	LengthCm           float64         `json:"length_cm,omitempty"`
	WidthCm            float64         `json:"width_cm,omitempty"`
	HeightCm           float64         `json:"height_cm,omitempty"`
	ClassificationCode string          `json:"classification_code"`
	OriginCountry      string          `json:"origin_country"`
	DestinationCountry string          `json:"destination_country,omitempty"`
	TargetMargin       float64         `json:"target_margin,omitempty"`
	TargetPriceRatio   float64         `json:"target_price_ratio,omitempty"`
	StoreTier          string          `json:"store_tier,omitempty"`
	FVFRate            float64         `json:"fvf_rate,omitempty"`
	Month              int             `json:"month,omitempty"`
}

// PriceResponse is the output of POST /price
type PriceResponse struct {
	types.PricingResult
	Metadata *ResponseMetadata `json:"metadata,omitempty"`
}

// BatchPriceRequest is the input to POST /price/batch
type BatchPriceRequest struct {
	Items []BatchPriceItem `json:"items"`

	// Concurrency bounds the worker pool; below 2 runs sequentially
	Concurrency int `json:"concurrency,omitempty"`
}

// BatchPriceItem is one item in a batch request
type BatchPriceItem struct {
	ID string `json:"id"`
	PriceRequest
}

// BatchPriceResponse is the output of POST /price/batch
type BatchPriceResponse struct {
	Results   []types.BatchItemResult `json:"results"`
	Succeeded int                     `json:"succeeded"`
	Failed    int                     `json:"failed"`
	Metadata  *ResponseMetadata       `json:"metadata,omitempty"`
}

// PlatformPriceRequest is the input to POST /price/platform
type PlatformPriceRequest struct {
	Cost           decimal.Decimal `json:"cost"`
	WeightG        float64         `json:"weight_g"`
	Platform       string          `json:"platform"`
	CountryCode    string          `json:"country_code"`
	Category       string          `json:"category,omitempty"`
	ShippingMethod string          `json:"shipping_method,omitempty"`
	ExchangeRate   float64         `json:"exchange_rate"`
	Currency       string          `json:"currency,omitempty"`
	PaymentFeeRate float64         `json:"payment_fee_rate,omitempty"`
	MinMargin      float64         `json:"min_margin,omitempty"`
}

// PlatformPriceResponse is the output of POST /price/platform
type PlatformPriceResponse struct {
	types.PlatformPriceResult
	Metadata *ResponseMetadata `json:"metadata,omitempty"`
}

// ResponseMetadata carries audit fields on every response
type ResponseMetadata struct {
	RequestID     string `json:"request_id"`
	InputHash     string `json:"input_hash"`
	EngineVersion string `json:"engine_version"`
	DurationMs    int64  `json:"duration_ms"`
}

func (r PriceRequest) toInput() ddp.Input {
	return ddp.Input{
		Cost:         r.Cost,
		ExchangeRate: r.ExchangeRate,
		Weight: types.WeightSpec{
			ActualKg: r.ActualKg,
			LengthCm: r.LengthCm,
			WidthCm:  r.WidthCm,
			HeightCm: r.HeightCm,
		},
		ClassificationCode: r.ClassificationCode,
		OriginCountry:      r.OriginCountry,
		DestinationCountry: r.DestinationCountry,
		TargetMargin:       r.TargetMargin,
		TargetPriceRatio:   r.TargetPriceRatio,
		StoreTier:          types.StoreTier(r.StoreTier),
		FVFRate:            r.FVFRate,
		Month:              time.Month(r.Month),
	}
}

func (r PlatformPriceRequest) toInput() platform.Input {
	return platform.Input{
		Cost:           r.Cost,
		WeightG:        r.WeightG,
		Platform:       r.Platform,
		CountryCode:    r.CountryCode,
		Category:       r.Category,
		ShippingMethod: r.ShippingMethod,
		ExchangeRate:   r.ExchangeRate,
		Currency:       r.Currency,
		PaymentFeeRate: r.PaymentFeeRate,
	}
}
