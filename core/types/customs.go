// Package types - Customs duty and marketplace fee reference types
package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultKey marks a catch-all duty or fee entry for a country or platform
const DefaultKey = "DEFAULT"

// NormalizeClassificationCode strips separator dots and surrounding
// whitespace from an HS/HTS code. Reference tables may store codes with
// or without separators; comparisons go through this form.
func NormalizeClassificationCode(code string) string {
	code = strings.TrimSpace(code)
	return strings.ReplaceAll(code, ".", "")
}

// DutyEntry is an import duty rate for a classification code and country.
// Codes may carry separator dots; lookups compare normalized forms.
type DutyEntry struct {
	// Code is the classification (HS/HTS) code
	Code string `json:"code"`

	// CountryCode is the destination country
	CountryCode string `json:"country_code"`

	// Rate is the ad-valorem duty rate (0.042 = 4.2%)
	Rate float64 `json:"rate"`

	// Description describes the commodity classification
	Description string `json:"description"`
}

// CountryTariff is an origin-country additional tariff on top of the base duty
type CountryTariff struct {
	CountryCode    string  `json:"country_code"`
	AdditionalRate float64 `json:"additional_rate"`
	TariffType     string  `json:"tariff_type"`
	Active         bool    `json:"active"`
}

// FeeEntry is a marketplace fee rate for a platform, country, and category
type FeeEntry struct {
	Platform    string `json:"platform"`
	CountryCode string `json:"country_code"`
	Category    string `json:"category"`

	// Rate is the percentage-of-sale fee rate
	Rate float64 `json:"rate"`

	// FixedFee is a flat per-sale fee
	FixedFee decimal.Decimal `json:"fixed_fee"`

	// Description records how the entry was resolved
	Description string `json:"description,omitempty"`
}
