// Package repository provides read-only access to pricing reference data.
// Implementations own data freshness; the engines never mutate reference
// data and never cache across calls.
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"resale-pricing/core/types"
)

// Repository is the read-only reference data contract consumed by the
// engines. Every lookup reports missing data as an empty result or a
// false found flag, never as an error; errors are reserved for the
// implementation's own failures (I/O, decoding).
type Repository interface {
	// GetCarriers returns all configured carrier sources
	GetCarriers(ctx context.Context) ([]types.Carrier, error)

	// GetZonesForCountry returns the carrier's zone ids serving a country.
	// An empty result means the carrier does not serve the country.
	GetZonesForCountry(ctx context.Context, carrierID, countryCode string) ([]string, error)

	// GetRateRows returns the carrier's rate rows covering a weight in a zone,
	// ascending by base price
	GetRateRows(ctx context.Context, carrierID, zoneID string, weightKg float64) ([]types.RateRow, error)

	// GetDutyEntry returns the duty entry for an exact code and country
	GetDutyEntry(ctx context.Context, code, countryCode string) (types.DutyEntry, bool, error)

	// GetCountryTariff returns the active additional tariff for an origin country
	GetCountryTariff(ctx context.Context, countryCode string) (types.CountryTariff, bool, error)

	// GetFeeEntry returns the fee entry for an exact platform/country/category
	GetFeeEntry(ctx context.Context, platform, countryCode, category string) (types.FeeEntry, bool, error)

	// GetFeeEntries returns all fee entries for a platform and country
	GetFeeEntries(ctx context.Context, platform, countryCode string) ([]types.FeeEntry, error)

	// GetFuelSurcharge returns the carrier's most recent fuel surcharge
	GetFuelSurcharge(ctx context.Context, carrierID string) (types.FuelSurcharge, bool, error)

	// GetDemandSurcharges returns the carrier's demand surcharge rules
	GetDemandSurcharges(ctx context.Context, carrierID string) ([]types.DemandSurcharge, error)

	// GetOversizeRules returns the service's oversize rules
	GetOversizeRules(ctx context.Context, serviceCode string) ([]types.OversizeRule, error)

	// GetInsuranceTier returns the insurance tier covering a declared value
	GetInsuranceTier(ctx context.Context, serviceCode string, declaredValue decimal.Decimal) (types.InsuranceTier, bool, error)

	// GetSignatureFee returns the service's signature fee row
	GetSignatureFee(ctx context.Context, serviceCode string) (types.SignatureFee, bool, error)

	// GetDdpPolicies returns DDP policies covering a weight, ascending by
	// total shipping
	GetDdpPolicies(ctx context.Context, weightKg float64) ([]types.DdpPolicy, error)

	// GetPlatformShippingRates returns a platform's flat shipping table for a
	// shipping method, ascending by weight band
	GetPlatformShippingRates(ctx context.Context, platform, method string) ([]types.WeightBandCost, error)
}
