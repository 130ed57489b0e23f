package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"resale-pricing/core/types"
)

// Memory is an in-memory Repository. It backs tests and the reference
// data loader; lookups never fail.
type Memory struct {
	Carriers       []types.Carrier
	ZoneMappings   []types.ZoneMapping
	RateRows       []types.RateRow
	DutyEntries    []types.DutyEntry
	CountryTariffs []types.CountryTariff
	FeeEntries     []types.FeeEntry
	FuelSurcharges []types.FuelSurcharge
	DemandRules    []types.DemandSurcharge
	OversizeRules  []types.OversizeRule
	InsuranceTiers []types.InsuranceTier
	SignatureFees  []types.SignatureFee
	DdpPolicies    []types.DdpPolicy

	// PlatformShipping is keyed by platform, then shipping method
	PlatformShipping map[string]map[string][]types.WeightBandCost
}

var _ Repository = (*Memory)(nil)

// NewMemory creates an empty in-memory repository
func NewMemory() *Memory {
	return &Memory{
		PlatformShipping: make(map[string]map[string][]types.WeightBandCost),
	}
}

// GetCarriers returns all configured carriers
func (m *Memory) GetCarriers(_ context.Context) ([]types.Carrier, error) {
	out := make([]types.Carrier, len(m.Carriers))
	copy(out, m.Carriers)
	return out, nil
}

// GetZonesForCountry returns the carrier's zones serving a country
func (m *Memory) GetZonesForCountry(_ context.Context, carrierID, countryCode string) ([]string, error) {
	var zones []string
	for _, zm := range m.ZoneMappings {
		if zm.CarrierID == carrierID && strings.EqualFold(zm.CountryCode, countryCode) {
			zones = append(zones, zm.ZoneID)
		}
	}
	return zones, nil
}

// GetRateRows returns rate rows covering the weight, ascending by base price
func (m *Memory) GetRateRows(_ context.Context, carrierID, zoneID string, weightKg float64) ([]types.RateRow, error) {
	var rows []types.RateRow
	for _, r := range m.RateRows {
		if r.CarrierID != carrierID || r.ZoneCode != zoneID {
			continue
		}
		if r.WeightFromKg <= weightKg && weightKg <= r.WeightToKg {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].BasePrice.LessThan(rows[j].BasePrice)
	})
	return rows, nil
}

// GetDutyEntry returns the duty entry for a code and country. Codes
// compare in normalized form, so a table row stored as "9504.40" serves
// a lookup for "950440".
func (m *Memory) GetDutyEntry(_ context.Context, code, countryCode string) (types.DutyEntry, bool, error) {
	normalized := types.NormalizeClassificationCode(code)
	for _, d := range m.DutyEntries {
		if types.NormalizeClassificationCode(d.Code) == normalized && strings.EqualFold(d.CountryCode, countryCode) {
			return d, true, nil
		}
	}
	return types.DutyEntry{}, false, nil
}

// GetCountryTariff returns the active additional tariff for an origin country
func (m *Memory) GetCountryTariff(_ context.Context, countryCode string) (types.CountryTariff, bool, error) {
	for _, t := range m.CountryTariffs {
		if strings.EqualFold(t.CountryCode, countryCode) && t.Active {
			return t, true, nil
		}
	}
	return types.CountryTariff{}, false, nil
}

// GetFeeEntry returns the fee entry for an exact platform/country/category
func (m *Memory) GetFeeEntry(_ context.Context, platform, countryCode, category string) (types.FeeEntry, bool, error) {
	for _, f := range m.FeeEntries {
		if strings.EqualFold(f.Platform, platform) &&
			strings.EqualFold(f.CountryCode, countryCode) &&
			strings.EqualFold(f.Category, category) {
			return f, true, nil
		}
	}
	return types.FeeEntry{}, false, nil
}

// GetFeeEntries returns all fee entries for a platform and country
func (m *Memory) GetFeeEntries(_ context.Context, platform, countryCode string) ([]types.FeeEntry, error) {
	var out []types.FeeEntry
	for _, f := range m.FeeEntries {
		if strings.EqualFold(f.Platform, platform) && strings.EqualFold(f.CountryCode, countryCode) {
			out = append(out, f)
		}
	}
	return out, nil
}

// GetFuelSurcharge returns the carrier's most recent fuel surcharge
func (m *Memory) GetFuelSurcharge(_ context.Context, carrierID string) (types.FuelSurcharge, bool, error) {
	var best types.FuelSurcharge
	found := false
	for _, f := range m.FuelSurcharges {
		if f.CarrierID != carrierID {
			continue
		}
		// EffectiveMonth is "YYYY-MM"; lexical order is chronological
		if !found || f.EffectiveMonth > best.EffectiveMonth {
			best = f
			found = true
		}
	}
	return best, found, nil
}

// GetDemandSurcharges returns the carrier's demand surcharge rules
func (m *Memory) GetDemandSurcharges(_ context.Context, carrierID string) ([]types.DemandSurcharge, error) {
	var out []types.DemandSurcharge
	for _, d := range m.DemandRules {
		if d.CarrierID == carrierID {
			out = append(out, d)
		}
	}
	return out, nil
}

// GetOversizeRules returns the service's oversize rules
func (m *Memory) GetOversizeRules(_ context.Context, serviceCode string) ([]types.OversizeRule, error) {
	var out []types.OversizeRule
	for _, r := range m.OversizeRules {
		if r.ServiceCode == serviceCode {
			out = append(out, r)
		}
	}
	return out, nil
}

// GetInsuranceTier returns the insurance tier covering a declared value
func (m *Memory) GetInsuranceTier(_ context.Context, serviceCode string, declaredValue decimal.Decimal) (types.InsuranceTier, bool, error) {
	for _, t := range m.InsuranceTiers {
		if t.ServiceCode != serviceCode {
			continue
		}
		if t.ValueFrom.LessThanOrEqual(declaredValue) && declaredValue.LessThanOrEqual(t.ValueTo) {
			return t, true, nil
		}
	}
	return types.InsuranceTier{}, false, nil
}

// GetSignatureFee returns the service's signature fee row
func (m *Memory) GetSignatureFee(_ context.Context, serviceCode string) (types.SignatureFee, bool, error) {
	for _, s := range m.SignatureFees {
		if s.ServiceCode == serviceCode {
			return s, true, nil
		}
	}
	return types.SignatureFee{}, false, nil
}

// GetDdpPolicies returns DDP policies covering the weight, ascending by
// total shipping. The weight band check is min-inclusive, max-exclusive,
// matching how the bands are published.
func (m *Memory) GetDdpPolicies(_ context.Context, weightKg float64) ([]types.DdpPolicy, error) {
	var out []types.DdpPolicy
	for _, p := range m.DdpPolicies {
		if p.WeightMinKg <= weightKg && weightKg < p.WeightMaxKg {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalShipping.LessThan(out[j].TotalShipping)
	})
	return out, nil
}

// GetPlatformShippingRates returns a platform's flat shipping table
func (m *Memory) GetPlatformShippingRates(_ context.Context, platform, method string) ([]types.WeightBandCost, error) {
	methods, ok := m.PlatformShipping[strings.ToLower(platform)]
	if !ok {
		return nil, nil
	}
	if method == "" {
		// Deterministic default: first method in sorted order
		var names []string
		for name := range methods {
			names = append(names, name)
		}
		if len(names) == 0 {
			return nil, nil
		}
		sort.Strings(names)
		method = names[0]
	}
	bands := methods[method]
	out := make([]types.WeightBandCost, len(bands))
	copy(out, bands)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MaxWeightG < out[j].MaxWeightG
	})
	return out, nil
}
