// Package customs resolves import duty rates and marketplace fee rates
// from reference tables, with the documented fallback chains.
package customs

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"resale-pricing/core/repository"
	"resale-pricing/core/types"
)

// globalFallbackFeeRate applies when a platform/country has no fee data
// at all. It is deliberately visible in the entry description so a
// missing table row never silently prices as zero.
const globalFallbackFeeRate = 0.10

// Resolver resolves duty and fee entries
type Resolver struct {
	repo repository.Repository
}

// NewResolver creates a resolver
func NewResolver(repo repository.Repository) *Resolver {
	return &Resolver{repo: repo}
}

// NormalizeCode strips separator dots and whitespace from a
// classification code
func NormalizeCode(code string) string {
	return types.NormalizeClassificationCode(code)
}

// ResolveDuty returns the duty entry for a classification code and
// destination country. Resolution order: exact match on the raw and
// normalized code, then prefix truncation to 6, 4, and 2 digits, then
// the country's DEFAULT entry. Reports found=false only when every
// fallback misses.
func (r *Resolver) ResolveDuty(ctx context.Context, code, countryCode string) (types.DutyEntry, bool) {
	normalized := NormalizeCode(code)

	candidates := []string{code, normalized}
	for _, length := range []int{6, 4, 2} {
		if len(normalized) > length {
			candidates = append(candidates, normalized[:length])
		}
	}
	candidates = append(candidates, types.DefaultKey)

	seen := make(map[string]bool, len(candidates))
	for _, candidate := range candidates {
		if candidate == "" || seen[candidate] {
			continue
		}
		seen[candidate] = true

		entry, found, err := r.repo.GetDutyEntry(ctx, candidate, countryCode)
		if err != nil {
			continue
		}
		if found {
			if candidate != code && candidate != normalized && candidate != types.DefaultKey {
				entry.Description = entry.Description + " (resolved by prefix)"
			}
			return entry, true
		}
	}

	return types.DutyEntry{}, false
}

// OriginAdditionalRate returns the active additional tariff rate for an
// origin country, zero when none is configured.
func (r *Resolver) OriginAdditionalRate(ctx context.Context, originCountry string) (float64, string) {
	tariff, found, err := r.repo.GetCountryTariff(ctx, originCountry)
	if err != nil || !found {
		return 0, ""
	}
	return tariff.AdditionalRate, tariff.TariffType
}

// ResolveFee returns the marketplace fee entry for a platform, country,
// and category. Resolution order: exact category match, case-insensitive
// substring match in either direction, the platform/country DEFAULT
// entry, then a global fallback rate explicitly marked as unknown.
// ResolveFee never fails.
func (r *Resolver) ResolveFee(ctx context.Context, platform, countryCode, category string) types.FeeEntry {
	if entry, found, err := r.repo.GetFeeEntry(ctx, platform, countryCode, category); err == nil && found {
		return entry
	}

	if category != "" {
		entries, err := r.repo.GetFeeEntries(ctx, platform, countryCode)
		if err == nil {
			lower := strings.ToLower(category)
			for _, entry := range entries {
				entryCat := strings.ToLower(entry.Category)
				if entryCat == "" || entryCat == strings.ToLower(types.DefaultKey) {
					continue
				}
				if strings.Contains(entryCat, lower) || strings.Contains(lower, entryCat) {
					entry.Description = entry.Description + " (matched by category substring)"
					return entry
				}
			}
		}
	}

	if entry, found, err := r.repo.GetFeeEntry(ctx, platform, countryCode, types.DefaultKey); err == nil && found {
		return entry
	}

	return types.FeeEntry{
		Platform:    platform,
		CountryCode: countryCode,
		Category:    category,
		Rate:        globalFallbackFeeRate,
		FixedFee:    decimal.Zero,
		Description: "unknown platform/country: global fallback rate applied",
	}
}
