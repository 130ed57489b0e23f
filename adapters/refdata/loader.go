// Package refdata loads pricing reference data from HCL files into an
// in-memory repository. It is the only component that touches the
// filesystem; the engines stay pure.
package refdata

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"resale-pricing/core/repository"
	"resale-pricing/core/types"
	"resale-pricing/internal/errors"
	"resale-pricing/internal/logging"
)

// Loader parses reference data files
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a loader
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

type fileContent struct {
	Carriers         []carrierBlock          `hcl:"carrier,block"`
	Zones            []zoneBlock             `hcl:"zone,block"`
	Rates            []rateBlock             `hcl:"rate,block"`
	FuelSurcharges   []fuelBlock             `hcl:"fuel_surcharge,block"`
	DemandSurcharges []demandBlock           `hcl:"demand_surcharge,block"`
	OversizeRules    []oversizeBlock         `hcl:"oversize_rule,block"`
	InsuranceTiers   []insuranceBlock        `hcl:"insurance_tier,block"`
	SignatureFees    []signatureBlock        `hcl:"signature_fee,block"`
	Duties           []dutyBlock             `hcl:"duty,block"`
	CountryTariffs   []countryTariffBlock    `hcl:"country_tariff,block"`
	Fees             []feeBlock              `hcl:"fee,block"`
	DdpPolicies      []ddpPolicyBlock        `hcl:"ddp_policy,block"`
	PlatformShipping []platformShippingBlock `hcl:"platform_shipping,block"`
}

type carrierBlock struct {
	ID   string `hcl:"id,label"`
	Name string `hcl:"name"`
}

type zoneBlock struct {
	Carrier string `hcl:"carrier"`
	Country string `hcl:"country"`
	ZoneID  string `hcl:"zone_id"`
}

type rateBlock struct {
	ID           string  `hcl:"id,label"`
	Carrier      string  `hcl:"carrier"`
	Service      string  `hcl:"service"`
	ServiceName  string  `hcl:"service_name,optional"`
	Zone         string  `hcl:"zone"`
	WeightFromKg float64 `hcl:"weight_from_kg"`
	WeightToKg   float64 `hcl:"weight_to_kg"`
	BasePrice    float64 `hcl:"base_price"`
}

type fuelBlock struct {
	Carrier        string  `hcl:"carrier"`
	EffectiveMonth string  `hcl:"effective_month"`
	RatePercent    float64 `hcl:"rate_percent"`
}

type demandBlock struct {
	Carrier          string  `hcl:"carrier"`
	Type             string  `hcl:"type"`
	RatePercent      float64 `hcl:"rate_percent,optional"`
	FixedAmount      float64 `hcl:"fixed_amount,optional"`
	ApplicableMonths []int   `hcl:"applicable_months,optional"`
	Active           *bool   `hcl:"active,optional"`
}

type oversizeBlock struct {
	Service   string  `hcl:"service"`
	Type      string  `hcl:"type"`
	Threshold float64 `hcl:"threshold"`
	Surcharge float64 `hcl:"surcharge"`
}

type insuranceBlock struct {
	Service   string  `hcl:"service"`
	ValueFrom float64 `hcl:"value_from"`
	ValueTo   float64 `hcl:"value_to"`
	Fee       float64 `hcl:"fee"`
}

type signatureBlock struct {
	Service  string  `hcl:"service"`
	Fee      float64 `hcl:"fee"`
	Included bool    `hcl:"included,optional"`
}

type dutyBlock struct {
	Code        string  `hcl:"code"`
	Country     string  `hcl:"country"`
	Rate        float64 `hcl:"rate"`
	Description string  `hcl:"description,optional"`
}

type countryTariffBlock struct {
	Country        string  `hcl:"country"`
	AdditionalRate float64 `hcl:"additional_rate"`
	TariffType     string  `hcl:"tariff_type,optional"`
	Active         *bool   `hcl:"active,optional"`
}

type feeBlock struct {
	Platform string  `hcl:"platform"`
	Country  string  `hcl:"country"`
	Category string  `hcl:"category"`
	Rate     float64 `hcl:"rate"`
	FixedFee float64 `hcl:"fixed_fee,optional"`
}

type ddpPolicyBlock struct {
	ID               string  `hcl:"id,label"`
	Name             string  `hcl:"name"`
	WeightMinKg      float64 `hcl:"weight_min_kg"`
	WeightMaxKg      float64 `hcl:"weight_max_kg"`
	ProductPriceTier float64 `hcl:"product_price_tier"`
	BaseShipping     float64 `hcl:"base_shipping"`
	TotalShipping    float64 `hcl:"total_shipping"`
}

type platformShippingBlock struct {
	Platform string      `hcl:"platform,label"`
	Method   string      `hcl:"method,label"`
	Bands    []bandBlock `hcl:"band,block"`
}

type bandBlock struct {
	MaxWeightG float64 `hcl:"max_weight_g"`
	Cost       float64 `hcl:"cost"`
}

// LoadDir parses every .hcl file under dir into one repository
func (l *Loader) LoadDir(dir string) (*repository.Memory, error) {
	repo := repository.NewMemory()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.TypeRefData, "reading reference data directory", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".hcl") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := l.loadFile(path, repo); err != nil {
			return nil, err
		}
		loaded++
	}

	logging.Info("reference data loaded",
		zap.String("dir", dir),
		zap.Int("files", loaded),
		zap.Int("rate_rows", len(repo.RateRows)),
		zap.Int("duty_entries", len(repo.DutyEntries)),
		zap.Int("ddp_policies", len(repo.DdpPolicies)))

	return repo, nil
}

func (l *Loader) loadFile(path string, repo *repository.Memory) error {
	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return errors.Wrapf(errors.TypeRefData, diags, "parsing %s", path)
	}

	var content fileContent
	if diags := gohcl.DecodeBody(file.Body, nil, &content); diags.HasErrors() {
		return errors.Wrapf(errors.TypeRefData, diags, "decoding %s", path)
	}

	merge(repo, content)
	return nil
}

func merge(repo *repository.Memory, c fileContent) {
	for _, b := range c.Carriers {
		repo.Carriers = append(repo.Carriers, types.Carrier{ID: b.ID, Name: b.Name})
	}
	for _, b := range c.Zones {
		repo.ZoneMappings = append(repo.ZoneMappings, types.ZoneMapping{
			CountryCode: b.Country, CarrierID: b.Carrier, ZoneID: b.ZoneID,
		})
	}
	for _, b := range c.Rates {
		name := b.ServiceName
		if name == "" {
			name = b.Service
		}
		repo.RateRows = append(repo.RateRows, types.RateRow{
			ID:           b.ID,
			CarrierID:    b.Carrier,
			ServiceCode:  b.Service,
			ServiceName:  name,
			ZoneCode:     b.Zone,
			WeightFromKg: b.WeightFromKg,
			WeightToKg:   b.WeightToKg,
			BasePrice:    decimal.NewFromFloat(b.BasePrice),
		})
	}
	for _, b := range c.FuelSurcharges {
		repo.FuelSurcharges = append(repo.FuelSurcharges, types.FuelSurcharge{
			CarrierID:      b.Carrier,
			EffectiveMonth: b.EffectiveMonth,
			RatePercent:    b.RatePercent,
		})
	}
	for _, b := range c.DemandSurcharges {
		months := make([]time.Month, 0, len(b.ApplicableMonths))
		for _, m := range b.ApplicableMonths {
			months = append(months, time.Month(m))
		}
		active := true
		if b.Active != nil {
			active = *b.Active
		}
		repo.DemandRules = append(repo.DemandRules, types.DemandSurcharge{
			CarrierID:        b.Carrier,
			Type:             types.DemandSurchargeType(b.Type),
			RatePercent:      b.RatePercent,
			FixedAmount:      decimal.NewFromFloat(b.FixedAmount),
			ApplicableMonths: months,
			Active:           active,
		})
	}
	for _, b := range c.OversizeRules {
		repo.OversizeRules = append(repo.OversizeRules, types.OversizeRule{
			ServiceCode: b.Service,
			Type:        types.OversizeRuleType(b.Type),
			Threshold:   b.Threshold,
			Surcharge:   decimal.NewFromFloat(b.Surcharge),
		})
	}
	for _, b := range c.InsuranceTiers {
		repo.InsuranceTiers = append(repo.InsuranceTiers, types.InsuranceTier{
			ServiceCode: b.Service,
			ValueFrom:   decimal.NewFromFloat(b.ValueFrom),
			ValueTo:     decimal.NewFromFloat(b.ValueTo),
			Fee:         decimal.NewFromFloat(b.Fee),
		})
	}
	for _, b := range c.SignatureFees {
		repo.SignatureFees = append(repo.SignatureFees, types.SignatureFee{
			ServiceCode: b.Service,
			Fee:         decimal.NewFromFloat(b.Fee),
			Included:    b.Included,
		})
	}
	for _, b := range c.Duties {
		repo.DutyEntries = append(repo.DutyEntries, types.DutyEntry{
			Code:        b.Code,
			CountryCode: b.Country,
			Rate:        b.Rate,
			Description: b.Description,
		})
	}
	for _, b := range c.CountryTariffs {
		active := true
		if b.Active != nil {
			active = *b.Active
		}
		repo.CountryTariffs = append(repo.CountryTariffs, types.CountryTariff{
			CountryCode:    b.Country,
			AdditionalRate: b.AdditionalRate,
			TariffType:     b.TariffType,
			Active:         active,
		})
	}
	for _, b := range c.Fees {
		repo.FeeEntries = append(repo.FeeEntries, types.FeeEntry{
			Platform:    b.Platform,
			CountryCode: b.Country,
			Category:    b.Category,
			Rate:        b.Rate,
			FixedFee:    decimal.NewFromFloat(b.FixedFee),
		})
	}
	for _, b := range c.DdpPolicies {
		repo.DdpPolicies = append(repo.DdpPolicies, types.DdpPolicy{
			ID:               b.ID,
			Name:             b.Name,
			WeightMinKg:      b.WeightMinKg,
			WeightMaxKg:      b.WeightMaxKg,
			ProductPriceTier: decimal.NewFromFloat(b.ProductPriceTier),
			BaseShipping:     decimal.NewFromFloat(b.BaseShipping),
			TotalShipping:    decimal.NewFromFloat(b.TotalShipping),
		})
	}
	for _, b := range c.PlatformShipping {
		platform := strings.ToLower(b.Platform)
		if repo.PlatformShipping[platform] == nil {
			repo.PlatformShipping[platform] = make(map[string][]types.WeightBandCost)
		}
		bands := make([]types.WeightBandCost, 0, len(b.Bands))
		for _, band := range b.Bands {
			bands = append(bands, types.WeightBandCost{
				MaxWeightG: band.MaxWeightG,
				Cost:       decimal.NewFromFloat(band.Cost),
			})
		}
		repo.PlatformShipping[platform][b.Method] = append(repo.PlatformShipping[platform][b.Method], bands...)
	}
}
