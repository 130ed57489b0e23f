package rates

import (
	"context"
	"fmt"
	"strings"

	"resale-pricing/core/repository"
	"resale-pricing/core/surcharge"
	"resale-pricing/core/types"
	"resale-pricing/core/weight"
)

// CarrierSource prices one carrier's rate table: zone resolution,
// chargeable weight, then surcharge stacking per candidate row.
type CarrierSource struct {
	carrier types.Carrier
	repo    repository.Repository
	calc    *surcharge.Calculator
}

// NewCarrierSource creates a source over a carrier's rate table
func NewCarrierSource(carrier types.Carrier, repo repository.Repository, calc *surcharge.Calculator) *CarrierSource {
	return &CarrierSource{carrier: carrier, repo: repo, calc: calc}
}

// ID returns the carrier id
func (s *CarrierSource) ID() string {
	return s.carrier.ID
}

// Fetch resolves the destination to zones and prices every covering rate row
func (s *CarrierSource) Fetch(ctx context.Context, q Query) ([]types.RateResult, error) {
	zones, err := s.repo.GetZonesForCountry(ctx, s.carrier.ID, q.DestinationCountry)
	if err != nil {
		return nil, err
	}
	if len(zones) == 0 {
		// Carrier does not serve the destination
		return nil, nil
	}

	chargeableKg, volumetricKg := weight.Chargeable(q.Weight, s.carrier.ID)

	inputs := surcharge.Inputs{
		Weight:        q.Weight,
		DeclaredValue: q.DeclaredValue,
		NeedInsurance: q.NeedInsurance,
		NeedSignature: q.NeedSignature,
		Month:         q.Month,
	}

	var results []types.RateResult
	for _, zone := range zones {
		rows, err := s.repo.GetRateRows(ctx, s.carrier.ID, zone, chargeableKg)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			b, err := s.calc.Calculate(ctx, s.carrier.ID, row.ServiceCode, row.BasePrice, inputs)
			if err != nil {
				return nil, err
			}
			results = append(results, types.RateResult{
				ID:                 fmt.Sprintf("%s_%s", strings.ToLower(s.carrier.ID), row.ID),
				CarrierID:          s.carrier.ID,
				CarrierName:        s.carrier.Name,
				ServiceCode:        row.ServiceCode,
				ServiceName:        row.ServiceName,
				ZoneCode:           row.ZoneCode,
				ActualWeightKg:     q.Weight.ActualKg,
				VolumetricWeightKg: volumetricKg,
				ChargeableWeightKg: chargeableKg,
				BasePrice:          row.BasePrice,
				FuelSurcharge:      b.Fuel,
				PeakSurcharge:      b.Peak,
				ResidentialCharge:  b.Residential,
				RemoteAreaCharge:   b.RemoteArea,
				CustomsClearanceFee: b.CustomsClearance,
				OversizeFee:        b.Oversize,
				InsuranceFee:       b.Insurance,
				SignatureFee:       b.Signature,
				TotalPrice:         row.BasePrice.Add(b.Total()),
			})
		}
	}
	return results, nil
}

// DdpPolicySourceID identifies the DDP policy table contribution
const DdpPolicySourceID = "DDP"

// DdpPolicySource exposes the delivered-duty-paid policy table as a rate
// source. Policies are US-bound; other destinations get no contribution.
type DdpPolicySource struct {
	repo repository.Repository
}

// NewDdpPolicySource creates a source over the DDP policy table
func NewDdpPolicySource(repo repository.Repository) *DdpPolicySource {
	return &DdpPolicySource{repo: repo}
}

// ID returns the source id
func (s *DdpPolicySource) ID() string {
	return DdpPolicySourceID
}

// Fetch maps DDP policies covering the weight onto rate results. The
// policy's base shipping becomes the base price; the duty-inclusive total
// becomes the total price; the product-price tier rides along for the
// optimizer.
func (s *DdpPolicySource) Fetch(ctx context.Context, q Query) ([]types.RateResult, error) {
	if !strings.EqualFold(q.DestinationCountry, "US") {
		return nil, nil
	}

	policies, err := s.repo.GetDdpPolicies(ctx, q.Weight.ActualKg)
	if err != nil {
		return nil, err
	}

	results := make([]types.RateResult, 0, len(policies))
	for _, p := range policies {
		results = append(results, types.RateResult{
			ID:                 fmt.Sprintf("ddp_%s", p.ID),
			CarrierID:          DdpPolicySourceID,
			CarrierName:        "DDP",
			ServiceCode:        p.ID,
			ServiceName:        p.Name,
			ActualWeightKg:     q.Weight.ActualKg,
			ChargeableWeightKg: q.Weight.ActualKg,
			BasePrice:          p.BaseShipping,
			TotalPrice:         p.TotalShipping,
			ProductPriceTier:   p.ProductPriceTier,
		})
	}
	return results, nil
}
