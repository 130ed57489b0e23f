// Package surcharge computes shipping surcharges from reference tables.
// Every lookup that misses contributes zero: absence of a surcharge row
// means the surcharge does not apply.
package surcharge

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"resale-pricing/core/repository"
	"resale-pricing/core/types"
)

// Inputs carries everything surcharge evaluation needs beyond the base
// price. Month is injected by the caller so results stay deterministic.
type Inputs struct {
	Weight        types.WeightSpec
	DeclaredValue decimal.Decimal
	NeedInsurance bool
	NeedSignature bool
	Month         time.Month
}

// Breakdown itemizes the surcharges applied to one rate row
type Breakdown struct {
	Fuel             decimal.Decimal
	Peak             decimal.Decimal
	Residential      decimal.Decimal
	RemoteArea       decimal.Decimal
	CustomsClearance decimal.Decimal
	Oversize         decimal.Decimal
	Insurance        decimal.Decimal
	Signature        decimal.Decimal
}

// Total sums all surcharge components
func (b Breakdown) Total() decimal.Decimal {
	return b.Fuel.
		Add(b.Peak).
		Add(b.Residential).
		Add(b.RemoteArea).
		Add(b.CustomsClearance).
		Add(b.Oversize).
		Add(b.Insurance).
		Add(b.Signature)
}

// Calculator reads surcharge reference tables and sums applicable charges
type Calculator struct {
	repo repository.Repository
}

// NewCalculator creates a surcharge calculator
func NewCalculator(repo repository.Repository) *Calculator {
	return &Calculator{repo: repo}
}

// Calculate evaluates all surcharges for a carrier service against a base
// price. Repository errors surface so the rate source can degrade the
// whole row; missing rows are simply zero.
func (c *Calculator) Calculate(ctx context.Context, carrierID, serviceCode string, basePrice decimal.Decimal, in Inputs) (Breakdown, error) {
	var b Breakdown

	fuel, found, err := c.repo.GetFuelSurcharge(ctx, carrierID)
	if err != nil {
		return b, err
	}
	if found && fuel.RatePercent > 0 {
		b.Fuel = percentOf(basePrice, fuel.RatePercent)
	}

	demands, err := c.repo.GetDemandSurcharges(ctx, carrierID)
	if err != nil {
		return b, err
	}
	for _, d := range demands {
		if !d.AppliesIn(in.Month) {
			continue
		}
		amount := d.FixedAmount
		if d.RatePercent > 0 {
			amount = percentOf(basePrice, d.RatePercent)
		}
		switch d.Type {
		case types.DemandPeak:
			b.Peak = b.Peak.Add(amount)
		case types.DemandResidential:
			b.Residential = b.Residential.Add(amount)
		case types.DemandRemoteArea:
			b.RemoteArea = b.RemoteArea.Add(amount)
		case types.DemandCustomsClearance:
			b.CustomsClearance = b.CustomsClearance.Add(amount)
		}
	}

	oversize, err := c.oversizeFee(ctx, serviceCode, in.Weight)
	if err != nil {
		return b, err
	}
	b.Oversize = oversize

	if in.NeedInsurance {
		tier, found, err := c.repo.GetInsuranceTier(ctx, serviceCode, in.DeclaredValue)
		if err != nil {
			return b, err
		}
		if found {
			b.Insurance = tier.Fee
		}
	}

	if in.NeedSignature {
		sig, found, err := c.repo.GetSignatureFee(ctx, serviceCode)
		if err != nil {
			return b, err
		}
		if found && !sig.Included {
			b.Signature = sig.Fee
		}
	}

	return b, nil
}

// oversizeFee sums the surcharges of every rule whose threshold the
// package exceeds
func (c *Calculator) oversizeFee(ctx context.Context, serviceCode string, w types.WeightSpec) (decimal.Decimal, error) {
	rules, err := c.repo.GetOversizeRules(ctx, serviceCode)
	if err != nil {
		return decimal.Zero, err
	}

	fee := decimal.Zero
	for _, r := range rules {
		var measured float64
		switch r.Type {
		case types.OversizeLength:
			measured = w.LengthCm
		case types.OversizeWidth:
			measured = w.WidthCm
		case types.OversizeHeight:
			measured = w.HeightCm
		case types.OversizeWeight:
			measured = w.ActualKg
		case types.OversizeGirth:
			measured = 2*(w.WidthCm+w.HeightCm) + w.LengthCm
		default:
			continue
		}
		if measured > r.Threshold {
			fee = fee.Add(r.Surcharge)
		}
	}
	return fee, nil
}

func percentOf(base decimal.Decimal, percent float64) decimal.Decimal {
	return base.Mul(decimal.NewFromFloat(percent)).Div(decimal.NewFromInt(100)).Round(2)
}
