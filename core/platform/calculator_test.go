package platform_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"resale-pricing/core/customs"
	"resale-pricing/core/platform"
	"resale-pricing/core/repository"
	"resale-pricing/core/types"
)

func platformFixture() *repository.Memory {
	repo := repository.NewMemory()
	repo.FeeEntries = []types.FeeEntry{
		{Platform: "shopee", CountryCode: "SG", Category: types.DefaultKey, Rate: 0.05},
	}
	repo.PlatformShipping["shopee"] = map[string][]types.WeightBandCost{
		"standard": {
			{MaxWeightG: 500, Cost: decimal.NewFromInt(3)},
			{MaxWeightG: 1000, Cost: decimal.NewFromInt(5)},
			{MaxWeightG: 2000, Cost: decimal.NewFromInt(8)},
		},
	}
	return repo
}

func newCalculator(repo *repository.Memory) *platform.Calculator {
	return platform.NewCalculator(repo, customs.NewResolver(repo))
}

func baseInput() platform.Input {
	return platform.Input{
		Cost:         decimal.NewFromInt(3000),
		WeightG:      800,
		Platform:     "shopee",
		CountryCode:  "SG",
		ExchangeRate: 100,
		Currency:     "SGD",
	}
}

func TestCalculate(t *testing.T) {
	calc := newCalculator(platformFixture())

	result, err := calc.Calculate(context.Background(), baseInput(), 0.20)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	// cost 30 + shipping 5, grossed up twice: first for the margin, then
	// again so the margin holds after platform and payment fees
	if got := result.ProductCost.StringFixed(2); got != "30.00" {
		t.Errorf("ProductCost = %s, want 30.00", got)
	}
	if got := result.ShippingCost.StringFixed(2); got != "5.00" {
		t.Errorf("ShippingCost = %s, want 5.00", got)
	}
	if got := result.SellingPrice.StringFixed(2); got != "47.58" {
		t.Errorf("SellingPrice = %s, want 47.58", got)
	}
	if result.ProfitMargin < 0.199 || result.ProfitMargin > 0.201 {
		t.Errorf("ProfitMargin = %v, want ~0.20", result.ProfitMargin)
	}
	if result.Profit.IsNegative() {
		t.Errorf("Profit = %s, want positive", result.Profit)
	}
	if result.SellingPrice.LessThan(result.BreakEvenPrice) {
		t.Errorf("selling price %s below break-even %s", result.SellingPrice, result.BreakEvenPrice)
	}
}

func TestCalculateWeightBands(t *testing.T) {
	calc := newCalculator(platformFixture())

	tests := []struct {
		name     string
		weightG  float64
		shipping string
	}{
		{"first band", 300, "3.00"},
		{"band boundary is inclusive", 500, "3.00"},
		{"middle band", 800, "5.00"},
		{"last band covers overflow", 5000, "8.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			in.WeightG = tt.weightG
			result, err := calc.Calculate(context.Background(), in, 0.20)
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			if got := result.ShippingCost.StringFixed(2); got != tt.shipping {
				t.Errorf("ShippingCost(%vg) = %s, want %s", tt.weightG, got, tt.shipping)
			}
		})
	}
}

func TestCalculateMissingShippingTable(t *testing.T) {
	calc := newCalculator(platformFixture())
	in := baseInput()
	in.Platform = "nowhere"

	result, err := calc.Calculate(context.Background(), in, 0.20)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if !result.ShippingCost.IsZero() {
		t.Errorf("ShippingCost = %s, want 0", result.ShippingCost)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "no shipping table") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want missing-table warning", result.Warnings)
	}
}

func TestCalculateInvalidInputs(t *testing.T) {
	calc := newCalculator(platformFixture())

	tests := []struct {
		name   string
		mutate func(*platform.Input)
		margin float64
	}{
		{"zero cost", func(in *platform.Input) { in.Cost = decimal.Zero }, 0.20},
		{"zero exchange rate", func(in *platform.Input) { in.ExchangeRate = 0 }, 0.20},
		{"margin at 1", func(in *platform.Input) {}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.mutate(&in)
			if _, err := calc.Calculate(context.Background(), in, tt.margin); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCalculateAllAndBestByProfit(t *testing.T) {
	repo := platformFixture()
	repo.FeeEntries = append(repo.FeeEntries, types.FeeEntry{
		Platform: "carousell", CountryCode: "SG", Category: types.DefaultKey, Rate: 0.01,
	})
	repo.PlatformShipping["carousell"] = map[string][]types.WeightBandCost{
		"meetup": {{MaxWeightG: 10000, Cost: decimal.Zero}},
	}
	calc := newCalculator(repo)

	cheap := baseInput()
	cheap.Platform = "carousell"

	results, err := calc.CalculateAll(context.Background(), []platform.Input{baseInput(), cheap}, 0.20)
	if err != nil {
		t.Fatalf("CalculateAll: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	best, ok := platform.BestByProfit(results)
	if !ok {
		t.Fatal("BestByProfit found nothing")
	}
	// Both land on the 20% floor, so the higher-priced shopee listing
	// yields more absolute profit
	if best.Platform != "shopee" {
		t.Errorf("best platform = %s, want shopee", best.Platform)
	}

	if _, ok := platform.BestByProfit(nil); ok {
		t.Error("BestByProfit(nil) reported ok")
	}
}
