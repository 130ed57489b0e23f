package weight_test

import (
	"math"
	"testing"

	"resale-pricing/core/types"
	"resale-pricing/core/weight"
)

func TestVolumetric(t *testing.T) {
	tests := []struct {
		name     string
		l, w, h  float64
		unit     weight.Unit
		expected float64
	}{
		{"cm divisor 5000", 50, 40, 30, weight.UnitCm, 12.0},
		{"inch divisor 139", 20, 16, 12, weight.UnitInch, 27.63},
		{"zero dimensions", 0, 40, 30, weight.UnitCm, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := weight.Volumetric(tt.l, tt.w, tt.h, tt.unit)
			if math.Abs(got-tt.expected) > 0.01 {
				t.Errorf("Volumetric(%v, %v, %v, %s) = %v, want %v",
					tt.l, tt.w, tt.h, tt.unit, got, tt.expected)
			}
		})
	}
}

func TestChargeableExpressCarriers(t *testing.T) {
	// 50x40x30 cm = 12 kg volumetric
	spec := types.WeightSpec{ActualKg: 5, LengthCm: 50, WidthCm: 40, HeightCm: 30}

	tests := []struct {
		name       string
		carrierID  string
		spec       types.WeightSpec
		chargeable float64
	}{
		{"volumetric wins when greater", "DHL", spec, 12.0},
		{"actual wins when greater", "FEDEX", types.WeightSpec{ActualKg: 20, LengthCm: 50, WidthCm: 40, HeightCm: 30}, 20.0},
		{"case insensitive carrier match", "cpass", spec, 12.0},
		{"prefixed carrier id matches family", "UPS_EXPRESS", spec, 12.0},
		{"unknown carrier uses express rule", "UNKNOWN", spec, 12.0},
		{"no dimensions bills actual", "DHL", types.WeightSpec{ActualKg: 5}, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := weight.Chargeable(tt.spec, tt.carrierID)
			if math.Abs(got-tt.chargeable) > 0.001 {
				t.Errorf("Chargeable(%s) = %v, want %v", tt.carrierID, got, tt.chargeable)
			}
		})
	}
}

func TestChargeablePostalCarriers(t *testing.T) {
	tests := []struct {
		name       string
		spec       types.WeightSpec
		chargeable float64
	}{
		// 50x40x30 cm = 12 kg volumetric
		{"volumetric below 2x actual bills actual", types.WeightSpec{ActualKg: 7, LengthCm: 50, WidthCm: 40, HeightCm: 30}, 7.0},
		{"volumetric exactly 2x actual bills actual", types.WeightSpec{ActualKg: 6, LengthCm: 50, WidthCm: 40, HeightCm: 30}, 6.0},
		{"volumetric above 2x actual bills volumetric", types.WeightSpec{ActualKg: 5, LengthCm: 50, WidthCm: 40, HeightCm: 30}, 12.0},
		{"no dimensions bills actual", types.WeightSpec{ActualKg: 5}, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := weight.Chargeable(tt.spec, "JPPOST")
			if math.Abs(got-tt.chargeable) > 0.001 {
				t.Errorf("Chargeable(JPPOST, actual=%v) = %v, want %v", tt.spec.ActualKg, got, tt.chargeable)
			}
		})
	}
}

func TestChargeableReportsVolumetric(t *testing.T) {
	spec := types.WeightSpec{ActualKg: 20, LengthCm: 50, WidthCm: 40, HeightCm: 30}
	chargeable, volumetric := weight.Chargeable(spec, "DHL")
	if chargeable != 20 {
		t.Errorf("chargeable = %v, want 20", chargeable)
	}
	if math.Abs(volumetric-12.0) > 0.001 {
		t.Errorf("volumetric = %v, want 12", volumetric)
	}
}
