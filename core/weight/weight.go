// Package weight derives carrier chargeable weight from package dimensions.
// All functions are pure and total; there are no error paths.
package weight

import (
	"strings"

	"resale-pricing/core/types"
)

// Unit is the dimension unit for volumetric weight
type Unit string

const (
	UnitCm   Unit = "cm"
	UnitInch Unit = "inch"
)

// Divisors for dimensional weight, per carrier convention
const (
	divisorCm   = 5000
	divisorInch = 139
)

// expressFamilies bill max(actual, volumetric)
var expressFamilies = []string{"DHL", "FEDEX", "UPS", "ELOJI", "CPASS"}

// postalFamilies bill volumetric only when it exceeds twice the actual weight
var postalFamilies = []string{"JPPOST", "POSTAL"}

// Volumetric computes dimensional weight in kg from package dimensions
func Volumetric(length, width, height float64, unit Unit) float64 {
	divisor := float64(divisorCm)
	if unit == UnitInch {
		divisor = divisorInch
	}
	return length * width * height / divisor
}

// Chargeable returns the weight the carrier bills against, plus the
// volumetric weight for display. Without dimensions the volumetric
// weight is zero and the actual weight is billed.
func Chargeable(spec types.WeightSpec, carrierID string) (chargeableKg, volumetricKg float64) {
	if spec.HasDimensions() {
		volumetricKg = Volumetric(spec.LengthCm, spec.WidthCm, spec.HeightCm, UnitCm)
	}

	id := strings.ToUpper(carrierID)
	if !matchesFamily(id, expressFamilies) && matchesFamily(id, postalFamilies) {
		// Postal rule: volumetric weight applies only when it exceeds
		// twice the actual weight
		if volumetricKg > spec.ActualKg*2 {
			return volumetricKg, volumetricKg
		}
		return spec.ActualKg, volumetricKg
	}

	// Express carriers and everything unmatched bill the greater weight
	if volumetricKg > spec.ActualKg {
		return volumetricKg, volumetricKg
	}
	return spec.ActualKg, volumetricKg
}

func matchesFamily(carrierID string, families []string) bool {
	for _, f := range families {
		if strings.Contains(carrierID, f) {
			return true
		}
	}
	return false
}
