package refdata_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resale-pricing/adapters/refdata"
)

const carriersHCL = `
carrier "CPASS" {
  name = "CPass"
}

zone {
  carrier = "CPASS"
  country = "US"
  zone_id = "Z1"
}

rate "1" {
  carrier        = "CPASS"
  service        = "EXPRESS"
  service_name   = "CPass Express"
  zone           = "Z1"
  weight_from_kg = 1.0
  weight_to_kg   = 1.5
  base_price     = 24.0
}

fuel_surcharge {
  carrier         = "CPASS"
  effective_month = "2026-08"
  rate_percent    = 14.5
}

demand_surcharge {
  carrier           = "CPASS"
  type              = "PEAK"
  fixed_amount      = 2.5
  applicable_months = [11, 12]
}

oversize_rule {
  service   = "EXPRESS"
  type      = "girth"
  threshold = 300
  surcharge = 35
}

insurance_tier {
  service    = "EXPRESS"
  value_from = 0
  value_to   = 100
  fee        = 1.5
}

signature_fee {
  service = "EXPRESS"
  fee     = 3.25
}
`

const customsHCL = `
duty {
  code        = "950440"
  country     = "US"
  rate        = 0.042
  description = "playing cards"
}

country_tariff {
  country         = "CN"
  additional_rate = 0.25
  tariff_type     = "section 301"
}

fee {
  platform = "ebay"
  country  = "US"
  category = "DEFAULT"
  rate     = 0.1315
}

ddp_policy "E-150-A" {
  name               = "Economy 150"
  weight_min_kg      = 1.0
  weight_max_kg      = 1.5
  product_price_tier = 150
  base_shipping      = 18
  total_shipping     = 25
}

platform_shipping "shopee" "standard" {
  band {
    max_weight_g = 500
    cost         = 3.0
  }
  band {
    max_weight_g = 1000
    cost         = 5.0
  }
}
`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "carriers.hcl"), []byte(carriersHCL), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "customs.hcl"), []byte(customsHCL), 0o644))
	// Non-HCL files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644))
	return dir
}

func TestLoadDir(t *testing.T) {
	repo, err := refdata.NewLoader().LoadDir(writeFixture(t))
	require.NoError(t, err)
	ctx := context.Background()

	carriers, err := repo.GetCarriers(ctx)
	require.NoError(t, err)
	require.Len(t, carriers, 1)
	assert.Equal(t, "CPASS", carriers[0].ID)
	assert.Equal(t, "CPass", carriers[0].Name)

	zones, err := repo.GetZonesForCountry(ctx, "CPASS", "US")
	require.NoError(t, err)
	assert.Equal(t, []string{"Z1"}, zones)

	rows, err := repo.GetRateRows(ctx, "CPASS", "Z1", 1.2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].BasePrice.Equal(decimal.NewFromInt(24)))
	assert.Equal(t, "CPass Express", rows[0].ServiceName)

	fuel, found, err := repo.GetFuelSurcharge(ctx, "CPASS")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 14.5, fuel.RatePercent)

	demands, err := repo.GetDemandSurcharges(ctx, "CPASS")
	require.NoError(t, err)
	require.Len(t, demands, 1)
	assert.True(t, demands[0].Active, "active defaults to true")
	assert.Len(t, demands[0].ApplicableMonths, 2)

	duty, found, err := repo.GetDutyEntry(ctx, "950440", "US")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 0.042, duty.Rate)

	tariff, found, err := repo.GetCountryTariff(ctx, "CN")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 0.25, tariff.AdditionalRate)

	policies, err := repo.GetDdpPolicies(ctx, 1.2)
	require.NoError(t, err)
	require.Len(t, policies, 1)
	assert.True(t, policies[0].ProductPriceTier.Equal(decimal.NewFromInt(150)))

	bands, err := repo.GetPlatformShippingRates(ctx, "shopee", "standard")
	require.NoError(t, err)
	require.Len(t, bands, 2)
	assert.True(t, bands[0].Cost.Equal(decimal.NewFromInt(3)))
}

func TestLoadDirMissingDirectory(t *testing.T) {
	_, err := refdata.NewLoader().LoadDir(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestLoadDirMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.hcl"), []byte("carrier {{{"), 0o644))

	_, err := refdata.NewLoader().LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.hcl")
}

func TestLoadDirUnknownBlockFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "odd.hcl"), []byte("mystery {\n}\n"), 0o644))

	_, err := refdata.NewLoader().LoadDir(dir)
	assert.Error(t, err)
}
