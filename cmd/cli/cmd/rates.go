// Package cmd - rates command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"resale-pricing/adapters/refdata"
	"resale-pricing/core/engine"
	"resale-pricing/core/rates"
	"resale-pricing/core/types"
	"resale-pricing/internal/config"
)

var (
	ratesWeight        float64
	ratesLength        float64
	ratesWidth         float64
	ratesHeight        float64
	ratesDest          string
	ratesDeclaredValue float64
	ratesInsurance     bool
	ratesSignature     bool
	ratesMonth         int
	ratesFormat        string
)

// ratesCmd compares shipping rates across carriers
var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Compare shipping rates across carriers",
	Long: `Aggregate shipping rates from every configured carrier for one
package, with fuel, demand, oversize, insurance and signature surcharges
applied, sorted by total price.

Examples:
  resale-pricing rates --weight 1.2 --dest US
  resale-pricing rates --weight 0.8 --length 30 --width 20 --height 15 --dest US
  resale-pricing rates --weight 2.0 --dest US --insurance --declared-value 300`,
	RunE: runRates,
}

func init() {
	ratesCmd.Flags().Float64VarP(&ratesWeight, "weight", "w", 0, "actual weight in kg (required)")
	ratesCmd.Flags().Float64Var(&ratesLength, "length", 0, "length in cm")
	ratesCmd.Flags().Float64Var(&ratesWidth, "width", 0, "width in cm")
	ratesCmd.Flags().Float64Var(&ratesHeight, "height", 0, "height in cm")
	ratesCmd.Flags().StringVarP(&ratesDest, "dest", "d", "US", "destination country code")
	ratesCmd.Flags().Float64Var(&ratesDeclaredValue, "declared-value", 0, "declared value for insurance")
	ratesCmd.Flags().BoolVar(&ratesInsurance, "insurance", false, "include insurance")
	ratesCmd.Flags().BoolVar(&ratesSignature, "signature", false, "require signature on delivery")
	ratesCmd.Flags().IntVar(&ratesMonth, "month", 0, "month for demand surcharges (1-12)")
	ratesCmd.Flags().StringVarP(&ratesFormat, "format", "f", "", "output format (cli, json)")
	_ = ratesCmd.MarkFlagRequired("weight")
}

func runRates(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}

	results, err := eng.AggregateShippingRates(ctx, rates.Query{
		Weight: types.WeightSpec{
			ActualKg: ratesWeight,
			LengthCm: ratesLength,
			WidthCm:  ratesWidth,
			HeightCm: ratesHeight,
		},
		DestinationCountry: ratesDest,
		DeclaredValue:      decimal.NewFromFloat(ratesDeclaredValue),
		NeedInsurance:      ratesInsurance,
		NeedSignature:      ratesSignature,
		Month:              surchargeMonth(ratesMonth),
	})
	if err != nil {
		return fmt.Errorf("rate aggregation failed: %w", err)
	}

	if outputFormat(ratesFormat) == "json" {
		return printJSON(results)
	}

	if len(results) == 0 {
		fmt.Println("No rates found for the given package.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CARRIER\tSERVICE\tCHARGEABLE KG\tBASE\tSURCHARGES\tTOTAL")
	for _, r := range results {
		surcharges := r.TotalPrice.Sub(r.BasePrice)
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\t%s\n",
			r.CarrierName, r.ServiceName, r.ChargeableWeightKg,
			r.BasePrice.StringFixed(2), surcharges.StringFixed(2), r.TotalPrice.StringFixed(2))
	}
	return w.Flush()
}

// buildEngine loads reference data and wires the engines
func buildEngine(ctx context.Context) (*engine.Engine, error) {
	repo, err := refdata.NewLoader().LoadDir(refdataDirectory())
	if err != nil {
		return nil, fmt.Errorf("loading reference data: %w", err)
	}
	return engine.New(ctx, repo)
}

// surchargeMonth resolves the demand-surcharge month from the flag, the
// config override, then January
func surchargeMonth(flag int) time.Month {
	if flag >= 1 && flag <= 12 {
		return time.Month(flag)
	}
	if m := config.Get().Pricing.SurchargeMonth; m >= 1 && m <= 12 {
		return time.Month(m)
	}
	return time.January
}

// outputFormat resolves the output format from the flag then the config
func outputFormat(flag string) string {
	if flag != "" {
		return flag
	}
	return config.Get().Output.DefaultFormat
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
