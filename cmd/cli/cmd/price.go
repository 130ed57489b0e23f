// Package cmd - price command
package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"resale-pricing/core/ddp"
	"resale-pricing/core/types"
	"resale-pricing/internal/config"
)

var (
	priceCost      float64
	priceFx        float64
	priceWeight    float64
	priceLength    float64
	priceWidth     float64
	priceHeight    float64
	priceCode      string
	priceOrigin    string
	priceMargin    float64
	priceRatio     float64
	priceStoreTier string
	priceFVF       float64
	priceMonth     int
	priceFormat    string
	priceShowSteps bool
)

// priceCmd optimizes a DDP listing price
var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Optimize a delivered-duty-paid listing price",
	Long: `Search the DDP shipping policy table for the product/shipping price
split that funds the destination duty while holding the target margin
and product-price display ratio.

Cost is in the domestic currency; --fx converts it to the pricing
currency (domestic units per pricing unit).

Examples:
  resale-pricing price --cost 15000 --fx 150 --weight 1.2 --code 950440 --origin JP
  resale-pricing price --cost 8000 --fx 150 --weight 0.6 --code 9504.40.0000 --origin JP --margin 0.12
  resale-pricing price --cost 15000 --fx 150 --weight 1.2 --code 950440 --origin JP --store-tier premium`,
	RunE: runPrice,
}

func init() {
	priceCmd.Flags().Float64VarP(&priceCost, "cost", "c", 0, "sourcing cost in domestic currency (required)")
	priceCmd.Flags().Float64Var(&priceFx, "fx", 0, "exchange rate, domestic units per pricing unit (required)")
	priceCmd.Flags().Float64VarP(&priceWeight, "weight", "w", 0, "actual weight in kg (required)")
	priceCmd.Flags().Float64Var(&priceLength, "length", 0, "length in cm")
	priceCmd.Flags().Float64Var(&priceWidth, "width", 0, "width in cm")
	priceCmd.Flags().Float64Var(&priceHeight, "height", 0, "height in cm")
	priceCmd.Flags().StringVar(&priceCode, "code", "", "customs classification code (required)")
	priceCmd.Flags().StringVar(&priceOrigin, "origin", "", "origin country code (required)")
	priceCmd.Flags().Float64VarP(&priceMargin, "margin", "m", 0, "target profit margin (default from config)")
	priceCmd.Flags().Float64Var(&priceRatio, "ratio", 0, "target product price ratio (default from config)")
	priceCmd.Flags().StringVar(&priceStoreTier, "store-tier", "", "marketplace store tier (none, basic, premium, anchor)")
	priceCmd.Flags().Float64Var(&priceFVF, "fvf", 0, "final value fee rate override")
	priceCmd.Flags().IntVar(&priceMonth, "month", 0, "month for demand surcharges (1-12)")
	priceCmd.Flags().StringVarP(&priceFormat, "format", "f", "", "output format (cli, json)")
	priceCmd.Flags().BoolVar(&priceShowSteps, "steps", false, "print the calculation audit trail")
	_ = priceCmd.MarkFlagRequired("cost")
	_ = priceCmd.MarkFlagRequired("fx")
	_ = priceCmd.MarkFlagRequired("weight")
	_ = priceCmd.MarkFlagRequired("code")
	_ = priceCmd.MarkFlagRequired("origin")
}

func runPrice(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}

	result := eng.OptimizeDdpPrice(ctx, priceInput())

	if outputFormat(priceFormat) == "json" {
		return printJSON(result)
	}

	if !result.Success {
		fmt.Printf("Pricing failed: %s\n", result.Error)
		os.Exit(1)
	}
	printPricingResult(result)
	return nil
}

func priceInput() ddp.Input {
	cfg := config.Get()
	margin := priceMargin
	if margin == 0 {
		margin = cfg.Pricing.DefaultTargetMargin
	}
	ratio := priceRatio
	if ratio == 0 {
		ratio = cfg.Pricing.DefaultPriceRatio
	}
	fvf := priceFVF
	if fvf == 0 {
		fvf = cfg.Pricing.DefaultFVFRate
	}

	return ddp.Input{
		Cost:         decimal.NewFromFloat(priceCost),
		ExchangeRate: priceFx,
		Weight: types.WeightSpec{
			ActualKg: priceWeight,
			LengthCm: priceLength,
			WidthCm:  priceWidth,
			HeightCm: priceHeight,
		},
		ClassificationCode: priceCode,
		OriginCountry:      priceOrigin,
		TargetMargin:       margin,
		TargetPriceRatio:   ratio,
		StoreTier:          types.StoreTier(priceStoreTier),
		FVFRate:            fvf,
		Month:              surchargeMonth(priceMonth),
	}
}

func printPricingResult(result types.PricingResult) {
	fmt.Printf("Effective DDP rate: %.2f%% (tariff %.2f%% + sales tax)\n\n",
		result.EffectiveDDPRate*100, result.TariffRate*100)

	printOption("Recommended", result.Recommended)
	if result.Alternative != nil {
		fmt.Println()
		printOption("Alternative", result.Alternative)
	}

	fmt.Printf("\nConsumption tax refund estimate: %s (profit with refund: %s)\n",
		result.RefundEstimate.StringFixed(2), result.ProfitWithRefund.StringFixed(2))

	if len(result.Breakdown) > 0 {
		fmt.Println("\nCost breakdown:")
		keys := make([]string, 0, len(result.Breakdown))
		for k := range result.Breakdown {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s\t%s\n", k, result.Breakdown[k])
		}
		w.Flush()
	}

	if priceShowSteps || config.Get().Output.ShowSteps {
		fmt.Println("\nCalculation steps:")
		for i, step := range result.CalculationSteps {
			fmt.Printf("  %d. %s: %s — %s\n", i+1, step.Step, step.Value, step.Description)
		}
	}
}

func printOption(label string, opt *types.PricingOption) {
	fmt.Printf("%s: %s\n", label, opt.PolicyName)
	fmt.Printf("  Product price:  %s (%.1f%% of total)\n", opt.ProductPrice.StringFixed(2), opt.ProductPriceRatio*100)
	fmt.Printf("  Shipping price: %s\n", opt.ShippingPrice.StringFixed(2))
	fmt.Printf("  Total revenue:  %s\n", opt.TotalRevenue.StringFixed(2))
	fmt.Printf("  Profit:         %s (%.2f%%)\n", opt.Profit.StringFixed(2), opt.ProfitMargin*100)
	fmt.Printf("  DDP total:      %s (tariff %s + MPF %s + service fee %s)\n",
		opt.DDPTotal.StringFixed(2), opt.TariffAmount.StringFixed(2),
		opt.MPF.StringFixed(2), opt.DDPServiceFee.StringFixed(2))
	if opt.Reason != "" {
		fmt.Printf("  Reason:         %s\n", opt.Reason)
	}
}
