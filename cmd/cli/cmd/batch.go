// Package cmd - batch command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"resale-pricing/core/ddp"
	"resale-pricing/core/types"
)

var (
	batchConcurrency int
	batchFormat      string
)

// batchItemFile is one entry in the batch input file
type batchItemFile struct {
	ID                 string  `json:"id"`
	Cost               float64 `json:"cost"`
	ExchangeRate       float64 `json:"exchange_rate"`
	ActualKg           float64 `json:"actual_kg"`
	LengthCm           float64 `json:"length_cm,omitempty"`
	WidthCm            float64 `json:"width_cm,omitempty"`
	HeightCm           float64 `json:"height_cm,omitempty"`
	ClassificationCode string  `json:"classification_code"`
	OriginCountry      string  `json:"origin_country"`
	TargetMargin       float64 `json:"target_margin,omitempty"`
	TargetPriceRatio   float64 `json:"target_price_ratio,omitempty"`
	StoreTier          string  `json:"store_tier,omitempty"`
	FVFRate            float64 `json:"fvf_rate,omitempty"`
}

// batchCmd prices a file of items in one run
var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Optimize DDP prices for a batch of items",
	Long: `Read a JSON array of items and optimize each one's DDP listing
price. Output order matches input order; individual item failures do
not abort the batch.

Examples:
  resale-pricing batch items.json
  resale-pricing batch items.json --concurrency 4 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 1, "worker count (below 2 runs sequentially)")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "", "output format (cli, json)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading batch file: %w", err)
	}

	var fileItems []batchItemFile
	if err := json.Unmarshal(data, &fileItems); err != nil {
		return fmt.Errorf("parsing batch file: %w", err)
	}
	if len(fileItems) == 0 {
		return fmt.Errorf("batch file contains no items")
	}

	items := make([]ddp.BatchItem, 0, len(fileItems))
	for i, fi := range fileItems {
		id := fi.ID
		if id == "" {
			id = fmt.Sprintf("item_%d", i+1)
		}
		items = append(items, ddp.BatchItem{
			ID: id,
			Input: ddp.Input{
				Cost:         decimal.NewFromFloat(fi.Cost),
				ExchangeRate: fi.ExchangeRate,
				Weight: types.WeightSpec{
					ActualKg: fi.ActualKg,
					LengthCm: fi.LengthCm,
					WidthCm:  fi.WidthCm,
					HeightCm: fi.HeightCm,
				},
				ClassificationCode: fi.ClassificationCode,
				OriginCountry:      fi.OriginCountry,
				TargetMargin:       fi.TargetMargin,
				TargetPriceRatio:   fi.TargetPriceRatio,
				StoreTier:          types.StoreTier(fi.StoreTier),
				FVFRate:            fi.FVFRate,
			},
		})
	}

	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}

	results := eng.BatchOptimizeDdpPrice(ctx, items, ddp.BatchOptions{Concurrency: batchConcurrency})

	if outputFormat(batchFormat) == "json" {
		return printJSON(results)
	}

	failed := 0
	for _, res := range results {
		if !res.Result.Success {
			failed++
			fmt.Printf("%s: FAILED — %s\n", res.ID, res.Result.Error)
			continue
		}
		rec := res.Result.Recommended
		fmt.Printf("%s: product %s + shipping %s = %s (margin %.2f%%)\n",
			res.ID, rec.ProductPrice.StringFixed(2), rec.ShippingPrice.StringFixed(2),
			rec.TotalRevenue.StringFixed(2), rec.ProfitMargin*100)
	}

	fmt.Printf("\n%d priced, %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		os.Exit(1)
	}
	return nil
}
