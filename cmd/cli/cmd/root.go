// Package cmd provides the CLI commands for resale-pricing.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resale-pricing/internal/config"
	"resale-pricing/internal/logging"
)

// Version is the build version, stamped at release time
const Version = "0.1.0"

var (
	cfgFile    string
	verbose    bool
	refdataDir string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "resale-pricing",
	Short: "Cross-border reseller pricing toolkit",
	Long: `resale-pricing aggregates multi-carrier shipping rates and optimizes
delivered-duty-paid listing prices for cross-border resellers.

Examples:
  resale-pricing rates --weight 1.2 --dest US
  resale-pricing price --cost 15000 --fx 150 --weight 1.2 --code 950440 --origin JP
  resale-pricing batch items.json --concurrency 4`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.resale-pricing.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&refdataDir, "refdata", "", "reference data directory (overrides config)")

	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// refdataDirectory resolves the reference data directory from the flag
// or the config file
func refdataDirectory() string {
	if refdataDir != "" {
		return refdataDir
	}
	return config.Get().RefData.Directory
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("resale-pricing version %s\n", Version)
	},
}
