// Package main - Entry point for the resale-pricing API server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"resale-pricing/adapters/refdata"
	"resale-pricing/api"
	"resale-pricing/core/engine"
	"resale-pricing/internal/config"
	"resale-pricing/internal/logging"
)

const version = "0.1.0"

func main() {
	addr := flag.String("addr", ":8080", "server address")
	refdataDir := flag.String("refdata", "", "reference data directory (default from config)")
	flag.Parse()

	logging.InitializeDefault()
	defer logging.Sync()

	dir := *refdataDir
	if dir == "" {
		dir = config.Get().RefData.Directory
	}

	repo, err := refdata.NewLoader().LoadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading reference data: %v\n", err)
		os.Exit(1)
	}

	eng, err := engine.New(context.Background(), repo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building engine: %v\n", err)
		os.Exit(1)
	}

	server := api.NewServer(eng, version)

	fmt.Printf("resale-pricing server v%s listening on %s\n", version, *addr)
	if err := server.ListenAndServe(*addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
