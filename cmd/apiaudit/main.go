package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sophialabs/apiaudit/internal/app"
)

func main() {
	cfg := app.DefaultConfig()
	cfg.ApplyEnv()

	reportOnly := flag.Bool("report", false, "regenerate the report from existing artifacts and exit")
	flag.StringVar(&cfg.TargetURL, "target", cfg.TargetURL, "base URL of the service under test")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "audit proxy port")
	flag.StringVar(&cfg.ArtifactDir, "dir", cfg.ArtifactDir, "directory for audit artifacts")
	flag.StringVar(&cfg.SpecFile, "spec", cfg.SpecFile, "specification file (YAML or JSON)")
	flag.StringVar(&cfg.SpecURL, "spec-url", cfg.SpecURL, "OpenAPI document URL on the service under test")
	flag.StringVar(&cfg.Exclude, "exclude", cfg.Exclude, "expression excluding records from accounting, e.g. 'method == \"OPTIONS\"'")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.Parse()

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if *reportOnly {
		err = a.Report(ctx)
	} else {
		err = a.Run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
