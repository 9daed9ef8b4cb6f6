package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"FinCast/internal/di"
	"FinCast/internal/domain/models"
	"FinCast/internal/usecase"
	"FinCast/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	date := flag.String("date", "", "snapshot date (default today, \"latest\" for the newest snapshot)")
	format := flag.String("format", "text", "output format: text or json")
	flag.Parse()

	if *format != "text" && *format != "json" {
		log.Fatalf("unknown format %q", *format)
	}
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *date == "" {
		*date = time.Now().Format(cfg.Data.DateFormat)
	}

	tools, cleanup, err := di.InitializeTools(cfg)
	if err != nil {
		log.Fatalf("initialization failed: %v", err)
	}

	os.Exit(run(tools, cleanup, *date, *format))
}

func run(tools *di.Tools, cleanup func(), date, format string) int {
	defer cleanup()

	r, err := tools.Predictor.Run(context.Background(), date)
	if err != nil {
		if errors.Is(err, models.ErrEmptyInput) {
			fmt.Fprintf(os.Stderr, "no predictions for %s: snapshot has no usable quotes\n", date)
		} else {
			fmt.Fprintf(os.Stderr, "predict %s: %v\n", date, err)
		}
		return 1
	}

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(r)
	} else {
		err = usecase.RenderText(os.Stdout, r)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "write report: %v\n", err)
		return 1
	}
	return 0
}
