package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"FinCast/internal/di"
	"FinCast/internal/service/sp500"
	"FinCast/internal/usecase"
	"FinCast/pkg/config"
	"FinCast/pkg/util"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	symbols := flag.String("symbols", "", "comma separated symbols (default: config watch list)")
	onlyFinnhub := flag.Bool("finnhub", false, "only fetch Finnhub data")
	onlyGrok := flag.Bool("grok", false, "only fetch Grok data")
	useSP500 := flag.Bool("sp500", false, "fetch every S&P 500 constituent")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *symbols != "" {
		cfg.Finnhub.Symbols = config.NormalizeSymbols(config.SplitList(*symbols))
	}

	tools, cleanup, err := di.InitializeTools(cfg)
	if err != nil {
		log.Fatalf("initialization failed: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	list := cfg.Finnhub.Symbols
	if *useSP500 {
		cs, err := tools.Constituents.Constituents(ctx)
		if err != nil {
			log.Fatalf("sp500: %v", err)
		}
		list = sp500.Symbols(cs)
	}

	// Selecting exactly one source narrows the run; both or neither fetches everything.
	opts := usecase.FetchOptions{Symbols: list, Finnhub: true, Grok: true}
	if *onlyFinnhub && !*onlyGrok {
		opts.Grok = false
	} else if *onlyGrok && !*onlyFinnhub {
		opts.Finnhub = false
	}

	rule := strings.Repeat("=", 60)
	fmt.Println(rule)
	fmt.Println("STOCK DATA FETCHER")
	fmt.Printf("Symbols: %s\n", util.Abbrev(list, 5))
	fmt.Println(rule)

	sum, err := tools.Fetcher.Run(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch failed: %v\n", err)
		cleanup()
		os.Exit(1)
	}

	fmt.Println(rule)
	fmt.Printf("DATA FETCH COMPLETE (%s)\n", sum.Date)
	fmt.Println(rule)
	if opts.Finnhub {
		fmt.Printf("Finnhub: %d quotes, %d candles, %d profiles\n", sum.Quotes, sum.Candles, sum.Profiles)
	}
	if opts.Grok {
		fmt.Printf("Grok: %d sentiments, %d momentum signals\n", sum.Sentiments, sum.Momentums)
	}
	if sum.Failures > 0 {
		fmt.Printf("Failed calls: %d\n", sum.Failures)
	}
	fmt.Printf("\nData saved to: %s\n", cfg.Data.RawDir)
}
