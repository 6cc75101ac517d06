package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Alias1177/StockDashboard/internal/api/backend"
	"github.com/Alias1177/StockDashboard/internal/config"
	"github.com/Alias1177/StockDashboard/internal/dashboard"
	"github.com/Alias1177/StockDashboard/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// report fetches one symbol's data, prints the tables and a chart summary, then exits
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	symbol := flag.String("symbol", cfg.Symbol, "stock symbol")
	start := flag.String("start", "", "range start (YYYY-MM-DD), defaults to lookback days before end")
	end := flag.String("end", "", "range end (YYYY-MM-DD), defaults to now")
	flag.Parse()

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Output(output).Level(level)

	rng, err := reportRange(*start, *end, time.Now(), cfg.LookbackDays)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid date range")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Timeout())
	defer cancel()

	api := backend.NewClient(backend.ClientOptions{
		BaseURL:        cfg.APIBaseURL,
		RequestTimeout: cfg.Timeout(),
		RequestsPerSec: cfg.RequestsPerSec,
		MaxRetries:     cfg.MaxRetries,
	})

	dash := dashboard.New(api, nil, dashboard.Options{Symbol: *symbol, LookbackDays: cfg.LookbackDays})
	dash.SetRange(rng)
	if err := dash.Refresh(ctx); err != nil {
		fmt.Fprintln(os.Stderr, dashboard.FetchFailedMessage)
		os.Exit(1)
	}

	printReport(dash.Snapshot())
}

func reportRange(start, end string, now time.Time, days int) (models.DateRange, error) {
	rng := models.DefaultRange(now, days)
	if end != "" {
		t, err := time.Parse(time.DateOnly, end)
		if err != nil {
			return rng, fmt.Errorf("parsing end: %w", err)
		}
		rng = models.DefaultRange(t, days)
	}
	if start != "" {
		t, err := time.Parse(time.DateOnly, start)
		if err != nil {
			return rng, fmt.Errorf("parsing start: %w", err)
		}
		rng.Start = t
	}
	if rng.End.Before(rng.Start) {
		return rng, fmt.Errorf("end %s is before start %s", rng.End.Format(time.DateOnly), rng.Start.Format(time.DateOnly))
	}
	return rng, nil
}

func printReport(state dashboard.State) {
	fmt.Printf("=== %s: %s to %s ===\n\n",
		state.Symbol, state.Range.Start.Format(time.DateOnly), state.Range.End.Format(time.DateOnly))

	series := state.Series
	if series.Empty() {
		fmt.Println("Chart: no data")
	} else {
		first, last := series.Prices[0], series.Prices[len(series.Prices)-1]
		fmt.Printf("Chart: %d points, %s to %s, close %.2f -> %.2f\n",
			len(series.Prices),
			time.Unix(first.Time, 0).UTC().Format(time.DateOnly),
			time.Unix(last.Time, 0).UTC().Format(time.DateOnly),
			first.Close, last.Close)
		if w := series.Window; w != nil {
			fmt.Printf("Visible range: %s to %s\n",
				time.Unix(w.From, 0).UTC().Format(time.DateOnly),
				time.Unix(w.To, 0).UTC().Format(time.DateOnly))
		}
	}

	fmt.Println("\nDetected Anomalies")
	if err := dashboard.WriteAnomalies(os.Stdout, state.Anomalies, state.Loading); err != nil {
		log.Error().Err(err).Msg("Error writing anomalies")
	}
	fmt.Println("\nHistorical Data")
	if err := dashboard.WriteRecords(os.Stdout, state.Records, state.Loading); err != nil {
		log.Error().Err(err).Msg("Error writing records")
	}
}
