// Package main provides a CLI over the MOEX ISS client:
// - futures, prefix, cny: futures ticker discovery
// - info: futures contract metadata
// - candles: candle history as JSON or CSV
// - export: candles (and futures metadata) into PostgreSQL/ClickHouse or memory
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"moex-iss/internal/iss"
	"moex-iss/internal/observability"
)

// config holds parsed command line options.
type config struct {
	mode          string
	ticker        string
	tickers       []string
	prefix        string
	market        iss.Market
	from          string
	till          string
	interval      iss.Interval
	format        string
	compress      bool
	postgresDSN   string
	clickhouseDSN string
	useMemory     bool
}

func main() {
	loadEnvFile()

	mode := flag.String("mode", "futures", "Mode: futures, prefix, cny, info, candles, export")
	ticker := flag.String("ticker", "", "Ticker, or comma-separated tickers for export")
	prefix := flag.String("prefix", "", "Futures ticker prefix (prefix and export modes)")
	market := flag.String("market", string(iss.MarketFuture), "Market: future or stock")
	from := flag.String("from", "", "Start of candle range (YYYY-MM-DD or YYYY-MM-DD HH:MM:SS)")
	till := flag.String("till", "", "End of candle range")
	interval := flag.String("interval", string(iss.DefaultInterval), "Candle interval: 1m, 5m, 10m, 60m, 1d, 1w, 1mth, 1y")
	format := flag.String("format", "json", "Output format: json or csv")
	out := flag.String("out", "", "Output file (default stdout)")
	compress := flag.Bool("compress", false, "zstd-compress CSV output")
	baseURL := flag.String("base-url", envOr("ISS_BASE_URL", iss.DefaultBaseURL), "ISS base URL")
	timeout := flag.Duration("timeout", iss.DefaultTimeout, "HTTP request timeout")
	useFastHTTP := flag.Bool("fasthttp", false, "Use fasthttp transport")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage for export")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (disabled when empty)")

	flag.Parse()

	logger := log.New(os.Stdout, "[iss] ", log.LstdFlags|log.Lshortfile)

	parsedInterval, err := iss.ParseInterval(*interval)
	if err != nil {
		logger.Fatalf("Invalid --interval: %v", err)
	}

	cfg := config{
		mode:          *mode,
		ticker:        *ticker,
		tickers:       splitList(*ticker),
		prefix:        *prefix,
		market:        iss.Market(*market),
		from:          *from,
		till:          *till,
		interval:      parsedInterval,
		format:        *format,
		compress:      *compress,
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
		useMemory:     *useMemory,
	}

	opts := []iss.ClientOption{
		iss.WithBaseURL(*baseURL),
		iss.WithTimeout(*timeout),
		iss.WithLogger(logger),
	}
	if *useFastHTTP {
		opts = append(opts, iss.WithTransport(iss.NewFastHTTPTransport(*timeout)))
	}
	client := iss.NewHTTPClient(opts...)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *metricsAddr != "" {
		go startHTTPServer(*metricsAddr, logger)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logger.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		w = f
	}

	if err := run(ctx, cfg, client, w, logger); err != nil {
		logger.Fatalf("%s failed: %v", cfg.mode, err)
	}
}

// startHTTPServer serves /metrics and /health until the process exits.
func startHTTPServer(addr string, logger *log.Logger) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("HTTP server error: %v", err)
	}
}

// run executes one mode and writes its output to w.
func run(ctx context.Context, cfg config, client *iss.HTTPClient, w io.Writer, logger *log.Logger) error {
	switch cfg.mode {
	case "futures":
		tickers, err := client.ListFutures(ctx)
		if err != nil {
			return err
		}
		return writeTickers(w, tickers, cfg.format)

	case "prefix":
		if cfg.prefix == "" {
			return fmt.Errorf("--prefix is required")
		}
		tickers, err := client.ListFuturesByPrefix(ctx, cfg.prefix)
		if err != nil {
			return err
		}
		return writeTickers(w, tickers, cfg.format)

	case "cny":
		tickers, err := client.ListCurrentCNYFutures(ctx)
		if err != nil {
			return err
		}
		return writeTickers(w, tickers, cfg.format)

	case "info":
		if cfg.ticker == "" {
			return fmt.Errorf("--ticker is required")
		}
		inst, err := client.GetFutureMetadata(ctx, cfg.ticker)
		if err != nil {
			return err
		}
		return writeInstrument(w, inst, cfg.format)

	case "candles":
		if cfg.ticker == "" {
			return fmt.Errorf("--ticker is required")
		}
		records, err := client.GetCandles(ctx, cfg.market, cfg.ticker, iss.CandleOpts{
			From:     cfg.from,
			Till:     cfg.till,
			Interval: cfg.interval,
		})
		if err != nil {
			return err
		}
		return writeCandles(w, cfg, records)

	case "export":
		return runExport(ctx, cfg, client, w, logger)

	default:
		return fmt.Errorf("unknown mode %q", cfg.mode)
	}
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads KEY=VALUE pairs from .env without overriding the environment.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
