package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"moex-iss/internal/domain"
	"moex-iss/internal/iss"
	"moex-iss/internal/reporting"
)

// instrumentJSON is the JSON form of futures metadata.
type instrumentJSON struct {
	Ticker        string `json:"ticker"`
	MinStep       string `json:"minstep"`
	LastTradeDate string `json:"lasttradedate"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTickers(w io.Writer, tickers []string, format string) error {
	switch format {
	case "json":
		if tickers == nil {
			tickers = []string{}
		}
		return writeJSON(w, tickers)
	case "csv":
		_, err := io.WriteString(w, "ticker\n"+joinLines(tickers))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeInstrument(w io.Writer, inst *domain.Instrument, format string) error {
	switch format {
	case "json":
		return writeJSON(w, instrumentJSON{
			Ticker:        inst.Ticker,
			MinStep:       inst.MinStep,
			LastTradeDate: inst.LastTradeDate,
		})
	case "csv":
		_, err := io.WriteString(w, reporting.RenderInstrumentsCSV([]*domain.Instrument{inst}))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// writeCandles writes raw records as JSON, or typed candles as CSV.
func writeCandles(w io.Writer, cfg config, records []iss.Record) error {
	switch cfg.format {
	case "json":
		return writeJSON(w, records)
	case "csv":
		candles, err := iss.ParseCandles(cfg.market, cfg.ticker, cfg.interval, records)
		if err != nil {
			return fmt.Errorf("parse candles: %w", err)
		}
		return reporting.WriteCandlesCSV(w, candles, cfg.compress)
	default:
		return fmt.Errorf("unknown format %q", cfg.format)
	}
}

func joinLines(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return strings.Join(items, "\n") + "\n"
}
