// Package reporting renders instruments, candles and export summaries for CLI output.
package reporting

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"moex-iss/internal/domain"
)

const candlesHeader = "ticker,market,interval,begin_ms,end_ms,open,close,high,low,value,volume\n"

// RenderCandlesCSV renders candles as CSV string.
func RenderCandlesCSV(candles []*domain.Candle) string {
	var sb strings.Builder

	sb.WriteString(candlesHeader)
	for _, c := range candles {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d,%d,%s,%s,%s,%s,%s,%s\n",
			c.Ticker,
			c.Market,
			c.Interval,
			c.BeginMs,
			c.EndMs,
			c.Open.String(),
			c.Close.String(),
			c.High.String(),
			c.Low.String(),
			formatFloat(c.Value),
			formatFloat(c.Volume),
		))
	}

	return sb.String()
}

// formatFloat prints the shortest decimal that round-trips to v.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderInstrumentsCSV renders instrument metadata as CSV string.
func RenderInstrumentsCSV(instruments []*domain.Instrument) string {
	var sb strings.Builder

	sb.WriteString("ticker,min_step,last_trade_date\n")
	for _, inst := range instruments {
		sb.WriteString(fmt.Sprintf("%s,%s,%s\n", inst.Ticker, inst.MinStep, inst.LastTradeDate))
	}

	return sb.String()
}

// WriteCandlesCSV writes candles as CSV to w, zstd-compressed when compress is set.
func WriteCandlesCSV(w io.Writer, candles []*domain.Candle, compress bool) error {
	return writeMaybeCompressed(w, RenderCandlesCSV(candles), compress)
}

func writeMaybeCompressed(w io.Writer, body string, compress bool) error {
	if !compress {
		_, err := io.WriteString(w, body)
		return err
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if _, err := io.WriteString(enc, body); err != nil {
		enc.Close()
		return fmt.Errorf("write compressed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush compressed: %w", err)
	}
	return nil
}
