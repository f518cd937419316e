package reporting

import (
	"fmt"
	"strings"
	"time"

	"moex-iss/internal/export"
)

// RenderExportMarkdown renders an export run summary as Markdown string.
func RenderExportMarkdown(req export.Request, r *export.Result, generatedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString("# ISS Export\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", generatedAt.Format(time.RFC3339)))

	sb.WriteString("## Request\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Market | %s |\n", req.Market))
	if len(req.Tickers) > 0 {
		sb.WriteString(fmt.Sprintf("| Tickers | %s |\n", strings.Join(req.Tickers, ", ")))
	} else {
		sb.WriteString(fmt.Sprintf("| Prefix | %s |\n", req.Prefix))
	}
	sb.WriteString(fmt.Sprintf("| Interval | %s |\n", orDash(string(req.Interval))))
	sb.WriteString(fmt.Sprintf("| From | %s |\n", orDash(req.From)))
	sb.WriteString(fmt.Sprintf("| Till | %s |\n", orDash(req.Till)))
	sb.WriteString("\n")

	sb.WriteString("## Result\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Status | %s |\n", r.Status()))
	sb.WriteString(fmt.Sprintf("| Tickers | %d |\n", r.Tickers))
	sb.WriteString(fmt.Sprintf("| Instruments Stored | %d |\n", r.InstrumentsStored))
	sb.WriteString(fmt.Sprintf("| Candles Fetched | %d |\n", r.CandlesFetched))
	sb.WriteString(fmt.Sprintf("| Candles Stored | %d |\n", r.CandlesStored))
	sb.WriteString(fmt.Sprintf("| Candles Skipped | %d |\n", r.CandlesSkipped))
	sb.WriteString("\n")

	if len(r.Failed) > 0 {
		sb.WriteString("### Failed Tickers\n\n")
		for _, ticker := range r.Failed {
			sb.WriteString(fmt.Sprintf("- %s\n", ticker))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
