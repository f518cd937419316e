package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moex-iss/internal/iss"
)

const securitiesBody = `{"securities":{"columns":["SECID","SHORTNAME"],"data":[["CRH5","CNY-3.25"],["SiH5","Si-3.25"],["CRM5","CNY-6.25"]]}}`

const candlesBody = `{"candles":{"columns":["open","close","high","low","value","volume","begin","end"],
"data":[[11.91,11.93,11.95,11.9,1193000,100000,"2025-01-10 10:00:00","2025-01-10 10:00:59"]]}}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/candles.json"):
			io.WriteString(w, candlesBody)
		case strings.HasSuffix(r.URL.Path, "/securities.json"):
			io.WriteString(w, securitiesBody)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runMode(t *testing.T, cfg config) (string, error) {
	t.Helper()
	srv := newTestServer(t)
	logger := log.New(io.Discard, "", 0)
	client := iss.NewHTTPClient(iss.WithBaseURL(srv.URL), iss.WithLogger(logger))

	var buf bytes.Buffer
	err := run(context.Background(), cfg, client, &buf, logger)
	return buf.String(), err
}

func TestRun_CNY(t *testing.T) {
	out, err := runMode(t, config{mode: "cny", format: "json"})
	require.NoError(t, err)

	var tickers []string
	require.NoError(t, json.Unmarshal([]byte(out), &tickers))
	assert.Equal(t, []string{"CRH5", "CRM5"}, tickers)
}

func TestRun_FuturesCSV(t *testing.T) {
	out, err := runMode(t, config{mode: "futures", format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, "ticker\nCRH5\nSiH5\nCRM5\n", out)
}

func TestRun_CandlesCSV(t *testing.T) {
	out, err := runMode(t, config{
		mode:     "candles",
		ticker:   "CRH5",
		market:   iss.MarketFuture,
		interval: iss.Interval1m,
		format:   "csv",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "CRH5,future,1m,1736492400000,1736492459000,11.91,11.93,11.95,11.9,")
}

func TestRun_Export(t *testing.T) {
	out, err := runMode(t, config{
		mode:      "export",
		tickers:   []string{"AFKS"},
		market:    iss.MarketStock,
		interval:  iss.Interval1d,
		useMemory: true,
	})
	require.NoError(t, err)
	assert.Contains(t, out, "| Status | success |")
	assert.Contains(t, out, "| Candles Stored | 1 |")
}

func TestRun_Errors(t *testing.T) {
	_, err := runMode(t, config{mode: "info", format: "json"})
	assert.Error(t, err)

	_, err = runMode(t, config{mode: "nope"})
	assert.Error(t, err)

	_, err = runMode(t, config{mode: "futures", format: "xml"})
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"CRH5", "CRM5"}, splitList(" CRH5, ,CRM5"))
	assert.Nil(t, splitList(""))
}
