package iss

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"moex-iss/internal/domain"
)

// CNYFuturesPrefix is the ticker prefix of CNY/RUB futures on FORTS.
const CNYFuturesPrefix = "CR"

const securitiesBlock = "securities"

// Column names of the FORTS securities block.
const (
	colSecID         = "SECID"
	colMinStep       = "MINSTEP"
	colLastTradeDate = "LASTTRADEDATE"
)

// ListFutures returns the first column (SECID) of every row of the FORTS
// securities table, in upstream order.
func (c *HTTPClient) ListFutures(ctx context.Context) ([]string, error) {
	doc, err := c.Query(ctx, futuresSecuritiesMethod, nil)
	if err != nil {
		return nil, err
	}

	t, err := doc.Table(securitiesBlock)
	if err != nil {
		return nil, fmt.Errorf("list futures: %w", err)
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("list futures: %w: no columns", ErrSchema)
	}

	tickers := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		tickers = append(tickers, row[0].String())
	}
	return tickers, nil
}

// ListFuturesByPrefix returns the futures tickers that start with prefix,
// ignoring case.
func (c *HTTPClient) ListFuturesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	all, err := c.ListFutures(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByPrefix(all, prefix), nil
}

// ListCurrentCNYFutures returns the currently traded CNY futures tickers.
func (c *HTTPClient) ListCurrentCNYFutures(ctx context.Context) ([]string, error) {
	return c.ListFuturesByPrefix(ctx, CNYFuturesPrefix)
}

// FilterByPrefix keeps the tickers that start with prefix, case-insensitively,
// preserving casing and order.
func FilterByPrefix(tickers []string, prefix string) []string {
	p := strings.ToLower(prefix)
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if strings.HasPrefix(strings.ToLower(t), p) {
			out = append(out, t)
		}
	}
	return out
}

// GetFutureMetadata returns the first securities row for ticker.
// Returns ErrNotFound when the exchange knows no such contract.
func (c *HTTPClient) GetFutureMetadata(ctx context.Context, ticker string) (*domain.Instrument, error) {
	method := futuresSecuritiesMethod + "/" + url.PathEscape(ticker)
	doc, err := c.Query(ctx, method, nil)
	if err != nil {
		return nil, err
	}

	t, err := doc.Table(securitiesBlock)
	if err != nil {
		return nil, fmt.Errorf("get future metadata: %w", err)
	}
	return instrumentFromTable(t, ticker)
}

func instrumentFromTable(t *Table, ticker string) (*domain.Instrument, error) {
	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}

	idx := make(map[string]int, 3)
	for _, name := range []string{colSecID, colMinStep, colLastTradeDate} {
		i := t.ColumnIndex(name)
		if i < 0 {
			return nil, fmt.Errorf("%w: securities has no %s column", ErrSchema, name)
		}
		idx[name] = i
	}

	row := t.Rows[0]
	return &domain.Instrument{
		Ticker:        row[idx[colSecID]].String(),
		MinStep:       row[idx[colMinStep]].String(),
		LastTradeDate: row[idx[colLastTradeDate]].String(),
		FetchedAt:     time.Now().UnixMilli(),
	}, nil
}
