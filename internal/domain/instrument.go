package domain

import "github.com/shopspring/decimal"

// Instrument is the metadata of a futures contract.
// Corresponds to the instruments table in PostgreSQL.
type Instrument struct {
	Ticker        string // SECID, PK
	MinStep       string // minimum price increment as published
	LastTradeDate string // YYYY-MM-DD
	FetchedAt     int64  // when metadata was fetched (ms)
	CreatedAt     int64  // record creation timestamp (ms), set by storage
}

// MinStepDecimal parses MinStep. An unparsable value yields zero.
func (i *Instrument) MinStepDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(i.MinStep)
	if err != nil {
		return decimal.Zero
	}
	return d
}
