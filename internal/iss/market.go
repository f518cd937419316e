package iss

import (
	"fmt"
	"net/url"
)

// Market selects the ISS engine/market pair a ticker trades on.
type Market string

const (
	MarketFuture Market = "future"
	MarketStock  Market = "stock"
)

// Method paths.
const (
	futuresSecuritiesMethod = "engines/futures/markets/forts/securities"
	stockSecuritiesMethod   = "engines/stock/markets/shares/securities"
)

// securitiesMethod returns the securities collection path for the market.
func (m Market) securitiesMethod() (string, bool) {
	switch m {
	case MarketFuture:
		return futuresSecuritiesMethod, true
	case MarketStock:
		return stockSecuritiesMethod, true
	default:
		return "", false
	}
}

// candlesMethod returns the candles path for ticker on the market, or false
// for an unsupported market.
func (m Market) candlesMethod(ticker string) (string, bool) {
	base, ok := m.securitiesMethod()
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s/%s/candles", base, url.PathEscape(ticker)), true
}
