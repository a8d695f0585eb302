package exchange

import (
	"time"

	"github.com/shopspring/decimal"
)

//
// Market describes one tradable pair.
//
type Market struct {
	Symbol string `json:"symbol"`
	ID     string `json:"id"`
	Base   string `json:"base"`
	Quote  string `json:"quote"`
	Active bool   `json:"active"`
}

//
// Ticker is a normalized 24h ticker.
//
type Ticker struct {
	Symbol    string          `json:"symbol"`
	Timestamp int64           `json:"timestamp"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	Last      decimal.Decimal `json:"last"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	VWAP      decimal.Decimal `json:"vwap"`
	Volume    decimal.Decimal `json:"baseVolume"`
}

//
// PriceLevel is one row of an order book.
//
type PriceLevel struct {
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
}

//
// OrderBook is a normalized order book snapshot.
//
type OrderBook struct {
	Symbol    string       `json:"symbol"`
	Timestamp int64        `json:"timestamp"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
}

//
// Trade is a normalized public or private trade.
//
type Trade struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Timestamp int64           `json:"timestamp"`
	Side      string          `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
}

//
// Millis converts a time to epoch milliseconds, mapping the zero time to zero.
//
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixMilli()
}
