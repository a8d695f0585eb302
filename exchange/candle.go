package exchange

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

//
// Candle represents one candlestick (a.k.a. kline). It marshals to the conventional compact array
// form [open time in epoch milliseconds, open, high, low, close, volume].
//
type Candle struct {
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

//
// NewCandleFromStrings builds a candle from the string-encoded prices most REST APIs return.
//
func NewCandleFromStrings(t time.Time, open, high, low, closing, volume string) (Candle, error) {
	var err error

	c := Candle{Time: t}

	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"open", open, &c.Open},
		{"high", high, &c.High},
		{"low", low, &c.Low},
		{"close", closing, &c.Close},
		{"volume", volume, &c.Volume},
	}

	for _, f := range fields {
		*f.dst, err = decimal.NewFromString(f.raw)
		if err != nil {
			return Candle{}, fmt.Errorf("failed to parse %s (%q): %w", f.name, f.raw, err)
		}
	}

	return c, nil
}

//
// MarshalJSON implements the json.Marshaler interface.
//
func (o Candle) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{
		o.Time.UnixMilli(),
		json.RawMessage(o.Open.String()),
		json.RawMessage(o.High.String()),
		json.RawMessage(o.Low.String()),
		json.RawMessage(o.Close.String()),
		json.RawMessage(o.Volume.String()),
	})
}
