package kraken

import (
	"fmt"
	"time"

	"github.com/lukehollenback/exprobe/exchange"
	"github.com/tidwall/gjson"
)

// NOTE ~> According to https://docs.kraken.com/rest/#operation/getOHLCData, the structure of the
//  arrays returned from the Kraken OHLC endpoint are as follows:
//
//  [0] 1688671200,     // Open time (seconds)
//  [1] "30306.1",      // Open
//  [2] "30306.2",      // High
//  [3] "30305.7",      // Low
//  [4] "30305.7",      // Close
//  [5] "30306.1",      // VWAP
//  [6] "3.39243896",   // Volume
//  [7] 23              // Count

const (
	StartTimeIndex = 0
	OpenIndex      = 1
	HighIndex      = 2
	LowIndex       = 3
	CloseIndex     = 4
	VWAPIndex      = 5
	VolumeIndex    = 6
	CountIndex     = 7
)

// intervals lists the candle lengths (in minutes) that Kraken serves.
var intervals = map[exchange.Interval]int{
	exchange.OneMinute:     1,
	exchange.FiveMinute:    5,
	exchange.FifteenMinute: 15,
	exchange.ThirtyMinute:  30,
	exchange.OneHour:       60,
	exchange.FourHour:      240,
	exchange.OneDay:        1440,
	exchange.OneWeek:       10080,
}

//
// parseCandle converts one OHLC row into a normalized candle.
//
func parseCandle(row gjson.Result) (exchange.Candle, error) {
	fields := row.Array()
	if len(fields) <= VolumeIndex {
		return exchange.Candle{}, fmt.Errorf("failed to parse candle (expected at least %d fields, got %d)", VolumeIndex+1, len(fields))
	}

	return exchange.NewCandleFromStrings(
		time.Unix(fields[StartTimeIndex].Int(), 0),
		fields[OpenIndex].String(),
		fields[HighIndex].String(),
		fields[LowIndex].String(),
		fields[CloseIndex].String(),
		fields[VolumeIndex].String(),
	)
}
