package exchange

import (
	"fmt"
	"strings"
	"time"
)

//
// Interval is an enum that represents various kline/candlestick intervals that can be retrieved
// from an exchange's historical data endpoints.
//
type Interval int

const (
	OneMinute Interval = iota
	ThreeMinute
	FiveMinute
	FifteenMinute
	ThirtyMinute
	OneHour
	TwoHour
	FourHour
	SixHour
	EightHour
	TwelveHour
	OneDay
	ThreeDay
	OneWeek
	OneMonth
)

var intervalNames = [...]string{"1m", "3m", "5m", "15m", "30m", "1h", "2h", "4h", "6h", "8h", "12h", "1d", "3d", "1w", "1M"}

var intervalDurations = [...]time.Duration{
	time.Minute,
	3 * time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	time.Hour,
	2 * time.Hour,
	4 * time.Hour,
	6 * time.Hour,
	8 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
	3 * 24 * time.Hour,
	7 * 24 * time.Hour,
	30 * 24 * time.Hour,
}

func (o Interval) String() string {
	return intervalNames[o]
}

//
// Duration returns the nominal length of the interval. A month is treated as thirty days.
//
func (o Interval) Duration() time.Duration {
	return intervalDurations[o]
}

//
// ParseInterval parses a timeframe such as "15m" or "1d". Units are case-sensitive only for the
// month ("1M") so that "1m" keeps meaning one minute. A blank timeframe is one minute.
//
func ParseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return OneMinute, nil
	}

	for i, name := range intervalNames {
		if name == s {
			return Interval(i), nil
		}
	}

	if lower := strings.ToLower(s); lower != s {
		for i, name := range intervalNames {
			if name == lower {
				return Interval(i), nil
			}
		}
	}

	return OneMinute, fmt.Errorf("%w: unsupported timeframe %q", ErrBadArgument, s)
}
