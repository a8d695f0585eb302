package coinbasepro

import "time"

const (
	ID   = "coinbasepro"
	Name = "Coinbase Pro"

	APIVersion = "v2"

	BaseURL        = "https://api.pro.coinbase.com"
	SandboxBaseURL = "https://api-public.sandbox.pro.coinbase.com"

	WSURL        = "wss://ws-feed.pro.coinbase.com"
	SandboxWSURL = "wss://ws-feed-public.sandbox.pro.coinbase.com"

	DefaultRateLimit = 100 * time.Millisecond
)

// granularities lists the candle lengths (in seconds) that the candles endpoint serves.
var granularities = map[time.Duration]int{
	time.Minute:      60,
	5 * time.Minute:  300,
	15 * time.Minute: 900,
	time.Hour:        3600,
	6 * time.Hour:    21600,
	24 * time.Hour:   86400,
}
