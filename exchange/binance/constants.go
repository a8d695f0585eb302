package binance

import "time"

const (
	ID   = "binance"
	Name = "Binance"

	APIVersion = "v3"

	BaseURL        = "https://api.binance.com"
	TestnetBaseURL = "https://testnet.binance.vision"

	WSURL        = "wss://stream.binance.com:9443"
	TestnetWSURL = "wss://testnet.binance.vision"

	DefaultRateLimit = 50 * time.Millisecond
)
