package kraken

import "time"

const (
	ID   = "kraken"
	Name = "Kraken"

	APIVersion = "0"

	APIKeyHeader  = "API-Key"
	APISignHeader = "API-Sign"

	BaseURL = "https://api.kraken.com"
	WSURL   = "wss://ws.kraken.com"

	PublicPath  = "/" + APIVersion + "/public/"
	PrivatePath = "/" + APIVersion + "/private/"

	DefaultRateLimit = time.Second
)

// NOTE ~> Kraken prefixes and renames a handful of assets. These map its codes onto the common
//  ones and back again.
var (
	toCommon = map[string]string{
		"XBT": "BTC",
		"XDG": "DOGE",
	}

	fromCommon = map[string]string{
		"BTC":  "XBT",
		"DOGE": "XDG",
	}
)

func commonCode(code string) string {
	if c, ok := toCommon[code]; ok {
		return c
	}

	return code
}

func krakenCode(code string) string {
	if c, ok := fromCommon[code]; ok {
		return c
	}

	return code
}
