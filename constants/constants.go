package constants

import "time"

const (
	AppName = "exprobe"

	DefaultResponsesDir = "responses"
	DefaultLogFile      = "exprobe.log"
	DefaultSymbol       = "BTC/USDT"
	DefaultLimit        = 10
	DefaultStreamWindow = 5 * time.Second

	PageSize  = 50 // Endpoints shown per page of the selector.
	HintCount = 10 // Symbols offered as hints when prompting.
	RuleWidth = 60

	LargeFileSize = 1024 * 1024
)

var (
	popular = []string{"binance", "coinbasepro", "kraken"}
)

//
// Popular returns the exchanges that are listed first when the operator picks one.
//
func Popular() []string {
	out := make([]string, len(popular))
	copy(out, popular)

	return out
}
