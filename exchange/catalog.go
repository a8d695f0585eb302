package exchange

// catalog lists every unified endpoint a client exposes, whether or not the exchange backs it.
var catalog = []Endpoint{
	// Market data.
	{Name: "fetchMarkets", Description: "Retrieve every market the exchange lists"},
	{Name: "fetchCurrencies", Description: "Retrieve every currency the exchange lists"},
	{Name: "fetchTicker", Description: "Retrieve the 24h ticker of one market", Params: []Param{P("symbol")}},
	{Name: "fetchTickers", Description: "Retrieve tickers for several (or all) markets", Params: []Param{P("symbols", "comma-separated unified symbols, blank for all")}},
	{Name: "fetchOrderBook", Description: "Retrieve the order book of one market", Params: []Param{P("symbol"), P("limit")}},
	{Name: "fetchOHLCV", Description: "Retrieve candlesticks of one market", Params: []Param{P("symbol"), P("timeframe", "1m, 5m, 15m, 1h, 1d..."), P("since"), P("limit")}},
	{Name: "fetchTrades", Description: "Retrieve recent public trades of one market", Params: []Param{P("symbol"), P("since"), P("limit")}},
	{Name: "fetchStatus", Description: "Retrieve the operational status of the exchange"},
	{Name: "fetchTime", Description: "Retrieve the exchange server time in epoch milliseconds"},

	// Trading.
	{Name: "createOrder", Description: "Place an order", Params: []Param{P("symbol"), P("type", "market or limit"), P("side", "buy or sell"), P("amount"), P("price")}},
	{Name: "cancelOrder", Description: "Cancel one order", Params: []Param{P("id"), P("symbol")}},
	{Name: "cancelAllOrders", Description: "Cancel every open order (optionally of one market)", Params: []Param{P("symbol")}},
	{Name: "editOrder", Description: "Amend an open order", Params: []Param{P("id"), P("symbol"), P("type"), P("side"), P("amount"), P("price")}},
	{Name: "fetchOrder", Description: "Retrieve one order", Params: []Param{P("id"), P("symbol")}},
	{Name: "fetchOrders", Description: "Retrieve orders of any status", Params: []Param{P("symbol"), P("since"), P("limit")}},
	{Name: "fetchOpenOrders", Description: "Retrieve open orders", Params: []Param{P("symbol"), P("since"), P("limit")}},
	{Name: "fetchClosedOrders", Description: "Retrieve closed orders", Params: []Param{P("symbol"), P("since"), P("limit")}},

	// Account.
	{Name: "fetchBalance", Description: "Retrieve account balances"},
	{Name: "fetchMyTrades", Description: "Retrieve the account's own trades", Params: []Param{P("symbol"), P("since"), P("limit")}},
	{Name: "fetchLedger", Description: "Retrieve ledger entries", Params: []Param{P("code", "currency code"), P("since"), P("limit")}},
	{Name: "fetchTransactions", Description: "Retrieve deposits and withdrawals", Params: []Param{P("code", "currency code"), P("since"), P("limit")}},
	{Name: "fetchDeposits", Description: "Retrieve deposits", Params: []Param{P("code", "currency code"), P("since"), P("limit")}},
	{Name: "fetchWithdrawals", Description: "Retrieve withdrawals", Params: []Param{P("code", "currency code"), P("since"), P("limit")}},
	{Name: "fetchDepositAddress", Description: "Retrieve a deposit address", Params: []Param{P("code", "currency code")}},

	// Advanced.
	{Name: "fetchPositions", Description: "Retrieve open derivative positions", Params: []Param{P("symbols")}},
	{Name: "fetchFundingRate", Description: "Retrieve the funding rate of a perpetual market", Params: []Param{P("symbol")}},
	{Name: "fetchFundingHistory", Description: "Retrieve funding payments", Params: []Param{P("symbol"), P("since"), P("limit")}},
	{Name: "fetchBorrowRate", Description: "Retrieve the margin borrow rate of a currency", Params: []Param{P("code", "currency code")}},
	{Name: "fetchTradingFee", Description: "Retrieve the trading fee of one market", Params: []Param{P("symbol")}},
	{Name: "fetchTradingFees", Description: "Retrieve trading fees of every market"},

	// Streaming.
	{Name: "watchTicker", Description: "Listen to ticker updates of one market", Params: []Param{P("symbol"), P("limit")}},
	{Name: "watchTickers", Description: "Listen to ticker updates of several markets", Params: []Param{P("symbols"), P("limit")}},
	{Name: "watchOrderBook", Description: "Listen to order book updates of one market", Params: []Param{P("symbol"), P("limit")}},
	{Name: "watchTrades", Description: "Listen to public trades of one market", Params: []Param{P("symbol"), P("since"), P("limit")}},
	{Name: "watchOHLCV", Description: "Listen to candlestick updates of one market", Params: []Param{P("symbol"), P("timeframe"), P("since"), P("limit")}},
	{Name: "watchBalance", Description: "Listen to account balance updates"},
	{Name: "watchOrders", Description: "Listen to the account's order updates", Params: []Param{P("symbol"), P("since"), P("limit")}},
}

//
// Catalog returns a copy of the unified endpoint catalogue, without implementations.
//
func Catalog() []Endpoint {
	out := make([]Endpoint, len(catalog))
	copy(out, catalog)

	return out
}
