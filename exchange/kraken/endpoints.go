package kraken

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lukehollenback/exprobe/exchange"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

var has = exchange.Has{
	"CORS":   false,
	"spot":   true,
	"margin": true,
	"swap":   false,
	"future": false,
	"option": false,

	"fetchMarkets":    true,
	"fetchCurrencies": true,
	"fetchTicker":     true,
	"fetchTickers":    true,
	"fetchOrderBook":  true,
	"fetchOHLCV":      true,
	"fetchTrades":     true,
	"fetchStatus":     true,
	"fetchTime":       true,

	"createOrder":       true,
	"cancelOrder":       true,
	"cancelAllOrders":   true,
	"editOrder":         true,
	"fetchOrder":        true,
	"fetchOrders":       exchange.Emulated,
	"fetchOpenOrders":   true,
	"fetchClosedOrders": true,

	"fetchBalance":        true,
	"fetchMyTrades":       true,
	"fetchLedger":         true,
	"fetchTransactions":   exchange.Emulated,
	"fetchDeposits":       true,
	"fetchWithdrawals":    true,
	"fetchDepositAddress": true,
	"fetchDepositMethods": true,

	"fetchPositions":      false,
	"fetchFundingRate":    false,
	"fetchFundingHistory": false,
	"fetchBorrowRate":     false,
	"fetchTradingFee":     true,
	"fetchTradingFees":    true,

	"ws":             true,
	"watchTicker":    true,
	"watchTickers":   false,
	"watchOrderBook": false,
	"watchTrades":    true,
	"watchOHLCV":     false,
	"watchBalance":   false,
	"watchOrders":    false,
}

func (o *Client) endpoints() *exchange.Registry {
	return exchange.NewRegistry(
		map[string]exchange.CallFunc{
			"fetchMarkets":    o.fetchMarkets,
			"fetchCurrencies": o.fetchCurrencies,
			"fetchTicker":     o.fetchTicker,
			"fetchTickers":    o.fetchTickers,
			"fetchOrderBook":  o.fetchOrderBook,
			"fetchOHLCV":      o.fetchOHLCV,
			"fetchTrades":     o.fetchTrades,
			"fetchStatus":     o.fetchStatus,
			"fetchTime":       o.fetchTime,

			"createOrder":       o.createOrder,
			"cancelOrder":       o.cancelOrder,
			"cancelAllOrders":   o.cancelAllOrders,
			"editOrder":         o.editOrder,
			"fetchOrder":        o.fetchOrder,
			"fetchOrders":       o.fetchOrders,
			"fetchOpenOrders":   o.fetchOpenOrders,
			"fetchClosedOrders": o.fetchClosedOrders,

			"fetchBalance":        o.fetchBalance,
			"fetchMyTrades":       o.fetchMyTrades,
			"fetchLedger":         o.fetchLedger,
			"fetchTransactions":   o.fetchTransactions,
			"fetchDeposits":       o.fetchDeposits,
			"fetchWithdrawals":    o.fetchWithdrawals,
			"fetchDepositAddress": o.fetchDepositAddress,

			"fetchTradingFee":  o.fetchTradingFee,
			"fetchTradingFees": o.fetchTradingFees,

			"watchTicker": o.watchTicker,
			"watchTrades": o.watchTrades,
		},
		exchange.Endpoint{
			Name:        "fetchDepositMethods",
			Description: "Retrieve the funding methods available for a currency",
			Params:      []exchange.Param{exchange.P("code", "currency code")},
			Call:        o.fetchDepositMethods,
		},
	)
}

//
// market resolves the "symbol" argument into a Kraken market.
//
func (o *Client) market(args exchange.Args) (exchange.Market, error) {
	symbol, err := args.Require("symbol")
	if err != nil {
		return exchange.Market{}, err
	}

	return o.Market(symbol, func(base, quote string) string {
		return krakenCode(base) + krakenCode(quote)
	})
}

//
// Market data.
//

func (o *Client) fetchMarkets(ctx context.Context, _ exchange.Args) (interface{}, error) {
	if err := o.LoadMarkets(ctx); err != nil {
		return nil, err
	}

	return o.List(), nil
}

func (o *Client) fetchCurrencies(ctx context.Context, _ exchange.Args) (interface{}, error) {
	res, err := o.public(ctx, "Assets", nil)
	if err != nil {
		return nil, err
	}

	type currency struct {
		ID        string `json:"id"`
		Code      string `json:"code"`
		Precision int64  `json:"precision"`
	}

	out := make(map[string]currency)

	res.ForEach(func(k, v gjson.Result) bool {
		code := commonCode(v.Get("altname").String())
		out[code] = currency{ID: k.String(), Code: code, Precision: v.Get("decimals").Int()}

		return true
	})

	return out, nil
}

func (o *Client) fetchTicker(ctx context.Context, args exchange.Args) (interface{}, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	res, err := o.public(ctx, "Ticker", url.Values{"pair": {m.ID}})
	if err != nil {
		return nil, err
	}

	_, t := pairResult(res)

	return parseTicker(m.Symbol, t, time.Now()), nil
}

func (o *Client) fetchTickers(ctx context.Context, args exchange.Args) (interface{}, error) {
	params := url.Values{}

	if symbols := args.List("symbols"); len(symbols) > 0 {
		ids := make([]string, 0, len(symbols))

		for _, s := range symbols {
			m, err := o.Market(s, func(base, quote string) string { return krakenCode(base) + krakenCode(quote) })
			if err != nil {
				return nil, err
			}

			ids = append(ids, m.ID)
		}

		params.Set("pair", strings.Join(ids, ","))
	}

	res, err := o.public(ctx, "Ticker", params)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make(map[string]exchange.Ticker)

	res.ForEach(func(k, v gjson.Result) bool {
		symbol := o.SymbolOf(k.String())
		out[symbol] = parseTicker(symbol, v, now)

		return true
	})

	return out, nil
}

func (o *Client) fetchOrderBook(ctx context.Context, args exchange.Args) (interface{}, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	limit, err := args.Int("limit", 0)
	if err != nil {
		return nil, err
	}

	params := url.Values{"pair": {m.ID}}
	if limit > 0 {
		params.Set("count", strconv.Itoa(limit))
	}

	res, err := o.public(ctx, "Depth", params)
	if err != nil {
		return nil, err
	}

	_, book := pairResult(res)

	return exchange.OrderBook{
		Symbol:    m.Symbol,
		Timestamp: exchange.Millis(time.Now()),
		Bids:      parseLevels(book.Get("bids")),
		Asks:      parseLevels(book.Get("asks")),
	}, nil
}

func (o *Client) fetchOHLCV(ctx context.Context, args exchange.Args) (interface{}, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	interval, err := exchange.ParseInterval(args.String("timeframe", "1m"))
	if err != nil {
		return nil, err
	}

	minutes, ok := intervals[interval]
	if !ok {
		return nil, fmt.Errorf("%w: %s does not serve %s candles", exchange.ErrBadArgument, Name, interval)
	}

	since, err := args.Time("since")
	if err != nil {
		return nil, err
	}

	limit, err := args.Int("limit", 0)
	if err != nil {
		return nil, err
	}

	params := url.Values{"pair": {m.ID}, "interval": {strconv.Itoa(minutes)}}
	if !since.IsZero() {
		params.Set("since", strconv.FormatInt(since.Unix(), 10))
	}

	res, err := o.public(ctx, "OHLC", params)
	if err != nil {
		return nil, err
	}

	_, rows := pairResult(res)

	candles := make([]exchange.Candle, 0)

	for _, row := range rows.Array() {
		c, err := parseCandle(row)
		if err != nil {
			return nil, err
		}

		candles = append(candles, c)
	}

	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}

	return candles, nil
}

func (o *Client) fetchTrades(ctx context.Context, args exchange.Args) (interface{}, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	since, err := args.Time("since")
	if err != nil {
		return nil, err
	}

	limit, err := args.Int("limit", 0)
	if err != nil {
		return nil, err
	}

	params := url.Values{"pair": {m.ID}}
	if !since.IsZero() {
		params.Set("since", strconv.FormatInt(since.UnixNano(), 10))
	}

	if limit > 0 {
		params.Set("count", strconv.Itoa(limit))
	}

	res, err := o.public(ctx, "Trades", params)
	if err != nil {
		return nil, err
	}

	_, rows := pairResult(res)

	trades := parseTrades(m.Symbol, rows)
	if limit > 0 && len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}

	return trades, nil
}

func (o *Client) fetchStatus(ctx context.Context, _ exchange.Args) (interface{}, error) {
	res, err := o.public(ctx, "SystemStatus", nil)
	if err != nil {
		return nil, err
	}

	status := res.Get("status").String()
	if status == "online" {
		status = "ok"
	}

	return map[string]interface{}{
		"status":  status,
		"updated": res.Get("timestamp").String(),
	}, nil
}

func (o *Client) fetchTime(ctx context.Context, _ exchange.Args) (interface{}, error) {
	res, err := o.public(ctx, "Time", nil)
	if err != nil {
		return nil, err
	}

	return res.Get("unixtime").Int() * 1000, nil
}

//
// Trading.
//

func (o *Client) createOrder(ctx context.Context, args exchange.Args) (interface{}, error) {
	params, err := o.orderParams(args)
	if err != nil {
		return nil, err
	}

	res, err := o.private(ctx, "AddOrder", params)
	if err != nil {
		return nil, err
	}

	return raw(res), nil
}

func (o *Client) editOrder(ctx context.Context, args exchange.Args) (interface{}, error) {
	id, err := args.Require("id")
	if err != nil {
		return nil, err
	}

	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	params := url.Values{"txid": {id}, "pair": {m.ID}}

	if amount := args.String("amount", ""); amount != "" {
		params.Set("volume", amount)
	}

	if price := args.String("price", ""); price != "" {
		params.Set("price", price)
	}

	res, err := o.private(ctx, "EditOrder", params)
	if err != nil {
		return nil, err
	}

	return raw(res), nil
}

//
// orderParams translates unified order arguments into AddOrder parameters.
//
func (o *Client) orderParams(args exchange.Args) (url.Values, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	side := strings.ToLower(args.String("side", ""))
	if side != "buy" && side != "sell" {
		return nil, fmt.Errorf("%w: side must be buy or sell (got %q)", exchange.ErrBadArgument, side)
	}

	orderType := strings.ToLower(args.String("type", "limit"))

	amount, err := args.Decimal("amount")
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"pair":      {m.ID},
		"type":      {side},
		"ordertype": {orderType},
		"volume":    {amount.String()},
	}

	if orderType != "market" {
		price, err := args.Decimal("price")
		if err != nil {
			return nil, err
		}

		params.Set("price", price.String())
	}

	return params, nil
}

func (o *Client) cancelOrder(ctx context.Context, args exchange.Args) (interface{}, error) {
	id, err := args.Require("id")
	if err != nil {
		return nil, err
	}

	res, err := o.private(ctx, "CancelOrder", url.Values{"txid": {id}})
	if err != nil {
		return nil, err
	}

	return raw(res), nil
}

func (o *Client) cancelAllOrders(ctx context.Context, _ exchange.Args) (interface{}, error) {
	res, err := o.private(ctx, "CancelAll", nil)
	if err != nil {
		return nil, err
	}

	return raw(res), nil
}

func (o *Client) fetchOrder(ctx context.Context, args exchange.Args) (interface{}, error) {
	id, err := args.Require("id")
	if err != nil {
		return nil, err
	}

	res, err := o.private(ctx, "QueryOrders", url.Values{"txid": {id}, "trades": {"true"}})
	if err != nil {
		return nil, err
	}

	return raw(res), nil
}

func (o *Client) fetchOpenOrders(ctx context.Context, _ exchange.Args) (interface{}, error) {
	res, err := o.private(ctx, "OpenOrders", nil)
	if err != nil {
		return nil, err
	}

	return raw(res.Get("open")), nil
}

func (o *Client) fetchClosedOrders(ctx context.Context, args exchange.Args) (interface{}, error) {
	params, err := sinceParams(args)
	if err != nil {
		return nil, err
	}

	res, err := o.private(ctx, "ClosedOrders", params)
	if err != nil {
		return nil, err
	}

	return raw(res.Get("closed")), nil
}

//
// fetchOrders is emulated by merging open and closed orders, keyed by transaction identifier.
//
func (o *Client) fetchOrders(ctx context.Context, args exchange.Args) (interface{}, error) {
	out := make(map[string]json.RawMessage)

	for _, part := range []struct {
		method string
		key    string
		since  bool
	}{
		{"OpenOrders", "open", false},
		{"ClosedOrders", "closed", true},
	} {
		params := url.Values{}

		if part.since {
			var err error

			if params, err = sinceParams(args); err != nil {
				return nil, err
			}
		}

		res, err := o.private(ctx, part.method, params)
		if err != nil {
			return nil, err
		}

		res.Get(part.key).ForEach(func(k, v gjson.Result) bool {
			out[k.String()] = json.RawMessage(v.Raw)

			return true
		})
	}

	return out, nil
}

//
// Account.
//

func (o *Client) fetchBalance(ctx context.Context, _ exchange.Args) (interface{}, error) {
	res, err := o.private(ctx, "Balance", nil)
	if err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal)

	res.ForEach(func(k, v gjson.Result) bool {
		out[assetCode(k.String())] = dec(v)

		return true
	})

	return out, nil
}

func (o *Client) fetchMyTrades(ctx context.Context, args exchange.Args) (interface{}, error) {
	params, err := sinceParams(args)
	if err != nil {
		return nil, err
	}

	res, err := o.private(ctx, "TradesHistory", params)
	if err != nil {
		return nil, err
	}

	return raw(res.Get("trades")), nil
}

func (o *Client) fetchLedger(ctx context.Context, args exchange.Args) (interface{}, error) {
	params, err := sinceParams(args)
	if err != nil {
		return nil, err
	}

	if code := args.String("code", ""); code != "" {
		params.Set("asset", krakenCode(strings.ToUpper(code)))
	}

	res, err := o.private(ctx, "Ledgers", params)
	if err != nil {
		return nil, err
	}

	return raw(res.Get("ledger")), nil
}

func (o *Client) fetchDeposits(ctx context.Context, args exchange.Args) (interface{}, error) {
	return o.funding(ctx, "DepositStatus", args)
}

func (o *Client) fetchWithdrawals(ctx context.Context, args exchange.Args) (interface{}, error) {
	return o.funding(ctx, "WithdrawStatus", args)
}

//
// fetchTransactions is emulated by concatenating deposits and withdrawals.
//
func (o *Client) fetchTransactions(ctx context.Context, args exchange.Args) (interface{}, error) {
	out := make([]json.RawMessage, 0)

	for _, method := range []string{"DepositStatus", "WithdrawStatus"} {
		res, err := o.funding(ctx, method, args)
		if err != nil {
			return nil, err
		}

		for _, v := range gjson.ParseBytes(res.(json.RawMessage)).Array() {
			out = append(out, json.RawMessage(v.Raw))
		}
	}

	return out, nil
}

func (o *Client) funding(ctx context.Context, method string, args exchange.Args) (interface{}, error) {
	params := url.Values{}

	if code := args.String("code", ""); code != "" {
		params.Set("asset", krakenCode(strings.ToUpper(code)))
	}

	res, err := o.private(ctx, method, params)
	if err != nil {
		return nil, err
	}

	return raw(res), nil
}

func (o *Client) fetchDepositMethods(ctx context.Context, args exchange.Args) (interface{}, error) {
	code, err := args.Require("code")
	if err != nil {
		return nil, err
	}

	res, err := o.private(ctx, "DepositMethods", url.Values{"asset": {krakenCode(strings.ToUpper(code))}})
	if err != nil {
		return nil, err
	}

	return raw(res), nil
}

//
// fetchDepositAddress uses the first deposit method Kraken offers for the currency.
//
func (o *Client) fetchDepositAddress(ctx context.Context, args exchange.Args) (interface{}, error) {
	code, err := args.Require("code")
	if err != nil {
		return nil, err
	}

	asset := krakenCode(strings.ToUpper(code))

	methods, err := o.private(ctx, "DepositMethods", url.Values{"asset": {asset}})
	if err != nil {
		return nil, err
	}

	method := methods.Get("0.method").String()
	if method == "" {
		return nil, fmt.Errorf("%w: no deposit method is available for %s", exchange.ErrBadArgument, code)
	}

	res, err := o.private(ctx, "DepositAddresses", url.Values{"asset": {asset}, "method": {method}})
	if err != nil {
		return nil, err
	}

	return raw(res), nil
}

func (o *Client) fetchTradingFee(ctx context.Context, args exchange.Args) (interface{}, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	res, err := o.private(ctx, "TradeVolume", url.Values{"pair": {m.ID}})
	if err != nil {
		return nil, err
	}

	return raw(res), nil
}

func (o *Client) fetchTradingFees(ctx context.Context, _ exchange.Args) (interface{}, error) {
	res, err := o.private(ctx, "TradeVolume", nil)
	if err != nil {
		return nil, err
	}

	return raw(res), nil
}

//
// Helpers.
//

func sinceParams(args exchange.Args) (url.Values, error) {
	params := url.Values{}

	since, err := args.Time("since")
	if err != nil {
		return nil, err
	}

	if !since.IsZero() {
		params.Set("start", strconv.FormatInt(since.Unix(), 10))
	}

	return params, nil
}

// NOTE ~> The REST ticker reports the opening price as a string while the websocket ticker reports
//  it as [today, last24Hours].
func parseTicker(symbol string, t gjson.Result, now time.Time) exchange.Ticker {
	open := t.Get("o")
	if open.IsArray() {
		open = open.Get("1")
	}

	return exchange.Ticker{
		Symbol:    symbol,
		Timestamp: exchange.Millis(now),
		Bid:       dec(t.Get("b.0")),
		Ask:       dec(t.Get("a.0")),
		Last:      dec(t.Get("c.0")),
		Open:      dec(open),
		High:      dec(t.Get("h.1")),
		Low:       dec(t.Get("l.1")),
		VWAP:      dec(t.Get("p.1")),
		Volume:    dec(t.Get("v.1")),
	}
}

func parseLevels(rows gjson.Result) []exchange.PriceLevel {
	levels := make([]exchange.PriceLevel, 0)

	for _, row := range rows.Array() {
		levels = append(levels, exchange.PriceLevel{Price: dec(row.Get("0")), Amount: dec(row.Get("1"))})
	}

	return levels
}

// NOTE ~> Public trade rows are [price, volume, time, side, type, misc, id]. Side is "b" or "s".
func parseTrades(symbol string, rows gjson.Result) []exchange.Trade {
	trades := make([]exchange.Trade, 0)

	for _, row := range rows.Array() {
		side := "buy"
		if row.Get("3").String() == "s" {
			side = "sell"
		}

		trades = append(trades, exchange.Trade{
			ID:        row.Get("6").String(),
			Symbol:    symbol,
			Timestamp: int64(row.Get("2").Float() * 1000),
			Side:      side,
			Price:     dec(row.Get("0")),
			Amount:    dec(row.Get("1")),
		})
	}

	return trades
}

//
// assetCode maps a Kraken balance key such as "XXBT" or "ZUSD" onto a common currency code.
//
func assetCode(key string) string {
	if len(key) == 4 && (key[0] == 'X' || key[0] == 'Z') {
		key = key[1:]
	}

	return commonCode(key)
}

func dec(r gjson.Result) decimal.Decimal {
	d, err := decimal.NewFromString(r.String())
	if err != nil {
		return decimal.Zero
	}

	return d
}

func raw(r gjson.Result) json.RawMessage {
	if !r.Exists() {
		return json.RawMessage("null")
	}

	return json.RawMessage(r.Raw)
}
