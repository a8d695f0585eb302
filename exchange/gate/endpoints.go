package gate

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lukehollenback/exprobe/exchange"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const defaultCandles = 100

var has = exchange.Has{
	"CORS":   false,
	"spot":   true,
	"margin": true,
	"swap":   true,
	"future": true,
	"option": true,

	"fetchMarkets":    true,
	"fetchCurrencies": true,
	"fetchTicker":     true,
	"fetchTickers":    true,
	"fetchOrderBook":  true,
	"fetchOHLCV":      true,
	"fetchTrades":     true,
	"fetchStatus":     false,
	"fetchTime":       true,

	"fetchBalance": true,

	"ws":          true,
	"watchTicker": true,
	"watchTrades": true,
}

func (o *Client) endpoints() *exchange.Registry {
	return exchange.NewRegistry(map[string]exchange.CallFunc{
		"fetchMarkets":    o.fetchMarkets,
		"fetchCurrencies": o.fetchCurrencies,
		"fetchTicker":     o.fetchTicker,
		"fetchTickers":    o.fetchTickers,
		"fetchOrderBook":  o.fetchOrderBook,
		"fetchOHLCV":      o.fetchOHLCV,
		"fetchTrades":     o.fetchTrades,
		"fetchTime":       o.fetchTime,

		"fetchBalance": o.fetchBalance,

		"watchTicker": o.watchTicker,
		"watchTrades": o.watchTrades,
	})
}

func fallbackID(base, quote string) string {
	return base + "_" + quote
}

func (o *Client) market(args exchange.Args) (exchange.Market, error) {
	symbol, err := args.Require("symbol")
	if err != nil {
		return exchange.Market{}, err
	}

	return o.Market(symbol, fallbackID)
}

func (o *Client) fetchMarkets(ctx context.Context, _ exchange.Args) (interface{}, error) {
	if err := o.LoadMarkets(ctx); err != nil {
		return nil, err
	}

	return o.List(), nil
}

func (o *Client) fetchCurrencies(ctx context.Context, _ exchange.Args) (interface{}, error) {
	res, err := o.get(ctx, "/spot/currencies", nil)
	if err != nil {
		return nil, err
	}

	return raw(res), nil
}

func (o *Client) fetchTicker(ctx context.Context, args exchange.Args) (interface{}, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	res, err := o.get(ctx, "/spot/tickers", url.Values{"currency_pair": {m.ID}})
	if err != nil {
		return nil, err
	}

	t := res.Get("0")
	if !t.Exists() {
		return nil, fmt.Errorf("%w: %s", exchange.ErrUnknownSymbol, m.Symbol)
	}

	return parseTicker(m.Symbol, t, time.Now()), nil
}

func (o *Client) fetchTickers(ctx context.Context, args exchange.Args) (interface{}, error) {
	res, err := o.get(ctx, "/spot/tickers", nil)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool)
	for _, s := range args.List("symbols") {
		wanted[strings.ToUpper(s)] = true
	}

	now := time.Now()
	out := make(map[string]exchange.Ticker)

	for _, t := range res.Array() {
		symbol := o.SymbolOf(t.Get("currency_pair").String())
		if len(wanted) > 0 && !wanted[symbol] {
			continue
		}

		out[symbol] = parseTicker(symbol, t, now)
	}

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

	params := url.Values{"currency_pair": {m.ID}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	res, err := o.get(ctx, "/spot/order_book", params)
	if err != nil {
		return nil, err
	}

	return exchange.OrderBook{
		Symbol:    m.Symbol,
		Timestamp: res.Get("current").Int(),
		Bids:      parseLevels(res.Get("bids")),
		Asks:      parseLevels(res.Get("asks")),
	}, nil
}

//
// fetchOHLCV reads candles through the hs client, which only pages backwards from now. A since
// argument filters the result instead of moving the window.
//
func (o *Client) fetchOHLCV(ctx context.Context, args exchange.Args) (interface{}, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	interval, err := exchange.ParseInterval(args.String("timeframe", "1m"))
	if err != nil {
		return nil, err
	}

	since, err := args.Time("since")
	if err != nil {
		return nil, err
	}

	limit, err := args.Int("limit", defaultCandles)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultCandles
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	c, err := o.spot.CandleBySize(ctx, m.ID, interval.Duration(), limit)
	if err != nil {
		return nil, err
	}

	candles := make([]exchange.Candle, 0, c.Length())

	for i := 0; i < c.Length(); i++ {
		ts := time.Unix(c.Timestamp[i], 0)
		if ts.Before(since) {
			continue
		}

		candles = append(candles, exchange.Candle{
			Time:   ts,
			Open:   decimal.NewFromFloat(c.Open[i]),
			High:   decimal.NewFromFloat(c.High[i]),
			Low:    decimal.NewFromFloat(c.Low[i]),
			Close:  decimal.NewFromFloat(c.Close[i]),
			Volume: decimal.NewFromFloat(c.Volume[i]),
		})
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

	params := url.Values{"currency_pair": {m.ID}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	if !since.IsZero() {
		params.Set("from", strconv.FormatInt(since.Unix(), 10))
	}

	res, err := o.get(ctx, "/spot/trades", params)
	if err != nil {
		return nil, err
	}

	trades := make([]exchange.Trade, 0)

	for _, t := range res.Array() {
		trades = append(trades, parseTrade(m.Symbol, t))
	}

	return trades, nil
}

func (o *Client) fetchTime(ctx context.Context, _ exchange.Args) (interface{}, error) {
	res, err := o.get(ctx, "/spot/time", nil)
	if err != nil {
		return nil, err
	}

	return res.Get("server_time").Int(), nil
}

func (o *Client) fetchBalance(ctx context.Context, _ exchange.Args) (interface{}, error) {
	if o.apiKey == "" || o.apiSecret == "" {
		return nil, fmt.Errorf("fetchBalance: %w", exchange.ErrAuthRequired)
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return o.spot.AvailableBalance(ctx)
}

func parseTicker(symbol string, t gjson.Result, now time.Time) exchange.Ticker {
	return exchange.Ticker{
		Symbol:    symbol,
		Timestamp: exchange.Millis(now),
		Bid:       dec(t.Get("highest_bid")),
		Ask:       dec(t.Get("lowest_ask")),
		Last:      dec(t.Get("last")),
		High:      dec(t.Get("high_24h")),
		Low:       dec(t.Get("low_24h")),
		Volume:    dec(t.Get("base_volume")),
	}
}

func parseLevels(rows gjson.Result) []exchange.PriceLevel {
	levels := make([]exchange.PriceLevel, 0)

	for _, row := range rows.Array() {
		levels = append(levels, exchange.PriceLevel{Price: dec(row.Get("0")), Amount: dec(row.Get("1"))})
	}

	return levels
}

func parseTrade(symbol string, t gjson.Result) exchange.Trade {
	return exchange.Trade{
		ID:        t.Get("id").String(),
		Symbol:    symbol,
		Timestamp: int64(t.Get("create_time_ms").Float()),
		Side:      t.Get("side").String(),
		Price:     dec(t.Get("price")),
		Amount:    dec(t.Get("amount")),
	}
}

func dec(r gjson.Result) decimal.Decimal {
	d, err := decimal.NewFromString(r.String())
	if err != nil {
		return decimal.Zero
	}

	return d
}

func raw(r gjson.Result) interface{} {
	if !r.Exists() {
		return nil
	}

	return r.Value()
}
