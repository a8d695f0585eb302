package coinbasepro

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lukehollenback/exprobe/exchange"
	api "github.com/preichenberger/go-coinbasepro/v2"
	"github.com/shopspring/decimal"
)

var has = exchange.Has{
	"CORS":   true,
	"spot":   true,
	"margin": false,
	"swap":   false,
	"future": false,
	"option": false,

	"fetchMarkets":    true,
	"fetchCurrencies": true,
	"fetchTicker":     true,
	"fetchTickers":    false,
	"fetchOrderBook":  true,
	"fetchOHLCV":      true,
	"fetchTrades":     true,
	"fetchStatus":     exchange.Emulated,
	"fetchTime":       true,

	"createOrder":       true,
	"cancelOrder":       true,
	"cancelAllOrders":   true,
	"editOrder":         false,
	"fetchOrder":        true,
	"fetchOrders":       true,
	"fetchOpenOrders":   true,
	"fetchClosedOrders": true,

	"fetchBalance":        true,
	"fetchMyTrades":       true,
	"fetchLedger":         false,
	"fetchTransactions":   false,
	"fetchDeposits":       false,
	"fetchWithdrawals":    false,
	"fetchDepositAddress": false,

	"fetchPositions":      false,
	"fetchFundingRate":    false,
	"fetchFundingHistory": false,
	"fetchBorrowRate":     false,
	"fetchTradingFee":     false,
	"fetchTradingFees":    false,

	"ws":          true,
	"watchTicker": true,
	"watchTrades": true,
}

func (o *Client) endpoints() *exchange.Registry {
	return exchange.NewRegistry(map[string]exchange.CallFunc{
		"fetchMarkets":    o.fetchMarkets,
		"fetchCurrencies": o.fetchCurrencies,
		"fetchTicker":     o.fetchTicker,
		"fetchOrderBook":  o.fetchOrderBook,
		"fetchOHLCV":      o.fetchOHLCV,
		"fetchTrades":     o.fetchTrades,
		"fetchStatus":     o.fetchStatus,
		"fetchTime":       o.fetchTime,

		"createOrder":       o.createOrder,
		"cancelOrder":       o.cancelOrder,
		"cancelAllOrders":   o.cancelAllOrders,
		"fetchOrder":        o.fetchOrder,
		"fetchOrders":       o.ordersWithStatus("all"),
		"fetchOpenOrders":   o.ordersWithStatus("open"),
		"fetchClosedOrders": o.ordersWithStatus("done"),

		"fetchBalance":  o.fetchBalance,
		"fetchMyTrades": o.fetchMyTrades,

		"watchTicker": o.watchTicker,
		"watchTrades": o.watchTrades,
	})
}

func fallbackID(base, quote string) string {
	return base + "-" + quote
}

//
// market resolves the "symbol" argument into a Coinbase Pro product.
//
func (o *Client) market(args exchange.Args) (exchange.Market, error) {
	symbol, err := args.Require("symbol")
	if err != nil {
		return exchange.Market{}, err
	}

	return o.Market(symbol, fallbackID)
}

func (o *Client) private(ctx context.Context, call string) error {
	if !o.authenticated() {
		return fmt.Errorf("%s: %w (a passphrase is also required)", call, exchange.ErrAuthRequired)
	}

	return o.wait(ctx, call)
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
	if err := o.wait(ctx, "currencies"); err != nil {
		return nil, err
	}

	currencies, err := o.api.GetCurrencies()
	if err != nil {
		return nil, wrap(err)
	}

	return currencies, nil
}

//
// fetchTicker combines the ticker (best bid, ask, and last trade) with the 24h stats.
//
func (o *Client) fetchTicker(ctx context.Context, args exchange.Args) (interface{}, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	if err := o.wait(ctx, "ticker"); err != nil {
		return nil, err
	}

	ticker, err := o.api.GetTicker(m.ID)
	if err != nil {
		return nil, wrap(err)
	}

	if err := o.wait(ctx, "stats"); err != nil {
		return nil, err
	}

	stats, err := o.api.GetStats(m.ID)
	if err != nil {
		return nil, wrap(err)
	}

	return exchange.Ticker{
		Symbol:    m.Symbol,
		Timestamp: exchange.Millis(ticker.Time.Time()),
		Bid:       dec(ticker.Bid),
		Ask:       dec(ticker.Ask),
		Last:      dec(ticker.Price),
		Open:      dec(stats.Open),
		High:      dec(stats.High),
		Low:       dec(stats.Low),
		Volume:    dec(stats.Volume),
	}, nil
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

	//
	// Level two aggregates the top fifty price levels. Anything deeper needs the full book.
	//
	level := 2
	if limit > 50 {
		level = 3
	}

	if err := o.wait(ctx, "book"); err != nil {
		return nil, err
	}

	book, err := o.api.GetBook(m.ID, level)
	if err != nil {
		return nil, wrap(err)
	}

	out := exchange.OrderBook{
		Symbol:    m.Symbol,
		Timestamp: exchange.Millis(time.Now()),
		Bids:      make([]exchange.PriceLevel, 0, len(book.Bids)),
		Asks:      make([]exchange.PriceLevel, 0, len(book.Asks)),
	}

	for _, b := range book.Bids {
		if limit > 0 && len(out.Bids) >= limit {
			break
		}

		out.Bids = append(out.Bids, exchange.PriceLevel{Price: dec(b.Price), Amount: dec(b.Size)})
	}

	for _, a := range book.Asks {
		if limit > 0 && len(out.Asks) >= limit {
			break
		}

		out.Asks = append(out.Asks, exchange.PriceLevel{Price: dec(a.Price), Amount: dec(a.Size)})
	}

	return out, nil
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

	granularity, ok := granularities[interval.Duration()]
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

	params := api.GetHistoricRatesParams{Granularity: granularity}

	if !since.IsZero() {
		params.Start = since
		params.End = since.Add(time.Duration(300) * interval.Duration())

		if limit > 0 {
			params.End = since.Add(time.Duration(limit) * interval.Duration())
		}
	}

	if err := o.wait(ctx, "candles"); err != nil {
		return nil, err
	}

	rates, err := o.api.GetHistoricRates(m.ID, params)
	if err != nil {
		return nil, wrap(err)
	}

	//
	// Rates come back newest first.
	//
	candles := make([]exchange.Candle, 0, len(rates))

	for i := len(rates) - 1; i >= 0; i-- {
		r := rates[i]

		candles = append(candles, exchange.Candle{
			Time:   r.Time,
			Open:   decimal.NewFromFloat(r.Open),
			High:   decimal.NewFromFloat(r.High),
			Low:    decimal.NewFromFloat(r.Low),
			Close:  decimal.NewFromFloat(r.Close),
			Volume: decimal.NewFromFloat(r.Volume),
		})
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

	if err := o.wait(ctx, "trades"); err != nil {
		return nil, err
	}

	//
	// Only the first page of the cursor is read.
	//
	var page []api.Trade

	cursor := o.api.ListTrades(m.ID)
	if err := cursor.NextPage(&page); err != nil {
		return nil, wrap(err)
	}

	trades := make([]exchange.Trade, 0, len(page))

	for _, t := range page {
		ts := exchange.Millis(t.Time.Time())
		if ts < exchange.Millis(since) {
			continue
		}

		trades = append(trades, exchange.Trade{
			ID:        fmt.Sprint(t.TradeID),
			Symbol:    m.Symbol,
			Timestamp: ts,
			Side:      t.Side,
			Price:     dec(t.Price),
			Amount:    dec(t.Size),
		})

		if limit > 0 && len(trades) >= limit {
			break
		}
	}

	return trades, nil
}

//
// fetchStatus is emulated with the time endpoint: a successful response means the exchange is up.
//
func (o *Client) fetchStatus(ctx context.Context, _ exchange.Args) (interface{}, error) {
	if err := o.wait(ctx, "time"); err != nil {
		return nil, err
	}

	status := "ok"
	if _, err := o.api.GetTime(); err != nil {
		o.sugar.Debugw("time check failed", "error", err)

		status = "maintenance"
	}

	return map[string]interface{}{
		"status":  status,
		"updated": exchange.Millis(time.Now()),
	}, nil
}

func (o *Client) fetchTime(ctx context.Context, _ exchange.Args) (interface{}, error) {
	if err := o.wait(ctx, "time"); err != nil {
		return nil, err
	}

	t, err := o.api.GetTime()
	if err != nil {
		return nil, wrap(err)
	}

	return int64(t.Epoch * 1000), nil
}

//
// Trading.
//

func (o *Client) createOrder(ctx context.Context, args exchange.Args) (interface{}, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	side := strings.ToLower(args.String("side", ""))
	if side != "buy" && side != "sell" {
		return nil, fmt.Errorf("%w: side must be buy or sell (got %q)", exchange.ErrBadArgument, side)
	}

	amount, err := args.Decimal("amount")
	if err != nil {
		return nil, err
	}

	order := api.Order{
		Type:      strings.ToLower(args.String("type", "limit")),
		Side:      side,
		ProductID: m.ID,
		Size:      amount.String(),
	}

	if order.Type != "market" {
		price, err := args.Decimal("price")
		if err != nil {
			return nil, err
		}

		order.Price = price.String()
	}

	if err := o.private(ctx, "orders"); err != nil {
		return nil, err
	}

	created, err := o.api.CreateOrder(&order)
	if err != nil {
		return nil, wrap(err)
	}

	return created, nil
}

func (o *Client) cancelOrder(ctx context.Context, args exchange.Args) (interface{}, error) {
	id, err := args.Require("id")
	if err != nil {
		return nil, err
	}

	if err := o.private(ctx, "orders"); err != nil {
		return nil, err
	}

	if err := o.api.CancelOrder(id); err != nil {
		return nil, wrap(err)
	}

	return map[string]string{"id": id, "status": "canceled"}, nil
}

func (o *Client) cancelAllOrders(ctx context.Context, args exchange.Args) (interface{}, error) {
	var params api.CancelAllOrdersParams

	if args.String("symbol", "") != "" {
		m, err := o.market(args)
		if err != nil {
			return nil, err
		}

		params.ProductID = m.ID
	}

	if err := o.private(ctx, "orders"); err != nil {
		return nil, err
	}

	ids, err := o.api.CancelAllOrders(params)
	if err != nil {
		return nil, wrap(err)
	}

	return ids, nil
}

func (o *Client) fetchOrder(ctx context.Context, args exchange.Args) (interface{}, error) {
	id, err := args.Require("id")
	if err != nil {
		return nil, err
	}

	if err := o.private(ctx, "orders"); err != nil {
		return nil, err
	}

	order, err := o.api.GetOrder(id)
	if err != nil {
		return nil, wrap(err)
	}

	return order, nil
}

//
// ordersWithStatus builds an order listing endpoint for one status. Only the first page of the
// cursor is read.
//
func (o *Client) ordersWithStatus(status string) exchange.CallFunc {
	return func(ctx context.Context, args exchange.Args) (interface{}, error) {
		params := api.ListOrdersParams{Status: status}

		if args.String("symbol", "") != "" {
			m, err := o.market(args)
			if err != nil {
				return nil, err
			}

			params.ProductID = m.ID
		}

		limit, err := args.Int("limit", 0)
		if err != nil {
			return nil, err
		}

		if err := o.private(ctx, "orders"); err != nil {
			return nil, err
		}

		var orders []api.Order

		cursor := o.api.ListOrders(params)
		if err := cursor.NextPage(&orders); err != nil {
			return nil, wrap(err)
		}

		if limit > 0 && len(orders) > limit {
			orders = orders[:limit]
		}

		return orders, nil
	}
}

//
// Account.
//

func (o *Client) fetchBalance(ctx context.Context, _ exchange.Args) (interface{}, error) {
	if err := o.private(ctx, "accounts"); err != nil {
		return nil, err
	}

	accounts, err := o.api.GetAccounts()
	if err != nil {
		return nil, wrap(err)
	}

	type balance struct {
		Free  decimal.Decimal `json:"free"`
		Used  decimal.Decimal `json:"used"`
		Total decimal.Decimal `json:"total"`
	}

	out := make(map[string]balance, len(accounts))

	for _, a := range accounts {
		out[a.Currency] = balance{Free: dec(a.Available), Used: dec(a.Hold), Total: dec(a.Balance)}
	}

	return out, nil
}

func (o *Client) fetchMyTrades(ctx context.Context, args exchange.Args) (interface{}, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	limit, err := args.Int("limit", 0)
	if err != nil {
		return nil, err
	}

	if err := o.private(ctx, "fills"); err != nil {
		return nil, err
	}

	var fills []api.Fill

	cursor := o.api.ListFills(api.ListFillsParams{ProductID: m.ID})
	if err := cursor.NextPage(&fills); err != nil {
		return nil, wrap(err)
	}

	if limit > 0 && len(fills) > limit {
		fills = fills[:limit]
	}

	return fills, nil
}

// NOTE ~> The library types some numeric fields as strings and others as custom string types, so
//  everything goes through fmt first.
func dec(v interface{}) decimal.Decimal {
	d, err := decimal.NewFromString(fmt.Sprint(v))
	if err != nil {
		return decimal.Zero
	}

	return d
}
