package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	api "github.com/adshao/go-binance/v2"
	"github.com/lukehollenback/exprobe/exchange"
	"github.com/shopspring/decimal"
)

var has = exchange.Has{
	"CORS":   false,
	"spot":   true,
	"margin": false,
	"swap":   false,
	"future": false,
	"option": false,

	"fetchMarkets":    true,
	"fetchCurrencies": false,
	"fetchTicker":     true,
	"fetchTickers":    true,
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
	"fetchClosedOrders": exchange.Emulated,

	"fetchBalance":        true,
	"fetchMyTrades":       true,
	"fetchLedger":         false,
	"fetchTransactions":   false,
	"fetchDeposits":       true,
	"fetchWithdrawals":    true,
	"fetchDepositAddress": false,

	"fetchPositions":      false,
	"fetchFundingRate":    false,
	"fetchFundingHistory": false,
	"fetchBorrowRate":     false,
	"fetchTradingFee":     false,
	"fetchTradingFees":    false,

	"ws":             true,
	"watchTicker":    true,
	"watchTickers":   false,
	"watchOrderBook": true,
	"watchTrades":    true,
	"watchOHLCV":     false,
	"watchBalance":   false,
	"watchOrders":    false,
}

func (o *Client) endpoints() *exchange.Registry {
	return exchange.NewRegistry(map[string]exchange.CallFunc{
		"fetchMarkets":   o.fetchMarkets,
		"fetchTicker":    o.fetchTicker,
		"fetchTickers":   o.fetchTickers,
		"fetchOrderBook": o.fetchOrderBook,
		"fetchOHLCV":     o.fetchOHLCV,
		"fetchTrades":    o.fetchTrades,
		"fetchStatus":    o.fetchStatus,
		"fetchTime":      o.fetchTime,

		"createOrder":       o.createOrder,
		"cancelOrder":       o.cancelOrder,
		"cancelAllOrders":   o.cancelAllOrders,
		"fetchOrder":        o.fetchOrder,
		"fetchOrders":       o.fetchOrders,
		"fetchOpenOrders":   o.fetchOpenOrders,
		"fetchClosedOrders": o.fetchClosedOrders,

		"fetchBalance":     o.fetchBalance,
		"fetchMyTrades":    o.fetchMyTrades,
		"fetchDeposits":    o.fetchDeposits,
		"fetchWithdrawals": o.fetchWithdrawals,

		"watchTicker":    o.watchTicker,
		"watchOrderBook": o.watchOrderBook,
		"watchTrades":    o.watchTrades,
	})
}

func fallbackID(base, quote string) string {
	return base + quote
}

//
// market resolves the "symbol" argument into a Binance market.
//
func (o *Client) market(args exchange.Args) (exchange.Market, error) {
	symbol, err := args.Require("symbol")
	if err != nil {
		return exchange.Market{}, err
	}

	return o.Market(symbol, fallbackID)
}

//
// private checks for credentials and waits for the rate limiter.
//
func (o *Client) private(ctx context.Context, call string) error {
	if !o.authenticated() {
		return fmt.Errorf("%s: %w", call, exchange.ErrAuthRequired)
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

func (o *Client) fetchTicker(ctx context.Context, args exchange.Args) (interface{}, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	if err := o.wait(ctx, "ticker/24hr"); err != nil {
		return nil, err
	}

	stats, err := o.api.NewListPriceChangeStatsService().Symbol(m.ID).Do(ctx)
	if err != nil {
		return nil, wrap(err)
	}

	if len(stats) == 0 {
		return nil, fmt.Errorf("%w: %s", exchange.ErrUnknownSymbol, m.Symbol)
	}

	return parseTicker(m.Symbol, stats[0]), nil
}

func (o *Client) fetchTickers(ctx context.Context, args exchange.Args) (interface{}, error) {
	var stats []*api.PriceChangeStats

	symbols := args.List("symbols")

	if len(symbols) == 0 {
		if err := o.wait(ctx, "ticker/24hr"); err != nil {
			return nil, err
		}

		all, err := o.api.NewListPriceChangeStatsService().Do(ctx)
		if err != nil {
			return nil, wrap(err)
		}

		stats = all
	}

	for _, s := range symbols {
		m, err := o.Market(s, fallbackID)
		if err != nil {
			return nil, err
		}

		if err := o.wait(ctx, "ticker/24hr"); err != nil {
			return nil, err
		}

		one, err := o.api.NewListPriceChangeStatsService().Symbol(m.ID).Do(ctx)
		if err != nil {
			return nil, wrap(err)
		}

		stats = append(stats, one...)
	}

	out := make(map[string]exchange.Ticker, len(stats))

	for _, s := range stats {
		symbol := o.SymbolOf(s.Symbol)
		out[symbol] = parseTicker(symbol, s)
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

	if err := o.wait(ctx, "depth"); err != nil {
		return nil, err
	}

	svc := o.api.NewDepthService().Symbol(m.ID)
	if limit > 0 {
		svc = svc.Limit(limit)
	}

	depth, err := svc.Do(ctx)
	if err != nil {
		return nil, wrap(err)
	}

	book := exchange.OrderBook{
		Symbol:    m.Symbol,
		Timestamp: exchange.Millis(time.Now()),
		Bids:      make([]exchange.PriceLevel, 0, len(depth.Bids)),
		Asks:      make([]exchange.PriceLevel, 0, len(depth.Asks)),
	}

	for _, b := range depth.Bids {
		book.Bids = append(book.Bids, exchange.PriceLevel{Price: dec(b.Price), Amount: dec(b.Quantity)})
	}

	for _, a := range depth.Asks {
		book.Asks = append(book.Asks, exchange.PriceLevel{Price: dec(a.Price), Amount: dec(a.Quantity)})
	}

	return book, nil
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

	since, err := args.Time("since")
	if err != nil {
		return nil, err
	}

	limit, err := args.Int("limit", 0)
	if err != nil {
		return nil, err
	}

	if err := o.wait(ctx, "klines"); err != nil {
		return nil, err
	}

	svc := o.api.NewKlinesService().Symbol(m.ID).Interval(interval.String())
	if !since.IsZero() {
		svc = svc.StartTime(exchange.Millis(since))
	}

	if limit > 0 {
		svc = svc.Limit(limit)
	}

	klines, err := svc.Do(ctx)
	if err != nil {
		return nil, wrap(err)
	}

	candles := make([]exchange.Candle, 0, len(klines))

	for _, k := range klines {
		c, err := exchange.NewCandleFromStrings(time.UnixMilli(k.OpenTime), k.Open, k.High, k.Low, k.Close, k.Volume)
		if err != nil {
			return nil, err
		}

		candles = append(candles, c)
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

	svc := o.api.NewRecentTradesService().Symbol(m.ID)
	if limit > 0 {
		svc = svc.Limit(limit)
	}

	recent, err := svc.Do(ctx)
	if err != nil {
		return nil, wrap(err)
	}

	trades := make([]exchange.Trade, 0, len(recent))

	for _, t := range recent {
		if t.Time < exchange.Millis(since) {
			continue
		}

		trades = append(trades, exchange.Trade{
			ID:        strconv.FormatInt(t.ID, 10),
			Symbol:    m.Symbol,
			Timestamp: t.Time,
			Side:      takerSide(t.IsBuyerMaker),
			Price:     dec(t.Price),
			Amount:    dec(t.Quantity),
		})
	}

	return trades, nil
}

//
// fetchStatus is emulated with the connectivity check: a successful ping means the exchange is up.
//
func (o *Client) fetchStatus(ctx context.Context, _ exchange.Args) (interface{}, error) {
	if err := o.wait(ctx, "ping"); err != nil {
		return nil, err
	}

	status := "ok"
	if err := o.api.NewPingService().Do(ctx); err != nil {
		o.sugar.Debugw("ping failed", "error", err)

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

	t, err := o.api.NewServerTimeService().Do(ctx)
	if err != nil {
		return nil, wrap(err)
	}

	return t, nil
}

//
// Trading.
//

func (o *Client) createOrder(ctx context.Context, args exchange.Args) (interface{}, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	side := api.SideType(strings.ToUpper(args.String("side", "")))
	if side != api.SideTypeBuy && side != api.SideTypeSell {
		return nil, fmt.Errorf("%w: side must be buy or sell (got %q)", exchange.ErrBadArgument, args.String("side", ""))
	}

	amount, err := args.Decimal("amount")
	if err != nil {
		return nil, err
	}

	orderType := api.OrderType(strings.ToUpper(args.String("type", "limit")))

	svc := o.api.NewCreateOrderService().
		Symbol(m.ID).
		Side(side).
		Type(orderType).
		Quantity(amount.String())

	if orderType != api.OrderTypeMarket {
		price, err := args.Decimal("price")
		if err != nil {
			return nil, err
		}

		svc = svc.TimeInForce(api.TimeInForceTypeGTC).Price(price.String())
	}

	if err := o.private(ctx, "order"); err != nil {
		return nil, err
	}

	resp, err := svc.Do(ctx)
	if err != nil {
		return nil, wrap(err)
	}

	return resp, nil
}

//
// orderRef resolves the "id" and "symbol" arguments shared by the single-order endpoints.
//
func (o *Client) orderRef(args exchange.Args) (int64, exchange.Market, error) {
	raw, err := args.Require("id")
	if err != nil {
		return 0, exchange.Market{}, err
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, exchange.Market{}, fmt.Errorf("%w: order id must be numeric (got %q)", exchange.ErrBadArgument, raw)
	}

	m, err := o.market(args)

	return id, m, err
}

func (o *Client) cancelOrder(ctx context.Context, args exchange.Args) (interface{}, error) {
	id, m, err := o.orderRef(args)
	if err != nil {
		return nil, err
	}

	if err := o.private(ctx, "order"); err != nil {
		return nil, err
	}

	resp, err := o.api.NewCancelOrderService().Symbol(m.ID).OrderID(id).Do(ctx)
	if err != nil {
		return nil, wrap(err)
	}

	return resp, nil
}

func (o *Client) cancelAllOrders(ctx context.Context, args exchange.Args) (interface{}, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	if err := o.private(ctx, "openOrders"); err != nil {
		return nil, err
	}

	resp, err := o.api.NewCancelOpenOrdersService().Symbol(m.ID).Do(ctx)
	if err != nil {
		return nil, wrap(err)
	}

	return resp, nil
}

func (o *Client) fetchOrder(ctx context.Context, args exchange.Args) (interface{}, error) {
	id, m, err := o.orderRef(args)
	if err != nil {
		return nil, err
	}

	if err := o.private(ctx, "order"); err != nil {
		return nil, err
	}

	order, err := o.api.NewGetOrderService().Symbol(m.ID).OrderID(id).Do(ctx)
	if err != nil {
		return nil, wrap(err)
	}

	return order, nil
}

func (o *Client) fetchOpenOrders(ctx context.Context, args exchange.Args) (interface{}, error) {
	svc := o.api.NewListOpenOrdersService()

	if args.String("symbol", "") != "" {
		m, err := o.market(args)
		if err != nil {
			return nil, err
		}

		svc = svc.Symbol(m.ID)
	}

	if err := o.private(ctx, "openOrders"); err != nil {
		return nil, err
	}

	orders, err := svc.Do(ctx)
	if err != nil {
		return nil, wrap(err)
	}

	return orders, nil
}

func (o *Client) fetchOrders(ctx context.Context, args exchange.Args) (interface{}, error) {
	orders, err := o.listOrders(ctx, args)
	if err != nil {
		return nil, err
	}

	return orders, nil
}

//
// fetchClosedOrders is emulated by filtering every order of the market down to the finished ones.
//
func (o *Client) fetchClosedOrders(ctx context.Context, args exchange.Args) (interface{}, error) {
	orders, err := o.listOrders(ctx, args)
	if err != nil {
		return nil, err
	}

	closed := make([]*api.Order, 0, len(orders))

	for _, order := range orders {
		if order.Status != api.OrderStatusTypeNew && order.Status != api.OrderStatusTypePartiallyFilled {
			closed = append(closed, order)
		}
	}

	return closed, nil
}

func (o *Client) listOrders(ctx context.Context, args exchange.Args) ([]*api.Order, error) {
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

	svc := o.api.NewListOrdersService().Symbol(m.ID)
	if !since.IsZero() {
		svc = svc.StartTime(exchange.Millis(since))
	}

	if limit > 0 {
		svc = svc.Limit(limit)
	}

	if err := o.private(ctx, "allOrders"); err != nil {
		return nil, err
	}

	orders, err := svc.Do(ctx)
	if err != nil {
		return nil, wrap(err)
	}

	return orders, nil
}

//
// Account.
//

//
// fetchBalance reports the free, locked, and total amount of every asset with a non-zero total.
//
func (o *Client) fetchBalance(ctx context.Context, _ exchange.Args) (interface{}, error) {
	if err := o.private(ctx, "account"); err != nil {
		return nil, err
	}

	account, err := o.api.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, wrap(err)
	}

	type balance struct {
		Free  decimal.Decimal `json:"free"`
		Used  decimal.Decimal `json:"used"`
		Total decimal.Decimal `json:"total"`
	}

	out := make(map[string]balance)

	for _, b := range account.Balances {
		free, locked := dec(b.Free), dec(b.Locked)

		if total := free.Add(locked); !total.IsZero() {
			out[b.Asset] = balance{Free: free, Used: locked, Total: total}
		}
	}

	return out, nil
}

func (o *Client) fetchMyTrades(ctx context.Context, args exchange.Args) (interface{}, error) {
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

	svc := o.api.NewListTradesService().Symbol(m.ID)
	if !since.IsZero() {
		svc = svc.StartTime(exchange.Millis(since))
	}

	if limit > 0 {
		svc = svc.Limit(limit)
	}

	if err := o.private(ctx, "myTrades"); err != nil {
		return nil, err
	}

	trades, err := svc.Do(ctx)
	if err != nil {
		return nil, wrap(err)
	}

	return trades, nil
}

func (o *Client) fetchDeposits(ctx context.Context, args exchange.Args) (interface{}, error) {
	since, err := args.Time("since")
	if err != nil {
		return nil, err
	}

	svc := o.api.NewListDepositsService()

	if code := args.String("code", ""); code != "" {
		svc = svc.Coin(strings.ToUpper(code))
	}

	if !since.IsZero() {
		svc = svc.StartTime(exchange.Millis(since))
	}

	if err := o.private(ctx, "capital/deposit/hisrec"); err != nil {
		return nil, err
	}

	deposits, err := svc.Do(ctx)
	if err != nil {
		return nil, wrap(err)
	}

	return deposits, nil
}

func (o *Client) fetchWithdrawals(ctx context.Context, args exchange.Args) (interface{}, error) {
	since, err := args.Time("since")
	if err != nil {
		return nil, err
	}

	svc := o.api.NewListWithdrawsService()

	if code := args.String("code", ""); code != "" {
		svc = svc.Coin(strings.ToUpper(code))
	}

	if !since.IsZero() {
		svc = svc.StartTime(exchange.Millis(since))
	}

	if err := o.private(ctx, "capital/withdraw/history"); err != nil {
		return nil, err
	}

	withdrawals, err := svc.Do(ctx)
	if err != nil {
		return nil, wrap(err)
	}

	return withdrawals, nil
}

//
// Helpers.
//

func parseTicker(symbol string, s *api.PriceChangeStats) exchange.Ticker {
	return exchange.Ticker{
		Symbol:    symbol,
		Timestamp: s.CloseTime,
		Bid:       dec(s.BidPrice),
		Ask:       dec(s.AskPrice),
		Last:      dec(s.LastPrice),
		Open:      dec(s.OpenPrice),
		High:      dec(s.HighPrice),
		Low:       dec(s.LowPrice),
		VWAP:      dec(s.WeightedAvgPrice),
		Volume:    dec(s.Volume),
	}
}

// NOTE ~> Binance flags whether the buyer was the maker. The taker is the side that moved the book.
func takerSide(buyerMaker bool) string {
	if buyerMaker {
		return "sell"
	}

	return "buy"
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}

	return d
}
