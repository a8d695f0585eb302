package binance

import (
	"context"
	"strings"
	"time"

	"github.com/lukehollenback/exprobe/exchange"
	"github.com/lukehollenback/exprobe/exchange/stream"
	"github.com/tidwall/gjson"
)

//
// streamURL returns the raw stream URL of one channel of one market. Raw streams need no subscribe
// frame.
//
func (o *Client) streamURL(m exchange.Market, channel string) string {
	return o.wsURL + "/ws/" + strings.ToLower(m.ID) + "@" + channel
}

func (o *Client) watchTicker(ctx context.Context, args exchange.Args) (interface{}, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	limit, err := args.Int("limit", stream.DefaultLimit)
	if err != nil {
		return nil, err
	}

	return stream.Collect(ctx, stream.Spec{
		URL: o.streamURL(m, "ticker"),
		Decode: func(raw []byte) (interface{}, bool) {
			msg := gjson.ParseBytes(raw)
			if msg.Get("e").String() != "24hrTicker" {
				return nil, false
			}

			return exchange.Ticker{
				Symbol:    m.Symbol,
				Timestamp: msg.Get("E").Int(),
				Bid:       dec(msg.Get("b").String()),
				Ask:       dec(msg.Get("a").String()),
				Last:      dec(msg.Get("c").String()),
				Open:      dec(msg.Get("o").String()),
				High:      dec(msg.Get("h").String()),
				Low:       dec(msg.Get("l").String()),
				VWAP:      dec(msg.Get("w").String()),
				Volume:    dec(msg.Get("v").String()),
			}, true
		},
		Window: o.window,
		Limit:  limit,
		Logger: o.sugar,
	})
}

func (o *Client) watchTrades(ctx context.Context, args exchange.Args) (interface{}, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	since, err := args.Time("since")
	if err != nil {
		return nil, err
	}

	limit, err := args.Int("limit", stream.DefaultLimit)
	if err != nil {
		return nil, err
	}

	return stream.Collect(ctx, stream.Spec{
		URL: o.streamURL(m, "trade"),
		Decode: func(raw []byte) (interface{}, bool) {
			msg := gjson.ParseBytes(raw)
			if msg.Get("e").String() != "trade" || msg.Get("T").Int() < exchange.Millis(since) {
				return nil, false
			}

			return exchange.Trade{
				ID:        msg.Get("t").String(),
				Symbol:    m.Symbol,
				Timestamp: msg.Get("T").Int(),
				Side:      takerSide(msg.Get("m").Bool()),
				Price:     dec(msg.Get("p").String()),
				Amount:    dec(msg.Get("q").String()),
			}, true
		},
		Window: o.window,
		Limit:  limit,
		Logger: o.sugar,
	})
}

//
// watchOrderBook listens to the partial book stream and returns the latest snapshot. The stream
// only serves five, ten, or twenty levels, so the limit is rounded up to one of those.
//
func (o *Client) watchOrderBook(ctx context.Context, args exchange.Args) (interface{}, error) {
	m, err := o.market(args)
	if err != nil {
		return nil, err
	}

	limit, err := args.Int("limit", 0)
	if err != nil {
		return nil, err
	}

	levels := "20"

	switch {
	case limit > 0 && limit <= 5:
		levels = "5"
	case limit > 0 && limit <= 10:
		levels = "10"
	}

	snapshots, err := stream.Collect(ctx, stream.Spec{
		URL: o.streamURL(m, "depth"+levels),
		Decode: func(raw []byte) (interface{}, bool) {
			msg := gjson.ParseBytes(raw)
			if !msg.Get("lastUpdateId").Exists() {
				return nil, false
			}

			return exchange.OrderBook{
				Symbol:    m.Symbol,
				Timestamp: exchange.Millis(time.Now()),
				Bids:      levelsOf(msg.Get("bids"), limit),
				Asks:      levelsOf(msg.Get("asks"), limit),
			}, true
		},
		Window: o.window,
		Limit:  1,
		Logger: o.sugar,
	})
	if err != nil {
		return nil, err
	}

	if len(snapshots) == 0 {
		return nil, nil
	}

	return snapshots[0], nil
}

func levelsOf(rows gjson.Result, limit int) []exchange.PriceLevel {
	levels := make([]exchange.PriceLevel, 0)

	for _, row := range rows.Array() {
		if limit > 0 && len(levels) >= limit {
			break
		}

		levels = append(levels, exchange.PriceLevel{Price: dec(row.Get("0").String()), Amount: dec(row.Get("1").String())})
	}

	return levels
}
