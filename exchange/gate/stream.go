package gate

import (
	"context"
	"time"

	"github.com/lukehollenback/exprobe/exchange"
	"github.com/lukehollenback/exprobe/exchange/stream"
	"github.com/tidwall/gjson"
)

func subscription(channel string, m exchange.Market) map[string]interface{} {
	return map[string]interface{}{
		"time":    time.Now().Unix(),
		"channel": channel,
		"event":   "subscribe",
		"payload": []string{m.ID},
	}
}

// NOTE ~> Channel updates look like {"channel": "spot.tickers", "event": "update", "result": {...}}.
//  Subscription acknowledgements share the channel but carry the "subscribe" event.
func update(raw []byte, channel string) (gjson.Result, bool) {
	msg := gjson.ParseBytes(raw)
	if msg.Get("channel").String() != channel || msg.Get("event").String() != "update" {
		return gjson.Result{}, false
	}

	return msg.Get("result"), true
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
		URL:       o.wsURL,
		Subscribe: subscription("spot.tickers", m),
		Decode: func(raw []byte) (interface{}, bool) {
			result, ok := update(raw, "spot.tickers")
			if !ok {
				return nil, false
			}

			return parseTicker(m.Symbol, result, time.Now()), true
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
		URL:       o.wsURL,
		Subscribe: subscription("spot.trades", m),
		Decode: func(raw []byte) (interface{}, bool) {
			result, ok := update(raw, "spot.trades")
			if !ok {
				return nil, false
			}

			t := parseTrade(m.Symbol, result)
			if t.Timestamp < exchange.Millis(since) {
				return nil, false
			}

			return t, true
		},
		Window: o.window,
		Limit:  limit,
		Logger: o.sugar,
	})
}
