package kraken

import (
	"context"
	"time"

	"github.com/lukehollenback/exprobe/exchange"
	"github.com/lukehollenback/exprobe/exchange/stream"
	"github.com/tidwall/gjson"
)

//
// subscription builds a websocket subscribe frame for one channel of one pair.
//
func subscription(channel string, m exchange.Market) map[string]interface{} {
	return map[string]interface{}{
		"event":        "subscribe",
		"pair":         []string{krakenCode(m.Base) + "/" + krakenCode(m.Quote)},
		"subscription": map[string]string{"name": channel},
	}
}

// NOTE ~> Channel messages are arrays of [channelID, payload, channelName, pair]. Everything else
//  (heartbeats, status and subscription events) is an object.
func channelPayload(raw []byte, channel string) (gjson.Result, bool) {
	msg := gjson.ParseBytes(raw)
	if !msg.IsArray() {
		return gjson.Result{}, false
	}

	fields := msg.Array()
	if len(fields) < 4 || fields[len(fields)-2].String() != channel {
		return gjson.Result{}, false
	}

	return fields[1], true
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
		Subscribe: subscription("ticker", m),
		Decode: func(raw []byte) (interface{}, bool) {
			payload, ok := channelPayload(raw, "ticker")
			if !ok {
				return nil, false
			}

			return parseTicker(m.Symbol, payload, time.Now()), true
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

	batches, err := stream.Collect(ctx, stream.Spec{
		URL:       o.wsURL,
		Subscribe: subscription("trade", m),
		Decode: func(raw []byte) (interface{}, bool) {
			payload, ok := channelPayload(raw, "trade")
			if !ok {
				return nil, false
			}

			return parseTrades(m.Symbol, payload), true
		},
		Window: o.window,
		Limit:  limit,
		Logger: o.sugar,
	})
	if err != nil {
		return nil, err
	}

	//
	// Flatten the batches and keep the most recent trades.
	//
	trades := make([]exchange.Trade, 0)

	for _, batch := range batches {
		for _, t := range batch.([]exchange.Trade) {
			if t.Timestamp >= exchange.Millis(since) {
				trades = append(trades, t)
			}
		}
	}

	if limit > 0 && len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}

	return trades, nil
}
