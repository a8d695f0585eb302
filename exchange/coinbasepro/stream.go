package coinbasepro

import (
	"context"
	"encoding/json"

	"github.com/lukehollenback/exprobe/exchange"
	"github.com/lukehollenback/exprobe/exchange/stream"
	api "github.com/preichenberger/go-coinbasepro/v2"
	"github.com/tidwall/gjson"
)

//
// subscription builds a websocket subscribe frame for one channel of one product. The heartbeat
// channel rides along so that quiet products still show activity in the log.
//
func subscription(channel string, m exchange.Market) api.Message {
	return api.Message{
		Type: "subscribe",
		Channels: []api.MessageChannel{
			{Name: "heartbeat", ProductIds: []string{m.ID}},
			{Name: channel, ProductIds: []string{m.ID}},
		},
	}
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
			msg := gjson.ParseBytes(raw)
			if msg.Get("type").String() != "ticker" {
				return nil, false
			}

			return exchange.Ticker{
				Symbol:    m.Symbol,
				Timestamp: msg.Get("time").Time().UnixMilli(),
				Bid:       dec(msg.Get("best_bid").String()),
				Ask:       dec(msg.Get("best_ask").String()),
				Last:      dec(msg.Get("price").String()),
				Open:      dec(msg.Get("open_24h").String()),
				High:      dec(msg.Get("high_24h").String()),
				Low:       dec(msg.Get("low_24h").String()),
				Volume:    dec(msg.Get("volume_24h").String()),
			}, true
		},
		Window: o.window,
		Limit:  limit,
		Logger: o.sugar,
	})
}

//
// watchTrades listens to the matches channel. The first message replays the last match.
//
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
		Subscribe: subscription("matches", m),
		Decode: func(raw []byte) (interface{}, bool) {
			msg := api.Message{}

			if err := json.Unmarshal(raw, &msg); err != nil {
				return nil, false
			}

			if msg.Type != "match" && msg.Type != "last_match" {
				return nil, false
			}

			ts := exchange.Millis(msg.Time.Time())
			if ts < exchange.Millis(since) {
				return nil, false
			}

			return exchange.Trade{
				ID:        gjson.GetBytes(raw, "trade_id").String(),
				Symbol:    m.Symbol,
				Timestamp: ts,
				Side:      msg.Side,
				Price:     dec(msg.Price),
				Amount:    dec(msg.Size),
			}, true
		},
		Window: o.window,
		Limit:  limit,
		Logger: o.sugar,
	})
}
