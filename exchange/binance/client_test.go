package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/lukehollenback/exprobe/exchange"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	upgrader := ws.Upgrader{}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v3/exchangeInfo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"timezone":"UTC","serverTime":1700000000000,"symbols":[
			{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT"},
			{"symbol":"ETHBTC","status":"BREAK","baseAsset":"ETH","quoteAsset":"BTC"}]}`))
	})

	mux.HandleFunc("/api/v3/ticker/24hr", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "BTCUSDT" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
			return
		}

		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","priceChange":"-94.99999800","priceChangePercent":"-95.960",
			"weightedAvgPrice":"0.29628482","prevClosePrice":"0.10002000","lastPrice":"4.00000200","lastQty":"200.00000000",
			"bidPrice":"4.00000000","bidQty":"100.00000000","askPrice":"4.00000200","askQty":"100.00000000",
			"openPrice":"99.00000000","highPrice":"100.00000000","lowPrice":"0.10000000","volume":"8913.30000000",
			"quoteVolume":"15.30000000","openTime":1499783499040,"closeTime":1499869899040,"firstId":28385,
			"lastId":28460,"count":76}`))
	})

	mux.HandleFunc("/api/v3/klines", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") != "15m" || r.URL.Query().Get("limit") != "2" {
			t.Errorf("Unexpected kline query %s.", r.URL.RawQuery)
		}

		_, _ = w.Write([]byte(`[
			[1499040000000,"0.01634790","0.80000000","0.01575800","0.01577100","148976.11427815",1499644799999,"2434.19055334",308,"1756.87402397","28.46694368","0"],
			[1499040900000,"0.01577100","0.01600000","0.01570000","0.01590000","1000.00000000",1499041799999,"15.9",12,"500","7.9","0"]]`))
	})

	mux.HandleFunc("/api/v3/time", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"serverTime":1499827319559}`))
	})

	mux.HandleFunc("/api/v3/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	mux.HandleFunc("/ws/btcusdt@trade", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, f := range []string{
			`{"e":"trade","E":1672515782136,"s":"BTCUSDT","t":12345,"p":"0.001","q":"100","T":1672515782136,"m":true}`,
			`{"e":"trade","E":1672515782137,"s":"BTCUSDT","t":12346,"p":"0.002","q":"50","T":1672515782137,"m":false}`,
		} {
			_ = conn.WriteMessage(ws.TextMessage, []byte(f))
		}

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server, key string, secret string) *Client {
	t.Helper()

	c, err := New(exchange.Config{
		APIKey:       key,
		Secret:       secret,
		BaseURL:      srv.URL,
		RateLimit:    time.Millisecond,
		StreamWindow: 300 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	return c.(*Client)
}

func call(t *testing.T, c *Client, name string, positional []interface{}, keyword map[string]interface{}) (interface{}, error) {
	t.Helper()

	e, ok := c.Endpoints().Get(name)
	if !ok {
		t.Fatalf("%s is not registered.", name)
	}

	return e.Invoke(context.Background(), positional, keyword)
}

func TestLoadMarkets(t *testing.T) {
	c := newTestClient(t, newTestServer(t), "", "")

	if err := c.LoadMarkets(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	markets := c.List()
	if len(markets) != 2 || markets[0].Symbol != "BTC/USDT" || !markets[0].Active || markets[1].Active {
		t.Errorf("Unexpected markets %+v.", markets)
	}
}

func TestFetchTicker(t *testing.T) {
	c := newTestClient(t, newTestServer(t), "", "")

	v, err := call(t, c, "fetchTicker", []interface{}{"BTC/USDT"}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	tk := v.(exchange.Ticker)
	if tk.Last.String() != "4.000002" || tk.Bid.String() != "4" || tk.Timestamp != 1499869899040 {
		t.Errorf("Unexpected ticker %+v.", tk)
	}
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, newTestServer(t), "", "")

	_, err := call(t, c, "fetchTicker", []interface{}{"FOO/BAR"}, nil)

	var apiErr exchange.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected an API error but got %v.", err)
	}

	if apiErr.Code() != "-1121" || apiErr.Message() != "Invalid symbol." {
		t.Errorf("Unexpected API error (code: %s, message: %s).", apiErr.Code(), apiErr.Message())
	}
}

func TestFetchOHLCV(t *testing.T) {
	c := newTestClient(t, newTestServer(t), "", "")

	v, err := call(t, c, "fetchOHLCV", []interface{}{"BTC/USDT", nil, 2}, map[string]interface{}{"timeframe": "15m"})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	candles := v.([]exchange.Candle)
	if len(candles) != 2 || candles[0].High.String() != "0.8" || candles[1].Time.UnixMilli() != 1499040900000 {
		t.Errorf("Unexpected candles %+v.", candles)
	}
}

func TestFetchTimeAndStatus(t *testing.T) {
	c := newTestClient(t, newTestServer(t), "", "")

	if v, err := call(t, c, "fetchTime", nil, nil); err != nil || v != int64(1499827319559) {
		t.Errorf("Expected 1499827319559 but got (%v, %v).", v, err)
	}

	v, err := call(t, c, "fetchStatus", nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if status := v.(map[string]interface{})["status"]; status != "ok" {
		t.Errorf("Expected status ok but got %v.", status)
	}
}

func TestPrivateEndpointsNeedCredentials(t *testing.T) {
	c := newTestClient(t, newTestServer(t), "", "")

	for _, name := range []string{"fetchBalance", "fetchOpenOrders", "fetchDeposits"} {
		if _, err := call(t, c, name, nil, nil); !errors.Is(err, exchange.ErrAuthRequired) {
			t.Errorf("%s without credentials should fail with ErrAuthRequired, got %v.", name, err)
		}
	}
}

func TestClearCredentials(t *testing.T) {
	c := newTestClient(t, newTestServer(t), "key", "secret")
	c.ClearCredentials()

	if c.api.APIKey != "" || c.api.SecretKey != "" {
		t.Errorf("Credentials should be empty after ClearCredentials().")
	}
}

func TestWatchTrades(t *testing.T) {
	c := newTestClient(t, newTestServer(t), "", "")

	v, err := call(t, c, "watchTrades", []interface{}{"BTC/USDT", nil, 5}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	trades := v.([]interface{})
	if len(trades) != 2 {
		t.Fatalf("Expected 2 trades but got %d.", len(trades))
	}

	first := trades[0].(exchange.Trade)
	if first.ID != "12345" || first.Side != "sell" {
		t.Errorf("Unexpected trade %+v.", first)
	}
}

func TestSandboxInfo(t *testing.T) {
	c, err := New(exchange.Config{Sandbox: true})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if info := c.Info(); !info.Sandbox || !info.HasSandbox {
		t.Errorf("Expected the sandbox to be reported, got %+v.", info)
	}

	if base := c.(*Client).api.BaseURL; base != TestnetBaseURL {
		t.Errorf("Expected the testnet base URL but got %s.", base)
	}
}
