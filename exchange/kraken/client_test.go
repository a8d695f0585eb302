package kraken

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/lukehollenback/exprobe/exchange"
	"github.com/shopspring/decimal"
)

const (
	assetPairs = `{"error":[],"result":{
		"XXBTZUSD":{"altname":"XBTUSD","wsname":"XBT/USD","base":"XXBT","quote":"ZUSD","status":"online"},
		"XETHZUSD":{"altname":"ETHUSD","wsname":"ETH/USD","base":"XETH","quote":"ZUSD","status":"online"},
		"XDGUSD":{"altname":"XDGUSD","wsname":"XDG/USD","base":"XXDG","quote":"ZUSD","status":"cancel_only"}}}`

	ticker = `{"error":[],"result":{"XXBTZUSD":{"a":["30300.10000","1","1.000"],"b":["30300.00000","1","1.000"],
		"c":["30303.20000","0.00067643"],"v":["4083.67001100","4412.73601799"],"p":["30706.77771","30689.13205"],
		"t":[34619,38907],"l":["29868.30000","29868.30000"],"h":["31631.00000","31631.00000"],"o":"30502.80000"}}}`

	ohlc = `{"error":[],"result":{"XXBTZUSD":[
		[1688671200,"30306.1","30306.2","30305.7","30305.7","30306.1","3.39243896",23],
		[1688671260,"30304.5","30304.5","30300.0","30300.0","30300.0","4.42996871",18],
		[1688671320,"30300.3","30300.4","30291.4","30291.4","30294.7","2.13024789",25]],"last":1688672160}}`
)

//
// newTestServer stands in for the Kraken REST API and websocket feed.
//
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	upgrader := ws.Upgrader{}

	mux := http.NewServeMux()

	mux.HandleFunc("/0/public/AssetPairs", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(assetPairs))
	})

	mux.HandleFunc("/0/public/Ticker", func(w http.ResponseWriter, r *http.Request) {
		if pair := r.URL.Query().Get("pair"); pair != "XXBTZUSD" && pair != "XBTUSD" {
			_, _ = w.Write([]byte(`{"error":["EQuery:Unknown asset pair"]}`))
			return
		}

		_, _ = w.Write([]byte(ticker))
	})

	mux.HandleFunc("/0/public/OHLC", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") != "60" {
			t.Errorf("Expected a 60 minute interval but got %q.", r.URL.Query().Get("interval"))
		}

		_, _ = w.Write([]byte(ohlc))
	})

	mux.HandleFunc("/0/public/Time", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":[],"result":{"unixtime":1688669448,"rfc1123":"Thu, 06 Jul 23 18:50:48 +0000"}}`))
	})

	mux.HandleFunc("/0/public/SystemStatus", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`maintenance`))
	})

	mux.HandleFunc("/0/private/Balance", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get(APIKeyHeader) != "key" || r.Header.Get(APISignHeader) == "" {
			_, _ = w.Write([]byte(`{"error":["EAPI:Invalid key"]}`))
			return
		}

		_ = r.ParseForm()
		if r.PostForm.Get("nonce") == "" {
			_, _ = w.Write([]byte(`{"error":["EAPI:Invalid nonce"]}`))
			return
		}

		_, _ = w.Write([]byte(`{"error":[],"result":{"XXBT":"0.5","ZUSD":"171288.6158","XXDG":"12"}}`))
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var sub map[string]interface{}
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}

		frames := []string{
			`{"event":"systemStatus","status":"online"}`,
			`{"event":"heartbeat"}`,
			`[340,[["30300.1","0.1","1688671200.1","b","l",""],["30300.2","0.2","1688671201.1","s","m",""]],"trade","XBT/USD"]`,
			`[340,[["30300.3","0.3","1688671202.1","b","l",""]],"trade","XBT/USD"]`,
		}

		for _, f := range frames {
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

func TestLoadMarketsUnifiesSymbols(t *testing.T) {
	c := newTestClient(t, newTestServer(t), "", "")

	if err := c.LoadMarkets(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	symbols := c.Symbols()
	want := []string{"BTC/USD", "DOGE/USD", "ETH/USD"}

	if strings.Join(symbols, ",") != strings.Join(want, ",") {
		t.Errorf("Expected symbols %v but got %v.", want, symbols)
	}

	m, err := c.Market("btc/usd", nil)
	if err != nil || m.ID != "XXBTZUSD" {
		t.Errorf("Expected BTC/USD to map to XXBTZUSD, got (%+v, %v).", m, err)
	}
}

func TestFetchTicker(t *testing.T) {
	c := newTestClient(t, newTestServer(t), "", "")

	v, err := call(t, c, "fetchTicker", []interface{}{"BTC/USD"}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	tk := v.(exchange.Ticker)
	if tk.Symbol != "BTC/USD" || tk.Last.String() != "30303.2" || tk.Open.String() != "30502.8" || tk.Volume.String() != "4412.73601799" {
		t.Errorf("Unexpected ticker %+v.", tk)
	}
}

func TestFetchTickerAPIError(t *testing.T) {
	c := newTestClient(t, newTestServer(t), "", "")

	_, err := call(t, c, "fetchTicker", []interface{}{"ETH/EUR"}, nil)

	var apiErr exchange.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected an API error but got %v.", err)
	}

	if apiErr.Code() != "EQuery" || apiErr.Message() != "Unknown asset pair" {
		t.Errorf("Unexpected API error (code: %s, message: %s).", apiErr.Code(), apiErr.Message())
	}
}

func TestFetchOHLCVKeepsMostRecent(t *testing.T) {
	c := newTestClient(t, newTestServer(t), "", "")

	v, err := call(t, c, "fetchOHLCV", []interface{}{"BTC/USD", nil, 2}, map[string]interface{}{"timeframe": "1h"})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	candles := v.([]exchange.Candle)
	if len(candles) != 2 {
		t.Fatalf("Expected 2 candles but got %d.", len(candles))
	}

	if candles[1].Time.Unix() != 1688671320 || candles[1].Close.String() != "30291.4" {
		t.Errorf("Unexpected last candle %+v.", candles[1])
	}

	if _, err := call(t, c, "fetchOHLCV", []interface{}{"BTC/USD"}, map[string]interface{}{"timeframe": "3m"}); !errors.Is(err, exchange.ErrBadArgument) {
		t.Errorf("An unserved timeframe should fail with ErrBadArgument, got %v.", err)
	}
}

func TestFetchTime(t *testing.T) {
	c := newTestClient(t, newTestServer(t), "", "")

	v, err := call(t, c, "fetchTime", nil, nil)
	if err != nil || v != int64(1688669448000) {
		t.Errorf("Expected 1688669448000 but got (%v, %v).", v, err)
	}
}

func TestHTTPError(t *testing.T) {
	c := newTestClient(t, newTestServer(t), "", "")

	_, err := call(t, c, "fetchStatus", nil, nil)

	var httpErr *exchange.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode() != http.StatusServiceUnavailable {
		t.Errorf("Expected a 503 HTTP error but got %v.", err)
	}
}

func TestPrivateEndpoints(t *testing.T) {
	srv := newTestServer(t)

	anonymous := newTestClient(t, srv, "", "")
	if _, err := call(t, anonymous, "fetchBalance", nil, nil); !errors.Is(err, exchange.ErrAuthRequired) {
		t.Errorf("A private endpoint without credentials should fail with ErrAuthRequired, got %v.", err)
	}

	authed := newTestClient(t, srv, "key", "c2VjcmV0")

	v, err := call(t, authed, "fetchBalance", nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	balance := v.(map[string]decimal.Decimal)

	for code, want := range map[string]string{"BTC": "0.5", "USD": "171288.6158", "DOGE": "12"} {
		if got := balance[code]; got.String() != want {
			t.Errorf("Expected %s balance %s but got %s.", code, want, got)
		}
	}
}

func TestClearCredentials(t *testing.T) {
	c := newTestClient(t, newTestServer(t), "key", "c2VjcmV0")
	c.ClearCredentials()

	if c.apiKey != "" || c.apiSecret != "" {
		t.Errorf("Credentials should be empty after ClearCredentials().")
	}

	if _, err := call(t, c, "fetchBalance", nil, nil); !errors.Is(err, exchange.ErrAuthRequired) {
		t.Errorf("A cleared client should no longer sign requests, got %v.", err)
	}
}

func TestSign(t *testing.T) {
	params := url.Values{
		"nonce":     {"1616492376594"},
		"ordertype": {"limit"},
		"pair":      {"XBTUSD"},
		"price":     {"37500"},
		"type":      {"buy"},
		"volume":    {"1.25"},
	}

	got, err := sign(
		"/0/private/AddOrder",
		params,
		"kQH5HW/8p1uGOVjbgWA7FunAmGO8lsSUXNsu3eow76sz84Q18fWxnyRzBHCd3pd5nE9qa99HAZtuZuj6F1huXg==",
	)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if want := "4/dpxb3iT4tp/ZCVEwSnEsLxx0bqyhLpdfOpc6fn7OR8+UClSV5n9E6aSS8MPtnRfp32bAb0nmbRn6H8ndwLUQ=="; got != want {
		t.Errorf("Expected signature %s but got %s.", want, got)
	}

	if _, err := sign("/0/private/Balance", params, "not base64!"); !errors.Is(err, exchange.ErrBadArgument) {
		t.Errorf("A non-base64 secret should fail with ErrBadArgument, got %v.", err)
	}
}

func TestWatchTrades(t *testing.T) {
	c := newTestClient(t, newTestServer(t), "", "")

	v, err := call(t, c, "watchTrades", []interface{}{"BTC/USD", nil, 2}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	trades := v.([]exchange.Trade)
	if len(trades) != 2 {
		t.Fatalf("Expected 2 trades but got %d.", len(trades))
	}

	if trades[0].Side != "sell" || trades[1].Price.String() != "30300.3" {
		t.Errorf("Unexpected trades %+v.", trades)
	}
}

func TestSandboxUnavailable(t *testing.T) {
	if _, err := New(exchange.Config{Sandbox: true}); !errors.Is(err, exchange.ErrNotSupported) {
		t.Errorf("Requesting a sandbox should fail with ErrNotSupported, got %v.", err)
	}
}
