package explorer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lukehollenback/exprobe/console"
	"github.com/lukehollenback/exprobe/exchange"
	"github.com/lukehollenback/exprobe/exchange/kraken"
	"github.com/lukehollenback/exprobe/session"
	"github.com/lukehollenback/exprobe/writer"
	"github.com/tidwall/gjson"
)

type fakeClient struct {
	cfg     exchange.Config
	cleared int
}

func (o *fakeClient) ID() string                            { return "fake" }
func (o *fakeClient) LoadMarkets(ctx context.Context) error { return nil }
func (o *fakeClient) Symbols() []string                     { return []string{"BTC/USD", "ETH/USD"} }

func (o *fakeClient) Info() exchange.Info {
	return exchange.Info{ID: "fake", Name: "Fake", APIVersion: "v0", RateLimit: time.Second}
}

func (o *fakeClient) Has() exchange.Has {
	return exchange.Has{
		"fetchTicker": true,
		"fetchTime":   true,
		"fetchOHLCV":  exchange.Emulated,
		"createOrder": false,
	}
}

func (o *fakeClient) Endpoints() *exchange.Registry {
	return exchange.NewRegistry(map[string]exchange.CallFunc{
		"fetchTime": func(ctx context.Context, args exchange.Args) (interface{}, error) {
			return int64(1688669448000), nil
		},
		"fetchTicker": func(ctx context.Context, args exchange.Args) (interface{}, error) {
			symbol, err := args.Require("symbol")
			if err != nil {
				return nil, err
			}

			return map[string]interface{}{"symbol": symbol, "last": "30303.2"}, nil
		},
		"fetchTrades": func(ctx context.Context, args exchange.Args) (interface{}, error) {
			var trades []exchange.Trade

			return trades, nil
		},
	})
}

func (o *fakeClient) ClearCredentials() {
	o.cleared++
	o.cfg.APIKey = ""
	o.cfg.Secret = ""
	o.cfg.Password = ""
}

type fixture struct {
	client   *fakeClient
	io       *console.BufferIO
	dir      string
	explorer *Explorer
}

func newFixture(t *testing.T, creds session.Credentials, inputs ...string) *fixture {
	t.Helper()

	f := &fixture{
		client: &fakeClient{},
		io:     console.NewBufferIO(inputs...),
		dir:    t.TempDir(),
	}

	dir := exchange.NewDirectory()
	dir.Register("fake", func(cfg exchange.Config) (exchange.Client, error) {
		f.client.cfg = cfg

		return f.client, nil
	})

	now := func() time.Time {
		return time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
	}

	f.explorer = New(Options{
		Directory:   dir,
		Session:     session.New(dir, session.Options{}),
		Writer:      writer.New(writer.Config{Dir: f.dir, Now: now}),
		IO:          f.io,
		Now:         now,
		Credentials: creds,
	})

	return f
}

func (o *fixture) files(t *testing.T, pattern string) []string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(o.dir, pattern))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	return matches
}

func (o *fixture) read(t *testing.T, path string) string {
	t.Helper()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	return string(b)
}

func TestGroupOf(t *testing.T) {
	tests := map[string]string{
		"fetchTicker":         groupMarketData,
		"fetchOHLCV":          groupMarketData,
		"fetchOrderBook":      groupMarketData,
		"createOrder":         groupTrading,
		"fetchOpenOrders":     groupTrading,
		"fetchBalance":        groupAccount,
		"fetchMyTrades":       groupAccount,
		"fetchTradingFees":    groupAccount,
		"fetchDepositAddress": groupAccount,
		"fetchTrades":         groupPublic,
		"fetchTime":           groupPublic,
		"watchOrderBook":      groupOther,
		"watchOrders":         groupOther,
		"customEndpoint":      groupOther,
	}

	for name, expected := range tests {
		if actual := groupOf(name); actual != expected {
			t.Errorf("Expected %s to be grouped under %q but got %q.", name, expected, actual)
		}
	}
}

func TestGroupCoversEveryEndpoint(t *testing.T) {
	r := exchange.NewRegistry(nil)
	groups := Group(r)

	total := 0
	for _, g := range groups {
		if len(g.Endpoints) == 0 {
			t.Errorf("Expected empty groups to be left out but got %q.", g.Category)
		}

		total += len(g.Endpoints)
	}

	if total != r.Len() {
		t.Errorf("Expected %d grouped endpoints but got %d.", r.Len(), total)
	}

	if groups[0].Category != groupMarketData {
		t.Errorf("Expected %q to come first but got %q.", groupMarketData, groups[0].Category)
	}
}

func TestRunCheckSupportedAndSave(t *testing.T) {
	f := newFixture(t, session.Credentials{}, "fake", "", "", "2", "y", "5")

	if err := f.explorer.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	out := f.io.Output()

	for _, expected := range []string{
		"✓ Successfully connected to fake",
		"Market Data Endpoints Support Status",
		"fetchTicker | ✓ Supported | Native implementation",
		"fetchOHLCV | ⚡ Emulated | Implemented via other methods",
		"Support Summary for fake",
		"Fully Supported | 1 | 2.7%",
		"Rate Limit | 1000 ms",
		"✅ Capability info saved to:",
		"File contains support status for 37 endpoints",
		"Goodbye!",
	} {
		if !strings.Contains(out, expected) {
			t.Errorf("Expected the output to contain %q.", expected)
		}
	}

	files := f.files(t, "exprobe_capabilities_fake_*.json")
	if len(files) != 1 {
		t.Fatalf("Expected one capabilities file but found %d.", len(files))
	}

	doc := f.read(t, files[0])

	if actual := gjson.Get(doc, "metadata.exchange").String(); actual != "fake" {
		t.Errorf("Expected the exchange to be recorded but got %q.", actual)
	}

	s := gjson.Get(doc, "metadata.summary")
	if s.Get("supported").Int()+s.Get("emulated").Int()+s.Get("not_supported").Int() != s.Get("total_checked").Int() {
		t.Errorf("Expected the summary counts to add up, got %s.", s.Raw)
	}

	if f.client.cleared == 0 {
		t.Errorf("Expected the session to be cleaned up on exit.")
	}
}

func TestRunListEndpointsAndSave(t *testing.T) {
	f := newFixture(t, session.Credentials{}, "fake", "", "", "1", "y", "5")

	if err := f.explorer.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	out := f.io.Output()

	if !strings.Contains(out, "Market Data Endpoints\nMethod | Description\n") {
		t.Errorf("Expected a market data listing.")
	}

	if !strings.Contains(out, "File contains 37 endpoints across 5 categories") {
		t.Errorf("Expected the saved endpoint totals to be reported.")
	}

	files := f.files(t, "exprobe_endpoints_fake_*.json")
	if len(files) != 1 {
		t.Fatalf("Expected one endpoints file but found %d.", len(files))
	}

	if actual := gjson.Get(f.read(t, files[0]), "total_endpoints").Int(); actual != 37 {
		t.Errorf("Expected 37 endpoints to be recorded but got %d.", actual)
	}
}

func TestRunSelectAndTestEndpoint(t *testing.T) {
	f := newFixture(t, session.Credentials{}, "fake", "", "", "3", "abc", "99", "25", "y", "5")

	if err := f.explorer.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	out := f.io.Output()

	for _, expected := range []string{
		"Available Endpoints with Support Status (Page 1 of 1)",
		"Invalid input. Please enter a number.",
		"Invalid endpoint number. Must be 1-37",
		"Testing endpoint: fetchTime",
		"Executing: fetchTime({})",
		"1688669448000",
		"✅ Response saved to:",
	} {
		if !strings.Contains(out, expected) {
			t.Errorf("Expected the output to contain %q.", expected)
		}
	}

	files := f.files(t, "exprobe_response_fake_fetchTime_*.json")
	if len(files) != 1 {
		t.Fatalf("Expected one response file but found %d.", len(files))
	}

	doc := f.read(t, files[0])

	if actual := gjson.Get(doc, "response").Int(); actual != 1688669448000 {
		t.Errorf("Expected the response to be saved but got %d.", actual)
	}

	if actual := gjson.Get(doc, "metadata.request_info.method").String(); actual != "fetchTime({})" {
		t.Errorf("Expected the request to be saved but got %q.", actual)
	}
}

func TestRunSelectEndpointBackOut(t *testing.T) {
	f := newFixture(t, session.Credentials{}, "fake", "", "", "3", "q", "5")

	if err := f.explorer.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if !strings.Contains(f.io.Output(), "Returning to main menu.") {
		t.Errorf("Expected to return to the main menu.")
	}
}

func TestRunUnknownExchangeReprompts(t *testing.T) {
	f := newFixture(t, session.Credentials{}, "nope", "FAKE", "", "", "5")

	if err := f.explorer.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if !strings.Contains(f.io.Output(), "Exchange 'nope' not found. Please try again.") {
		t.Errorf("Expected the unknown exchange to be rejected.")
	}

	if !strings.Contains(f.io.Output(), "✓ Successfully connected to fake") {
		t.Errorf("Expected the second attempt to connect.")
	}
}

func TestRunEndOfInput(t *testing.T) {
	f := newFixture(t, session.Credentials{}, "fake", "", "")

	if err := f.explorer.Run(context.Background()); err != nil {
		t.Fatalf("Expected running out of input to be a normal exit but got %s.", err)
	}

	if !strings.Contains(f.io.Output(), "Operation cancelled by user") {
		t.Errorf("Expected the cancellation to be reported.")
	}

	if f.client.cleared == 0 {
		t.Errorf("Expected the session to be cleaned up.")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newFixture(t, session.Credentials{}, "fake")

	if err := f.explorer.Run(ctx); err != nil {
		t.Fatalf("Expected cancellation to be a normal exit but got %s.", err)
	}
}

func TestCredentialsStayOutOfOutputAndFiles(t *testing.T) {
	creds := session.Credentials{APIKey: "visible-key", Secret: "hunter2-secret", Password: "pass-phrase"}

	f := newFixture(t, creds, "", "2", "y", "3", "25", "y", "5")

	if err := f.explorer.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if !strings.Contains(f.io.Output(), "Using the credentials provided") {
		t.Errorf("Expected the preset credentials to be used.")
	}

	docs := []string{f.io.Output()}
	for _, path := range f.files(t, "*.json") {
		docs = append(docs, f.read(t, path))
	}

	if len(docs) != 3 {
		t.Fatalf("Expected two saved files but found %d.", len(docs)-1)
	}

	for _, doc := range docs {
		for _, secret := range []string{creds.Secret, creds.Password} {
			if strings.Contains(doc, secret) {
				t.Errorf("Expected %q never to be printed or saved.", secret)
			}
		}
	}

	if f.client.cfg.APIKey != "" || f.client.cfg.Secret != "" {
		t.Errorf("Expected the client to have dropped its credentials.")
	}
}

func TestChangeExchangeReprompts(t *testing.T) {
	creds := session.Credentials{APIKey: "key", Secret: "secret"}

	f := newFixture(t, creds, "", "4", "fake", "", "", "5")

	if err := f.explorer.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	prompts := f.io.Prompts()

	found := false
	for _, p := range prompts {
		if p == "Enter Secret Key (optional)" {
			found = true
		}
	}

	if !found {
		t.Errorf("Expected credentials to be asked for after changing exchange, got %v.", prompts)
	}

	if f.client.cfg.APIKey != "" {
		t.Errorf("Expected the preset credentials to be forgotten after the first setup.")
	}
}

func TestRunOnce(t *testing.T) {
	f := newFixture(t, session.Credentials{})

	err := f.explorer.RunOnce(context.Background(), "fake", "fetchTicker", map[string]string{"symbol": "ETH/USD"}, true)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	out := f.io.Output()

	if !strings.Contains(out, "Executing: fetchTicker(ETH/USD, {})") {
		t.Errorf("Expected the override to be used, got:\n%s", out)
	}

	if !strings.Contains(out, "Response contains 2 keys") {
		t.Errorf("Expected the response to be summarized.")
	}

	if len(f.io.Prompts()) != 0 {
		t.Errorf("Expected no prompts but got %v.", f.io.Prompts())
	}

	files := f.files(t, "exprobe_response_fake_fetchTicker_*.json")
	if len(files) != 1 {
		t.Fatalf("Expected one response file but found %d.", len(files))
	}

	if actual := gjson.Get(f.read(t, files[0]), "response.symbol").String(); actual != "ETH/USD" {
		t.Errorf("Expected the response to be saved but got %q.", actual)
	}

	if f.client.cleared == 0 {
		t.Errorf("Expected the session to be cleaned up.")
	}
}

func TestRunOnceFailure(t *testing.T) {
	f := newFixture(t, session.Credentials{})

	err := f.explorer.RunOnce(context.Background(), "fake", "fetchBalance", nil, true)
	if !errors.Is(err, exchange.ErrNotSupported) {
		t.Fatalf("Expected %s but got %v.", exchange.ErrNotSupported, err)
	}

	if !strings.Contains(f.io.Output(), "Error executing fetchBalance:") {
		t.Errorf("Expected the failure to be reported.")
	}

	if len(f.files(t, "*.json")) != 0 {
		t.Errorf("Expected nothing to be saved for a failed call.")
	}
}

func TestRunOnceUnknownEndpoint(t *testing.T) {
	f := newFixture(t, session.Credentials{})

	err := f.explorer.RunOnce(context.Background(), "fake", "fetchNothing", nil, false)
	if !errors.Is(err, exchange.ErrBadArgument) {
		t.Fatalf("Expected %s but got %v.", exchange.ErrBadArgument, err)
	}
}

func TestDescribe(t *testing.T) {
	long := strings.Repeat("é", 70)

	if actual := describe(long); actual != strings.Repeat("é", 60)+"..." {
		t.Errorf("Expected the description to be cut at 60 characters but got %q.", actual)
	}

	if actual := describe("Retrieve one order"); actual != "Retrieve one order" {
		t.Errorf("Expected a short description to be kept but got %q.", actual)
	}

	if actual := describe(""); actual != "No description available" {
		t.Errorf("Expected a placeholder but got %q.", actual)
	}
}

func TestRunOnceEmptyResult(t *testing.T) {
	f := newFixture(t, session.Credentials{})

	if err := f.explorer.RunOnce(context.Background(), "fake", "fetchTrades", nil, true); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if !strings.Contains(f.io.Output(), "No response data") {
		t.Errorf("Expected an empty result to be reported as such.")
	}

	if len(f.files(t, "*.json")) != 0 {
		t.Errorf("Expected nothing to be saved for an empty result.")
	}
}

func TestKrakenWithoutMarkets(t *testing.T) {
	var pairs []string

	mux := http.NewServeMux()

	mux.HandleFunc("/0/public/AssetPairs", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`unavailable`))
	})

	mux.HandleFunc("/0/public/Ticker", func(w http.ResponseWriter, r *http.Request) {
		pairs = append(pairs, r.URL.Query().Get("pair"))

		_, _ = w.Write([]byte(`{"error":[],"result":{"XXBTZUSD":{"a":["30300.1","1","1.000"],"b":["30300.0","1","1.000"],` +
			`"c":["30303.2","0.1"],"v":["4083.6","4412.7"],"p":["30706.7","30689.1"],"t":[34619,38907],` +
			`"l":["29868.3","29868.3"],"h":["31631.0","31631.0"],"o":"30502.8"}}}`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := exchange.NewDirectory()
	dir.Register(kraken.ID, kraken.New)

	buf := console.NewBufferIO("kraken", "", "", "2", "y", "3", "24", "XBT/USD", "n", "5")
	out := t.TempDir()

	e := New(Options{
		Directory: dir,
		Session:   session.New(dir, session.Options{BaseURL: srv.URL, RateLimit: time.Millisecond}),
		Writer:    writer.New(writer.Config{Dir: out}),
		IO:        buf,
	})

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	output := buf.Output()

	if !strings.Contains(output, "⚠ Warning:") {
		t.Errorf("Expected the market failure to be reported as a warning.")
	}

	//
	// The capability file must agree with itself.
	//
	files, err := filepath.Glob(filepath.Join(out, "exprobe_capabilities_kraken_*.json"))
	if err != nil || len(files) != 1 {
		t.Fatalf("Expected one capabilities file but found %d (%v).", len(files), err)
	}

	b, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	doc := gjson.ParseBytes(b)

	if actual := doc.Get("metadata.exchange").String(); actual != "kraken" {
		t.Errorf("Expected the exchange to be recorded but got %q.", actual)
	}

	summary := doc.Get("metadata.summary")

	for _, status := range []string{"supported", "emulated", "not_supported"} {
		sum := int64(0)

		doc.Get("categorized_endpoints." + status).ForEach(func(_, endpoints gjson.Result) bool {
			sum += int64(len(endpoints.Array()))

			return true
		})

		if actual := summary.Get(status).Int(); actual != sum {
			t.Errorf("Expected %s to count %d categorized endpoints but got %d.", status, sum, actual)
		}
	}

	if actual := summary.Get("total_checked").Int(); actual != 37 {
		t.Errorf("Expected 37 checked endpoints but got %d.", actual)
	}

	//
	// Without markets there are no symbol hints, but a typed symbol still goes through.
	//
	if strings.Contains(output, "Available symbols") {
		t.Errorf("Expected no symbol hints without markets.")
	}

	if !strings.Contains(output, "Executing: fetchTicker(XBT/USD, {})") {
		t.Errorf("Expected the typed symbol to be used, got:\n%s", output)
	}

	if len(pairs) != 1 {
		t.Errorf("Expected one ticker request but got %d.", len(pairs))
	}

	if !strings.Contains(output, "Response contains") {
		t.Errorf("Expected the ticker to be summarized.")
	}
}
