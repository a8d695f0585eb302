package gate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lukehollenback/exprobe/exchange"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"github.com/xyths/hs"
	"github.com/xyths/hs/exchange/gateio"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func init() {
	exchange.Register(ID, New)
}

//
// spot is the part of the hs Gate.io v4 spot client that the binding uses for candles and balances.
//
type spot interface {
	CandleBySize(ctx context.Context, symbol string, period time.Duration, size int) (hs.Candle, error)
	AvailableBalance(ctx context.Context) (map[string]decimal.Decimal, error)
}

//
// Client implements the exchange.Client interface for the Gate.io v4 spot API. Public market data
// is read directly from the REST API; candles and balances go through the hs client.
//
type Client struct {
	exchange.Markets

	apiKey    string
	apiSecret string

	spot       spot
	baseURL    string
	wsURL      string
	httpClient *http.Client
	limiter    *rate.Limiter
	rateLimit  time.Duration
	window     time.Duration
	verbose    bool
	sugar      *zap.SugaredLogger

	registry *exchange.Registry
}

//
// New instantiates a Gate.io client. It implements exchange.Factory.
//
func New(cfg exchange.Config) (exchange.Client, error) {
	if cfg.Sandbox {
		return nil, fmt.Errorf("%s does not provide a spot sandbox environment: %w", Name, exchange.ErrNotSupported)
	}

	o := &Client{
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.Secret,
		baseURL:    BaseURL,
		wsURL:      WSURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		rateLimit:  DefaultRateLimit,
		window:     cfg.StreamWindow,
		verbose:    cfg.Verbose,
		sugar:      cfg.Sugar().With("exchange", ID),
	}

	o.spot = gateio.NewSpotV4(cfg.APIKey, cfg.Secret, "", o.sugar)

	if cfg.BaseURL != "" {
		o.baseURL = strings.TrimRight(cfg.BaseURL, "/")
		o.wsURL = "ws" + strings.TrimPrefix(o.baseURL, "http") + "/ws"
	}

	if cfg.RateLimit > 0 {
		o.rateLimit = cfg.RateLimit
	}

	o.limiter = rate.NewLimiter(rate.Every(o.rateLimit), 1)
	o.registry = o.endpoints()

	return o, nil
}

func (o *Client) ID() string {
	return ID
}

func (o *Client) Info() exchange.Info {
	return exchange.Info{
		ID:         ID,
		Name:       Name,
		APIVersion: APIVersion,
		RateLimit:  o.rateLimit,
	}
}

func (o *Client) Has() exchange.Has {
	return has.Clone()
}

func (o *Client) Endpoints() *exchange.Registry {
	return o.registry
}

//
// ClearCredentials drops the key pair and replaces the hs client with an anonymous one, since the
// hs client keeps its own copy.
//
func (o *Client) ClearCredentials() {
	o.apiKey = ""
	o.apiSecret = ""
	o.spot = gateio.NewSpotV4("", "", "", o.sugar)
}

//
// LoadMarkets implements the exchange.Client interface's described method using the currency pairs
// endpoint.
//
func (o *Client) LoadMarkets(ctx context.Context) error {
	res, err := o.get(ctx, "/spot/currency_pairs", nil)
	if err != nil {
		return err
	}

	var markets []exchange.Market

	for _, p := range res.Array() {
		base, quote := p.Get("base").String(), p.Get("quote").String()

		markets = append(markets, exchange.Market{
			Symbol: base + "/" + quote,
			ID:     p.Get("id").String(),
			Base:   base,
			Quote:  quote,
			Active: p.Get("trade_status").String() == "tradable",
		})
	}

	o.Set(markets)

	o.sugar.Debugw("loaded markets", "count", len(markets))

	return nil
}

//
// get makes the specified request against one of Gate.io's public endpoints and returns the parsed
// body and/or an error if something went wrong.
//
func (o *Client) get(ctx context.Context, path string, params url.Values) (gjson.Result, error) {
	//
	// Respect the rate limit.
	//
	if err := o.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, err
	}

	//
	// Make a request to the endpoint.
	//
	endpoint := o.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return gjson.Result{}, err
	}

	req.Header.Set("Accept", "application/json")

	start := time.Now()

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}

	if o.verbose {
		o.sugar.Infow("request", "path", path, "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))
	} else {
		o.sugar.Debugw("request", "path", path, "status", resp.StatusCode)
	}

	//
	// Check the response for API errors, then for HTTP errors.
	//
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if label := gjson.GetBytes(body, "label"); label.Exists() {
			return gjson.Result{}, &APIError{label: label.String(), message: gjson.GetBytes(body, "message").String()}
		}

		return gjson.Result{}, exchange.NewHTTPError(resp.StatusCode, body)
	}

	return gjson.ParseBytes(body), nil
}
