package binance

import (
	"context"
	"net/http"
	"strings"
	"time"

	api "github.com/adshao/go-binance/v2"
	"github.com/lukehollenback/exprobe/exchange"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func init() {
	exchange.Register(ID, New)
}

//
// Client implements the exchange.Client interface on top of the go-binance spot client.
//
type Client struct {
	exchange.Markets

	api       *api.Client
	wsURL     string
	sandbox   bool
	limiter   *rate.Limiter
	rateLimit time.Duration
	window    time.Duration
	verbose   bool
	sugar     *zap.SugaredLogger

	registry *exchange.Registry
}

//
// New instantiates a Binance client. It implements exchange.Factory.
//
func New(cfg exchange.Config) (exchange.Client, error) {
	o := &Client{
		api:       api.NewClient(cfg.APIKey, cfg.Secret),
		wsURL:     WSURL,
		sandbox:   cfg.Sandbox,
		rateLimit: DefaultRateLimit,
		window:    cfg.StreamWindow,
		verbose:   cfg.Verbose,
		sugar:     cfg.Sugar().With("exchange", ID),
	}

	o.api.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	o.api.BaseURL = BaseURL

	if cfg.Sandbox {
		o.api.BaseURL = TestnetBaseURL
		o.wsURL = TestnetWSURL
	}

	if cfg.BaseURL != "" {
		o.api.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		o.wsURL = "ws" + strings.TrimPrefix(o.api.BaseURL, "http")
	}

	//
	// Route the library's standard logger into our log file instead of the console.
	//
	// NOTE ~> The library's debug mode dumps whole requests, API key header included, so it stays
	//  off. Verbose mode logs each call from wait() instead.
	//
	o.api.Debug = false
	o.api.Logger = zap.NewStdLog(o.sugar.Desugar())

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
		Sandbox:    o.sandbox,
		HasSandbox: true,
	}
}

func (o *Client) Has() exchange.Has {
	return has.Clone()
}

func (o *Client) Endpoints() *exchange.Registry {
	return o.registry
}

func (o *Client) ClearCredentials() {
	o.api.APIKey = ""
	o.api.SecretKey = ""
}

//
// LoadMarkets implements the exchange.Client interface's described method using the exchange
// information endpoint.
//
func (o *Client) LoadMarkets(ctx context.Context) error {
	if err := o.wait(ctx, "exchangeInfo"); err != nil {
		return err
	}

	info, err := o.api.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return wrap(err)
	}

	markets := make([]exchange.Market, 0, len(info.Symbols))

	for _, s := range info.Symbols {
		markets = append(markets, exchange.Market{
			Symbol: s.BaseAsset + "/" + s.QuoteAsset,
			ID:     s.Symbol,
			Base:   s.BaseAsset,
			Quote:  s.QuoteAsset,
			Active: s.Status == "TRADING",
		})
	}

	o.Set(markets)

	o.sugar.Debugw("loaded markets", "count", len(markets))

	return nil
}

//
// wait blocks until the rate limiter admits another request.
//
func (o *Client) wait(ctx context.Context, call string) error {
	if err := o.limiter.Wait(ctx); err != nil {
		return err
	}

	if o.verbose {
		o.sugar.Infow("request", "call", call, "base", o.api.BaseURL)
	} else {
		o.sugar.Debugw("request", "call", call)
	}

	return nil
}

func (o *Client) authenticated() bool {
	return o.api.APIKey != "" && o.api.SecretKey != ""
}
