package coinbasepro

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/lukehollenback/exprobe/exchange"
	api "github.com/preichenberger/go-coinbasepro/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func init() {
	exchange.Register(ID, New)
}

//
// Client implements the exchange.Client interface on top of the go-coinbasepro client. Private
// endpoints need a passphrase in addition to the key and secret.
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
// New instantiates a Coinbase Pro client. It implements exchange.Factory.
//
func New(cfg exchange.Config) (exchange.Client, error) {
	o := &Client{
		api:       api.NewClient(),
		wsURL:     WSURL,
		sandbox:   cfg.Sandbox,
		rateLimit: DefaultRateLimit,
		window:    cfg.StreamWindow,
		verbose:   cfg.Verbose,
		sugar:     cfg.Sugar().With("exchange", ID),
	}

	base := BaseURL

	if cfg.Sandbox {
		base = SandboxBaseURL
		o.wsURL = SandboxWSURL
	}

	if cfg.BaseURL != "" {
		base = strings.TrimRight(cfg.BaseURL, "/")
		o.wsURL = "ws" + strings.TrimPrefix(base, "http")
	}

	o.api.UpdateConfig(&api.ClientConfig{
		BaseURL:    base,
		Key:        cfg.APIKey,
		Passphrase: cfg.Password,
		Secret:     cfg.Secret,
	})

	o.api.HTTPClient = &http.Client{Timeout: 30 * time.Second}

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
	o.api.Key = ""
	o.api.Secret = ""
	o.api.Passphrase = ""
}

//
// LoadMarkets implements the exchange.Client interface's described method using the products
// endpoint.
//
func (o *Client) LoadMarkets(ctx context.Context) error {
	if err := o.wait(ctx, "products"); err != nil {
		return err
	}

	products, err := o.api.GetProducts()
	if err != nil {
		return wrap(err)
	}

	markets := make([]exchange.Market, 0, len(products))

	for _, p := range products {
		markets = append(markets, exchange.Market{
			Symbol: p.BaseCurrency + "/" + p.QuoteCurrency,
			ID:     p.ID,
			Base:   p.BaseCurrency,
			Quote:  p.QuoteCurrency,
			Active: true,
		})
	}

	o.Set(markets)

	o.sugar.Debugw("loaded markets", "count", len(markets))

	return nil
}

//
// wait blocks until the rate limiter admits another request.
//
// NOTE ~> The library's calls take no context, so cancellation is only honoured between requests.
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
	return o.api.Key != "" && o.api.Secret != "" && o.api.Passphrase != ""
}
