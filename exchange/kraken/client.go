package kraken

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lukehollenback/exprobe/exchange"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func init() {
	exchange.Register(ID, New)
}

//
// Client implements the exchange.Client interface for the Kraken spot API.
//
type Client struct {
	exchange.Markets

	apiKey    string
	apiSecret string

	baseURL    string
	wsURL      string
	httpClient *http.Client
	limiter    *rate.Limiter
	rateLimit  time.Duration
	window     time.Duration
	verbose    bool
	sugar      *zap.SugaredLogger

	nonce    int64
	registry *exchange.Registry
}

//
// New instantiates a Kraken client. It implements exchange.Factory.
//
func New(cfg exchange.Config) (exchange.Client, error) {
	if cfg.Sandbox {
		return nil, fmt.Errorf("%s does not provide a sandbox environment: %w", Name, exchange.ErrNotSupported)
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

	//
	// Apply any overrides. A REST override also moves the websocket feed onto the same host.
	//
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

func (o *Client) ClearCredentials() {
	o.apiKey = ""
	o.apiSecret = ""
}

//
// LoadMarkets implements the exchange.Client interface's described method using the AssetPairs
// endpoint.
//
func (o *Client) LoadMarkets(ctx context.Context) error {
	res, err := o.public(ctx, "AssetPairs", nil)
	if err != nil {
		return err
	}

	var markets []exchange.Market

	res.ForEach(func(k, v gjson.Result) bool {
		base, quote, ok := exchange.SplitSymbol(v.Get("wsname").String())
		if !ok {
			return true
		}

		markets = append(markets, exchange.Market{
			Symbol: commonCode(base) + "/" + commonCode(quote),
			ID:     k.String(),
			Base:   commonCode(base),
			Quote:  commonCode(quote),
			Active: v.Get("status").String() == "" || v.Get("status").String() == "online",
		})

		return true
	})

	o.Set(markets)

	o.sugar.Debugw("loaded markets", "count", len(markets))

	return nil
}

//
// public makes a request against one of Kraken's public endpoints.
//
func (o *Client) public(ctx context.Context, method string, params url.Values) (gjson.Result, error) {
	return o.request(ctx, http.MethodGet, PublicPath+method, params)
}

//
// private makes a signed request against one of Kraken's private endpoints.
//
func (o *Client) private(ctx context.Context, method string, params url.Values) (gjson.Result, error) {
	if o.apiKey == "" || o.apiSecret == "" {
		return gjson.Result{}, fmt.Errorf("%s: %w", method, exchange.ErrAuthRequired)
	}

	return o.request(ctx, http.MethodPost, PrivatePath+method, params)
}

//
// request makes the specified request to the Kraken API and returns the unwrapped result and/or an
// error if something went wrong.
//
func (o *Client) request(ctx context.Context, method string, path string, params url.Values) (gjson.Result, error) {
	if params == nil {
		params = url.Values{}
	}

	//
	// Respect the rate limit.
	//
	if err := o.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, err
	}

	//
	// Build the request. Private requests carry a nonce in the body and are signed.
	//
	endpoint := o.baseURL + path

	var body io.Reader

	private := method == http.MethodPost

	if private {
		params.Set("nonce", o.nextNonce())
		body = strings.NewReader(params.Encode())
	} else if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return gjson.Result{}, err
	}

	req.Header.Set("User-Agent", "exprobe")

	if private {
		signature, err := sign(path, params, o.apiSecret)
		if err != nil {
			return gjson.Result{}, err
		}

		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set(APIKeyHeader, o.apiKey)
		req.Header.Set(APISignHeader, signature)
	}

	//
	// Make the request.
	//
	start := time.Now()

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}

	if o.verbose {
		o.sugar.Infow("request", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(respBody), "elapsed", time.Since(start))
	} else {
		o.sugar.Debugw("request", "method", method, "path", path, "status", resp.StatusCode)
	}

	//
	// Make sure the status code was valid.
	//
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gjson.Result{}, exchange.NewHTTPError(resp.StatusCode, respBody)
	}

	//
	// Unwrap the envelope, checking it for API errors.
	//
	return parse(respBody)
}

func (o *Client) nextNonce() string {
	for {
		last := atomic.LoadInt64(&o.nonce)

		next := time.Now().UnixMilli()
		if next <= last {
			next = last + 1
		}

		if atomic.CompareAndSwapInt64(&o.nonce, last, next) {
			return strconv.FormatInt(next, 10)
		}
	}
}

//
// sign computes the API-Sign header: HMAC-SHA512 of the URI path and the SHA256 of the nonce and
// the encoded body, keyed by the base64-decoded secret.
//
func sign(path string, params url.Values, secret string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("%w: the Kraken secret must be base64 encoded", exchange.ErrBadArgument)
	}

	digest := sha256.Sum256([]byte(params.Get("nonce") + params.Encode()))

	mac := hmac.New(sha512.New, key)
	mac.Write([]byte(path))
	mac.Write(digest[:])

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
