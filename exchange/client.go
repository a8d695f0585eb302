package exchange

import (
	"context"
	"time"

	"go.uber.org/zap"
)

//
// Client generically provides an interface to an object that can be used to interact with a
// cryptocurrency exchange's API. Every method the client exposes is reachable through the endpoint
// registry returned by Endpoints() so that callers never need to know the concrete binding.
//
// Whenever an endpoint fails – whether due to a system failure, an HTTP error, or an API error –
// the error component of the call will be non-nil.
//
type Client interface {

	//
	// ID returns the registry identifier of the exchange (e.g. "kraken").
	//
	ID() string

	//
	// Info returns static, non-secret descriptive information about the binding.
	//
	Info() Info

	//
	// Has returns the exchange's self-reported capability map. Callers must treat it as read-only.
	//
	Has() Has

	//
	// Endpoints returns the registry of every endpoint the binding exposes, supported or not.
	//
	Endpoints() *Registry

	//
	// LoadMarkets retrieves the exchange's tradable markets so that Symbols() can provide hints and
	// unified symbols can be translated into exchange-specific identifiers.
	//
	LoadMarkets(ctx context.Context) error

	//
	// Symbols returns the unified symbols (e.g. "BTC/USD") of the loaded markets in sorted order.
	// It returns an empty slice if markets have not been (or could not be) loaded.
	//
	Symbols() []string

	//
	// ClearCredentials drops any API key, secret, or passphrase that the client holds.
	//
	ClearCredentials()
}

//
// Info describes a binding.
//
type Info struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	APIVersion string        `json:"api_version"`
	RateLimit  time.Duration `json:"rate_limit"`
	Sandbox    bool          `json:"sandbox"`
	HasSandbox bool          `json:"has_sandbox"`
}

//
// Config holds everything needed to construct a client. Only APIKey, Secret, and Password are
// secret; bindings must never log them.
//
type Config struct {
	APIKey   string
	Secret   string
	Password string

	Sandbox bool
	Verbose bool

	// BaseURL overrides the REST (and, where applicable, websocket) host of the binding.
	BaseURL string

	// RateLimit overrides the minimum spacing between REST requests. Zero keeps the default.
	RateLimit time.Duration

	// StreamWindow is how long streaming endpoints listen before returning.
	StreamWindow time.Duration

	Logger *zap.SugaredLogger
}

//
// Authenticated returns whether or not both halves of an API credential pair were provided.
//
func (o Config) Authenticated() bool {
	return o.APIKey != "" && o.Secret != ""
}

//
// Sugar returns the configured logger or a no-op logger.
//
func (o Config) Sugar() *zap.SugaredLogger {
	if o.Logger == nil {
		return zap.NewNop().Sugar()
	}

	return o.Logger
}

//
// Window returns the configured stream window or the provided default.
//
func (o Config) Window(def time.Duration) time.Duration {
	if o.StreamWindow > 0 {
		return o.StreamWindow
	}

	return def
}
