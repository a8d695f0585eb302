package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lukehollenback/exprobe/exchange"
	"go.uber.org/zap"
)

// ErrMarketsUnavailable marks a setup that succeeded without being able to load markets.
var ErrMarketsUnavailable = errors.New("could not load markets")

//
// Credentials are the secrets an operator typed in (or passed on the command line). They live only
// in memory and only for the life of a session.
//
type Credentials struct {
	APIKey   string
	Secret   string
	Password string
}

//
// Empty returns whether or not no credential was provided at all.
//
func (o Credentials) Empty() bool {
	return o.APIKey == "" && o.Secret == "" && o.Password == ""
}

//
// Clear drops every credential.
//
func (o *Credentials) Clear() {
	o.APIKey = ""
	o.Secret = ""
	o.Password = ""
}

//
// Options are the non-secret settings applied to every client a session constructs.
//
type Options struct {
	Sandbox      bool
	Verbose      bool
	BaseURL      string
	RateLimit    time.Duration
	StreamWindow time.Duration
	Logger       *zap.SugaredLogger
}

//
// Session owns at most one exchange client together with the credentials it was built with.
//
type Session struct {
	dir   *exchange.Directory
	opts  Options
	sugar *zap.SugaredLogger

	id     string
	client exchange.Client
	creds  Credentials
}

//
// New instantiates an empty session that resolves exchanges through the provided directory.
//
func New(dir *exchange.Directory, opts Options) *Session {
	sugar := opts.Logger
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}

	return &Session{dir: dir, opts: opts, sugar: sugar}
}

//
// Setup replaces whatever the session held with a fresh client for the named exchange. If the client
// cannot be constructed the session is left empty and the error is returned. If the client works but
// its markets cannot be loaded, the session stays usable and an error wrapping
// ErrMarketsUnavailable is returned as a warning.
//
func (o *Session) Setup(ctx context.Context, input string, creds Credentials) error {
	o.Cleanup()

	id, ok := o.dir.Lookup(input)
	if !ok {
		creds.Clear()

		return fmt.Errorf("%w: %q", exchange.ErrUnknownExchange, input)
	}

	client, err := o.dir.New(id, exchange.Config{
		APIKey:       creds.APIKey,
		Secret:       creds.Secret,
		Password:     creds.Password,
		Sandbox:      o.opts.Sandbox,
		Verbose:      o.opts.Verbose,
		BaseURL:      o.opts.BaseURL,
		RateLimit:    o.opts.RateLimit,
		StreamWindow: o.opts.StreamWindow,
		Logger:       o.sugar,
	})
	if err != nil {
		creds.Clear()

		return err
	}

	o.id = id
	o.client = client
	o.creds = creds

	o.sugar.Infow("session started", "exchange", id, "authenticated", !creds.Empty(), "sandbox", o.opts.Sandbox)

	//
	// Loading markets is best-effort. Plenty of endpoints still work without them.
	//
	if err := client.LoadMarkets(ctx); err != nil {
		o.sugar.Warnw("failed to load markets", "exchange", id, "error", err)

		return fmt.Errorf("%w: %v", ErrMarketsUnavailable, err)
	}

	return nil
}

//
// Cleanup zeroes the credentials, asks the client to drop its own copy, and forgets the client. It is
// safe to call any number of times.
//
func (o *Session) Cleanup() {
	o.creds.Clear()

	if o.client != nil {
		o.client.ClearCredentials()

		o.sugar.Infow("session closed", "exchange", o.id)
	}

	o.client = nil
	o.id = ""
}

//
// Ready returns whether or not the session holds a client.
//
func (o *Session) Ready() bool {
	return o.client != nil
}

//
// ID returns the identifier of the current exchange, or "" if there is none.
//
func (o *Session) ID() string {
	return o.id
}

//
// Client returns the current client, or nil if there is none.
//
func (o *Session) Client() exchange.Client {
	return o.client
}

//
// Credentials returns a copy of the credentials currently held.
//
func (o *Session) Credentials() Credentials {
	return o.creds
}

//
// Authenticated returns whether or not the session was set up with an API key and secret.
//
func (o *Session) Authenticated() bool {
	return o.creds.APIKey != "" && o.creds.Secret != ""
}
