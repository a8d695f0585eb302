package explorer

import (
	"context"
	"errors"

	"github.com/lukehollenback/exprobe/console"
	"github.com/lukehollenback/exprobe/constants"
	"github.com/lukehollenback/exprobe/session"
)

// passphrase lists the exchanges whose API keys come with a passphrase.
var passphrase = map[string]bool{
	"coinbasepro": true,
}

//
// connect walks through exchange selection, credentials, and setup until a client has been
// constructed. Only input errors end it early.
//
func (o *Explorer) connect(ctx context.Context) error {
	for {
		o.io.Println()
		o.io.Info("Step 1: Select Exchange")

		id, err := o.SelectExchange(ctx)
		if err != nil {
			return err
		}

		o.io.Println()
		o.io.Info("Step 2: API Credentials for %s", id)

		creds, err := o.AskCredentials(ctx, id)
		if err != nil {
			return err
		}

		o.io.Println()
		o.io.Info("Step 3: Setting up %s", id)

		if err := o.setup(ctx, id, creds); err == nil {
			return nil
		}

		o.io.Warn("Please pick another exchange.")
	}
}

//
// SelectExchange shows the registered exchanges (popular ones first) and asks for one until a
// registered identifier is entered.
//
func (o *Explorer) SelectExchange(ctx context.Context) (string, error) {
	ids := o.dir.IDs()

	registered := make(map[string]bool, len(ids))
	for _, id := range ids {
		registered[id] = true
	}

	var popular, other []string

	listed := make(map[string]bool)
	for _, id := range constants.Popular() {
		if registered[id] {
			popular = append(popular, id)
			listed[id] = true
		}
	}

	for _, id := range ids {
		if !listed[id] {
			other = append(other, id)
		}
	}

	rows := make([][]string, 0, len(ids))
	for i := 0; i < len(popular) || i < len(other); i++ {
		row := []string{"", ""}

		if i < len(popular) {
			row[0] = popular[i]
		}

		if i < len(other) {
			row[1] = other[i]
		}

		rows = append(rows, row)
	}

	o.io.Table(console.Table{
		Title:   "Available Exchanges",
		Headers: []string{"Popular Exchanges", "Other Exchanges"},
		Rows:    rows,
	})

	//
	// Offer the configured exchange, or else the first popular one.
	//
	def := ""
	if id, ok := o.dir.Lookup(o.exchange); ok {
		def = id
	} else if len(popular) > 0 {
		def = popular[0]
	} else if len(ids) > 0 {
		def = ids[0]
	}

	for {
		input, err := o.io.Prompt(ctx, "Enter exchange name", def)
		if err != nil {
			return "", err
		}

		if id, ok := o.dir.Lookup(input); ok {
			return id, nil
		}

		o.io.Error("Exchange '%s' not found. Please try again.", input)
	}
}

//
// AskCredentials prompts for optional API credentials, unless they were provided up front. The secret
// and passphrase are read without echo.
//
func (o *Explorer) AskCredentials(ctx context.Context, id string) (session.Credentials, error) {
	if !o.preset.Empty() {
		creds := o.preset
		o.preset.Clear()

		o.io.Info("Using the credentials provided on the command line or in the environment")

		return creds, nil
	}

	o.io.Warn("Note: Some endpoints work without authentication, others require API keys")
	o.io.Warn("⚠️  Your credentials will only be stored in memory during this session")

	var (
		creds session.Credentials
		err   error
	)

	if creds.APIKey, err = o.io.Prompt(ctx, "Enter API Key (optional)", ""); err != nil {
		return session.Credentials{}, err
	}

	if creds.Secret, err = o.io.Secret(ctx, "Enter Secret Key (optional)"); err != nil {
		creds.Clear()

		return session.Credentials{}, err
	}

	if passphrase[id] && (creds.APIKey != "" || creds.Secret != "") {
		if creds.Password, err = o.io.Secret(ctx, "Enter Passphrase"); err != nil {
			creds.Clear()

			return session.Credentials{}, err
		}
	}

	return creds, nil
}

//
// setup hands the credentials to the session and reports how it went. Failing to load markets is
// only a warning; failing to construct the client is an error.
//
func (o *Explorer) setup(ctx context.Context, id string, creds session.Credentials) error {
	err := o.session.Setup(ctx, id, creds)

	switch {
	case err == nil:
		o.io.Success("✓ Successfully connected to %s", o.session.ID())

		return nil
	case errors.Is(err, session.ErrMarketsUnavailable):
		o.io.Warn("⚠ Warning: %s", err)
		o.io.Warn("Some endpoints might not work without proper authentication")

		return nil
	default:
		o.io.Error("Error setting up exchange: %s", err)

		o.sugar.Warnw("exchange setup failed", "exchange", id, "error", err)

		return err
	}
}
