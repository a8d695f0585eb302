package explorer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lukehollenback/exprobe/console"
	"github.com/lukehollenback/exprobe/constants"
	"github.com/lukehollenback/exprobe/exchange"
	"github.com/lukehollenback/exprobe/invoke"
	"github.com/lukehollenback/exprobe/session"
	"github.com/lukehollenback/exprobe/writer"
	"go.uber.org/zap"
)

//
// Options holds everything needed to construct an explorer.
//
type Options struct {
	Directory *exchange.Directory
	Session   *session.Session
	Writer    *writer.Writer
	IO        console.IO
	Logger    *zap.SugaredLogger
	Now       func() time.Time

	// Exchange is the exchange offered by default (and used directly by RunOnce).
	Exchange string

	// Credentials provided up front (flags or environment). When present they are used for the first
	// setup instead of prompting, and then forgotten.
	Credentials session.Credentials

	Symbol string
	Limit  int
}

//
// Explorer drives the interactive menus. It is strictly sequential: one prompt, one call, or one save
// at a time.
//
type Explorer struct {
	dir     *exchange.Directory
	session *session.Session
	writer  *writer.Writer
	io      console.IO
	sugar   *zap.SugaredLogger
	now     func() time.Time

	exchange string
	preset   session.Credentials
	symbol   string
	limit    int
}

//
// New instantiates an explorer.
//
func New(opts Options) *Explorer {
	o := &Explorer{
		dir:      opts.Directory,
		session:  opts.Session,
		writer:   opts.Writer,
		io:       opts.IO,
		sugar:    opts.Logger,
		now:      opts.Now,
		exchange: opts.Exchange,
		preset:   opts.Credentials,
		symbol:   opts.Symbol,
		limit:    opts.Limit,
	}

	if o.dir == nil {
		o.dir = exchange.Default
	}

	if o.sugar == nil {
		o.sugar = zap.NewNop().Sugar()
	}

	if o.session == nil {
		o.session = session.New(o.dir, session.Options{Logger: o.sugar})
	}

	if o.writer == nil {
		o.writer = writer.New(writer.Config{Logger: o.sugar})
	}

	if o.now == nil {
		o.now = time.Now
	}

	if o.symbol == "" {
		o.symbol = constants.DefaultSymbol
	}

	if o.limit <= 0 {
		o.limit = constants.DefaultLimit
	}

	return o
}

//
// Run executes the interactive explorer until the operator exits, input ends, or the context is
// cancelled. The session is always cleaned up on the way out.
//
func (o *Explorer) Run(ctx context.Context) error {
	defer o.session.Cleanup()
	defer o.preset.Clear()

	o.Banner()

	if err := o.connect(ctx); err != nil {
		return o.exit(err)
	}

	for {
		o.rule()
		o.io.Info("Available Actions:")
		o.io.Println("1. View all available endpoints")
		o.io.Println("2. Check supported endpoints only")
		o.io.Println("3. Test a specific endpoint")
		o.io.Println("4. Change exchange")
		o.io.Println("5. Exit")

		choice, err := o.io.Prompt(ctx, "Select action [1/2/3/4/5]", "3")
		if err != nil {
			return o.exit(err)
		}

		o.sugar.Debugw("menu choice", "choice", choice, "exchange", o.session.ID())

		switch strings.TrimSpace(choice) {
		case "1":
			err = o.ListEndpoints(ctx)
		case "2":
			err = o.CheckSupported(ctx)
		case "3":
			var (
				name string
				ok   bool
			)

			name, ok, err = o.SelectEndpoint(ctx)
			if err == nil {
				if ok {
					err = o.TestEndpoint(ctx, name)
				} else {
					o.io.Warn("Returning to main menu.")
				}
			}
		case "4":
			err = o.ChangeExchange(ctx)
		case "5":
			o.io.Success("Goodbye!")

			return nil
		default:
			o.io.Error("Please select one of the available options")
		}

		if err != nil {
			return o.exit(err)
		}
	}
}

//
// Banner prints the title panel and the security notice.
//
func (o *Explorer) Banner() {
	o.io.Panel(console.Panel{
		Title: constants.AppName,
		Body:  "CLI tool to explore exchange API endpoints",
		Tone:  console.Notice,
	})

	o.io.Panel(console.Panel{
		Title: "Security Notice",
		Body: strings.Join([]string{
			"⚠️  SECURITY WARNING",
			"• API keys and secrets are stored in memory only during this session",
			"• They are automatically cleared when you exit",
			"• Never use --api-key or --secret flags in scripts or shared environments",
			"• Consider using environment variables for automation",
		}, "\n"),
		Tone: console.Danger,
	})
}

//
// ConfirmCommandLineCredentials warns about credentials passed as flags and asks whether to go on.
//
func (o *Explorer) ConfirmCommandLineCredentials(ctx context.Context) (bool, error) {
	o.io.Panel(console.Panel{
		Title: "Command Line Security Warning",
		Body: strings.Join([]string{
			"⚠️  SECURITY WARNING",
			"• API keys passed via command line are visible in shell history",
			"• Consider using environment variables instead:",
			"  export EXPROBE_API_KEY='your_key'",
			"  export EXPROBE_SECRET='your_secret'",
			"• Or use interactive mode for better security",
		}, "\n"),
		Tone: console.Danger,
	})

	ok, err := o.io.Confirm(ctx, "Continue with command line credentials?", false)
	if err != nil {
		return false, err
	}

	if !ok {
		o.preset.Clear()
		o.io.Warn("Exiting for security. Use interactive mode instead.")
	}

	return ok, nil
}

//
// ChangeExchange drops the current session (credentials included) and walks through exchange
// selection again.
//
func (o *Explorer) ChangeExchange(ctx context.Context) error {
	o.session.Cleanup()

	return o.connect(ctx)
}

//
// RunOnce sets up the named exchange, calls one endpoint with default (or overridden) parameters,
// prints the result, and saves it if asked to. It never prompts.
//
func (o *Explorer) RunOnce(ctx context.Context, exchangeID string, endpoint string, overrides map[string]string, save bool) error {
	defer o.session.Cleanup()

	creds := o.preset
	o.preset.Clear()

	if err := o.setup(ctx, exchangeID, creds); err != nil {
		return err
	}

	e, ok := o.session.Client().Endpoints().Get(endpoint)
	if !ok {
		o.io.Error("%s has no endpoint named %q", o.session.ID(), endpoint)

		return fmt.Errorf("%w: %s has no endpoint %q", exchange.ErrBadArgument, o.session.ID(), endpoint)
	}

	inv, err := invoke.FromFlags(e, o.hints(), overrides, o.now())
	if err != nil {
		o.io.Error("%s", err)

		return err
	}

	o.io.Info("Executing: %s", inv.Call())

	rec := invoke.Invoke(ctx, o.session.Client(), inv)
	o.logRecord(rec)

	if rec.Err != nil {
		o.showFailure(rec)

		return fmt.Errorf("%s failed: %w", rec.Endpoint, rec.Err)
	}

	if summary := o.showResult(rec); save && summary.Shape != invoke.Empty {
		o.saveResponse(ctx, rec)
	}

	return nil
}

func (o *Explorer) hints() invoke.Hints {
	var symbols []string
	if client := o.session.Client(); client != nil {
		symbols = client.Symbols()
	}

	return invoke.Hints{Symbols: symbols, Symbol: o.symbol, Limit: o.limit}
}

func (o *Explorer) rule() {
	o.io.Println()
	o.io.Println(strings.Repeat("=", constants.RuleWidth))
}

//
// exit turns the end of input or an interrupt into a normal exit.
//
func (o *Explorer) exit(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		o.io.Println()
		o.io.Warn("Operation cancelled by user")

		o.sugar.Infow("explorer stopped", "reason", err)

		return nil
	}

	o.io.Error("Unexpected error: %s", err)

	return err
}
