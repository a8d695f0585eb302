package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lukehollenback/exprobe/config"
	"github.com/lukehollenback/exprobe/console"
	"github.com/lukehollenback/exprobe/exchange"
	"github.com/lukehollenback/exprobe/explorer"
	"github.com/lukehollenback/exprobe/invoke"
	"github.com/lukehollenback/exprobe/logging"
	"github.com/lukehollenback/exprobe/metrics"
	"github.com/lukehollenback/exprobe/session"
	"github.com/lukehollenback/exprobe/writer"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	_ "github.com/lukehollenback/exprobe/exchange/binance"
	_ "github.com/lukehollenback/exprobe/exchange/coinbasepro"
	_ "github.com/lukehollenback/exprobe/exchange/gate"
	_ "github.com/lukehollenback/exprobe/exchange/kraken"
)

const (
	envAPIKey   = "EXPROBE_API_KEY"
	envSecret   = "EXPROBE_SECRET"
	envPassword = "EXPROBE_PASSWORD"
)

var app *cli.App

// newIO opens the console the explorer talks through.
var newIO = func() console.IO {
	return console.NewPlainIO()
}

func init() {
	app = newApp()
}

func newApp() *cli.App {
	a := &cli.App{
		Name:    filepath.Base(os.Args[0]),
		Usage:   "explore the API endpoints of cryptocurrency exchanges",
		Version: "0.1.0",
		Action:  exploreAction,
	}

	a.Commands = []*cli.Command{
		{
			Action: exchangesAction,
			Name:   "exchanges",
			Usage:  "List the supported exchanges",
		},
	}
	a.Flags = []cli.Flag{
		ConfigFlag,
		ExchangeFlag,
		EndpointFlag,
		APIKeyFlag,
		SecretFlag,
		PasswordFlag,
		SymbolFlag,
		LimitFlag,
		ParamFlag,
		SaveFlag,
		SandboxFlag,
		VerboseFlag,
		BaseURLFlag,
		ResponsesDirFlag,
		LogFileFlag,
		MetricsAddrFlag,
		YesFlag,
	}

	return a
}

func main() {
	//
	// A .env file is optional. Variables already set in the environment win.
	//
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

//
// exploreAction runs the interactive explorer, or a single endpoint call when both --exchange and
// --endpoint are provided.
//
func exploreAction(c *cli.Context) error {
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	cfg, err := configure(c)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	sugar := logger.Sugar()

	if cfg.MetricsAddr != "" {
		metrics.Serve(ctx, cfg.MetricsAddr, sugar)
	}

	io := newIO()

	w := writer.Config{Dir: cfg.ResponsesDir, Logger: sugar}

	if cfg.Mongo.Enabled() {
		archive, err := writer.DialArchive(ctx, cfg.Mongo)
		if err != nil {
			sugar.Warnw("archive unavailable, saving to files only", "error", err)
			io.Warn("Archive unavailable, saving to files only: %s", err)
		} else {
			w.Archive = archive
			defer closeArchive(archive, sugar)
		}
	}

	creds, fromFlags := credentials(c)
	defer creds.Clear()

	sess := session.New(exchange.Default, session.Options{
		Sandbox:      cfg.Sandbox,
		Verbose:      cfg.Verbose,
		BaseURL:      cfg.BaseURL,
		RateLimit:    cfg.RateLimit.Std(),
		StreamWindow: cfg.StreamWindow.Std(),
		Logger:       sugar,
	})

	e := explorer.New(explorer.Options{
		Directory:   exchange.Default,
		Session:     sess,
		Writer:      writer.New(w),
		IO:          io,
		Logger:      sugar,
		Exchange:    cfg.Exchange,
		Credentials: creds,
		Symbol:      cfg.Symbol,
		Limit:       cfg.Limit,
	})

	sugar.Infow("starting", "exchange", cfg.Exchange, "endpoint", c.String(EndpointFlag.Name), "sandbox", cfg.Sandbox, "credentials", !creds.Empty())

	//
	// Credentials typed on the command line end up in shell history. Make the operator acknowledge
	// that unless they already did.
	//
	if fromFlags && !c.Bool(YesFlag.Name) {
		ok, err := e.ConfirmCommandLineCredentials(ctx)
		if err != nil {
			return err
		}

		if !ok {
			return cli.Exit("exiting for security", 1)
		}
	}

	//
	// A single call needs both an exchange and an endpoint. Anything less is an interactive session.
	//
	endpoint := c.String(EndpointFlag.Name)
	if endpoint != "" && cfg.Exchange == "" {
		sugar.Warnw("ignoring --endpoint without --exchange", "endpoint", endpoint)
		io.Warn("--endpoint is ignored without --exchange. Starting an interactive session.")
	}

	if endpoint == "" || cfg.Exchange == "" {
		return e.Run(ctx)
	}

	overrides, err := invoke.ParseOverrides(c.StringSlice(ParamFlag.Name))
	if err != nil {
		return err
	}

	return e.RunOnce(ctx, cfg.Exchange, endpoint, overrides, c.Bool(SaveFlag.Name))
}

//
// exchangesAction prints every registered exchange.
//
func exchangesAction(c *cli.Context) error {
	io := newIO()

	t := console.Table{
		Title:   "Supported Exchanges",
		Headers: []string{"ID", "Name", "API Version", "Sandbox", "Endpoints"},
	}

	for _, id := range exchange.Default.IDs() {
		client, err := exchange.Default.New(id, exchange.Config{})
		if err != nil {
			t.Rows = append(t.Rows, []string{id, "", "", "", err.Error()})
			continue
		}

		info := client.Info()

		sandbox := "✗"
		if info.HasSandbox {
			sandbox = "✓"
		}

		t.Rows = append(t.Rows, []string{id, info.Name, info.APIVersion, sandbox, fmt.Sprint(client.Endpoints().Len())})
	}

	io.Table(t)

	return nil
}

//
// configure loads the configuration file and environment, then applies the flags on top.
//
func configure(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String(ConfigFlag.Name))
	if err != nil {
		return cfg, err
	}

	strs := map[string]*string{
		ExchangeFlag.Name:     &cfg.Exchange,
		SymbolFlag.Name:       &cfg.Symbol,
		BaseURLFlag.Name:      &cfg.BaseURL,
		ResponsesDirFlag.Name: &cfg.ResponsesDir,
		LogFileFlag.Name:      &cfg.Log.File,
		MetricsAddrFlag.Name:  &cfg.MetricsAddr,
	}

	for name, dst := range strs {
		if c.IsSet(name) {
			*dst = strings.TrimSpace(c.String(name))
		}
	}

	if c.IsSet(LimitFlag.Name) {
		cfg.Limit = c.Int(LimitFlag.Name)
	}

	if c.IsSet(SandboxFlag.Name) {
		cfg.Sandbox = c.Bool(SandboxFlag.Name)
	}

	if c.IsSet(VerboseFlag.Name) {
		cfg.Verbose = c.Bool(VerboseFlag.Name)
	}

	if cfg.Verbose {
		cfg.Log.Level = "debug"
	}

	return cfg, cfg.Validate()
}

//
// credentials gathers API credentials from the flags or, failing that, the environment. The second
// result reports whether any of them came from the command line.
//
func credentials(c *cli.Context) (session.Credentials, bool) {
	creds := session.Credentials{
		APIKey:   c.String(APIKeyFlag.Name),
		Secret:   c.String(SecretFlag.Name),
		Password: c.String(PasswordFlag.Name),
	}

	if !creds.Empty() {
		return creds, true
	}

	creds = session.Credentials{
		APIKey:   os.Getenv(envAPIKey),
		Secret:   os.Getenv(envSecret),
		Password: os.Getenv(envPassword),
	}

	return creds, false
}

func closeArchive(archive *writer.MongoArchive, sugar *zap.SugaredLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := archive.Close(ctx); err != nil {
		sugar.Warnw("failed to disconnect from the archive", "error", err)
	}
}
