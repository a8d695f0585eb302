package main

import (
	"github.com/urfave/cli/v2"
)

var (
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "load configuration from `file` (YAML, or JSON when it ends in .json)",
	}
	ExchangeFlag = &cli.StringFlag{
		Name:    "exchange",
		Aliases: []string{"e"},
		Usage:   "exchange `id` to explore",
	}
	EndpointFlag = &cli.StringFlag{
		Name:  "endpoint",
		Usage: "call one endpoint `name` and exit (requires --exchange)",
	}
	APIKeyFlag = &cli.StringFlag{
		Name:  "api-key",
		Usage: "API `key` (prefer " + envAPIKey + ")",
	}
	SecretFlag = &cli.StringFlag{
		Name:  "secret",
		Usage: "API `secret` (prefer " + envSecret + ")",
	}
	PasswordFlag = &cli.StringFlag{
		Name:  "password",
		Usage: "API `passphrase` for exchanges that need one (prefer " + envPassword + ")",
	}
	SymbolFlag = &cli.StringFlag{
		Name:  "symbol",
		Usage: "default unified `symbol` for endpoints that take one",
	}
	LimitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "default result `count` for endpoints that take a limit",
	}
	ParamFlag = &cli.StringSliceFlag{
		Name:    "param",
		Aliases: []string{"p"},
		Usage:   "override an endpoint parameter as `name=value` (with --endpoint)",
	}
	SaveFlag = &cli.BoolFlag{
		Name:  "save",
		Usage: "save the response of --endpoint to the responses directory",
	}
	SandboxFlag = &cli.BoolFlag{
		Name:  "sandbox",
		Usage: "use the exchange's sandbox environment where one exists",
	}
	VerboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "log every request the exchange client makes",
	}
	BaseURLFlag = &cli.StringFlag{
		Name:  "base-url",
		Usage: "override the exchange API `url`",
	}
	ResponsesDirFlag = &cli.StringFlag{
		Name:  "responses-dir",
		Usage: "write saved files to `dir`",
	}
	LogFileFlag = &cli.StringFlag{
		Name:  "log-file",
		Usage: "write logs to `file` (\"-\" for stderr)",
	}
	MetricsAddrFlag = &cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "serve Prometheus metrics on `addr`",
	}
	YesFlag = &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "do not ask before using credentials passed as flags",
	}
)
