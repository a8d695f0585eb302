package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lukehollenback/exprobe/constants"
	"github.com/lukehollenback/exprobe/logging"
	"github.com/lukehollenback/exprobe/writer"
	"github.com/xyths/hs"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EXPROBE_"

//
// Duration is a time.Duration that reads as "5s"-style text from YAML, JSON, and the environment.
//
type Duration time.Duration

func (o Duration) Std() time.Duration {
	return time.Duration(o)
}

func (o *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string such as \"5s\": %w", err)
	}

	return o.set(s)
}

func (o *Duration) UnmarshalYAML(value *yaml.Node) error {
	return o.set(value.Value)
}

func (o Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(o).String(), nil
}

func (o *Duration) set(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}

	*o = Duration(d)

	return nil
}

//
// Config holds every non-secret setting of the explorer. API credentials are deliberately absent:
// they come from flags, the environment, or prompts only.
//
type Config struct {
	Exchange     string               `yaml:"exchange" json:"exchange"`
	Symbol       string               `yaml:"symbol" json:"symbol"`
	Limit        int                  `yaml:"limit" json:"limit"`
	Sandbox      bool                 `yaml:"sandbox" json:"sandbox"`
	Verbose      bool                 `yaml:"verbose" json:"verbose"`
	BaseURL      string               `yaml:"base_url" json:"base_url"`
	RateLimit    Duration             `yaml:"rate_limit" json:"rate_limit"`
	StreamWindow Duration             `yaml:"stream_window" json:"stream_window"`
	ResponsesDir string               `yaml:"responses_dir" json:"responses_dir"`
	MetricsAddr  string               `yaml:"metrics_addr" json:"metrics_addr"`
	Log          logging.Config       `yaml:"log" json:"log"`
	Mongo        writer.ArchiveConfig `yaml:"mongo" json:"mongo"`
}

//
// Default returns the configuration used when nothing else is provided.
//
func Default() Config {
	return Config{
		Symbol:       constants.DefaultSymbol,
		Limit:        constants.DefaultLimit,
		StreamWindow: Duration(constants.DefaultStreamWindow),
		ResponsesDir: constants.DefaultResponsesDir,
		Log:          logging.Default(),
	}
}

//
// Load builds the configuration from its defaults, the optional file at path (YAML, or JSON when the
// name ends in .json), and finally the EXPROBE_* environment variables.
//
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func (o *Config) readFile(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := hs.ParseJsonConfig(path, o); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}

		return nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(b, o); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

//
// ApplyEnv overrides settings from environment variables named EXPROBE_<SETTING>.
//
func (o *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}

		return strings.TrimSpace(v), true
	}

	strs := map[string]*string{
		"EXCHANGE":      &o.Exchange,
		"SYMBOL":        &o.Symbol,
		"BASE_URL":      &o.BaseURL,
		"RESPONSES_DIR": &o.ResponsesDir,
		"METRICS_ADDR":  &o.MetricsAddr,
		"LOG_FILE":      &o.Log.File,
		"LOG_LEVEL":     &o.Log.Level,
		"MONGO_URI":     &o.Mongo.URI,
	}

	for name, dst := range strs {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"SANDBOX": &o.Sandbox,
		"VERBOSE": &o.Verbose,
	}

	for name, dst := range bools {
		if v, ok := get(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s must be a boolean: %w", EnvPrefix, name, err)
			}

			*dst = b
		}
	}

	durations := map[string]*Duration{
		"RATE_LIMIT":    &o.RateLimit,
		"STREAM_WINDOW": &o.StreamWindow,
	}

	for name, dst := range durations {
		if v, ok := get(name); ok {
			if err := dst.set(v); err != nil {
				return fmt.Errorf("%s%s must be a duration: %w", EnvPrefix, name, err)
			}
		}
	}

	if v, ok := get("LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sLIMIT must be an integer: %w", EnvPrefix, err)
		}

		o.Limit = n
	}

	return nil
}

//
// Validate checks that the configuration is usable.
//
func (o Config) Validate() error {
	if o.Limit <= 0 {
		return errors.New("limit must be positive")
	}

	if strings.TrimSpace(o.ResponsesDir) == "" {
		return errors.New("responses_dir must not be empty")
	}

	if o.RateLimit < 0 || o.StreamWindow < 0 {
		return errors.New("durations must not be negative")
	}

	return nil
}
