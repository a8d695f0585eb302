package exchange

import (
	"errors"
	"testing"
	"time"
)

func TestArgsPositionalResolution(t *testing.T) {
	params := []Param{P("symbol"), P("timeframe"), P("since"), P("limit")}
	args := NewArgs(params, []interface{}{"BTC/USD", int64(1700000000000), 5}, map[string]interface{}{"timeframe": "1h"})

	if got := args.String("symbol", ""); got != "BTC/USD" {
		t.Errorf("Expected symbol BTC/USD but got %q.", got)
	}

	if got := args.String("timeframe", ""); got != "1h" {
		t.Errorf("Expected timeframe 1h but got %q.", got)
	}

	since, err := args.Time("since")
	if err != nil {
		t.Fatalf("Unexpected error reading since: %s", err)
	}

	if !since.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("Expected since to be 1700000000000ms but got %s.", since)
	}

	if limit, err := args.Int("limit", 0); err != nil || limit != 5 {
		t.Errorf("Expected limit 5 but got (%d, %v).", limit, err)
	}
}

func TestArgsMissingValues(t *testing.T) {
	params := []Param{P("symbol"), P("limit")}
	args := NewArgs(params, []interface{}{"ETH/USD"}, nil)

	if limit, err := args.Int("limit", 7); err != nil || limit != 7 {
		t.Errorf("Expected default limit 7 but got (%d, %v).", limit, err)
	}

	if _, ok := args.Value("price"); ok {
		t.Errorf("An undeclared parameter should not resolve.")
	}

	if _, err := args.Require("price"); !errors.Is(err, ErrBadArgument) {
		t.Errorf("Require on a missing value should fail with ErrBadArgument, got %v.", err)
	}
}

func TestArgsNilCountsAsAbsent(t *testing.T) {
	params := []Param{P("symbol"), P("id")}
	args := NewArgs(params, []interface{}{nil}, map[string]interface{}{"id": nil})

	if got := args.String("symbol", "default"); got != "default" {
		t.Errorf("A nil positional value should fall back to the default, got %q.", got)
	}

	if got := args.String("id", "default"); got != "default" {
		t.Errorf("A nil keyword value should fall back to the default, got %q.", got)
	}
}

func TestArgsUncoercedLimit(t *testing.T) {
	args := NewArgs([]Param{P("limit")}, []interface{}{"abc"}, nil)

	if _, err := args.Int("limit", 10); !errors.Is(err, ErrBadArgument) {
		t.Errorf("A non-numeric limit should fail with ErrBadArgument, got %v.", err)
	}
}

func TestArgsDecimalAndList(t *testing.T) {
	args := NewArgs([]Param{P("amount"), P("symbols")}, nil, map[string]interface{}{
		"amount":  "0.015",
		"symbols": " BTC/USD, ,ETH/USD ",
	})

	amount, err := args.Decimal("amount")
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if amount.String() != "0.015" {
		t.Errorf("Expected amount 0.015 but got %s.", amount)
	}

	list := args.List("symbols")
	if len(list) != 2 || list[0] != "BTC/USD" || list[1] != "ETH/USD" {
		t.Errorf("Unexpected list %v.", list)
	}
}
