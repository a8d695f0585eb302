package invoke

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lukehollenback/exprobe/console"
	"github.com/lukehollenback/exprobe/constants"
	"github.com/lukehollenback/exprobe/exchange"
)

//
// Hints are the defaults offered while collecting parameters.
//
type Hints struct {
	Symbols []string // Known symbols of the current exchange, possibly none.
	Symbol  string   // Fallback symbol when none are known.
	Limit   int
}

//
// SymbolHints returns the symbols shown to the operator: at most the first HintCount known ones.
//
func (o Hints) SymbolHints() []string {
	if len(o.Symbols) > constants.HintCount {
		return o.Symbols[:constants.HintCount]
	}

	return o.Symbols
}

//
// DefaultSymbol returns the first hinted symbol, or the configured fallback.
//
func (o Hints) DefaultSymbol() string {
	if hints := o.SymbolHints(); len(hints) > 0 {
		return hints[0]
	}

	return o.Symbol
}

func (o Hints) limit() int {
	if o.Limit > 0 {
		return o.Limit
	}

	return constants.DefaultLimit
}

//
// Collector prompts the operator for the parameters of an endpoint.
//
type Collector struct {
	IO    console.IO
	Hints Hints
	Now   func() time.Time
}

func (o Collector) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}

	return o.Now()
}

//
// Collect prompts for every declared parameter of the endpoint, in order, and returns the resulting
// invocation.
//
func (o Collector) Collect(ctx context.Context, e exchange.Endpoint) (Invocation, error) {
	inv := newInvocation(e)

	for _, p := range e.Params {
		var (
			raw string
			err error
		)

		switch p.Kind {
		case exchange.KindSymbol:
			if hints := o.Hints.SymbolHints(); len(hints) > 0 {
				o.IO.Info("Available symbols (first %d): %s", len(hints), strings.Join(hints, ", "))
			}

			raw, err = o.IO.Prompt(ctx, "Enter "+p.Name, o.Hints.DefaultSymbol())
		case exchange.KindLimit:
			raw, err = o.IO.Prompt(ctx, "Enter "+p.Name, strconv.Itoa(o.Hints.limit()))
		case exchange.KindSince:
			raw, err = o.IO.Prompt(ctx, "Enter "+p.Name+" (timestamp or 'now')", "now")
		default:
			label := "Enter " + p.Name
			if p.Description != "" {
				label += " (" + p.Description + ")"
			}

			raw, err = o.IO.Prompt(ctx, label, "")
		}

		if err != nil {
			return Invocation{}, err
		}

		inv.bind(p, Coerce(p.Kind, raw, o.now()))
	}

	return inv, nil
}

//
// FromFlags builds an invocation without prompting: every parameter takes its default unless an
// override names it. Since and free-text parameters without an override are left out.
//
func FromFlags(e exchange.Endpoint, hints Hints, overrides map[string]string, now time.Time) (Invocation, error) {
	declared := make(map[string]bool, len(e.Params))
	for _, p := range e.Params {
		declared[p.Name] = true
	}

	for name := range overrides {
		if !declared[name] {
			return Invocation{}, fmt.Errorf("%w: %s has no parameter %q", exchange.ErrBadArgument, e.Name, name)
		}
	}

	inv := newInvocation(e)

	for _, p := range e.Params {
		if raw, ok := overrides[p.Name]; ok {
			inv.bind(p, Coerce(p.Kind, raw, now))
			continue
		}

		switch p.Kind {
		case exchange.KindSymbol:
			inv.bind(p, hints.DefaultSymbol())
		case exchange.KindLimit:
			inv.bind(p, hints.limit())
		default:
			inv.bind(p, nil)
		}
	}

	return inv, nil
}

//
// ParseOverrides turns repeated "name=value" flags into a map.
//
func ParseOverrides(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if name = strings.TrimSpace(name); !ok || name == "" {
			return nil, fmt.Errorf("%w: parameter override %q must look like name=value", exchange.ErrBadArgument, pair)
		}

		out[name] = value
	}

	return out, nil
}

//
// Coerce converts raw operator input according to the kind of parameter it was entered for.
//
func Coerce(kind exchange.Kind, raw string, now time.Time) interface{} {
	switch kind {
	case exchange.KindSymbol:
		return strings.TrimSpace(raw)
	case exchange.KindLimit:
		return CoerceLimit(raw)
	case exchange.KindSince:
		return CoerceSince(raw, now)
	default:
		return CoerceText(raw)
	}
}

//
// CoerceLimit returns the input as an int, or unchanged if it is not one.
//
func CoerceLimit(raw string) interface{} {
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return n
	}

	return raw
}

//
// CoerceSince returns "now" as the current time in epoch milliseconds and any other integer as is.
// Anything else is returned unchanged.
//
func CoerceSince(raw string, now time.Time) interface{} {
	s := strings.TrimSpace(raw)

	if strings.EqualFold(s, "now") {
		return now.UnixMilli()
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}

	return raw
}

//
// CoerceText maps "none" to nil and "true"/"false" to booleans (all case-insensitively). Anything else
// is returned unchanged.
//
func CoerceText(raw string) interface{} {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "none":
		return nil
	case "true":
		return true
	case "false":
		return false
	default:
		return raw
	}
}
