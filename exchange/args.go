package exchange

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

//
// Args holds the values an endpoint was invoked with. Positional values are matched back to the
// endpoint's positional parameters in declaration order; everything else is looked up by name.
//
type Args struct {
	params     []Param
	Positional []interface{}
	Keyword    map[string]interface{}
}

//
// NewArgs binds positional and keyword values to an endpoint's declared parameters.
//
func NewArgs(params []Param, positional []interface{}, keyword map[string]interface{}) Args {
	if keyword == nil {
		keyword = make(map[string]interface{})
	}

	return Args{params: params, Positional: positional, Keyword: keyword}
}

//
// Value returns the raw value bound to the named parameter. A nil value counts as absent.
//
func (o Args) Value(name string) (interface{}, bool) {
	index := 0

	for _, p := range o.params {
		if !p.Positional() {
			continue
		}

		if p.Name == name {
			if index < len(o.Positional) && o.Positional[index] != nil {
				return o.Positional[index], true
			}

			return nil, false
		}

		index++
	}

	v, ok := o.Keyword[name]
	if !ok || v == nil {
		return nil, false
	}

	return v, true
}

//
// String returns the named value formatted as a string, or def if it is absent or blank.
//
func (o Args) String(name string, def string) string {
	v, ok := o.Value(name)
	if !ok {
		return def
	}

	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return def
	}

	return s
}

//
// Int returns the named value as an int, or def if it is absent.
//
func (o Args) Int(name string, def int) (int, error) {
	v, err := o.Int64(name, int64(def))

	return int(v), err
}

//
// Int64 returns the named value as an int64, or def if it is absent.
//
func (o Args) Int64(name string, def int64) (int64, error) {
	v, ok := o.Value(name)
	if !ok {
		return def, nil
	}

	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	case string:
		if strings.TrimSpace(n) == "" {
			return def, nil
		}

		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return def, fmt.Errorf("%w: %s must be an integer (got %q)", ErrBadArgument, name, n)
		}

		return parsed, nil
	default:
		return def, fmt.Errorf("%w: %s must be an integer (got %T)", ErrBadArgument, name, v)
	}
}

//
// Time interprets the named value as epoch milliseconds. The zero time is returned if it is absent.
//
func (o Args) Time(name string) (time.Time, error) {
	ms, err := o.Int64(name, 0)
	if err != nil || ms == 0 {
		return time.Time{}, err
	}

	return time.UnixMilli(ms), nil
}

//
// Decimal returns the named value as a decimal. It fails if the value is absent.
//
func (o Args) Decimal(name string) (decimal.Decimal, error) {
	s := o.String(name, "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %s is required", ErrBadArgument, name)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s must be a number (got %q)", ErrBadArgument, name, s)
	}

	return d, nil
}

//
// Require returns the named value as a string and fails if it is absent or blank.
//
func (o Args) Require(name string) (string, error) {
	s := o.String(name, "")
	if s == "" {
		return "", fmt.Errorf("%w: %s is required", ErrBadArgument, name)
	}

	return s, nil
}

//
// List splits a comma-separated value into trimmed, non-empty elements.
//
func (o Args) List(name string) []string {
	s := o.String(name, "")
	if s == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
