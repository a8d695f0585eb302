package invoke

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lukehollenback/exprobe/exchange"
	"github.com/lukehollenback/exprobe/metrics"
)

//
// Invocation is an endpoint together with the values it is about to be called with. Symbol, limit,
// and since travel positionally in declaration order; everything else travels by keyword.
//
type Invocation struct {
	Endpoint   exchange.Endpoint
	Positional []interface{}
	Keyword    map[string]interface{}
}

func newInvocation(e exchange.Endpoint) Invocation {
	return Invocation{Endpoint: e, Positional: []interface{}{}, Keyword: map[string]interface{}{}}
}

func (o *Invocation) bind(p exchange.Param, v interface{}) {
	if p.Positional() {
		o.Positional = append(o.Positional, v)
	} else {
		o.Keyword[p.Name] = v
	}
}

//
// Call renders the invocation the way it would be written in code, e.g.
// "fetchOHLCV(BTC/USD, 1700000000000, 10, {timeframe: 1h})".
//
func (o Invocation) Call() string {
	args := make([]string, 0, len(o.Positional)+1)
	for _, v := range o.Positional {
		args = append(args, format(v))
	}

	args = append(args, formatKeyword(o.Keyword))

	return fmt.Sprintf("%s(%s)", o.Endpoint.Name, strings.Join(args, ", "))
}

func format(v interface{}) string {
	if v == nil {
		return "None"
	}

	return fmt.Sprint(v)
}

func formatKeyword(kw map[string]interface{}) string {
	names := make([]string, 0, len(kw))
	for k := range kw {
		names = append(names, k)
	}

	sort.Strings(names)

	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = k + ": " + format(kw[k])
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

//
// Record is the outcome of one invocation.
//
type Record struct {
	Exchange   string
	Endpoint   string
	Call       string
	Positional []interface{}
	Keyword    map[string]interface{}
	Result     interface{}
	Err        error
	Started    time.Time
	Duration   time.Duration
}

//
// Invoke calls the endpoint on behalf of the client and records how it went.
//
func Invoke(ctx context.Context, client exchange.Client, inv Invocation) Record {
	rec := Record{
		Exchange:   client.ID(),
		Endpoint:   inv.Endpoint.Name,
		Call:       inv.Call(),
		Positional: inv.Positional,
		Keyword:    inv.Keyword,
		Started:    time.Now(),
	}

	rec.Result, rec.Err = inv.Endpoint.Invoke(ctx, inv.Positional, inv.Keyword)
	rec.Duration = time.Since(rec.Started)

	metrics.ObserveCall(rec.Exchange, rec.Endpoint, rec.Duration, rec.Err)

	return rec
}

//
// APICode returns the code of the API error behind a failed invocation, if there is one.
//
func (o Record) APICode() (string, bool) {
	var apiErr exchange.APIError
	if errors.As(o.Err, &apiErr) && apiErr.Code() != "" {
		return apiErr.Code(), true
	}

	var httpErr *exchange.HTTPError
	if errors.As(o.Err, &httpErr) {
		return fmt.Sprint(httpErr.StatusCode()), true
	}

	return "", false
}

//
// Chain returns the messages of every error wrapped by the failure, outermost first.
//
func (o Record) Chain() []string {
	var out []string

	for err := o.Err; err != nil; err = errors.Unwrap(err) {
		out = append(out, fmt.Sprintf("%T: %s", err, err))
	}

	return out
}

//
// RequestInfo is the non-secret description of a request, suitable for display and persistence.
//
type RequestInfo struct {
	Exchange         string                 `json:"exchange"`
	Endpoint         string                 `json:"endpoint"`
	Arguments        []interface{}          `json:"arguments"`
	KeywordArguments map[string]interface{} `json:"keyword_arguments"`
	Method           string                 `json:"method"`
	DurationMillis   int64                  `json:"duration_ms"`
}

//
// RequestInfo describes the request behind the record.
//
func (o Record) RequestInfo() RequestInfo {
	return RequestInfo{
		Exchange:         o.Exchange,
		Endpoint:         o.Endpoint,
		Arguments:        o.Positional,
		KeywordArguments: o.Keyword,
		Method:           o.Call,
		DurationMillis:   o.Duration.Milliseconds(),
	}
}

//
// Rows lays the request out as field/value pairs.
//
func (o RequestInfo) Rows() [][]string {
	args := make([]string, len(o.Arguments))
	for i, v := range o.Arguments {
		args[i] = format(v)
	}

	return [][]string{
		{"Exchange", o.Exchange},
		{"Endpoint", o.Endpoint},
		{"Arguments", "[" + strings.Join(args, ", ") + "]"},
		{"Keyword Arguments", formatKeyword(o.KeywordArguments)},
		{"Method", o.Method},
		{"Duration", fmt.Sprintf("%d ms", o.DurationMillis)},
	}
}
