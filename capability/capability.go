package capability

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/lukehollenback/exprobe/exchange"
)

//
// Status is the support status of one endpoint as reported by an exchange's capability map.
//
type Status int

const (
	Unsupported Status = iota
	Supported
	Emulated
	Unknown
)

func (o Status) String() string {
	return [...]string{"Not Supported", "Supported", "Emulated", "Unknown"}[o]
}

//
// Glyph returns the single-character marker used in tables and selectors.
//
func (o Status) Glyph() string {
	return [...]string{"✗", "✓", "⚡", "?"}[o]
}

//
// Note returns the explanation shown next to the status in capability tables.
//
func (o Status) Note() string {
	return [...]string{"Not available", "Native implementation", "Implemented via other methods", "Not reported"}[o]
}

//
// Category is a named group of canonical endpoint names.
//
type Category struct {
	Name      string
	Endpoints []string
}

// Categories lists the endpoint groups that are checked, in display order.
var Categories = []Category{
	{
		Name: "Market Data",
		Endpoints: []string{
			"fetchMarkets", "fetchCurrencies", "fetchTicker", "fetchTickers",
			"fetchOrderBook", "fetchOHLCV", "fetchTrades", "fetchStatus",
		},
	},
	{
		Name: "Trading",
		Endpoints: []string{
			"createOrder", "cancelOrder", "cancelAllOrders", "editOrder",
			"fetchOrder", "fetchOrders", "fetchOpenOrders", "fetchClosedOrders",
		},
	},
	{
		Name: "Account",
		Endpoints: []string{
			"fetchBalance", "fetchMyTrades", "fetchLedger", "fetchTransactions",
			"fetchDeposits", "fetchWithdrawals", "fetchDepositAddress",
		},
	},
	{
		Name: "Advanced",
		Endpoints: []string{
			"fetchPositions", "fetchFundingRate", "fetchFundingHistory",
			"fetchBorrowRate", "fetchTradingFee", "fetchTradingFees",
		},
	},
	{
		Name: "WebSocket",
		Endpoints: []string{
			"ws", "watchTicker", "watchTickers", "watchOrderBook",
			"watchTrades", "watchOHLCV", "watchBalance", "watchOrders",
		},
	},
}

//
// Classify maps a capability map entry onto a status. Only a literal true is supported and only
// the exact "emulated" token is emulated. Anything else, absence included, is unsupported.
//
func Classify(has exchange.Has, name string) Status {
	v, ok := has[name]
	if !ok {
		return Unsupported
	}

	switch t := v.(type) {
	case bool:
		if t {
			return Supported
		}
	case string:
		if t == exchange.Emulated {
			return Emulated
		}
	}

	return Unsupported
}

//
// Lookup is Classify for the endpoint selector, where a name the capability map does not mention
// at all is shown as Unknown rather than Unsupported.
//
func Lookup(has exchange.Has, name string) Status {
	if _, ok := has[name]; !ok {
		return Unknown
	}

	return Classify(has, name)
}

//
// Bucket holds the endpoints of one category that share a status.
//
type Bucket struct {
	Category  string
	Endpoints []string
}

//
// Buckets marshals as a JSON object keyed by category, in category order.
//
type Buckets []Bucket

func (o Buckets) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, b := range o {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(b.Category)
		if err != nil {
			return nil, err
		}

		endpoints := b.Endpoints
		if endpoints == nil {
			endpoints = []string{}
		}

		value, err := json.Marshal(endpoints)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

//
// Categorized holds the per-category endpoint buckets of every status.
//
type Categorized struct {
	Supported    Buckets `json:"supported"`
	Emulated     Buckets `json:"emulated"`
	NotSupported Buckets `json:"not_supported"`
}

//
// Summary counts the checked endpoints. Percentages are rounded to one decimal.
//
type Summary struct {
	TotalChecked           int     `json:"total_checked"`
	Supported              int     `json:"supported"`
	Emulated               int     `json:"emulated"`
	NotSupported           int     `json:"not_supported"`
	SupportPercentage      float64 `json:"support_percentage"`
	EmulatedPercentage     float64 `json:"emulated_percentage"`
	NotSupportedPercentage float64 `json:"not_supported_percentage"`
}

//
// Report is the result of checking a capability map against every category.
//
type Report struct {
	Categorized Categorized
	Summary     Summary
}

//
// Check classifies every categorized endpoint and summarizes the result.
//
func Check(has exchange.Has) Report {
	var r Report

	for _, c := range Categories {
		supported := Bucket{Category: c.Name}
		emulated := Bucket{Category: c.Name}
		unsupported := Bucket{Category: c.Name}

		for _, name := range c.Endpoints {
			switch Classify(has, name) {
			case Supported:
				supported.Endpoints = append(supported.Endpoints, name)
			case Emulated:
				emulated.Endpoints = append(emulated.Endpoints, name)
			default:
				unsupported.Endpoints = append(unsupported.Endpoints, name)
			}
		}

		r.Categorized.Supported = append(r.Categorized.Supported, supported)
		r.Categorized.Emulated = append(r.Categorized.Emulated, emulated)
		r.Categorized.NotSupported = append(r.Categorized.NotSupported, unsupported)

		r.Summary.Supported += len(supported.Endpoints)
		r.Summary.Emulated += len(emulated.Endpoints)
		r.Summary.NotSupported += len(unsupported.Endpoints)
	}

	r.Summary.TotalChecked = r.Summary.Supported + r.Summary.Emulated + r.Summary.NotSupported

	if r.Summary.TotalChecked > 0 {
		r.Summary.SupportPercentage = percentage(r.Summary.Supported, r.Summary.TotalChecked)
		r.Summary.EmulatedPercentage = percentage(r.Summary.Emulated, r.Summary.TotalChecked)
		r.Summary.NotSupportedPercentage = percentage(r.Summary.NotSupported, r.Summary.TotalChecked)
	}

	return r
}

//
// Entry pairs an endpoint name with its status.
//
type Entry struct {
	Name   string
	Status Status
}

//
// Entries returns the endpoints of the category at the provided index in display order: supported
// first, then emulated, then unsupported.
//
func (o Report) Entries(category int) []Entry {
	var entries []Entry

	for _, b := range []struct {
		buckets Buckets
		status  Status
	}{
		{o.Categorized.Supported, Supported},
		{o.Categorized.Emulated, Emulated},
		{o.Categorized.NotSupported, Unsupported},
	} {
		for _, name := range b.buckets[category].Endpoints {
			entries = append(entries, Entry{Name: name, Status: b.status})
		}
	}

	return entries
}

func percentage(n, total int) float64 {
	return math.Round(float64(n)/float64(total)*1000) / 10
}
