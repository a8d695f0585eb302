package exchange

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

//
// Markets is a concurrency-safe index of loaded markets keyed by unified symbol. Bindings embed it
// to implement Symbols() and to translate unified symbols into exchange identifiers.
//
type Markets struct {
	mu      sync.RWMutex
	bySym   map[string]Market
	symbols []string
}

//
// Set replaces the index with the provided markets.
//
func (o *Markets) Set(markets []Market) {
	bySym := make(map[string]Market, len(markets))
	symbols := make([]string, 0, len(markets))

	for _, m := range markets {
		if _, dup := bySym[m.Symbol]; dup {
			continue
		}

		bySym[m.Symbol] = m
		symbols = append(symbols, m.Symbol)
	}

	sort.Strings(symbols)

	o.mu.Lock()
	defer o.mu.Unlock()

	o.bySym = bySym
	o.symbols = symbols
}

//
// Symbols returns the sorted unified symbols.
//
func (o *Markets) Symbols() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]string, len(o.symbols))
	copy(out, o.symbols)

	return out
}

//
// List returns every loaded market sorted by symbol.
//
func (o *Markets) List() []Market {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]Market, 0, len(o.symbols))
	for _, s := range o.symbols {
		out = append(out, o.bySym[s])
	}

	return out
}

//
// Market resolves a unified symbol (case-insensitive). If markets have not been loaded it falls
// back to the provided converter so that calls can proceed without market data.
//
func (o *Markets) Market(symbol string, fallback func(base, quote string) string) (Market, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	o.mu.RLock()
	m, ok := o.bySym[symbol]
	loaded := len(o.bySym) > 0
	o.mu.RUnlock()

	if ok {
		return m, nil
	}

	base, quote, split := SplitSymbol(symbol)
	if !split {
		return Market{}, fmt.Errorf("%w: %q is not of the form BASE/QUOTE", ErrUnknownSymbol, symbol)
	}

	if loaded || fallback == nil {
		return Market{}, fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}

	return Market{Symbol: symbol, ID: fallback(base, quote), Base: base, Quote: quote}, nil
}

//
// SymbolOf resolves an exchange identifier back to its unified symbol. The identifier itself is
// returned if it is unknown.
//
func (o *Markets) SymbolOf(id string) string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	for _, m := range o.bySym {
		if m.ID == id {
			return m.Symbol
		}
	}

	return id
}

//
// SplitSymbol splits a unified "BASE/QUOTE" symbol.
//
func SplitSymbol(symbol string) (string, string, bool) {
	parts := strings.Split(symbol, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}

	return parts[0], parts[1], true
}
