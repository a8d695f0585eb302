package exchange

import (
	"context"
	"errors"
	"sort"
	"testing"
)

func TestRegistryWiresCatalogue(t *testing.T) {
	called := false

	r := NewRegistry(map[string]CallFunc{
		"fetchTime": func(context.Context, Args) (interface{}, error) {
			called = true
			return int64(42), nil
		},
	}, Endpoint{Name: "ping", Description: "Check connectivity"})

	if r.Len() != len(catalog)+1 {
		t.Fatalf("Expected %d endpoints but found %d.", len(catalog)+1, r.Len())
	}

	names := r.Names()
	if !sort.StringsAreSorted(names) {
		t.Errorf("Names() should be sorted: %v", names)
	}

	e, ok := r.Get("fetchTime")
	if !ok {
		t.Fatalf("fetchTime should be registered.")
	}

	v, err := e.Invoke(context.Background(), nil, nil)
	if err != nil || v != int64(42) || !called {
		t.Errorf("fetchTime should have called its implementation, got (%v, %v).", v, err)
	}

	e, _ = r.Get("fetchPositions")
	if _, err := e.Invoke(context.Background(), nil, nil); !errors.Is(err, ErrNotSupported) {
		t.Errorf("An unimplemented endpoint should fail with ErrNotSupported, got %v.", err)
	}

	e, _ = r.Get("ping")
	if _, err := e.Invoke(context.Background(), nil, nil); !errors.Is(err, ErrNotSupported) {
		t.Errorf("An extra without a Call should fail with ErrNotSupported, got %v.", err)
	}
}

func TestCatalogueParamsArePositionalByName(t *testing.T) {
	for _, e := range Catalog() {
		for _, p := range e.Params {
			want := p.Name == "symbol" || p.Name == "limit" || p.Name == "since"
			if p.Positional() != want {
				t.Errorf("%s.%s: positional = %t, want %t", e.Name, p.Name, p.Positional(), want)
			}
		}
	}
}
