package exchange

import (
	"context"
	"fmt"
	"sort"
)

//
// CallFunc executes an endpoint.
//
type CallFunc func(ctx context.Context, args Args) (interface{}, error)

//
// Endpoint is one callable method of a client, together with its declared parameters.
//
type Endpoint struct {
	Name        string
	Description string
	Params      []Param
	Call        CallFunc
}

//
// Invoke binds the provided values to the endpoint's parameters and calls it.
//
func (o Endpoint) Invoke(ctx context.Context, positional []interface{}, keyword map[string]interface{}) (interface{}, error) {
	if o.Call == nil {
		return nil, fmt.Errorf("%s: %w", o.Name, ErrNotSupported)
	}

	return o.Call(ctx, NewArgs(o.Params, positional, keyword))
}

//
// Registry manages the endpoints of one client.
//
type Registry struct {
	endpoints map[string]Endpoint
}

//
// NewRegistry builds a registry holding the whole unified catalogue. Catalogue endpoints found in
// impls are wired to their implementation; the rest fail with ErrNotSupported. Extras are
// exchange-specific endpoints that are not part of the catalogue.
//
func NewRegistry(impls map[string]CallFunc, extras ...Endpoint) *Registry {
	r := &Registry{endpoints: make(map[string]Endpoint, len(catalog)+len(extras))}

	for _, e := range catalog {
		if call, ok := impls[e.Name]; ok {
			e.Call = call
		} else {
			e.Call = notSupported(e.Name)
		}

		r.Register(e)
	}

	for _, e := range extras {
		r.Register(e)
	}

	return r
}

//
// Register adds an endpoint to the registry, replacing any endpoint with the same name.
//
func (o *Registry) Register(e Endpoint) {
	o.endpoints[e.Name] = e
}

//
// Get retrieves an endpoint by name.
//
func (o *Registry) Get(name string) (Endpoint, bool) {
	e, ok := o.endpoints[name]

	return e, ok
}

//
// All returns all registered endpoints sorted by name.
//
func (o *Registry) All() []Endpoint {
	out := make([]Endpoint, 0, len(o.endpoints))
	for _, e := range o.endpoints {
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out
}

//
// Names returns the names of all registered endpoints in sorted order.
//
func (o *Registry) Names() []string {
	all := o.All()
	names := make([]string, len(all))

	for i, e := range all {
		names[i] = e.Name
	}

	return names
}

//
// Len returns the number of registered endpoints.
//
func (o *Registry) Len() int {
	return len(o.endpoints)
}

func notSupported(name string) CallFunc {
	return func(context.Context, Args) (interface{}, error) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotSupported)
	}
}
