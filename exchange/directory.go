package exchange

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

//
// Factory constructs a client for one exchange.
//
type Factory func(cfg Config) (Client, error)

//
// Directory maps exchange identifiers to the factories that construct their clients.
//
type Directory struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// Default is populated by binding packages from their init functions.
var Default = NewDirectory()

//
// NewDirectory instantiates an empty directory.
//
func NewDirectory() *Directory {
	return &Directory{factories: make(map[string]Factory)}
}

//
// Register adds (or replaces) the factory for the provided identifier. Identifiers are stored
// lower-cased.
//
func (o *Directory) Register(id string, factory Factory) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.factories[strings.ToLower(strings.TrimSpace(id))] = factory
}

//
// IDs returns every registered identifier in sorted order.
//
func (o *Directory) IDs() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	ids := make([]string, 0, len(o.factories))
	for id := range o.factories {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

//
// Lookup normalizes free-form operator input (case-insensitive, trimmed) and reports whether it
// names a registered exchange.
//
func (o *Directory) Lookup(input string) (string, bool) {
	id := strings.ToLower(strings.TrimSpace(input))

	o.mu.RLock()
	defer o.mu.RUnlock()

	_, ok := o.factories[id]

	return id, ok
}

//
// New constructs a client for the provided identifier.
//
func (o *Directory) New(id string, cfg Config) (Client, error) {
	id, ok := o.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExchange, id)
	}

	o.mu.RLock()
	factory := o.factories[id]
	o.mu.RUnlock()

	client, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("construct %s client: %w", id, err)
	}

	return client, nil
}

//
// Register adds a factory to the default directory.
//
func Register(id string, factory Factory) {
	Default.Register(id, factory)
}
