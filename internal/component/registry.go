// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function with a factory.  At startup
// main gathers the shared services into a Deps value and calls Build, which
// runs every factory once.  The server mounts each component's Routes() at
// its Prefix().

package component

import (
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Component contract.
//
// Routes() should mount BOTH page and JSON endpoints, relative to Prefix():
//
//	r := chi.NewRouter()
//	r.With(acl.Require(acl.OpProfile)).Get("/profile", c.profile)
//	return r
type Component interface {
	Name() string
	Prefix() string
	Routes() chi.Router
}

// Factory builds a Component from the shared services.
type Factory func(Deps) Component

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register is invoked from component init() functions.  A second
// registration under the same name replaces the first.
func Register(name string, f Factory) {
	mu.Lock()
	registry[name] = f
	mu.Unlock()
}

// Names returns the registered component names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Build runs every factory against d, in name order.
func Build(d Deps) []Component {
	names := Names()
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(names))
	for _, n := range names {
		out = append(out, registry[n](d))
	}
	return out
}
