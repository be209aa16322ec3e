// Package registry resolves the external code modules backing
// external-method commands.
//
// The manifest maps logical source names to locator strings; hosts bind
// loaders to locators at process start. Resolution by logical name is
// memoized for the lifetime of the resolver, and concurrent first-time loads
// of the same source are collapsed into a single in-flight load so
// module-level initialization runs exactly once.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/aretw0/arbor/pkg/domain"
)

// HandlerFunc is the signature of an exported module function. Handlers are
// trusted code; errors they return become Result errors, never panics.
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

// Module is the set of functions a resolved source exports, keyed by the
// method names the manifest refers to.
type Module map[string]HandlerFunc

// Exports returns the module's exported function names, sorted. Dispatch
// errors include this list when a methodName is missing, so the operator can
// see what the module actually provides.
func (m Module) Exports() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Loader constructs a module. It runs at most once per source name; its
// side effects (opening connections, loading model files) are the module
// initialization the cache exists to de-duplicate.
type Loader func(ctx context.Context) (Module, error)

// Resolver loads and memoizes source modules.
type Resolver struct {
	sources map[string]string // logical name -> locator

	mu      sync.RWMutex
	loaders map[string]Loader // locator -> loader
	cache   map[string]Module // logical name -> loaded module

	group singleflight.Group
}

// NewResolver creates a resolver over the manifest's sources table.
func NewResolver(sources map[string]string) *Resolver {
	r := &Resolver{
		sources: make(map[string]string, len(sources)),
		loaders: make(map[string]Loader),
		cache:   make(map[string]Module),
	}
	for name, locator := range sources {
		r.sources[name] = locator
	}
	return r
}

// Bind registers the loader for a locator. Later binds for the same locator
// overwrite earlier ones.
func (r *Resolver) Bind(locator string, loader Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[locator] = loader
}

// BindModule registers an already-constructed module under a locator.
func (r *Resolver) BindModule(locator string, module Module) {
	r.Bind(locator, func(context.Context) (Module, error) {
		return module, nil
	})
}

// Resolve returns the module for a logical source name, loading it on first
// use. Concurrent first resolutions of the same name share one load.
func (r *Resolver) Resolve(ctx context.Context, sourceName string) (Module, error) {
	r.mu.RLock()
	if module, ok := r.cache[sourceName]; ok {
		r.mu.RUnlock()
		return module, nil
	}
	locator, declared := r.sources[sourceName]
	var loader Loader
	if declared {
		loader = r.loaders[locator]
	}
	r.mu.RUnlock()

	if !declared {
		return nil, fmt.Errorf("%w: %q is not declared in the manifest sources", domain.ErrUnknownSource, sourceName)
	}
	if loader == nil {
		return nil, fmt.Errorf("source %q: no loader bound for locator %q", sourceName, locator)
	}

	result, err, _ := r.group.Do(sourceName, func() (any, error) {
		// Re-check under the write path: a previous flight may have
		// populated the cache between our read and this call.
		r.mu.RLock()
		cached, ok := r.cache[sourceName]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}

		module, err := loader(ctx)
		if err != nil {
			return nil, fmt.Errorf("source %q (locator %q): load failed: %w", sourceName, locator, err)
		}

		r.mu.Lock()
		r.cache[sourceName] = module
		r.mu.Unlock()
		return module, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(Module), nil
}

// SetSources replaces the logical name table. Bound loaders survive, so a
// reloaded manifest keeps working as long as its locators are unchanged.
func (r *Resolver) SetSources(sources map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = make(map[string]string, len(sources))
	for name, locator := range sources {
		r.sources[name] = locator
	}
}

// Loaded enumerates the source names currently cached, sorted.
func (r *Resolver) Loaded() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.cache))
	for name := range r.cache {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear empties the cache. The next Resolve for each source re-runs its
// loader; hot-reload tooling calls this after swapping the manifest.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]Module)
}
