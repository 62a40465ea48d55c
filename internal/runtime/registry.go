package runtime

import (
	"sync"

	"github.com/streamspace/ringhost/internal/target"
)

// Registry is the name-keyed table of loaded plugins, implementing
// target.Resolver so the host context can reach it without owning it.
// Loading and unloading are comparatively rare compared to dispatch lookups,
// so a single RWMutex is the right tool, not sharding.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]*LoadedPlugin
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]*LoadedPlugin)}
}

// Resolve implements target.Resolver.
func (r *Registry) Resolve(name string) (target.Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	if !ok {
		return nil, false
	}
	return p, true
}

// Get returns the concrete LoadedPlugin for name, for callers (the Host's
// call operations in ops.go) that need more than the narrow target.Plugin
// view.
func (r *Registry) Get(name string) (*LoadedPlugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// Put registers p under its own name. Returns false without modifying the
// registry if a plugin with that name is already loaded.
func (r *Registry) Put(p *LoadedPlugin) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.plugins[p.name]; exists {
		return false
	}
	r.plugins[p.name] = p
	return true
}

// Replace atomically swaps whatever is registered under name for p, used by
// Reload. Returns the previous plugin, if any.
func (r *Registry) Replace(name string, p *LoadedPlugin) (*LoadedPlugin, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, existed := r.plugins[name]
	r.plugins[name] = p
	return prev, existed
}

// Remove deletes name from the registry and returns the plugin that was
// there, if any.
func (r *Registry) Remove(name string) (*LoadedPlugin, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plugins[name]
	if ok {
		delete(r.plugins, name)
	}
	return p, ok
}

// Names returns every currently loaded plugin's name, in no particular
// order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	return names
}
