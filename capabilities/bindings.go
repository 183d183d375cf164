package capabilities

import (
	"sync"

	"caplink/core"
)

// Bindings is a concurrency-safe table of actor bindings held by a provider,
// keyed by the actor's module identity. Binding is idempotent per module:
// re-binding replaces the prior configuration rather than merging with it.
type Bindings struct {
	mu      sync.RWMutex
	configs map[string]core.CapabilityConfiguration
}

func NewBindings() *Bindings {
	return &Bindings{configs: make(map[string]core.CapabilityConfiguration)}
}

// Bind stores the configuration for its module, replacing any earlier binding.
// Unrecognized keys in the values map are retained as-is; they are extension
// data, never a reason to fail the binding.
func (b *Bindings) Bind(cfg core.CapabilityConfiguration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.configs[cfg.Module] = cfg.Clone()
	return nil
}

// Remove drops the binding for a module. Removing an unbound module is a no-op.
func (b *Bindings) Remove(module string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.configs, module)
}

// Get returns a copy of the configuration bound to module.
func (b *Bindings) Get(module string) (core.CapabilityConfiguration, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cfg, ok := b.configs[module]
	if !ok {
		return core.CapabilityConfiguration{}, false
	}
	return cfg.Clone(), true
}

// Modules returns the identities of all currently bound actors.
func (b *Bindings) Modules() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.configs))
	for m := range b.configs {
		out = append(out, m)
	}
	return out
}
