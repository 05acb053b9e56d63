package provider

import (
	"fmt"
	"sync"
)

// Registry manages the available processor dialect factories.
type Registry struct {
	factories map[string]ProviderFactory
	mu        sync.RWMutex
}

// NewRegistry creates an empty dialect registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]ProviderFactory),
	}
}

// Register adds a dialect factory under the given name.
func (r *Registry) Register(name string, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get retrieves a dialect factory by name.
func (r *Registry) Get(name string) (ProviderFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("payment provider '%s' is not registered", name)
	}
	return factory, nil
}

// CreateProvider creates a new, uninitialized instance of a dialect.
func (r *Registry) CreateProvider(name string) (GatewayProvider, error) {
	factory, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return factory(), nil
}

// Names returns all registered dialect names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// DefaultRegistry is the global registry dialect packages register into
// from their init functions.
var DefaultRegistry = NewRegistry()

// Register registers a dialect with the default registry.
func Register(name string, factory ProviderFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get retrieves a dialect factory from the default registry.
func Get(name string) (ProviderFactory, error) {
	return DefaultRegistry.Get(name)
}

// CreateProvider creates a dialect instance from the default registry.
func CreateProvider(name string) (GatewayProvider, error) {
	return DefaultRegistry.CreateProvider(name)
}
