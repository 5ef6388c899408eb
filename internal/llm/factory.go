package llm

import (
	"fmt"
	"sync"

	"github.com/nexusai/broker/internal/config"
)

// Factory builds a Provider instance from its static configuration.
type Factory func(cfg config.ProviderConfig) (Provider, error)

var (
	mu        sync.RWMutex
	factories = make(map[Kind]Factory)
)

// Register installs a factory for a provider kind. Adapter packages
// call this from init(); a duplicate kind is a programming error.
func Register(kind Kind, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("provider factory %s already registered", kind))
	}
	factories[kind] = f
}

// Get returns the factory registered for kind.
func Get(kind Kind) (Factory, error) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[kind]
	if !ok {
		return nil, fmt.Errorf("provider factory not found for kind: %s", kind)
	}
	return f, nil
}

// New builds a provider for cfg.Kind via the registered factory.
func New(cfg config.ProviderConfig) (Provider, error) {
	f, err := Get(Kind(cfg.Kind))
	if err != nil {
		return nil, fmt.Errorf("factory lookup failed for kind %s: %w", cfg.Kind, err)
	}
	return f(cfg)
}
