package providers

import (
	"fmt"
	"sync"

	"market-streamer/src/interfaces"
)

// The global registry map. Key is the provider name (e.g., "finnhub"),
// value is the constructor function.
var (
	registry = make(map[string]interfaces.IProviderConstructor)
	mu       sync.RWMutex // Use a mutex for concurrent map access
)

// Register is called by each provider's init() function to add itself to the map.
func Register(name string, constructor interfaces.IProviderConstructor) error {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		return fmt.Errorf("provider constructor already registered for name: %s", name)
	}
	registry[name] = constructor
	return nil
}

// GetConstructor retrieves the constructor for a provider name.
func GetConstructor(name string) (interfaces.IProviderConstructor, error) {
	mu.RLock()
	defer mu.RUnlock()
	constructor, exists := registry[name]
	if !exists {
		return nil, fmt.Errorf("unknown provider type: %s", name)
	}
	return constructor, nil
}

// RegisteredNames lists every registered provider type.
func RegisteredNames() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
