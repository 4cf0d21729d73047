package utils

import (
	"fmt"
	"sync"
)

// RegistryValidator is a function that validates a key-value pair before registration
type RegistryValidator[K comparable, V any] func(key K, value V, existing map[K]V) error

// Registry provides a generic, thread-safe registry that remembers the
// order items were registered in
type Registry[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
	order []K
}

// NewRegistry creates a new generic registry
func NewRegistry[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{
		items: make(map[K]V),
	}
}

// RegisterWithValidator adds an item to the registry with custom validation
func (r *Registry[K, V]) RegisterWithValidator(key K, value V, validator RegistryValidator[K, V]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if validator != nil {
		if err := validator(key, value, r.items); err != nil {
			return err
		}
	}

	if _, exists := r.items[key]; !exists {
		r.order = append(r.order, key)
	}
	r.items[key] = value
	return nil
}

// Get retrieves an item from the registry
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, exists := r.items[key]
	return value, exists
}

// List returns all keys in registration order
func (r *Registry[K, V]) List() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]K, len(r.order))
	copy(keys, r.order)
	return keys
}

// Values returns all values in registration order
func (r *Registry[K, V]) Values() []V {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values := make([]V, 0, len(r.order))
	for _, key := range r.order {
		values = append(values, r.items[key])
	}
	return values
}

// Size returns the number of items in the registry
func (r *Registry[K, V]) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// NoDuplicates rejects keys that are already registered. describe renders
// the conflict for the error message.
func NoDuplicates[K comparable, V any](describe func(key K, existing, value V) string) RegistryValidator[K, V] {
	return func(key K, value V, existing map[K]V) error {
		if prev, ok := existing[key]; ok {
			return fmt.Errorf("duplicate %s", describe(key, prev, value))
		}
		return nil
	}
}
