package bus

import (
	"fmt"
	"sync"
	"time"
)

// Registry maps resource schemes to transport drivers.
type Registry struct {
	drivers map[string]Driver
	mu      sync.RWMutex
}

// NewRegistry creates a new driver registry.
func NewRegistry() *Registry {
	return &Registry{
		drivers: make(map[string]Driver),
	}
}

// Register adds a driver for the given scheme.
func (r *Registry) Register(scheme string, driver Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drivers[scheme]; exists {
		return fmt.Errorf("%w: %s", ErrDriverConflict, scheme)
	}

	r.drivers[scheme] = driver
	return nil
}

// MustRegister adds a driver and panics on conflict. Intended for use from
// driver init functions.
func (r *Registry) MustRegister(scheme string, driver Driver) {
	if err := r.Register(scheme, driver); err != nil {
		panic(err)
	}
}

// Open opens a transport for the given resource.
func (r *Registry) Open(res Resource, timeout time.Duration) (Transport, error) {
	r.mu.RLock()
	driver, exists := r.drivers[res.Scheme]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScheme, res.Scheme)
	}

	return driver.Open(res.Target, timeout)
}

// Enumerate collects candidate resources from every driver that supports
// enumeration.
func (r *Registry) Enumerate() []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var resources []Resource
	for _, driver := range r.drivers {
		if e, ok := driver.(Enumerator); ok {
			resources = append(resources, e.Enumerate()...)
		}
	}
	return resources
}

// ListDrivers returns the registered scheme names.
func (r *Registry) ListDrivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	return names
}

// Default registry instance
var defaultRegistry = NewRegistry()

// Register adds a driver to the default registry.
func Register(scheme string, driver Driver) error {
	return defaultRegistry.Register(scheme, driver)
}

// MustRegister adds a driver to the default registry and panics on conflict.
func MustRegister(scheme string, driver Driver) {
	defaultRegistry.MustRegister(scheme, driver)
}

// OpenTransport opens a transport using the default registry.
func OpenTransport(res Resource, timeout time.Duration) (Transport, error) {
	return defaultRegistry.Open(res, timeout)
}

// EnumerateResources lists discovery candidates from the default registry.
func EnumerateResources() []Resource {
	return defaultRegistry.Enumerate()
}

// ListDrivers returns the scheme names registered in the default registry.
func ListDrivers() []string {
	return defaultRegistry.ListDrivers()
}
