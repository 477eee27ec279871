// Package platform manages named database platform configurations and the
// connections opened from them.
//
// A platform is a database that stores scenarios for the MESSAGEix-GLOBIOM
// family of models. Platforms are registered under a name in a process-wide
// registry, then opened by name. Two driver families are supported:
//
//   - "sqlite" via mattn/go-sqlite3, including in-memory databases for tests
//     (URL "file:<name>?mode=memory&cache=shared")
//   - "postgres" via lib/pq for shared installations
package platform

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrPlatformNotRegistered is returned when a platform name has no registry entry.
var ErrPlatformNotRegistered = errors.New("platform not registered")

// Config describes how to connect to a platform database.
type Config struct {
	// Class identifies the backend family, e.g. "sql".
	Class string
	// Driver is the database/sql driver name: "sqlite" or "postgres".
	Driver string
	// URL is the driver-specific connection string.
	URL string
}

var registry = struct {
	mu sync.Mutex
	m  map[string]Config
}{m: make(map[string]Config)}

// Register adds a named platform configuration to the process-wide registry.
// Registering a name twice overwrites the earlier entry.
func Register(name string, cfg Config) error {
	if name == "" {
		return fmt.Errorf("register platform: empty name")
	}
	if cfg.Driver != "sqlite" && cfg.Driver != "postgres" {
		return fmt.Errorf("register platform %q: unknown driver %q", name, cfg.Driver)
	}
	if cfg.URL == "" {
		return fmt.Errorf("register platform %q: empty URL", name)
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.m[name] = cfg
	return nil
}

// Remove deletes a named platform configuration.
//
// Removing a name that is not registered is an error; session teardown relies
// on this so that a registration is removed exactly once.
func Remove(name string) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, ok := registry.m[name]; !ok {
		return fmt.Errorf("remove platform %q: %w", name, ErrPlatformNotRegistered)
	}
	delete(registry.m, name)
	return nil
}

// Lookup returns the configuration registered under name.
func Lookup(name string) (Config, error) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	cfg, ok := registry.m[name]
	if !ok {
		return Config{}, fmt.Errorf("platform %q: %w", name, ErrPlatformNotRegistered)
	}
	return cfg, nil
}

// Names returns the registered platform names in sorted order.
func Names() []string {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	names := make([]string, 0, len(registry.m))
	for name := range registry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
