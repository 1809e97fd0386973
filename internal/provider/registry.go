package provider

import (
	"fmt"
	"sort"
	"strings"
)

// Registry holds the validated provider configs, keyed by name.
// It is built once at startup and immutable afterwards; components receive
// it by value injection rather than through process-wide globals.
type Registry struct {
	providers map[string]*Config
}

// NewRegistry validates and registers the given configs.
// A config that fails validation is returned in rejected and is NOT
// registered; the caller logs and keeps going, so one broken provider never
// takes down the rest.
func NewRegistry(configs []Config) (reg *Registry, rejected []error) {
	reg = &Registry{providers: make(map[string]*Config, len(configs))}
	for i := range configs {
		c := configs[i]
		if err := c.Validate(); err != nil {
			rejected = append(rejected, err)
			continue
		}
		name := strings.ToLower(c.Name)
		if _, dup := reg.providers[name]; dup {
			rejected = append(rejected, fmt.Errorf("%w: duplicate provider %q", ErrInvalid, c.Name))
			continue
		}
		reg.providers[name] = &c
	}
	return reg, rejected
}

// Get returns the config for a provider name (case-insensitive).
func (r *Registry) Get(name string) (*Config, bool) {
	c, ok := r.providers[strings.ToLower(name)]
	return c, ok
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	return len(r.providers)
}
