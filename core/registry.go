package core

import (
	"fmt"
	"sort"
	"sync"
)

type SchemeRegistry struct {
	mu        sync.RWMutex
	factories map[AccountScheme]AccountFactory
}

func NewSchemeRegistry() *SchemeRegistry {
	return &SchemeRegistry{factories: make(map[AccountScheme]AccountFactory)}
}

func (r *SchemeRegistry) Register(factory AccountFactory) error {
	if factory == nil {
		return fmt.Errorf("core: account factory is nil")
	}
	scheme := NormalizeScheme(factory.Scheme())
	if scheme == "" {
		return fmt.Errorf("core: account scheme is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[scheme]; exists {
		return fmt.Errorf("core: account scheme already registered: %s", scheme)
	}
	r.factories[scheme] = factory
	return nil
}

func (r *SchemeRegistry) Get(scheme AccountScheme) (AccountFactory, bool) {
	scheme = NormalizeScheme(scheme)
	if scheme == "" {
		return nil, false
	}
	r.mu.RLock()
	factory, ok := r.factories[scheme]
	r.mu.RUnlock()
	return factory, ok
}

func (r *SchemeRegistry) List() []AccountFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemes := make([]string, 0, len(r.factories))
	for scheme := range r.factories {
		schemes = append(schemes, string(scheme))
	}
	sort.Strings(schemes)
	out := make([]AccountFactory, 0, len(schemes))
	for _, scheme := range schemes {
		out = append(out, r.factories[AccountScheme(scheme)])
	}
	return out
}
