package service

import (
	"context"
	"fmt"
	"sync"

	"hdbagent/internal/repository"
)

// VocabCatalog holds the router's town and flat-type vocabulary, loaded
// once from storage and held for the process lifetime. There is no
// fallback vocabulary: a load failure is fatal to the caller.
type VocabCatalog struct {
	mu        sync.RWMutex
	store     *repository.Store
	towns     []string
	flatTypes []string
	loaded    bool
}

// NewVocabCatalog creates a catalog bound to a storage handle.
func NewVocabCatalog(store *repository.Store) *VocabCatalog {
	return &VocabCatalog{store: store}
}

// Load queries the distinct town names and flat-type labels. Subsequent
// calls are no-ops until Reload swaps the storage handle.
func (v *VocabCatalog) Load(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loaded {
		return nil
	}

	towns, err := v.store.Towns(ctx)
	if err != nil {
		return fmt.Errorf("failed to load town vocabulary: %w", err)
	}
	flatTypes, err := v.store.FlatTypes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load flat-type vocabulary: %w", err)
	}

	v.towns = towns
	v.flatTypes = flatTypes
	v.loaded = true
	return nil
}

// Reload rebinds the catalog to a different storage handle and clears the
// cached vocabulary, so the next Load hits the new store. Used for test
// isolation.
func (v *VocabCatalog) Reload(store *repository.Store) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.store = store
	v.towns = nil
	v.flatTypes = nil
	v.loaded = false
}

// Towns returns the loaded town vocabulary.
func (v *VocabCatalog) Towns() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.towns
}

// FlatTypes returns the loaded flat-type vocabulary.
func (v *VocabCatalog) FlatTypes() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.flatTypes
}
