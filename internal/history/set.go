package history

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sahayak-edu/sahayak-api/internal/kvstore"
)

// Set bundles the six module stores for one storage area (one user).
type Set struct {
	stores map[Module]*Store
}

// NewSet builds all module stores over the given (already namespaced) kv.
func NewSet(kv kvstore.Store, defaultCap int, logger zerolog.Logger) *Set {
	stores := make(map[Module]*Store, len(Modules()))
	for _, module := range Modules() {
		stores[module] = ForModule(kv, module, defaultCap, logger)
	}
	return &Set{stores: stores}
}

// Module returns the store for one module.
func (s *Set) Module(module Module) *Store {
	return s.stores[module]
}

// Lengths reads every store's current length.
func (s *Set) Lengths(ctx context.Context) map[Module]int {
	lengths := make(map[Module]int, len(s.stores))
	for module, store := range s.stores {
		lengths[module] = store.Len(ctx)
	}
	return lengths
}

// Provider resolves the store set for a user id.
type Provider func(userID string) *Set

// NewProvider namespaces the shared kv per user and caches nothing; sets are
// cheap wrappers over the kv connection.
func NewProvider(kv kvstore.Store, defaultCap int, logger zerolog.Logger) Provider {
	return func(userID string) *Set {
		return NewSet(kvstore.Namespaced(kv, "user:"+userID), defaultCap, logger)
	}
}
