// Package kvstore abstracts the per-user key-value storage backing the
// history stores, the stats cache and the activity log. Values are opaque
// serialized blobs; callers own the encoding.
package kvstore

import (
	"context"
	"strings"
)

// Store is the injectable storage contract. Concurrent writers follow
// last-writer-wins semantics; implementations do not merge.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type namespaced struct {
	inner  Store
	prefix string
}

// Namespaced wraps a store so every key is scoped under the given prefix.
// Used to keep one logical storage area per authenticated user.
func Namespaced(inner Store, prefix string) Store {
	prefix = strings.TrimSuffix(prefix, ":")
	if prefix == "" {
		return inner
	}
	return &namespaced{inner: inner, prefix: prefix + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}
