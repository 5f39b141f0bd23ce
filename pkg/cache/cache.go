// Package cache stores registry metadata responses between runs.
//
// Three backends implement [Cache]:
//   - [FileCache]: sharded JSON entries under a directory (CLI default)
//   - [RedisCache]: a shared cache for several machines pointing at one registry
//   - [NullCache]: never stores anything (--no-cache, tests)
//
// Keys are produced by a [Keyer] so that backends shared between tools can be
// namespaced with [NewScopedKeyer].
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the stored value and true on a hit. Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// MetadataKey is the key of a version listing for name at source.
	MetadataKey(source, name string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// MetadataKey returns "metadata:<hash(source, name)>". The source URI and
// the package name are hashed together so that a name containing ":" or "/"
// cannot collide with another source.
func (DefaultKeyer) MetadataKey(source, name string) string {
	data, _ := json.Marshal([2]string{source, name})
	return "metadata:" + Hash(data)
}

// ScopedKeyer prefixes every key of an inner Keyer.
//
//	keyer := cache.NewScopedKeyer(nil, "stackpkg:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// MetadataKey returns the prefixed inner key.
func (k *ScopedKeyer) MetadataKey(source, name string) string {
	return k.prefix + k.inner.MetadataKey(source, name)
}

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NullCache never stores anything; every Get is a miss.
type NullCache struct{}

// NewNullCache returns a NullCache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }
