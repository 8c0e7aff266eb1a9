package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for request-independent caching
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
	Delete(key string)
	Clear()
}

// Clock returns the current time (injectable for tests)
type Clock func() time.Time

// Key builds a namespaced cache key from its parts
func Key(namespace string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "draftsmith:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}
