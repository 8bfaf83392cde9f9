package garmentag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"strconv"
	"sync"

	"github.com/corona10/goimagehash"
)

// Cache key prefixes. The policy version is part of each key so a policy
// change never serves labels computed under the old one.
var (
	memoPrefix    = "pose_cls_v" + strconv.Itoa(PolicyVersion)
	similarPrefix = "pose_sim_v" + strconv.Itoa(PolicyVersion)
)

// memoEntry is a cached classification decision.
type memoEntry struct {
	Category Category
	Source   string // SourcePose or SourceFallback
	Counts   LandmarkCounts
}

// memoKey returns the cache key for the exact file content data. Only a
// byte-identical file can reuse a cached category.
func (c *Config) memoKey(data []byte) string {
	sum := sha256.Sum256(data)
	return c.Cache.Key(memoPrefix, hex.EncodeToString(sum[:]))
}

// similarKey returns the key of img's perceptual difference hash. Images
// under the same key look alike but may still carry different labels.
// ok is false when hashing fails.
func (c *Config) similarKey(img image.Image) (key string, ok bool) {
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return "", false
	}
	return c.Cache.Key(similarPrefix, hash.ToString()), true
}

// MemoryCache is an in-process Cache. It is safe for concurrent use.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]any
}

// Key implements Cache.
func (m *MemoryCache) Key(prefix, value string) string {
	return prefix + ":" + value
}

// Get implements Cache. dest must point at a value of the stored type.
func (m *MemoryCache) Get(_ context.Context, key string, dest any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.items[key]
	if !ok {
		return false
	}
	switch d := dest.(type) {
	case *memoEntry:
		e, ok := v.(memoEntry)
		if !ok {
			return false
		}
		*d = e
		return true
	case *Category:
		cat, ok := v.(Category)
		if !ok {
			return false
		}
		*d = cat
		return true
	case *string:
		s, ok := v.(string)
		if !ok {
			return false
		}
		*d = s
		return true
	default:
		return false
	}
}

// Set implements Cache.
func (m *MemoryCache) Set(_ context.Context, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.items == nil {
		m.items = make(map[string]any)
	}
	m.items[key] = value
}

// Len returns the number of cached entries.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
