// Package cache keeps recent digests in memory so their PDF can be
// downloaded after the request that produced them. Nothing is persisted.
package cache

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"article-digest/internal/domain/entity"
)

// ErrNotFound is returned for ids that were never stored or have been evicted.
var ErrNotFound = entity.ErrNotFound

// DigestCache is a bounded least recently used store of digests keyed by id.
// It is safe for concurrent use.
type DigestCache struct {
	entries  *lru.Cache[string, *entity.Digest]
	capacity int
}

// NewDigestCache creates a cache holding at most size digests.
func NewDigestCache(size int) (*DigestCache, error) {
	entries, err := lru.New[string, *entity.Digest](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &DigestCache{entries: entries, capacity: size}, nil
}

// Put stores d, assigning a new id when d.ID is empty, and returns the id.
func (c *DigestCache) Put(d *entity.Digest) string {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	c.entries.Add(d.ID, d)
	return d.ID
}

// Get returns the digest stored under id and marks it recently used.
func (c *DigestCache) Get(id string) (*entity.Digest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	d, ok := c.entries.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

// Len reports the number of cached digests.
func (c *DigestCache) Len() int {
	return c.entries.Len()
}

// Capacity reports the maximum number of cached digests.
func (c *DigestCache) Capacity() int {
	return c.capacity
}
