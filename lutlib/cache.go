package lutlib

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/filmgrade/filmgrade/cube"
)

// DefaultCacheSize bounds the transform cache. Sized to the number of
// distinct LUTs a session typically touches.
const DefaultCacheSize = 32

// Cache memoizes parsed LUT transforms by path with bounded LRU eviction.
// Parsed transforms are immutable, so a cached entry is valid for the process
// lifetime and may be shared freely across concurrent gradings.
type Cache struct {
	lru *lru.Cache[string, *cube.LUT]
}

// NewCache returns a cache holding at most capacity transforms. capacity < 1
// falls back to DefaultCacheSize.
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCacheSize
	}
	c, err := lru.New[string, *cube.LUT](capacity)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &Cache{lru: c}
}

// Get returns the parsed transform for path, reading and parsing the file on
// the first access. Parsing happens outside the cache lock, so a slow parse
// of one path never blocks hits on already-cached paths; concurrent misses on
// the same path may parse it twice, which is harmless since the result is
// immutable.
func (c *Cache) Get(path string) (*cube.LUT, error) {
	if l, ok := c.lru.Get(path); ok {
		return l, nil
	}
	l, err := cube.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if prev, ok, _ := c.lru.PeekOrAdd(path, l); ok {
		// Another goroutine raced us to the same path; share its entry.
		return prev, nil
	}
	return l, nil
}

// Len returns the number of cached transforms.
func (c *Cache) Len() int { return c.lru.Len() }
