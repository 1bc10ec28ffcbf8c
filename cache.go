package sigil

import (
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

const defaultShardCount = 16

// Cache is a concurrency-safe source-text to artifact map, sharded to
// keep lock contention low when many routes compile and look up
// expressions at once.
//
// Readers never observe a partially constructed artifact: artifacts are
// immutable and stored whole under the shard lock. If two goroutines
// compile identical text simultaneously, the last writer wins; both
// artifacts are equivalent, so correctness does not depend on which.
type Cache struct {
	shards []*cacheShard
	hits   atomic.Int64
	misses atomic.Int64
}

type cacheShard struct {
	mu      sync.RWMutex
	entries map[string]Artifact
}

// NewCache returns a cache with the default shard count.
func NewCache() *Cache {
	return NewCacheWithShards(defaultShardCount)
}

// NewCacheWithShards returns a cache with n shards; n must be at least 1.
func NewCacheWithShards(n int) *Cache {
	if n < 1 {
		n = 1
	}
	c := &Cache{shards: make([]*cacheShard, n)}
	for i := range c.shards {
		c.shards[i] = &cacheShard{entries: map[string]Artifact{}}
	}
	return c
}

func (c *Cache) shard(src string) *cacheShard {
	h := fnv.New32a()
	h.Write([]byte(src))
	return c.shards[h.Sum32()%uint32(len(c.shards))]
}

// Get returns the artifact compiled from src, if cached.
func (c *Cache) Get(src string) (Artifact, bool) {
	s := c.shard(src)
	s.mu.RLock()
	a, ok := s.entries[src]
	s.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return a, ok
}

// Put stores the artifact compiled from src, replacing any previous entry.
func (c *Cache) Put(src string, a Artifact) {
	s := c.shard(src)
	s.mu.Lock()
	s.entries[src] = a
	s.mu.Unlock()
}

// Remove drops the entry for src.
func (c *Cache) Remove(src string) {
	s := c.shard(src)
	s.mu.Lock()
	delete(s.entries, src)
	s.mu.Unlock()
}

// Len is the number of cached artifacts.
func (c *Cache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// CacheStats is a point-in-time snapshot of cache activity.
type CacheStats struct {
	Entries     int
	Hits        int64
	Misses      int64
	SourceBytes uint64
}

// Stats snapshots the cache counters. The snapshot is not atomic across
// shards; it is meant for reporting, not coordination.
func (c *Cache) Stats() CacheStats {
	st := CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
	for _, s := range c.shards {
		s.mu.RLock()
		st.Entries += len(s.entries)
		for src := range s.entries {
			st.SourceBytes += uint64(len(src))
		}
		s.mu.RUnlock()
	}
	return st
}

func (st CacheStats) String() string {
	return fmt.Sprintf("%s artifacts (%s of source), %s hits / %s misses",
		humanize.Comma(int64(st.Entries)),
		humanize.Bytes(st.SourceBytes),
		humanize.Comma(st.Hits),
		humanize.Comma(st.Misses))
}
