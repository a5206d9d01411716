// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bagfile

import (
	"container/list"
	"sync"
)

// defaultCacheBudgetBytes is the default byte budget for a ChunkCache.
const defaultCacheBudgetBytes = 50 * 1024 * 1024

// ChunkCacheEntry is one decoded chunk: its messages in time order,
// and the size billed against the cache's byte budget — the chunk's
// on-disk span (next_chunk_position - chunk_position), not the
// decompressed payload size, so the budget caps a predictable amount of
// bag file regardless of compression ratio.
type ChunkCacheEntry struct {
	Messages  []RosbagMessage
	SizeBytes int64
}

// ChunkCache holds decoded chunks keyed by their ChunkPosition, evicting
// the oldest-inserted entry once the total billed size exceeds its byte
// budget.
//
// Eviction is strictly insertion-order (FIFO), not access-order (LRU):
// a Get does not move its entry to the back of the list. The playback
// orchestrator reads chunks in roughly monotonic time order during
// normal playback, so recency and insertion order coincide for the
// common case; insertion order additionally gives predictable eviction
// under a seek, where an LRU policy's "recently touched" bookkeeping
// would otherwise keep stale chunks alive past a jump. This is
// implemented directly on container/list rather than a module such as
// hashicorp/golang-lru, whose Get-promotes-to-most-recent semantics
// would silently change this behavior.
type ChunkCache struct {
	maxBytes int64

	mu      sync.Mutex
	entries map[uint64]*list.Element
	order   *list.List
	bytes   int64
}

type chunkCacheNode struct {
	position uint64
	entry    ChunkCacheEntry
}

// NewChunkCache returns an empty ChunkCache with the given byte budget.
// A non-positive budget uses defaultCacheBudgetBytes.
func NewChunkCache(maxBytes int64) *ChunkCache {
	if maxBytes <= 0 {
		maxBytes = defaultCacheBudgetBytes
	}
	return &ChunkCache{
		maxBytes: maxBytes,
		entries:  make(map[uint64]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached entry for chunkPosition, if present.
func (c *ChunkCache) Get(chunkPosition uint64) (ChunkCacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[chunkPosition]
	if !ok {
		chunkCacheMisses.Inc()
		return ChunkCacheEntry{}, false
	}
	chunkCacheHits.Inc()
	return elem.Value.(*chunkCacheNode).entry, true
}

// Put inserts entry under chunkPosition, evicting the oldest entries
// until the cache's byte budget is satisfied. If chunkPosition is
// already present, its old entry is replaced and moved to the back (the
// most-recently-inserted position).
func (c *ChunkCache) Put(chunkPosition uint64, entry ChunkCacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[chunkPosition]; ok {
		c.bytes -= old.Value.(*chunkCacheNode).entry.SizeBytes
		c.order.Remove(old)
		delete(c.entries, chunkPosition)
	}

	elem := c.order.PushBack(&chunkCacheNode{position: chunkPosition, entry: entry})
	c.entries[chunkPosition] = elem
	c.bytes += entry.SizeBytes

	for c.bytes > c.maxBytes {
		front := c.order.Front()
		if front == nil {
			break
		}
		node := front.Value.(*chunkCacheNode)
		c.order.Remove(front)
		delete(c.entries, node.position)
		c.bytes -= node.entry.SizeBytes
		chunkCacheEvictions.Inc()
	}

	chunkCacheBytes.Set(float64(c.bytes))
}

// Len returns the number of chunks currently cached.
func (c *ChunkCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Bytes returns the total size currently billed against the budget.
func (c *ChunkCache) Bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}
