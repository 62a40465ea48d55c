// Package state implements the per-session scratch dictionary a plugin can
// read and write through the host's SetState/GetState callbacks. It is
// sharded the same way package pending is, and its lifetime is bounded by
// the session's pending entry: Clear is called when a terminal result is
// delivered for a sid.
package state

import "sync"

const shardCount = 64 // power of two

type shard struct {
	mu sync.Mutex
	m  map[uint64]map[string][]byte
}

// Store is the sharded per-sid scratch-state map.
type Store struct {
	shards [shardCount]shard
}

// New creates an empty Store.
func New() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i].m = make(map[uint64]map[string][]byte)
	}
	return s
}

func (s *Store) shardFor(sid uint64) *shard {
	return &s.shards[sid&(shardCount-1)]
}

// Set copies value into host-owned storage under key for sid.
func (s *Store) Set(sid uint64, key string, value []byte) {
	owned := make([]byte, len(value))
	copy(owned, value)

	sh := s.shardFor(sid)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	bucket, ok := sh.m[sid]
	if !ok {
		bucket = make(map[string][]byte)
		sh.m[sid] = bucket
	}
	bucket[key] = owned
}

// Get returns the stored value for (sid, key), or nil if absent. The
// returned slice aliases host storage; callers must copy it before any
// subsequent call that might evict the entry (a terminal result for sid,
// or another Set overwriting the same key).
func (s *Store) Get(sid uint64, key string) []byte {
	sh := s.shardFor(sid)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	bucket, ok := sh.m[sid]
	if !ok {
		return nil
	}
	return bucket[key]
}

// Clear removes all scratch state for sid. Called on terminal result
// delivery.
func (s *Store) Clear(sid uint64) {
	sh := s.shardFor(sid)
	sh.mu.Lock()
	delete(sh.m, sid)
	sh.mu.Unlock()
}

// KeyCount returns the total number of (sid, key) pairs currently stored
// across all shards, for tests asserting bounded growth.
func (s *Store) KeyCount() int {
	total := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for _, bucket := range sh.m {
			total += len(bucket)
		}
		sh.mu.Unlock()
	}
	return total
}
