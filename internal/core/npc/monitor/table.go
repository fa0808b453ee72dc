package monitor

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

const defaultShardCount = 16

// Table is a concurrent map from entity id to V, split into shards chosen by
// the xxhash of the id.
type Table[V comparable] struct {
	shards []tableShard[V]
}

type tableShard[V comparable] struct {
	mx sync.RWMutex
	m  map[uuid.UUID]V
}

// NewTable creates a table with shardCount shards; values below one fall
// back to the default of 16.
func NewTable[V comparable](shardCount int) *Table[V] {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	t := &Table[V]{shards: make([]tableShard[V], shardCount)}
	for i := range t.shards {
		t.shards[i].m = make(map[uuid.UUID]V)
	}
	return t
}

func (t *Table[V]) shardFor(id uuid.UUID) *tableShard[V] {
	return &t.shards[xxhash.Sum64(id[:])%uint64(len(t.shards))]
}

// PutIfAbsent stores v under id unless id is already present.
func (t *Table[V]) PutIfAbsent(id uuid.UUID, v V) bool {
	sh := t.shardFor(id)
	sh.mx.Lock()
	defer sh.mx.Unlock()
	if _, exists := sh.m[id]; exists {
		return false
	}
	sh.m[id] = v
	return true
}

func (t *Table[V]) Get(id uuid.UUID) (V, bool) {
	sh := t.shardFor(id)
	sh.mx.RLock()
	defer sh.mx.RUnlock()
	v, ok := sh.m[id]
	return v, ok
}

func (t *Table[V]) Contains(id uuid.UUID) bool {
	_, ok := t.Get(id)
	return ok
}

// Delete removes id and returns the value it held.
func (t *Table[V]) Delete(id uuid.UUID) (V, bool) {
	sh := t.shardFor(id)
	sh.mx.Lock()
	defer sh.mx.Unlock()
	v, ok := sh.m[id]
	if ok {
		delete(sh.m, id)
	}
	return v, ok
}

// CompareAndDelete removes id only while it still maps to v.
func (t *Table[V]) CompareAndDelete(id uuid.UUID, v V) bool {
	sh := t.shardFor(id)
	sh.mx.Lock()
	defer sh.mx.Unlock()
	cur, ok := sh.m[id]
	if !ok || cur != v {
		return false
	}
	delete(sh.m, id)
	return true
}

func (t *Table[V]) Len() int {
	n := 0
	for i := range t.shards {
		sh := &t.shards[i]
		sh.mx.RLock()
		n += len(sh.m)
		sh.mx.RUnlock()
	}
	return n
}

// Range calls fn for every entry until fn returns false. Each shard is
// read-locked while it is visited.
func (t *Table[V]) Range(fn func(id uuid.UUID, v V) bool) {
	for i := range t.shards {
		sh := &t.shards[i]
		sh.mx.RLock()
		for id, v := range sh.m {
			if !fn(id, v) {
				sh.mx.RUnlock()
				return
			}
		}
		sh.mx.RUnlock()
	}
}

// Drain empties the table and returns what it held.
func (t *Table[V]) Drain() []V {
	var out []V
	for i := range t.shards {
		sh := &t.shards[i]
		sh.mx.Lock()
		for _, v := range sh.m {
			out = append(out, v)
		}
		sh.m = make(map[uuid.UUID]V)
		sh.mx.Unlock()
	}
	return out
}
