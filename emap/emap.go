// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emap

import (
	"container/heap"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/set"
)

type bucket struct {
	t     int64    // Timestamp
	items []ids.ID // Array of AvalancheGo ids
}

// Item defines an interface accepted by EMap
type Item interface {
	ID() ids.ID    // method for returning an id of the item
	Expiry() int64 // method for returing this items timestamp
}

// A EMap implements an eviction map that stores the ids of executed
// transactions until they expire. The type [T] must implement the
// Item interface.
type EMap[T Item] struct {
	mu sync.RWMutex

	bh    *bucketHeap
	seen  set.Set[ids.ID]   // Stores a set of unique tx ids
	times map[int64]*bucket // Uses timestamp as keys to map to buckets of ids.
}

// NewEMap returns a pointer to a instance of an empty EMap struct.
func NewEMap[T Item]() *EMap[T] {
	return &EMap[T]{
		seen:  set.Set[ids.ID]{},
		times: make(map[int64]*bucket),
		bh: &bucketHeap{
			buckets: []*bucket{},
		},
	}
}

// Add adds a list of txs to the EMap.
func (e *EMap[T]) Add(items []T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, item := range items {
		e.add(item.ID(), item.Expiry())
	}
}

// add records [id] in the bucket for [t]. Items with a zero timestamp (genesis)
// and ids that were already added are ignored.
func (e *EMap[T]) add(id ids.ID, t int64) {
	if t == 0 {
		return
	}

	// Check if already exists
	if e.seen.Contains(id) {
		return
	}
	e.seen.Add(id)

	// Check if bucket with time already exists
	if b, ok := e.times[t]; ok {
		b.items = append(b.items, id)
		return
	}

	// Create new bucket
	b := &bucket{
		t:     t,
		items: []ids.ID{id},
	}
	e.times[t] = b
	heap.Push(e.bh, b)
}

// SetMin removes all buckets with a lower timestamp than [t] and returns the
// ids that were evicted.
func (e *EMap[T]) SetMin(t int64) []ids.ID {
	e.mu.Lock()
	defer e.mu.Unlock()

	evicted := []ids.ID{}
	for {
		b := e.bh.Peek()
		if b == nil || b.t >= t {
			break
		}
		heap.Pop(e.bh)
		for _, id := range b.items {
			e.seen.Remove(id)
			evicted = append(evicted, id)
		}
		// Delete from times map
		delete(e.times, b.t)
	}
	return evicted
}

// Any returns true if any of [items] have been seen by EMap.
func (e *EMap[T]) Any(items []T) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, item := range items {
		if e.seen.Contains(item.ID()) {
			return true
		}
	}
	return false
}

// Len returns the number of ids being tracked.
func (e *EMap[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.seen.Len()
}

// bucketHeap is a min-heap of buckets ordered by timestamp.
type bucketHeap struct {
	buckets []*bucket
}

var _ heap.Interface = (*bucketHeap)(nil)

func (bh bucketHeap) Len() int {
	return len(bh.buckets)
}

func (bh bucketHeap) Less(i, j int) bool {
	return bh.buckets[i].t < bh.buckets[j].t
}

func (bh bucketHeap) Swap(i, j int) {
	bh.buckets[i], bh.buckets[j] = bh.buckets[j], bh.buckets[i]
}

// Push panics if [x] is not a *bucket.
func (bh *bucketHeap) Push(x any) {
	bh.buckets = append(bh.buckets, x.(*bucket))
}

func (bh *bucketHeap) Pop() any {
	old := bh.buckets
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	bh.buckets = old[0 : n-1]
	return item
}

// Peek returns the bucket with the lowest timestamp or nil if empty.
func (bh *bucketHeap) Peek() *bucket {
	if len(bh.buckets) == 0 {
		return nil
	}
	return bh.buckets[0]
}
