package hnsw

import "container/heap"

// ElementId is the dense, monotonically increasing, never-recycled
// identifier of a vector stored in the graph (component F). It is
// distinct from DocId, which is dense but recycled (component G).
type ElementId uint64

// pqEntry is a single (distance, id) pair shared by both heap views of
// a DoublePriorityQueue. Marking removed true retires it from both
// sides without the cost of rebuilding either heap (lazy deletion).
type pqEntry struct {
	dist    float64
	id      ElementId
	removed bool
}

// minHeapView orders live entries ascending by distance.
type minHeapView []*pqEntry

func (h minHeapView) Len() int            { return len(h) }
func (h minHeapView) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h minHeapView) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeapView) Push(x any)         { *h = append(*h, x.(*pqEntry)) }
func (h *minHeapView) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// maxHeapView orders live entries descending by distance.
type maxHeapView []*pqEntry

func (h maxHeapView) Len() int            { return len(h) }
func (h maxHeapView) Less(i, j int) bool  { return h[i].dist > h[j].dist }
func (h maxHeapView) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeapView) Push(x any)         { *h = append(*h, x.(*pqEntry)) }
func (h *maxHeapView) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// DoublePriorityQueue is a bounded double-ended priority queue keyed by
// float64 distance. It supports pop-min and pop-max in
// O(log n) by mirroring every live entry onto a min-heap and a max-heap
// and lazily retiring popped entries from whichever side didn't pop
// them, instead of rebuilding either heap.
type DoublePriorityQueue struct {
	min  minHeapView
	max  maxHeapView
	live int
}

// NewDoublePriorityQueue returns an empty queue.
func NewDoublePriorityQueue() *DoublePriorityQueue {
	return &DoublePriorityQueue{}
}

// Push inserts (d, id). Duplicate distances and ids are allowed.
func (q *DoublePriorityQueue) Push(d float64, id ElementId) {
	e := &pqEntry{dist: d, id: id}
	heap.Push(&q.min, e)
	heap.Push(&q.max, e)
	q.live++
}

func (q *DoublePriorityQueue) dropRemovedMin() {
	for len(q.min) > 0 && q.min[0].removed {
		heap.Pop(&q.min)
	}
}

func (q *DoublePriorityQueue) dropRemovedMax() {
	for len(q.max) > 0 && q.max[0].removed {
		heap.Pop(&q.max)
	}
}

// PopFirst removes and returns the minimum-distance entry.
func (q *DoublePriorityQueue) PopFirst() (ElementId, float64, bool) {
	q.dropRemovedMin()
	if len(q.min) == 0 {
		return 0, 0, false
	}
	e := heap.Pop(&q.min).(*pqEntry)
	e.removed = true
	q.live--
	return e.id, e.dist, true
}

// PopLast removes and returns the maximum-distance entry.
func (q *DoublePriorityQueue) PopLast() (ElementId, float64, bool) {
	q.dropRemovedMax()
	if len(q.max) == 0 {
		return 0, 0, false
	}
	e := heap.Pop(&q.max).(*pqEntry)
	e.removed = true
	q.live--
	return e.id, e.dist, true
}

// PeekFirst inspects, without removing, the minimum-distance entry.
func (q *DoublePriorityQueue) PeekFirst() (ElementId, float64, bool) {
	q.dropRemovedMin()
	if len(q.min) == 0 {
		return 0, 0, false
	}
	return q.min[0].id, q.min[0].dist, true
}

// PeekLast inspects, without removing, the maximum-distance entry.
func (q *DoublePriorityQueue) PeekLast() (ElementId, float64, bool) {
	q.dropRemovedMax()
	if len(q.max) == 0 {
		return 0, 0, false
	}
	return q.max[0].id, q.max[0].dist, true
}

// Len reports the number of live entries.
func (q *DoublePriorityQueue) Len() int { return q.live }

// Clone returns an independent copy of q's live entries.
func (q *DoublePriorityQueue) Clone() *DoublePriorityQueue {
	out := NewDoublePriorityQueue()
	for _, item := range q.Iter() {
		out.Push(item.Dist, item.Id)
	}
	return out
}

// PQItem is one (id, distance) pair yielded by Iter.
type PQItem struct {
	Id   ElementId
	Dist float64
}

// Iter returns every live entry in unspecified internal order.
func (q *DoublePriorityQueue) Iter() []PQItem {
	out := make([]PQItem, 0, q.live)
	for _, e := range q.min {
		if !e.removed {
			out = append(out, PQItem{Id: e.id, Dist: e.dist})
		}
	}
	return out
}
