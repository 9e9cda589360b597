package aggregator

import "container/heap"

// Range is an inclusive block interval pending harvest.
type Range struct {
	Start uint64
	End   uint64
}

func (r Range) Size() uint64 { return r.End - r.Start + 1 }

// rangeState tracks a sub-range through its lifecycle. Transitions are
// total: QUEUED -> IN_FLIGHT -> (DONE | SPLIT | PAGINATING -> DONE | FAILED);
// a range never re-enters the queue after DONE or FAILED.
type rangeState int

const (
	stateQueued rangeState = iota
	stateInFlight
	stateDone
	stateSplit
	statePaginating
	stateFailed
)

type queuedRange struct {
	rng Range
	seq int // FIFO tie-break among equal sizes
}

// rangeHeap orders pending sub-ranges largest first, so the worst offenders
// are attacked early and splits happen before the queue drains.
type rangeHeap []queuedRange

func (h rangeHeap) Len() int { return len(h) }

func (h rangeHeap) Less(i, j int) bool {
	si, sj := h[i].rng.Size(), h[j].rng.Size()
	if si != sj {
		return si > sj
	}
	return h[i].seq < h[j].seq
}

func (h rangeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rangeHeap) Push(x any) { *h = append(*h, x.(queuedRange)) }

func (h *rangeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// queue wraps the heap with a seen-set so no sub-range is ever enqueued
// twice.
type queue struct {
	heap rangeHeap
	seen map[Range]bool
	seq  int
}

func newQueue() *queue {
	return &queue{seen: make(map[Range]bool)}
}

func (q *queue) push(r Range) bool {
	if r.End < r.Start || q.seen[r] {
		return false
	}
	q.seen[r] = true
	heap.Push(&q.heap, queuedRange{rng: r, seq: q.seq})
	q.seq++
	return true
}

func (q *queue) pop() (Range, bool) {
	if q.heap.Len() == 0 {
		return Range{}, false
	}
	return heap.Pop(&q.heap).(queuedRange).rng, true
}

func (q *queue) len() int { return q.heap.Len() }
