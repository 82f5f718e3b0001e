package insights

import (
	"container/heap"
	"time"
)

type rankEntry struct {
	categoryID uint
	score      uint64
	seq        uint64
	expiresAt  time.Time
	index      int
}

// rankHeap is a min-heap on (score, seq). The root is the next eviction victim.
type rankHeap []*rankEntry

func (h rankHeap) Len() int { return len(h) }

func (h rankHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].seq < h[j].seq
}

func (h rankHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *rankHeap) Push(x any) {
	entry := x.(*rankEntry)
	entry.index = len(*h)
	*h = append(*h, entry)
}

func (h *rankHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*h = old[:n-1]
	return entry
}

// ranking tracks the access score of every cached category.
type ranking struct {
	heap    rankHeap
	entries map[uint]*rankEntry
	seq     uint64
}

func newRanking() *ranking {
	return &ranking{entries: make(map[uint]*rankEntry)}
}

func (r *ranking) Len() int {
	return len(r.entries)
}

func (r *ranking) Has(id uint) bool {
	_, ok := r.entries[id]
	return ok
}

func (r *ranking) Score(id uint) (uint64, bool) {
	entry, ok := r.entries[id]
	if !ok {
		return 0, false
	}
	return entry.score, true
}

// Track inserts a new entry with score zero, or refreshes the expiration of an existing one.
func (r *ranking) Track(id uint, expiresAt time.Time) {
	if entry, ok := r.entries[id]; ok {
		entry.expiresAt = expiresAt
		return
	}
	r.seq++
	entry := &rankEntry{categoryID: id, seq: r.seq, expiresAt: expiresAt}
	heap.Push(&r.heap, entry)
	r.entries[id] = entry
}

func (r *ranking) Touch(id uint) bool {
	entry, ok := r.entries[id]
	if !ok {
		return false
	}
	entry.score++
	heap.Fix(&r.heap, entry.index)
	return true
}

func (r *ranking) Remove(id uint) bool {
	entry, ok := r.entries[id]
	if !ok {
		return false
	}
	heap.Remove(&r.heap, entry.index)
	delete(r.entries, id)
	return true
}

// PopMin removes and returns the category with the lowest score.
func (r *ranking) PopMin() (uint, bool) {
	if r.heap.Len() == 0 {
		return 0, false
	}
	entry := heap.Pop(&r.heap).(*rankEntry)
	delete(r.entries, entry.categoryID)
	return entry.categoryID, true
}

func (r *ranking) Expired(id uint, now time.Time) bool {
	entry, ok := r.entries[id]
	return ok && !entry.expiresAt.After(now)
}

// Expire removes every entry whose expiration is not after now and returns their ids.
func (r *ranking) Expire(now time.Time) []uint {
	var out []uint
	for id, entry := range r.entries {
		if !entry.expiresAt.After(now) {
			out = append(out, id)
		}
	}
	for _, id := range out {
		r.Remove(id)
	}
	return out
}

func (r *ranking) IDs() []uint {
	out := make([]uint, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	return out
}

func (r *ranking) Reset() {
	r.heap = nil
	r.entries = make(map[uint]*rankEntry)
}
