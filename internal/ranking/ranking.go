// Package ranking implements a bounded top-K container ordered by a fitness
// direction, spec.md §4.C. It is backed by container/heap (see DESIGN.md for
// why this is kept on the standard library rather than a pack dependency).
package ranking

import "container/heap"

// Direction is the optimization direction over aggregated fitness.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

// Entry pairs an arbitrary payload with the fitness it achieved.
type Entry[T any] struct {
	Value   T
	Fitness float64
}

// Ranking is a bounded top-K container: for a chosen Direction, it behaves
// as a max-heap of the *worse* direction with capacity K, so that pushes
// beyond K evict the current worst element.
type Ranking[T any] struct {
	direction Direction
	capacity  int
	h         entryHeap[T]
}

// New creates a Ranking retaining at most capacity entries, ordered by
// direction.
func New[T any](direction Direction, capacity int) *Ranking[T] {
	if capacity <= 0 {
		panic("ranking: capacity must be positive")
	}
	r := &Ranking[T]{direction: direction, capacity: capacity}
	heap.Init(&r.h)
	return r
}

// worse reports whether a is worse than b under r's direction (i.e. a
// should be evicted before b when both are candidates for removal).
func (r *Ranking[T]) worse(a, b float64) bool {
	if r.direction == Minimize {
		return a > b
	}
	return a < b
}

// entryHeap implements container/heap.Interface, ordered so the worst
// element (per Ranking.direction) is always at the root.
type entryHeap[T any] struct {
	entries []Entry[T]
	worse   func(a, b float64) bool
}

func (h entryHeap[T]) Len() int { return len(h.entries) }
func (h entryHeap[T]) Less(i, j int) bool {
	// The root must be the worst entry: worst "Less" than everything else
	// so heap.Pop removes it first.
	return h.worse(h.entries[i].Fitness, h.entries[j].Fitness)
}
func (h entryHeap[T]) Swap(i, j int) { h.entries[i], h.entries[j] = h.entries[j], h.entries[i] }
func (h *entryHeap[T]) Push(x any)   { h.entries = append(h.entries, x.(Entry[T])) }
func (h *entryHeap[T]) Pop() any {
	old := h.entries
	n := len(old)
	e := old[n-1]
	h.entries = old[:n-1]
	return e
}

// Push inserts (value, fitness). If the Ranking is already at capacity, the
// new entry is compared against the current worst; whichever is worse is
// discarded.
func (r *Ranking[T]) Push(value T, fitness float64) {
	if r.h.worse == nil {
		r.h.worse = r.worse
	}
	heap.Push(&r.h, Entry[T]{Value: value, Fitness: fitness})
	if r.h.Len() > r.capacity {
		heap.Pop(&r.h)
	}
}

// Len returns the number of entries currently retained, always <= capacity.
func (r *Ranking[T]) Len() int { return r.h.Len() }

// Best returns the best entry seen so far and true, or the zero Entry and
// false if the Ranking is empty.
func (r *Ranking[T]) Best() (Entry[T], bool) {
	if r.h.Len() == 0 {
		return Entry[T]{}, false
	}
	best := r.h.entries[0]
	for _, e := range r.h.entries[1:] {
		if r.worse(best.Fitness, e.Fitness) {
			best = e
		}
	}
	return best, true
}

// Entries returns the retained entries best-first.
func (r *Ranking[T]) Entries() []Entry[T] {
	sorted := append([]Entry[T](nil), r.h.entries...)
	// Insertion sort by "goodness": smallest slice (top-K), simplicity over
	// asymptotics is fine here.
	for i := 1; i < len(sorted); i++ {
		j := i
		for j > 0 && r.better(sorted[j], sorted[j-1]) {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
			j--
		}
	}
	return sorted
}

func (r *Ranking[T]) better(a, b Entry[T]) bool {
	return r.worse(b.Fitness, a.Fitness)
}
