package iteratable

import "sort"

// Set is a mutable set of arbitrary values, compared by Go's native `==`,
// kept in insertion order until an item is removed: Remove moves the last
// item into the freed position. It supports being iterated while new elements are
// being added to it — item-set closures (package lr) and Earley state sets
// (package earley) both rely on this: the work-queue grows as it is
// consumed.
//
// A Set is not safe for concurrent use.
type Set struct {
	items  []interface{}
	index  map[interface{}]int // item -> position in items, for O(1) membership
	cursor int                 // iteration cursor, -1 before IterateOnce
	hint   int                 // capacity hint, informational only
}

// NewSet creates an empty set. sizeHint pre-allocates backing storage; 0 is
// fine, it is only an optimization.
func NewSet(sizeHint int) *Set {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Set{
		items:  make([]interface{}, 0, sizeHint),
		index:  make(map[interface{}]int, sizeHint),
		cursor: -1,
		hint:   sizeHint,
	}
}

// Add inserts an item into the set if not already present. Returns true if
// the item was newly added.
func (s *Set) Add(item interface{}) bool {
	if _, ok := s.index[item]; ok {
		return false
	}
	s.index[item] = len(s.items)
	s.items = append(s.items, item)
	return true
}

// Remove deletes an item from the set, if present.
func (s *Set) Remove(item interface{}) {
	i, ok := s.index[item]
	if !ok {
		return
	}
	last := len(s.items) - 1
	moved := s.items[last]
	s.items[i] = moved
	s.items = s.items[:last]
	s.index[moved] = i
	delete(s.index, item)
	if s.cursor >= i {
		s.cursor--
	}
}

// Contains reports whether item is a member of the set.
func (s *Set) Contains(item interface{}) bool {
	_, ok := s.index[item]
	return ok
}

// Size returns the number of elements in the set.
func (s *Set) Size() int {
	return len(s.items)
}

// Empty reports whether the set has no elements.
func (s *Set) Empty() bool {
	return len(s.items) == 0
}

// Values returns a snapshot slice of the set's elements, in insertion/
// iteration order.
func (s *Set) Values() []interface{} {
	out := make([]interface{}, len(s.items))
	copy(out, s.items)
	return out
}

// AppendTo appends the set's elements to dst and returns the result, for
// callers that want to avoid an extra allocation (e.g. FOLLOW-set export).
func (s *Set) AppendTo(dst []interface{}) []interface{} {
	return append(dst, s.items...)
}

// Copy returns a detached copy of the set.
func (s *Set) Copy() *Set {
	c := NewSet(len(s.items))
	for _, it := range s.items {
		c.Add(it)
	}
	return c
}

// Equals reports whether two sets contain the same elements, irrespective
// of order.
func (s *Set) Equals(other *Set) bool {
	if other == nil || len(s.items) != len(other.items) {
		return false
	}
	for _, it := range s.items {
		if !other.Contains(it) {
			return false
		}
	}
	return true
}

// Union adds every element of other into s and returns s.
func (s *Set) Union(other *Set) *Set {
	for _, it := range other.items {
		s.Add(it)
	}
	return s
}

// Difference returns a new set containing the elements of s not present in
// other.
func (s *Set) Difference(other *Set) *Set {
	d := NewSet(len(s.items))
	for _, it := range s.items {
		if !other.Contains(it) {
			d.Add(it)
		}
	}
	return d
}

// Subset returns a new set containing only the elements for which predicate
// returns true.
func (s *Set) Subset(predicate func(el interface{}) bool) *Set {
	r := NewSet(0)
	for _, it := range s.items {
		if predicate(it) {
			r.Add(it)
		}
	}
	return r
}

// FirstMatch returns the first element satisfying predicate, or nil.
func (s *Set) FirstMatch(predicate func(el interface{}) bool) interface{} {
	for _, it := range s.items {
		if predicate(it) {
			return it
		}
	}
	return nil
}

// First returns an arbitrary (the first inserted) element of the set, or
// nil if the set is empty.
func (s *Set) First() interface{} {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[0]
}

// Each calls f once for every element currently in the set. f may not
// mutate the set.
func (s *Set) Each(f func(el interface{})) {
	for _, it := range s.items {
		f(it)
	}
}

// Sort orders the set's elements in place using less, so that subsequent
// iteration and Values() calls observe the new order.
func (s *Set) Sort(less func(a, b interface{}) bool) {
	sort.SliceStable(s.items, func(i, j int) bool {
		return less(s.items[i], s.items[j])
	})
	for i, it := range s.items {
		s.index[it] = i
	}
}

// --- Iteration ---------------------------------------------------------
//
// IterateOnce/Next/Item model a work-queue iterator: items appended to the
// set *during* iteration (e.g. while computing an item-set closure) are
// still visited, because Next() re-checks the live length of items rather
// than a snapshot.

// IterateOnce (re-)starts an iteration from the beginning of the set.
func (s *Set) IterateOnce() {
	s.cursor = -1
}

// Next advances the iterator. Returns false once every element, including
// ones appended mid-iteration, has been visited.
func (s *Set) Next() bool {
	s.cursor++
	return s.cursor < len(s.items)
}

// Item returns the element at the iterator's current position. Only valid
// after a call to Next() that returned true.
func (s *Set) Item() interface{} {
	if s.cursor < 0 || s.cursor >= len(s.items) {
		return nil
	}
	return s.items[s.cursor]
}
