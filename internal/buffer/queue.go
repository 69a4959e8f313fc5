// SPDX-License-Identifier: GPL-3.0-or-later
package buffer

// Queue is the ordered, oldest-first singly-linked list of Items owned by
// a source (spec §3 "the items form a singly-linked list ordered
// oldest-first").
type Queue struct {
	Head, Tail *Item
	count      int
}

// Push appends an item to the tail of the queue.
func (q *Queue) Push(it *Item) {
	if q.Tail == nil {
		q.Head, q.Tail = it, it
	} else {
		q.Tail.Next = it
		q.Tail = it
	}
	q.count++
}

// Pop removes and returns the head item, or nil if the queue is empty —
// used when unqueuing already-processed items (spec invariant I2).
func (q *Queue) Pop() *Item {
	if q.Head == nil {
		return nil
	}
	it := q.Head
	q.Head = it.Next
	if q.Head == nil {
		q.Tail = nil
	}
	it.Next = nil
	q.count--
	return it
}

// Len reports the number of items currently queued.
func (q *Queue) Len() int {
	return q.count
}

// Empty reports whether the queue has no items.
func (q *Queue) Empty() bool {
	return q.Head == nil
}

// Clear releases and removes every item in the queue.
func (q *Queue) Clear() {
	for it := q.Head; it != nil; {
		next := it.Next
		it.Release()
		it = next
	}
	q.Head, q.Tail = nil, nil
	q.count = 0
}
