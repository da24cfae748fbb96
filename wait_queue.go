package powerlocks

import (
	"sync/atomic"

	"github.com/powerlocks/powerlocks/internal/opt"
)

// waitKind classifies a queued waiter.
type waitKind uint8

const (
	waitRead waitKind = iota
	waitWrite
)

// waitNode is one blocked goroutine's place in a lock's wait queue.
// A node is allocated when its goroutine blocks, unlinked when granted
// and never reused. granted is sticky so a woken waiter can tell its
// grant apart from a spurious return of the backend, and sema is the
// node's private wake token under the parking backend.
type waitNode struct {
	prev, next *waitNode
	kind       waitKind
	granted    atomic.Bool
	sema       opt.Sema
}

// waitQueue is an intrusive doubly-linked list of blocked goroutines in
// arrival order. It is only touched under the owning lock's queue
// spin-guard; the counters exist so fairness decisions and flag updates
// need no extra traversal.
type waitQueue struct {
	head, tail *waitNode
	readers    int
	writers    int
}

func (q *waitQueue) push(kind waitKind) *waitNode {
	n := &waitNode{kind: kind}
	if q.tail == nil {
		q.head = n
		q.tail = n
	} else {
		n.prev = q.tail
		q.tail.next = n
		q.tail = n
	}
	if kind == waitRead {
		q.readers++
	} else {
		q.writers++
	}
	return n
}

func (q *waitQueue) remove(n *waitNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		q.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		q.tail = n.prev
	}
	n.prev = nil
	n.next = nil
	if n.kind == waitRead {
		q.readers--
	} else {
		q.writers--
	}
}

func (q *waitQueue) firstWriter() *waitNode {
	for n := q.head; n != nil; n = n.next {
		if n.kind == waitWrite {
			return n
		}
	}
	return nil
}

// flags reports the word flag bits matching the queue's current content.
func (q *waitQueue) flags() uint64 {
	var f uint64
	if q.head != nil {
		f |= rwBitWaiters
	}
	if q.writers > 0 {
		f |= rwBitWriterWait
	}
	return f
}
