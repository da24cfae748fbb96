package powerlocks

// Strategy is the fairness policy of a readers-writer lock. It decides
// which queued waiters are granted when the lock frees up and whether a
// fresh arrival may barge past the queue on the fast path. The policy is
// fixed at construction; the set is closed.
type Strategy uint8

const (
	// FairFIFO grants strictly in arrival order: the writer at the head
	// of the queue alone, or the unbroken run of readers at the head
	// together. No arrival overtakes a queued waiter.
	FairFIFO Strategy = iota

	// ReaderPreferring grants every queued reader before any writer,
	// wherever the readers sit in the queue, and admits fresh readers
	// past queued writers. Writers can starve under a sustained read
	// load; that is the accepted cost of maximum read throughput.
	ReaderPreferring

	// WriterPreferring grants the oldest queued writer whenever one
	// waits, and blocks fresh readers while it does. Readers can starve
	// under a sustained write load; that is the accepted cost of fresh
	// writes.
	WriterPreferring
)

func (s Strategy) String() string {
	switch s {
	case ReaderPreferring:
		return "ReaderPreferring"
	case WriterPreferring:
		return "WriterPreferring"
	default:
		return "FairFIFO"
	}
}

// readDeny returns the word bits that must be clear for a fresh reader
// to take the fast path past the wait queue. Evaluated inside the state
// word CAS, so admission and the count change are one transition.
func (s Strategy) readDeny() uint64 {
	switch s {
	case ReaderPreferring:
		return 0
	case WriterPreferring:
		return rwBitWriterWait
	default:
		return rwBitWaiters
	}
}

// writeDeny is the writer-side counterpart of readDeny. Only the
// writer-preferring policy lets a fresh writer barge past the queue.
func (s Strategy) writeDeny() uint64 {
	if s == WriterPreferring {
		return 0
	}
	return rwBitWaiters
}

// readerBatch reports how many queued readers the policy admits together
// right now. Zero means a writer, if any, should be considered instead.
func (s Strategy) readerBatch(q *waitQueue) int {
	switch s {
	case ReaderPreferring:
		return q.readers
	case WriterPreferring:
		if q.writers > 0 {
			return 0
		}
		return q.readers
	default:
		n := 0
		for w := q.head; w != nil && w.kind == waitRead; w = w.next {
			n++
		}
		return n
	}
}

// pickWriter returns the writer the policy grants when no reader batch
// applies, or nil if none may run.
func (s Strategy) pickWriter(q *waitQueue) *waitNode {
	switch s {
	case ReaderPreferring:
		if q.readers > 0 {
			return nil
		}
		return q.firstWriter()
	case WriterPreferring:
		return q.firstWriter()
	default:
		if q.head != nil && q.head.kind == waitWrite {
			return q.head
		}
		return nil
	}
}
