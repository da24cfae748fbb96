package powerlocks

import (
	"unsafe"
)

// RWLockOf is a readers-writer lock owning a value of type T, with the
// waiting discipline selected by B. Any number of readers or a single
// writer hold it at a time; which blocked waiters run when it frees up
// is decided by the [Strategy] fixed at construction.
//
// Unlike the mutex, contended acquisitions enqueue an explicit wait node,
// so the configured policy can order wakeups exactly: strict FIFO under
// [FairFIFO], reader batches under [ReaderPreferring], oldest writer
// under [WriterPreferring]. The fast paths stay a single CAS; the queue
// is only touched once an acquisition has failed or a releaser has
// waiters to grant.
//
// The zero value is an unlocked FairFIFO lock around the zero value of T
// with poisoning enabled. An RWLockOf must not be copied after first use.
type RWLockOf[T any, B Backend] struct {
	_    noCopy
	word rwWord
	// Keep the hot word out of the cache line the cold queue fields
	// live on; waiters hammer the word while the queue is mutated.
	_        [(cacheLineSize - unsafe.Sizeof(rwWord{})%cacheLineSize) % cacheLineSize]byte
	strat    Strategy
	noPoison bool
	q        waitQueue
	val      T
}

// RWLock is an RWLockOf that parks blocked goroutines on the runtime
// semaphore. This is the variant almost all callers want.
type RWLock[T any] = RWLockOf[T, Park]

// SpinRWLock is an RWLockOf that polls with backoff instead of parking.
type SpinRWLock[T any] = RWLockOf[T, Spin]

// NewRWLock returns a parking readers-writer lock owning val.
func NewRWLock[T any](val T, opts ...func(*Config)) *RWLock[T] {
	return NewRWLockOf[T, Park](val, opts...)
}

// NewSpinRWLock returns a polling readers-writer lock owning val.
func NewSpinRWLock[T any](val T, opts ...func(*Config)) *SpinRWLock[T] {
	return NewRWLockOf[T, Spin](val, opts...)
}

// NewRWLockOf returns a readers-writer lock with an explicit backend
// choice.
func NewRWLockOf[T any, B Backend](val T, opts ...func(*Config)) *RWLockOf[T, B] {
	var cfg Config
	for _, o := range opts {
		o(&cfg)
	}
	return &RWLockOf[T, B]{strat: cfg.strategy, noPoison: cfg.noPoison, val: val}
}

// Strategy returns the fairness policy the lock was constructed with.
func (l *RWLockOf[T, B]) Strategy() Strategy {
	return l.strat
}

// TryRLock attempts to acquire the lock shared without waiting. It fails
// with [ErrWouldBlock] if a writer holds the lock or if the policy does
// not admit a fresh reader past the queued waiters. The error is
// [ErrPoisoned], with the guard held, on a poisoned lock.
func (l *RWLockOf[T, B]) TryRLock() (ReadGuard[T, B], error) {
	if !l.word.tryAddReader(l.strat.readDeny()) {
		return ReadGuard[T, B]{}, ErrWouldBlock
	}
	g := ReadGuard[T, B]{l: l}
	if l.word.isPoisoned() {
		return g, ErrPoisoned
	}
	return g, nil
}

// RLock acquires the lock shared, waiting as long as the policy demands.
// The returned guard is always held; the error is [ErrPoisoned] when the
// lock carries a poison mark.
func (l *RWLockOf[T, B]) RLock() (ReadGuard[T, B], error) {
	l.lockRead()
	g := ReadGuard[T, B]{l: l}
	if l.word.isPoisoned() {
		return g, ErrPoisoned
	}
	return g, nil
}

// TryLock attempts to acquire the lock exclusive without waiting. It
// fails with [ErrWouldBlock] if any holder exists or if the policy does
// not admit a fresh writer past the queued waiters.
func (l *RWLockOf[T, B]) TryLock() (WriteGuard[T, B], error) {
	if !l.word.tryAddWriter(l.strat.writeDeny()) {
		return WriteGuard[T, B]{}, ErrWouldBlock
	}
	g := WriteGuard[T, B]{l: l}
	if l.word.isPoisoned() {
		return g, ErrPoisoned
	}
	return g, nil
}

// Lock acquires the lock exclusive, waiting as long as the policy
// demands. The returned guard is always held; the error is [ErrPoisoned]
// when the lock carries a poison mark.
func (l *RWLockOf[T, B]) Lock() (WriteGuard[T, B], error) {
	l.lockWrite()
	g := WriteGuard[T, B]{l: l}
	if l.word.isPoisoned() {
		return g, ErrPoisoned
	}
	return g, nil
}

// DoRead runs fn with shared access to a copy of the value and releases
// the lock on every exit path. Abnormal termination of fn never poisons:
// readers cannot have broken a write invariant.
//
// On a poisoned lock DoRead reports [ErrPoisoned] without running fn.
func (l *RWLockOf[T, B]) DoRead(fn func(T)) error {
	l.lockRead()
	if l.word.isPoisoned() {
		l.rUnlock()
		return ErrPoisoned
	}
	defer l.rUnlock()
	fn(l.val)
	return nil
}

// DoWrite runs fn with exclusive access to the value and releases the
// lock on every exit path. If fn terminates abnormally, by panic or by
// runtime.Goexit, the lock is marked poisoned before it is released and
// the panic keeps unwinding.
//
// On a poisoned lock DoWrite reports [ErrPoisoned] without running fn.
func (l *RWLockOf[T, B]) DoWrite(fn func(*T)) error {
	l.lockWrite()
	if l.word.isPoisoned() {
		l.wUnlock(false)
		return ErrPoisoned
	}
	normal := false
	defer func() {
		l.wUnlock(!normal)
	}()
	fn(&l.val)
	normal = true
	return nil
}

// IsPoisoned reports whether the lock carries a poison mark.
func (l *RWLockOf[T, B]) IsPoisoned() bool {
	return l.word.isPoisoned()
}

// ClearPoison removes the poison mark, declaring the value consistent
// again.
func (l *RWLockOf[T, B]) ClearPoison() {
	l.word.clearPoison()
}

func (l *RWLockOf[T, B]) lockRead() {
	if !l.word.tryAddReader(l.strat.readDeny()) {
		l.blockOn(waitRead)
	}
}

func (l *RWLockOf[T, B]) lockWrite() {
	if !l.word.tryAddWriter(l.strat.writeDeny()) {
		l.blockOn(waitWrite)
	}
}

// blockOn enqueues the calling goroutine and waits until a grant hands
// it the lock. The state re-check inside the queue guard runs the same
// grant round a releaser would, so a release that raced the enqueue
// cannot strand the node.
func (l *RWLockOf[T, B]) blockOn(kind waitKind) {
	l.word.lockQueue()
	n := l.q.push(kind)
	l.word.updateFlags(0, l.q.flags())
	l.grantLocked()
	l.word.unlockQueue()

	var b B
	var spins int
	for !n.granted.Load() {
		b.wait(&n.sema, &spins)
	}
}

func (l *RWLockOf[T, B]) rUnlock() {
	s := l.word.dropReader()
	if rwReaders(s) > rwReaderMax {
		panic("powerlocks: read unlock of unheld rwlock")
	}
	if !rwHeld(s) && s&rwBitWaiters != 0 {
		l.wake()
	}
}

func (l *RWLockOf[T, B]) wUnlock(abnormal bool) {
	if abnormal && !l.noPoison {
		l.word.poison()
	}
	s := l.word.dropWriter()
	if s&rwBitWriter == 0 {
		panic("powerlocks: write unlock of unheld rwlock")
	}
	s &^= rwBitWriter
	if !rwHeld(s) && s&rwBitWaiters != 0 {
		l.wake()
	}
}

func (l *RWLockOf[T, B]) wake() {
	l.word.lockQueue()
	if l.q.head != nil {
		l.grantLocked()
	}
	l.word.unlockQueue()
}

// grantLocked runs one grant round: ask the policy what runs next, apply
// the word transition on the grantees' behalf, then unlink and wake them.
// The word transition happens before any node is unlinked, so a failed
// CAS (a barging holder got there first) leaves the queue intact for the
// barger's own release to serve. Called with the queue guard held.
func (l *RWLockOf[T, B]) grantLocked() {
	var b B
	if n := l.strat.readerBatch(&l.q); n > 0 {
		if l.word.grantReaders(uint64(n)) {
			for w := l.q.head; w != nil && n > 0; {
				next := w.next
				if w.kind == waitRead {
					l.q.remove(w)
					w.granted.Store(true)
					b.wake(&w.sema)
					n--
				}
				w = next
			}
		}
	} else if w := l.strat.pickWriter(&l.q); w != nil {
		if l.word.grantWriter() {
			l.q.remove(w)
			w.granted.Store(true)
			b.wake(&w.sema)
		}
	}
	l.word.updateFlags(rwBitWaiters|rwBitWriterWait, l.q.flags())
}

// A ReadGuard is the capability to read a lock's value while holding it
// shared. Unlock consumes the guard; any further use panics. A guard
// must not be copied.
type ReadGuard[T any, B Backend] struct {
	l *RWLockOf[T, B]
}

// Value returns a copy of the protected value. Shared access is
// read-only; handing out a pointer here would let readers race each
// other.
func (g *ReadGuard[T, B]) Value() T {
	if g.l == nil {
		panic("powerlocks: use of released ReadGuard")
	}
	return g.l.val
}

// Unlock releases the shared hold and consumes the guard.
func (g *ReadGuard[T, B]) Unlock() {
	l := g.l
	if l == nil {
		panic("powerlocks: unlock of released ReadGuard")
	}
	g.l = nil
	l.rUnlock()
}

// A WriteGuard is the capability to mutate a lock's value while holding
// it exclusive. Unlock and Downgrade consume the guard; any further use
// panics. A guard must not be copied.
type WriteGuard[T any, B Backend] struct {
	l *RWLockOf[T, B]
}

// Value returns the protected value. The pointer must not outlive the
// guard.
func (g *WriteGuard[T, B]) Value() *T {
	if g.l == nil {
		panic("powerlocks: use of released WriteGuard")
	}
	return &g.l.val
}

// Unlock releases the exclusive hold and consumes the guard.
func (g *WriteGuard[T, B]) Unlock() {
	l := g.l
	if l == nil {
		panic("powerlocks: unlock of released WriteGuard")
	}
	g.l = nil
	l.wUnlock(false)
}

// Downgrade atomically trades the exclusive hold for a shared one and
// returns the read guard now holding the lock. The lock is never
// observable as free in between, so no writer can slip in ahead of the
// returned guard. Queued readers are admitted alongside it if the policy
// allows; queued writers keep waiting until the shared hold ends.
func (g *WriteGuard[T, B]) Downgrade() ReadGuard[T, B] {
	l := g.l
	if l == nil {
		panic("powerlocks: use of released WriteGuard")
	}
	g.l = nil
	l.word.downgradeWriter()
	if l.word.load()&rwBitWaiters != 0 {
		l.wake()
	}
	return ReadGuard[T, B]{l: l}
}
