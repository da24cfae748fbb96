package powerlocks

import (
	"github.com/powerlocks/powerlocks/internal/opt"
)

// MutexOf is a mutual-exclusion lock owning a value of type T, with the
// waiting discipline selected by B. Access to the value goes through a
// guard or a scoped critical section, so there is no way to reach it
// unlocked and no way to release twice.
//
// The zero value is an unlocked mutex around the zero value of T with
// poisoning enabled. A MutexOf must not be copied after first use.
//
// Waiters are woken one at a time but compete with fresh arrivals; the
// mutex makes no FIFO promise. Callers that need strict ordering should
// use [RWLockOf] with [FairFIFO] and write locking.
type MutexOf[T any, B Backend] struct {
	_        noCopy
	state    lockWord
	sema     opt.Sema
	noPoison bool
	val      T
}

// Mutex is a MutexOf that parks blocked goroutines on the runtime
// semaphore. This is the variant almost all callers want.
type Mutex[T any] = MutexOf[T, Park]

// SpinMutex is a MutexOf that polls with backoff instead of parking.
type SpinMutex[T any] = MutexOf[T, Spin]

// NewMutex returns a parking mutex owning val.
func NewMutex[T any](val T, opts ...func(*Config)) *Mutex[T] {
	return NewMutexOf[T, Park](val, opts...)
}

// NewSpinMutex returns a polling mutex owning val.
func NewSpinMutex[T any](val T, opts ...func(*Config)) *SpinMutex[T] {
	return NewMutexOf[T, Spin](val, opts...)
}

// NewMutexOf returns a mutex with an explicit backend choice.
func NewMutexOf[T any, B Backend](val T, opts ...func(*Config)) *MutexOf[T, B] {
	var cfg Config
	for _, o := range opts {
		o(&cfg)
	}
	return &MutexOf[T, B]{noPoison: cfg.noPoison, val: val}
}

// TryLock attempts to acquire the mutex without waiting.
//
// On success it returns a held guard; the error is [ErrPoisoned] if a
// previous critical section terminated abnormally, and using the guard
// anyway is the caller's explicit decision to proceed. On failure it
// returns [ErrWouldBlock] and the attempt has no side effects.
func (m *MutexOf[T, B]) TryLock() (MutexGuard[T, B], error) {
	if !m.state.tryAcquire() {
		return MutexGuard[T, B]{}, ErrWouldBlock
	}
	g := MutexGuard[T, B]{m: m}
	if m.state.isPoisoned() {
		return g, ErrPoisoned
	}
	return g, nil
}

// Lock acquires the mutex, waiting as long as necessary. The returned
// guard is always held; the error is [ErrPoisoned] when the lock carries
// a poison mark, and nil otherwise.
func (m *MutexOf[T, B]) Lock() (MutexGuard[T, B], error) {
	m.lock()
	g := MutexGuard[T, B]{m: m}
	if m.state.isPoisoned() {
		return g, ErrPoisoned
	}
	return g, nil
}

// Do runs fn with exclusive access to the value and releases the mutex
// on every exit path. If fn terminates abnormally, by panic or by
// runtime.Goexit, the mutex is marked poisoned before it is released and
// the panic keeps unwinding.
//
// If the mutex is already poisoned, Do reports [ErrPoisoned] without
// running fn. Use [MutexOf.DoPoisoned] or the guard APIs to get at the
// value of a poisoned mutex.
func (m *MutexOf[T, B]) Do(fn func(*T)) error {
	m.lock()
	if m.state.isPoisoned() {
		m.unlock()
		return ErrPoisoned
	}
	normal := false
	defer func() {
		if !normal && !m.noPoison {
			m.state.poison()
		}
		m.unlock()
	}()
	fn(&m.val)
	normal = true
	return nil
}

// DoPoisoned is Do without the poison gate: fn runs even on a poisoned
// mutex. It reports whether the mutex was poisoned on entry. Abnormal
// termination still poisons.
func (m *MutexOf[T, B]) DoPoisoned(fn func(*T)) (poisoned bool) {
	m.lock()
	poisoned = m.state.isPoisoned()
	normal := false
	defer func() {
		if !normal && !m.noPoison {
			m.state.poison()
		}
		m.unlock()
	}()
	fn(&m.val)
	normal = true
	return poisoned
}

// IsPoisoned reports whether the mutex carries a poison mark.
func (m *MutexOf[T, B]) IsPoisoned() bool {
	return m.state.isPoisoned()
}

// ClearPoison removes the poison mark, declaring the value consistent
// again. It is typically called after restoring an invariant through the
// guard obtained alongside [ErrPoisoned].
func (m *MutexOf[T, B]) ClearPoison() {
	m.state.clearPoison()
}

func (m *MutexOf[T, B]) lock() {
	if m.state.tryAcquire() {
		return
	}
	m.lockSlow()
}

func (m *MutexOf[T, B]) lockSlow() {
	var b B
	var spins int
	parked := false
	for {
		// A goroutine that has parked re-acquires with the contended
		// bit set, so its own release keeps the wake chain going even
		// though the prior release cleared the bit.
		var got bool
		if parked {
			got = m.state.acquireContended()
		} else {
			got = m.state.tryAcquire()
		}
		if got {
			return
		}
		if !b.parks() {
			b.wait(&m.sema, &spins)
			continue
		}
		// Brief active spin before announcing contention; handoff is
		// much cheaper while the holder is still running.
		if trySpin(&spins) {
			continue
		}
		// Announce, then sleep. contend fails only if the lock freed
		// up meanwhile, in which case sleeping would miss the wake.
		if !m.state.contend() {
			continue
		}
		b.wait(&m.sema, &spins)
		parked = true
	}
}

func (m *MutexOf[T, B]) unlock() {
	old := m.state.release()
	if old&lockBitLocked == 0 {
		panic("powerlocks: unlock of unlocked mutex")
	}
	if old&lockBitContended != 0 {
		var b B
		b.wake(&m.sema)
	}
}

// A MutexGuard is the capability to access a mutex's value while it is
// held. Unlock consumes the guard; any further use panics instead of
// corrupting the lock. A guard must not be copied: the copy would evade
// the consumption check.
type MutexGuard[T any, B Backend] struct {
	m *MutexOf[T, B]
}

// Value returns the protected value. The pointer must not outlive the
// guard.
func (g *MutexGuard[T, B]) Value() *T {
	if g.m == nil {
		panic("powerlocks: use of released MutexGuard")
	}
	return &g.m.val
}

// Unlock releases the mutex and consumes the guard.
func (g *MutexGuard[T, B]) Unlock() {
	m := g.m
	if m == nil {
		panic("powerlocks: unlock of released MutexGuard")
	}
	g.m = nil
	m.unlock()
}
