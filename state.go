package powerlocks

import (
	"sync/atomic"
)

// ============================================================================
// Lock State Words
// ============================================================================
//
// Every raw atomic access in this package happens in this file. The lock
// engines deal only in the named transitions below, so the memory-ordering
// reasoning lives in one place. sync/atomic operations are sequentially
// consistent, which covers the release->acquire edge each transition needs.

// lockWord is the state of a mutex, packed into one uint32.
//
// Bit layout:
//
//	bit 0  lockBitLocked     a holder exists
//	bit 1  lockBitContended  a goroutine is parked or about to park
//	bit 2  lockBitPoisoned   a critical section terminated abnormally
const (
	lockBitLocked    uint32 = 1 << 0
	lockBitContended uint32 = 1 << 1
	lockBitPoisoned  uint32 = 1 << 2
)

type lockWord struct {
	v atomic.Uint32
}

//go:nosplit
func (w *lockWord) load() uint32 {
	return w.v.Load()
}

// tryAcquire attempts the free -> locked transition, preserving the
// contended and poisoned bits. It fails without side effects.
func (w *lockWord) tryAcquire() bool {
	for {
		s := w.v.Load()
		if s&lockBitLocked != 0 {
			return false
		}
		if w.v.CompareAndSwap(s, s|lockBitLocked) {
			return true
		}
	}
}

// acquireContended is tryAcquire for a waiter that has already parked:
// it takes the lock with the contended bit set, so its own release wakes
// the next sleeper. If no sleeper is left this costs one stray wake,
// which the counting wake token absorbs; a lost wake is impossible.
func (w *lockWord) acquireContended() bool {
	for {
		s := w.v.Load()
		if s&lockBitLocked != 0 {
			return false
		}
		if w.v.CompareAndSwap(s, s|lockBitLocked|lockBitContended) {
			return true
		}
	}
}

// contend installs the contended bit while the lock is held. It reports
// false if the lock was observed free; the caller must then retry the
// acquisition instead of parking.
func (w *lockWord) contend() bool {
	for {
		s := w.v.Load()
		if s&lockBitLocked == 0 {
			return false
		}
		if s&lockBitContended != 0 {
			return true
		}
		if w.v.CompareAndSwap(s, s|lockBitContended) {
			return true
		}
	}
}

// release clears the locked and contended bits in one step and returns
// the previous state, so the caller can tell whether anyone was parked.
// The poisoned bit is preserved.
//
//go:nosplit
func (w *lockWord) release() uint32 {
	return w.v.And(^(lockBitLocked | lockBitContended))
}

//go:nosplit
func (w *lockWord) poison() {
	w.v.Or(lockBitPoisoned)
}

//go:nosplit
func (w *lockWord) clearPoison() {
	w.v.And(^lockBitPoisoned)
}

//go:nosplit
func (w *lockWord) isPoisoned() bool {
	return w.v.Load()&lockBitPoisoned != 0
}

// rwWord is the state of a readers-writer lock, packed into one uint64.
//
// Bit layout:
//
//	bit 0   rwBitWriter      a writer holds the lock
//	bit 1   rwBitPoisoned    a write critical section terminated abnormally
//	bit 2   rwBitQueue       spin-guard over the wait queue
//	bit 3   rwBitWaiters     the wait queue is non-empty
//	bit 4   rwBitWriterWait  the wait queue contains a writer
//	bits 8+                  held reader count
//
// Keeping the queue flags in the same word lets the fast paths decide
// admission with a single load, and lets flag updates ride the same CAS
// as the transition that justifies them.
const (
	rwBitWriter     uint64 = 1 << 0
	rwBitPoisoned   uint64 = 1 << 1
	rwBitQueue      uint64 = 1 << 2
	rwBitWaiters    uint64 = 1 << 3
	rwBitWriterWait uint64 = 1 << 4

	rwReaderShift        = 8
	rwReaderUnit  uint64 = 1 << rwReaderShift

	// rwReaderMax caps the reader count one unit below the storable
	// maximum so a concurrent check-then-add can never wrap into the
	// flag bits.
	rwReaderMax = 1<<(64-rwReaderShift) - 2
)

type rwWord struct {
	v atomic.Uint64
}

//go:nosplit
func (w *rwWord) load() uint64 {
	return w.v.Load()
}

// rwReaders extracts the held reader count from state s.
//
//go:nosplit
func rwReaders(s uint64) uint64 {
	return s >> rwReaderShift
}

// rwHeld reports whether state s has any holder.
//
//go:nosplit
func rwHeld(s uint64) bool {
	return s&rwBitWriter != 0 || s>>rwReaderShift != 0
}

// tryAddReader attempts the +1 reader transition. It fails if a writer
// holds the lock, if any of the deny bits are set, or if the reader
// count is saturated. The deny mask is the fairness policy's admission
// rule, evaluated in the same CAS as the count change.
func (w *rwWord) tryAddReader(deny uint64) bool {
	for {
		s := w.v.Load()
		if s&(rwBitWriter|deny) != 0 || rwReaders(s) >= rwReaderMax {
			return false
		}
		if w.v.CompareAndSwap(s, s+rwReaderUnit) {
			return true
		}
	}
}

// tryAddWriter attempts the free -> write-held transition. It fails if
// any holder exists or if any of the deny bits are set.
func (w *rwWord) tryAddWriter(deny uint64) bool {
	for {
		s := w.v.Load()
		if s&(rwBitWriter|deny) != 0 || rwReaders(s) != 0 {
			return false
		}
		if w.v.CompareAndSwap(s, s|rwBitWriter) {
			return true
		}
	}
}

// claimWriter installs the writer bit while readers may still hold the
// lock. The caller owns the drain: no new reader can enter once the bit
// is visible, and the claim is complete when the count reaches zero.
// Used by the raw writer-preferring lock.
func (w *rwWord) claimWriter() bool {
	for {
		s := w.v.Load()
		if s&rwBitWriter != 0 {
			return false
		}
		if w.v.CompareAndSwap(s, s|rwBitWriter) {
			return true
		}
	}
}

// dropReader performs the -1 reader transition and returns the new state.
//
//go:nosplit
func (w *rwWord) dropReader() uint64 {
	return w.v.Add(^uint64(rwReaderUnit - 1))
}

// dropWriter clears the writer bit and returns the previous state.
//
//go:nosplit
func (w *rwWord) dropWriter() uint64 {
	return w.v.And(^rwBitWriter)
}

// grantReaders hands the lock to n queued readers at once by adding n to
// the reader count. It fails if a writer bit appeared since the grant was
// decided; the interposing writer's release re-runs the selection.
func (w *rwWord) grantReaders(n uint64) bool {
	for {
		s := w.v.Load()
		if s&rwBitWriter != 0 {
			return false
		}
		if w.v.CompareAndSwap(s, s+n*rwReaderUnit) {
			return true
		}
	}
}

// grantWriter hands the lock to one queued writer. It fails unless the
// lock is completely free at the instant of the CAS.
func (w *rwWord) grantWriter() bool {
	for {
		s := w.v.Load()
		if s&rwBitWriter != 0 || rwReaders(s) != 0 {
			return false
		}
		if w.v.CompareAndSwap(s, s|rwBitWriter) {
			return true
		}
	}
}

// downgradeWriter atomically trades the writer bit for one reader unit.
// The lock is never observable as free in between.
func (w *rwWord) downgradeWriter() {
	for {
		s := w.v.Load()
		if w.v.CompareAndSwap(s, (s&^rwBitWriter)+rwReaderUnit) {
			return
		}
	}
}

// lockQueue acquires the spin-guard protecting the wait queue and the
// queue flag bits. Guard sections are short and never block.
func (w *rwWord) lockQueue() {
	var spins int
	for !w.tryLockQueue() {
		delay(&spins)
	}
}

//go:nosplit
func (w *rwWord) tryLockQueue() bool {
	for {
		s := w.v.Load()
		if s&rwBitQueue != 0 {
			return false
		}
		if w.v.CompareAndSwap(s, s|rwBitQueue) {
			return true
		}
	}
}

//go:nosplit
func (w *rwWord) unlockQueue() {
	w.v.And(^rwBitQueue)
}

// updateFlags rewrites the queue flag bits in one CAS, so releasers never
// observe a transient state where waiters exist but no flag says so.
func (w *rwWord) updateFlags(clear, set uint64) {
	for {
		s := w.v.Load()
		n := s&^clear | set
		if s == n || w.v.CompareAndSwap(s, n) {
			return
		}
	}
}

//go:nosplit
func (w *rwWord) poison() {
	w.v.Or(rwBitPoisoned)
}

//go:nosplit
func (w *rwWord) clearPoison() {
	w.v.And(^rwBitPoisoned)
}

//go:nosplit
func (w *rwWord) isPoisoned() bool {
	return w.v.Load()&rwBitPoisoned != 0
}
