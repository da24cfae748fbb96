package powerlocks

// RawRWLock is an allocation-free spin readers-writer lock over a single
// word. It is writer-preferring by construction: an arriving writer
// claims its bit first, which stops new readers, then waits for the held
// ones to drain. There is no wait queue, no poison bookkeeping and no
// fairness among spinning writers; use [RWLockOf] when scheduling
// matters.
//
// The zero value is unlocked.
type RawRWLock struct {
	w rwWord
}

// TryRLock attempts to acquire a shared hold without spinning.
//
//go:nosplit
func (l *RawRWLock) TryRLock() bool {
	return l.w.tryAddReader(0)
}

// RLock acquires a shared hold, spinning with backoff while a writer
// holds or claims the lock.
func (l *RawRWLock) RLock() {
	var spins int
	for !l.w.tryAddReader(0) {
		delay(&spins)
	}
}

// RUnlock releases a shared hold. It panics if no shared hold exists.
func (l *RawRWLock) RUnlock() {
	if rwReaders(l.w.dropReader()) > rwReaderMax {
		panic("powerlocks: RUnlock of unheld RawRWLock")
	}
}

// TryLock attempts to acquire the exclusive hold without spinning. It
// succeeds only when the lock is completely free; unlike Lock it never
// claims ahead of draining readers.
//
//go:nosplit
func (l *RawRWLock) TryLock() bool {
	return l.w.tryAddWriter(0)
}

// Lock acquires the exclusive hold, first claiming the writer bit, then
// spinning until the reader count drains.
func (l *RawRWLock) Lock() {
	var spins int
	for !l.w.claimWriter() {
		delay(&spins)
	}
	for rwReaders(l.w.load()) != 0 {
		delay(&spins)
	}
}

// Unlock releases the exclusive hold. It panics if no writer holds the
// lock.
func (l *RawRWLock) Unlock() {
	if l.w.dropWriter()&rwBitWriter == 0 {
		panic("powerlocks: Unlock of unheld RawRWLock")
	}
}
