package powerlocks

// RawMutex is an allocation-free spin mutex: one word of state and
// nothing else. It never parks, has no owner and does no poison
// bookkeeping. Use [MutexOf] when a value needs guarding; use this where
// even the engine's footprint is too much, such as a lock embedded per
// entry in a large table.
//
// The zero value is unlocked.
type RawMutex struct {
	w lockWord
}

// TryLock attempts to acquire the lock without spinning.
//
//go:nosplit
func (m *RawMutex) TryLock() bool {
	return m.w.tryAcquire()
}

// Lock acquires the lock, spinning with backoff until it is free.
func (m *RawMutex) Lock() {
	if m.w.tryAcquire() {
		return
	}
	var spins int
	for !m.w.tryAcquire() {
		delay(&spins)
	}
}

// Unlock releases the lock. It panics if the lock is not held.
func (m *RawMutex) Unlock() {
	if m.w.release()&lockBitLocked == 0 {
		panic("powerlocks: Unlock of unlocked RawMutex")
	}
}
