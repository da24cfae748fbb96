package powerlocks

// ============================================================================
// Configuration
// ============================================================================

// Config defines configurable options for lock construction.
// The zero value selects [FairFIFO] scheduling with poisoning enabled,
// matching the behavior of zero-value locks.
type Config struct {
	// strategy selects the fairness policy of a readers-writer lock.
	// It is fixed for the lifetime of the lock; there is no way to
	// change it after construction. Mutexes ignore it.
	strategy Strategy

	// noPoison disables abnormal-termination tracking. When set, the
	// scoped critical-section forms never mark the lock poisoned and
	// acquisitions never report ErrPoisoned.
	noPoison bool
}

// WithStrategy selects the fairness policy used by a readers-writer lock
// when granting queued waiters. The policy is fixed at construction.
// Mutexes do not schedule by class and ignore this option.
//
// Passing a value outside the defined [Strategy] constants panics.
func WithStrategy(s Strategy) func(*Config) {
	if s > WriterPreferring {
		panic("powerlocks: invalid Strategy")
	}
	return func(c *Config) {
		c.strategy = s
	}
}

// WithoutPoisoning disables poison tracking for the constructed lock.
// Acquisitions on such a lock never report [ErrPoisoned], and abnormal
// termination inside its scoped critical sections leaves no trace.
func WithoutPoisoning() func(*Config) {
	return func(c *Config) {
		c.noPoison = true
	}
}
