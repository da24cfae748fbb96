package powerlocks

import "errors"

// ErrWouldBlock is reported by Try* acquisitions when the lock cannot be
// taken without waiting. The failed attempt has no side effects.
var ErrWouldBlock = errors.New("powerlocks: acquisition would block")

// ErrPoisoned is reported by acquisitions of a lock whose previous holder
// terminated abnormally inside a scoped critical section.
//
// The error is advisory: when it accompanies a guard, the guard is valid
// and held, and using it is the caller's explicit decision to proceed with
// possibly inconsistent data. See [MutexOf.ClearPoison].
var ErrPoisoned = errors.New("powerlocks: lock was poisoned")
