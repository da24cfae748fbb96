package powerlocks

import (
	"github.com/powerlocks/powerlocks/internal/opt"
)

// Backend selects how a blocked goroutine waits for its turn. It is a
// type parameter, so each lock monomorphizes onto exactly one waiting
// discipline and the other costs nothing. The constraint is closed: the
// method set is unexported and the union names the only two members.
//
//   - [Park] suspends blocked goroutines on a runtime semaphore. This is
//     the default for the exported aliases and what almost all callers
//     want.
//   - [Spin] never enters the scheduler's wait state; blocked goroutines
//     poll with an exponential backoff that degrades from active spinning
//     to short sleeps. For environments where parking is unavailable or
//     undesired.
type Backend interface {
	Spin | Park

	// wait performs one bounded waiting step against the token, then
	// returns so the caller can re-check its wake condition. Spurious
	// returns are allowed.
	wait(sema *opt.Sema, spins *int)

	// wake makes a pending or future wait on the token return.
	wake(sema *opt.Sema)

	// parks reports whether wait suspends the goroutine, which is what
	// decides if waiters must announce themselves before waiting.
	parks() bool
}

// Spin is the polling backend.
type Spin struct{}

func (Spin) wait(_ *opt.Sema, spins *int) {
	delay(spins)
}

func (Spin) wake(_ *opt.Sema) {}

func (Spin) parks() bool { return false }

// Park is the suspending backend.
type Park struct{}

func (Park) wait(sema *opt.Sema, _ *int) {
	sema.Acquire()
}

func (Park) wake(sema *opt.Sema) {
	sema.Release()
}

func (Park) parks() bool { return true }
