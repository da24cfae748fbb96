//go:build race

package opt

import (
	"sync"
)

const Race_ = true

// Sema is the conservative counterpart used under the race detector.
// The runtime semaphore entry points are not annotated for the detector,
// so this build falls back to a mutex/cond counting semaphore with the
// same retained-release semantics.
type Sema struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count uint32
}

func (s *Sema) Acquire() {
	s.mu.Lock()
	if s.cond == nil {
		s.cond = sync.NewCond(&s.mu)
	}
	for s.count == 0 {
		s.cond.Wait()
	}
	s.count--
	s.mu.Unlock()
}

func (s *Sema) Release() {
	s.mu.Lock()
	if s.cond == nil {
		s.cond = sync.NewCond(&s.mu)
	}
	s.count++
	s.cond.Signal()
	s.mu.Unlock()
}
