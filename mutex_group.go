package powerlocks

import (
	"github.com/llxisdsh/pb"
)

// MutexGroup allows locking on arbitrary keys (string, int, struct, etc.).
// It dynamically manages a set of locks associated with keys.
//
// Features:
//   - Infinite Keys: No need to pre-allocate locks.
//   - Auto-Cleanup: Locks are removed from memory when unlocked and no
//     one else is waiting.
//
// Usage:
//
//	var group MutexGroup[string]
//	group.Lock("user-123")
//	// Critical section for user-123
//	group.Unlock("user-123")
//
// Implementation Note:
// It uses reference counting to safely delete entries. The per-key lock
// is a [RawMutex], so an idle group holds no memory beyond the map.
type MutexGroup[K comparable] struct {
	_ noCopy
	m pb.MapOf[K, *mutexGroupEntry]
}

type mutexGroupEntry struct {
	mu  RawMutex
	ref int32
}

func (g *MutexGroup[K]) Lock(k K) {
	e, _ := g.m.ProcessEntry(k,
		func(l *pb.EntryOf[K, *mutexGroupEntry]) (*pb.EntryOf[K, *mutexGroupEntry], *mutexGroupEntry, bool) {
			if l != nil {
				// ref is only touched inside ProcessEntry, which the
				// map serializes per key.
				l.Value.ref++
				return l, l.Value, true
			}
			e := &mutexGroupEntry{ref: 1}
			return &pb.EntryOf[K, *mutexGroupEntry]{Value: e}, e, false
		})
	e.mu.Lock()
}

func (g *MutexGroup[K]) Unlock(k K) {
	e, ok := g.m.Load(k)
	if !ok {
		return
	}
	e.mu.Unlock()

	g.m.ProcessEntry(k,
		func(l *pb.EntryOf[K, *mutexGroupEntry]) (*pb.EntryOf[K, *mutexGroupEntry], *mutexGroupEntry, bool) {
			if l == nil {
				return nil, nil, false
			}
			l.Value.ref--
			if l.Value.ref <= 0 {
				return nil, nil, true
			}
			return l, l.Value, true
		})
}
