package powerlocks

import (
	"github.com/llxisdsh/pb"
)

// RWLockGroup allows shared reader-writer locking on arbitrary keys.
// It matches the interface of MutexGroup but supports RLock/RUnlock.
//
// Features:
//   - RLock/RUnlock for shared read access.
//   - Lock/Unlock for exclusive write access.
//   - Infinite Keys & Auto-Cleanup.
//
// Usage:
//
//	var group RWLockGroup[string]
//
//	// Readers
//	group.RLock("config")
//	read(config)
//	group.RUnlock("config")
//
//	// Writer
//	group.Lock("config")
//	write(config)
//	group.Unlock("config")
//
// The per-key lock is a [RawRWLock], so writers are preferred within a
// key and an idle group holds no memory beyond the map.
type RWLockGroup[K comparable] struct {
	_ noCopy
	m pb.MapOf[K, *rwLockGroupEntry]
}

type rwLockGroupEntry struct {
	mu  RawRWLock
	ref int32
}

func (g *RWLockGroup[K]) Lock(k K) {
	g.retain(k).mu.Lock()
}

func (g *RWLockGroup[K]) Unlock(k K) {
	e, ok := g.m.Load(k)
	if !ok {
		return
	}
	e.mu.Unlock()
	g.release(k)
}

func (g *RWLockGroup[K]) RLock(k K) {
	g.retain(k).mu.RLock()
}

func (g *RWLockGroup[K]) RUnlock(k K) {
	e, ok := g.m.Load(k)
	if !ok {
		return
	}
	e.mu.RUnlock()
	g.release(k)
}

func (g *RWLockGroup[K]) retain(k K) *rwLockGroupEntry {
	e, _ := g.m.ProcessEntry(k,
		func(l *pb.EntryOf[K, *rwLockGroupEntry]) (*pb.EntryOf[K, *rwLockGroupEntry], *rwLockGroupEntry, bool) {
			if l != nil {
				// ref is only touched inside ProcessEntry, which the
				// map serializes per key.
				l.Value.ref++
				return l, l.Value, true
			}
			e := &rwLockGroupEntry{ref: 1}
			return &pb.EntryOf[K, *rwLockGroupEntry]{Value: e}, e, false
		})
	return e
}

func (g *RWLockGroup[K]) release(k K) {
	g.m.ProcessEntry(k,
		func(l *pb.EntryOf[K, *rwLockGroupEntry]) (*pb.EntryOf[K, *rwLockGroupEntry], *rwLockGroupEntry, bool) {
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
