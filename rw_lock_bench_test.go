package powerlocks

import (
	"sync"
	"testing"
)

func BenchmarkRWLockReadUncontended(b *testing.B) {
	b.ReportAllocs()
	l := NewRWLock(42)
	for range b.N {
		g, _ := l.RLock()
		_ = g.Value()
		g.Unlock()
	}
}

func BenchmarkRWLockReadParallel(b *testing.B) {
	b.ReportAllocs()
	l := NewRWLock(42)
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = l.DoRead(func(int) {})
		}
	})
}

// Baseline for BenchmarkRWLockReadParallel.
func BenchmarkRWLockReadParallel_SyncRWMutex(b *testing.B) {
	b.ReportAllocs()
	var mu sync.RWMutex
	v := 42
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			mu.RLock()
			_ = v
			mu.RUnlock()
		}
	})
}

// Mostly reads with an occasional write, per fairness policy.
func BenchmarkRWLockMixed(b *testing.B) {
	for _, s := range []Strategy{FairFIFO, ReaderPreferring, WriterPreferring} {
		b.Run(s.String(), func(b *testing.B) {
			b.ReportAllocs()
			l := NewRWLock(0, WithStrategy(s))
			b.RunParallel(func(pb *testing.PB) {
				i := 0
				for pb.Next() {
					if i&15 == 0 {
						_ = l.DoWrite(func(v *int) { *v++ })
					} else {
						_ = l.DoRead(func(int) {})
					}
					i++
				}
			})
		})
	}
}

func BenchmarkRWLockMixed_SyncRWMutex(b *testing.B) {
	b.ReportAllocs()
	var mu sync.RWMutex
	v := 0
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i&15 == 0 {
				mu.Lock()
				v++
				mu.Unlock()
			} else {
				mu.RLock()
				_ = v
				mu.RUnlock()
			}
			i++
		}
	})
}

func BenchmarkRawRWLockReadParallel(b *testing.B) {
	b.ReportAllocs()
	var l RawRWLock
	v := 42
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			l.RLock()
			_ = v
			l.RUnlock()
		}
	})
}

func BenchmarkRWLockGroupRead(b *testing.B) {
	b.ReportAllocs()
	var g RWLockGroup[string]
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			g.RLock("cfg")
			g.RUnlock("cfg")
		}
	})
}
