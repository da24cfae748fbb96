package powerlocks

import (
	"strconv"
	"sync"
	"testing"
)

func BenchmarkMutexUncontended(b *testing.B) {
	b.ReportAllocs()
	m := NewMutex(0)
	for range b.N {
		g, _ := m.Lock()
		*g.Value()++
		g.Unlock()
	}
}

func BenchmarkMutexDoContended(b *testing.B) {
	b.ReportAllocs()
	m := NewMutex(0)
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = m.Do(func(v *int) { *v++ })
		}
	})
}

// Baseline for BenchmarkMutexDoContended.
func BenchmarkMutexDoContended_SyncMutex(b *testing.B) {
	b.ReportAllocs()
	var mu sync.Mutex
	v := 0
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			mu.Lock()
			v++
			mu.Unlock()
		}
	})
}

func BenchmarkSpinMutexDoContended(b *testing.B) {
	b.ReportAllocs()
	m := NewSpinMutex(0)
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = m.Do(func(v *int) { *v++ })
		}
	})
}

func BenchmarkMutexTryLock(b *testing.B) {
	b.ReportAllocs()
	m := NewMutex(0)
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if g, err := m.TryLock(); err == nil {
				g.Unlock()
			}
		}
	})
}

func BenchmarkRawMutexContended(b *testing.B) {
	b.ReportAllocs()
	var mu RawMutex
	v := 0
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			mu.Lock()
			v++
			mu.Unlock()
		}
	})
}

func BenchmarkMutexGroupSameKey(b *testing.B) {
	b.ReportAllocs()
	var g MutexGroup[string]
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			g.Lock("same")
			g.Unlock("same")
		}
	})
}

func BenchmarkMutexGroupManyKeys(b *testing.B) {
	b.ReportAllocs()
	var g MutexGroup[string]
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := "k_" + strconv.Itoa(i&1023)
			g.Lock(key)
			g.Unlock(key)
			i++
		}
	})
}
