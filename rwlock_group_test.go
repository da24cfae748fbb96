package powerlocks

import (
	"sync"
	"testing"
	"time"
)

func TestRWLockGroup_Basic(t *testing.T) {
	var g RWLockGroup[string]
	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)

	for range n {
		go func() {
			defer wg.Done()
			g.RLock("key")
			time.Sleep(time.Microsecond)
			g.RUnlock("key")
		}()
	}
	wg.Wait()

	g.Lock("key")
	done := make(chan struct{})
	go func() {
		g.RLock("key")
		close(done)
		g.RUnlock("key")
	}()

	select {
	case <-done:
		t.Fatal("RLock acquired while Lock held")
	case <-time.After(10 * time.Millisecond):
	}
	g.Unlock("key")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RLock not acquired after Unlock")
	}
}

func TestRWLockGroup_WriterExcludes(t *testing.T) {
	var g RWLockGroup[int]
	const n = 50
	var wg sync.WaitGroup
	counter := 0
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Lock(7)
			counter++
			g.Unlock(7)
		}()
	}
	wg.Wait()
	if counter != n {
		t.Fatalf("counter = %d, want %d", counter, n)
	}
}

func TestRWLockGroup_RefCounting(t *testing.T) {
	var g RWLockGroup[int]

	g.RLock(1)
	if _, ok := g.m.Load(1); !ok {
		t.Fatal("entry should exist after RLock")
	}
	g.RUnlock(1)
	if _, ok := g.m.Load(1); ok {
		t.Fatal("entry should be auto-deleted after RUnlock (ref=0)")
	}
}
