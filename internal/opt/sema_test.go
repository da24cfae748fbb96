package opt

import (
	"sync"
	"testing"
	"time"
)

func TestSemaBlockAndWake(t *testing.T) {
	var s Sema

	done := make(chan struct{})
	go func() {
		s.Acquire()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Acquire returned before Release")
	case <-time.After(50 * time.Millisecond):
		// OK
	}

	s.Release()
	select {
	case <-done:
		// OK
	case <-time.After(50 * time.Millisecond):
		t.Fatal("Acquire did not return after Release")
	}
}

func TestSemaRetainsEarlyRelease(t *testing.T) {
	// A Release delivered before the matching Acquire must be retained.
	// The wait/wake protocols in the root package depend on this.
	var s Sema
	s.Release()

	done := make(chan struct{})
	go func() {
		s.Acquire()
		close(done)
	}()

	select {
	case <-done:
		// OK
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Acquire did not consume the earlier Release")
	}
}

func TestSemaManyWaiters(t *testing.T) {
	var s Sema

	var wg sync.WaitGroup
	n := 10
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			s.Acquire()
		}()
	}

	// Give them time to block
	time.Sleep(50 * time.Millisecond)

	for range n {
		s.Release()
	}

	ch := make(chan struct{})
	go func() {
		wg.Wait()
		close(ch)
	}()

	select {
	case <-ch:
		// OK
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Not all waiters woke up")
	}
}
