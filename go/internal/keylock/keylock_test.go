package keylock

import (
	"sync"
	"testing"
)

func TestLockSerializesPerKey(t *testing.T) {
	m := New[string]()
	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("hand")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
	if m.Len() != 0 {
		t.Fatalf("expected entries to be released, got %d", m.Len())
	}
}

func TestDistinctKeysDoNotBlock(t *testing.T) {
	m := New[int]()
	unlockA := m.Lock(1)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := m.Lock(2)
		unlock()
		close(done)
	}()
	<-done
}

func TestReadersShare(t *testing.T) {
	m := New[int]()
	r1 := m.RLock(7)
	r2 := m.RLock(7)
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
	r1()
	r2()
	if m.Len() != 0 {
		t.Fatalf("Len = %d, want 0", m.Len())
	}
}
