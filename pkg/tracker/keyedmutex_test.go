package tracker

import (
	"sync"
	"testing"
	"time"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	var locks keyedMutex

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("101")
			defer unlock()

			value := counter
			value++
			counter = value
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("lost updates under the same key: %d", counter)
	}
}

func TestKeyedMutexKeysAreIndependent(t *testing.T) {
	var locks keyedMutex

	unlock := locks.Lock("101")
	defer unlock()

	acquired := make(chan struct{})
	go func() {
		otherUnlock := locks.Lock("205")
		otherUnlock()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("locking a different key should not block")
	}
}
