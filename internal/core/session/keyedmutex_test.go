package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("same-key")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestKeyedMutexAllowsDifferentKeysConcurrently(t *testing.T) {
	km := NewKeyedMutex()

	unlockA := km.Lock("key-a")

	// A second key must not block behind the first
	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("key-b")
		unlockB()
		close(done)
	}()

	<-done
	unlockA()
}

func TestKeyedMutexReleasesEntryWhenUnused(t *testing.T) {
	km := NewKeyedMutex()

	unlock := km.Lock("ephemeral")
	unlock()

	km.mu.Lock()
	_, exists := km.locks["ephemeral"]
	km.mu.Unlock()
	assert.False(t, exists, "released keys must not leak map entries")
}
