package session

import "sync"

// KeyedMutex provides per-key mutual exclusion. Messages for the same
// (business, customer) pair serialize behind one lock while other keys run
// in parallel; the map-guarding mutex is only held to look up the entry,
// never while a caller owns a key.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*keyLock),
	}
}

// Lock blocks until the key is exclusively held and returns the unlock
// function. Entries are reference-counted and removed when the last waiter
// releases, so the map does not grow with the customer population.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyLock{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
