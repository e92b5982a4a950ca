package syncs

import "sync"

// KeyLocker provides per-key mutual exclusion.
// See [KeyLock] for an implementation.
type KeyLocker interface {
	Lock(key string)
	Unlock(key string)
	RLock(key string)
	RUnlock(key string)
}

// KeyLock is a per-key reader/writer mutex that allows independent keys to be
// locked concurrently while serializing writers of the same key. Create
// instances with [NewKeyLock], or use the zero value directly.
//
// Entries are reference counted and dropped once no goroutine holds or waits
// for them, so only keys currently in use are tracked.
type KeyLock struct {
	locks map[string]*keyLockEntry
	mu    sync.Mutex
}

type keyLockEntry struct {
	mu   sync.RWMutex
	refs int
}

// NewKeyLock creates a new [KeyLock].
func NewKeyLock() *KeyLock {
	return &KeyLock{
		locks: make(map[string]*keyLockEntry),
	}
}

// acquire returns the entry for key, registering interest in it.
func (kl *KeyLock) acquire(key string) *keyLockEntry {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	if kl.locks == nil {
		kl.locks = make(map[string]*keyLockEntry)
	}

	e, ok := kl.locks[key]
	if !ok {
		e = &keyLockEntry{}
		kl.locks[key] = e
	}

	e.refs++

	return e
}

// release drops interest in the entry for key, returning it.
func (kl *KeyLock) release(key string) *keyLockEntry {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	e, ok := kl.locks[key]
	if !ok {
		panic("syncs: unlock of unlocked key " + key)
	}

	e.refs--
	if e.refs == 0 {
		delete(kl.locks, key)
	}

	return e
}

// Lock acquires the write lock for the given key, blocking while it is held
// by any reader or writer.
func (kl *KeyLock) Lock(key string) {
	kl.acquire(key).mu.Lock()
}

// Unlock releases the write lock for the given key.
func (kl *KeyLock) Unlock(key string) {
	kl.release(key).mu.Unlock()
}

// RLock acquires a read lock for the given key, blocking while it is held by
// a writer.
func (kl *KeyLock) RLock(key string) {
	kl.acquire(key).mu.RLock()
}

// RUnlock releases a read lock for the given key.
func (kl *KeyLock) RUnlock(key string) {
	kl.release(key).mu.RUnlock()
}

// Len returns the number of keys currently held or waited on.
func (kl *KeyLock) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	return len(kl.locks)
}
