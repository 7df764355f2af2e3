package podpub

import "sync"

// keyedLocks hands out one mutex per feed slug. The "upsert episode, list,
// build document, upload" sequence must be a critical section per feed:
// without it two concurrent AddEpisode calls can each rebuild from a list
// missing the other's row and the last upload wins with a stale document.
// Feeds never contend with each other.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedLocks) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	return l
}
