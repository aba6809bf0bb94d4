// Package lock provides per-user locking so read-modify-write cycles
// against the ledger store cannot interleave for the same user inside
// one process. Cross-process races remain possible; the store itself
// gives no ordering guarantees.
package lock

import "sync"

// UserLock serializes ledger operations per user ID.
//
// Mutexes are never evicted; the map grows with the set of users seen
// since startup, which stays small for a single guild.
type UserLock struct {
	locks sync.Map // map[string]*sync.Mutex
}

// NewUserLock creates a new UserLock instance.
func NewUserLock() *UserLock {
	return &UserLock{}
}

// Lock acquires the lock for a user. Call before any ledger
// read-modify-write cycle.
func (ul *UserLock) Lock(userID string) {
	ul.mutex(userID).Lock()
}

// Unlock releases the lock for a user.
func (ul *UserLock) Unlock(userID string) {
	ul.mutex(userID).Unlock()
}

func (ul *UserLock) mutex(userID string) *sync.Mutex {
	if v, ok := ul.locks.Load(userID); ok {
		return v.(*sync.Mutex)
	}
	v, _ := ul.locks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
