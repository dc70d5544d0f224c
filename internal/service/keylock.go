package service

import "sync"

const lockStripes = 64

// userLocks serializes work per user id over a fixed set of mutexes. Two
// users may share a stripe; that only costs throughput.
type userLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *userLocks) lock(userID int) func() {
	idx := userID % lockStripes
	if idx < 0 {
		idx = -idx
	}
	m := &l.stripes[idx]
	m.Lock()
	return m.Unlock
}
