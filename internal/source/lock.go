package source

import "sync/atomic"

// ScanLock rejects overlapping scan requests instead of queueing them
type ScanLock struct {
	state atomic.Int32 // 0 = free, 1 = held
}

// TryAcquire takes the lock if it is free
func (l *ScanLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release frees the lock; only the holder may call it
func (l *ScanLock) Release() {
	l.state.Store(0)
}
