package rpmts

import (
	"fmt"
	"os"
	"path/filepath"
)

// LockMode selects shared (reader) or exclusive (writer) acquisition.
type LockMode int

const (
	LockRead LockMode = iota
	LockWrite
)

// lock is a named advisory file lock at a per-root path. It is long-lived:
// the handle survives across transactions and is only destroyed with the
// owning TransactionSet, matching §4.1.
type lock struct {
	path string
	f    *os.File
}

// newLock creates the containing directory (mode 0755, best effort) and
// returns an unacquired lock bound to path. Failure to create the directory
// is non-fatal here; it only becomes fatal if the subsequent open also
// fails.
func newLock(path string) *lock {
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	return &lock{path: path}
}

// acquire blocks until the lock is held in the given mode, or returns an
// error. Re-acquiring in the same mode from the same *lock value without an
// intervening release is undefined, per the transaction handle's
// non-reentrancy contract.
func (l *lock) acquire(mode LockMode) error {
	if l.f == nil {
		f, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE, 0644)
		if err != nil {
			return fmt.Errorf("rpmts: cannot open lock file %s: %v", l.path, err)
		}
		l.f = f
	}

	return flock(l.f, mode)
}

// release is idempotent: releasing a lock that was never acquired, or
// releasing twice, is not an error.
func (l *lock) release() error {
	if l.f == nil {
		return nil
	}
	return funlock(l.f)
}

// close releases the lock and closes the underlying file handle. It is
// called once, when the owning TransactionSet is destroyed.
func (l *lock) close() error {
	if l.f == nil {
		return nil
	}
	_ = funlock(l.f)
	err := l.f.Close()
	l.f = nil
	return err
}
