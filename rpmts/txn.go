package rpmts

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// defaultLockPath is the compiled-in fallback used when no
// LockPathTemplate was configured, or it expands to nothing usable.
const defaultLockPath = "var/lib/rpm/.rpm.lock"

// Txn is a short-lived token produced by Begin and consumed by End: while
// it is live, ts's lock is held in the matching mode and, for a writer,
// SIGINT/SIGTERM/SIGQUIT are masked for the calling thread (invariants 2
// and 3).
type Txn struct {
	ts     *TransactionSet
	mode   LockMode
	sigOld unix.Sigset_t
	masked bool
}

// resolveLockPath lazily resolves the lock file path from root_dir and
// the configured template, falling back to the compiled-in default when
// the template is empty or unexpanded (still carries a leading '%').
func (ts *TransactionSet) resolveLockPath() string {
	if ts.lockPath != "" {
		return ts.lockPath
	}

	template := ts.lockPathTemplate
	if template == "" || strings.HasPrefix(template, "%") {
		template = defaultLockPath
	}

	ts.lockPath = filepath.Join(ts.rootDir, template)
	return ts.lockPath
}

// Begin resolves ts's lock path, allocates the lock object if absent, and
// acquires it in the mode derived from mode (WRITE implies exclusive). On
// success it increments ts's reference count and, for a writer, masks
// signals for the calling thread. It returns ErrLockUnavailable on lock
// failure and leaves ts's reference count unchanged; the resolved lock path
// and the lock object stay allocated on ts.
func Begin(ts *TransactionSet, mode LockMode) (*Txn, error) {
	if ts.lock == nil {
		ts.lock = newLock(ts.resolveLockPath())
	}

	if err := ts.lock.acquire(mode); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockUnavailable, err)
	}

	ts.link()
	t := &Txn{ts: ts, mode: mode}

	if mode == LockWrite {
		old, err := sigBlock()
		if err != nil {
			_ = ts.lock.release()
			ts.free()
			return nil, err
		}
		t.sigOld = old
		t.masked = true
	}

	return t, nil
}

// End releases t's lock, restores the signal mask if t was a writer,
// decrements the owning set's reference count (which may destroy it), and
// clears t. End(nil) is a no-op.
func End(t *Txn) {
	if t == nil || t.ts == nil {
		return
	}

	if t.masked {
		sigRestore(t.sigOld)
	}

	_ = t.ts.lock.release()
	t.ts.free()
	t.ts = nil
}
