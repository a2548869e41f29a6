//go:build unix

package rpmts

import (
	"os"

	"golang.org/x/sys/unix"
)

// flock acquires the OS-level advisory lock on f's descriptor in the given
// mode, blocking until granted.
func flock(f *os.File, mode LockMode) error {
	how := unix.LOCK_SH
	if mode == LockWrite {
		how = unix.LOCK_EX
	}
	return unix.Flock(int(f.Fd()), how)
}

// funlock releases whatever lock flock granted on f's descriptor.
func funlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
