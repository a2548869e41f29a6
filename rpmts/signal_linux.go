//go:build linux

package rpmts

import "golang.org/x/sys/unix"

// maskedSignals are blocked for the calling thread for the duration of a
// write transaction, per invariant 3: the signals a package manager must
// not be interrupted by mid-write.
var maskedSignals = []unix.Signal{unix.SIGINT, unix.SIGTERM, unix.SIGQUIT}

// sigBlock blocks maskedSignals for the calling thread and returns the
// previous mask so it can be restored by sigRestore.
func sigBlock() (unix.Sigset_t, error) {
	var set, old unix.Sigset_t
	for _, s := range maskedSignals {
		addSignal(&set, s)
	}
	if err := unix.PthreadSigmask(unix.SIG_BLOCK, &set, &old); err != nil {
		return old, err
	}
	return old, nil
}

// sigRestore restores a mask previously returned by sigBlock.
func sigRestore(old unix.Sigset_t) {
	_ = unix.PthreadSigmask(unix.SIG_SETMASK, &old, nil)
}

// addSignal sets s's bit in set: signal n is bit n-1. unix.Sigset_t's word
// size is platform-specific (uint64 or uint32 words, 1024 bits in total on
// Linux), so the word size is derived from the length of its Val array.
func addSignal(set *unix.Sigset_t, s unix.Signal) {
	wordBits := 1024 / len(set.Val)
	n := int(s) - 1
	set.Val[n/wordBits] |= 1 << uint(n%wordBits)
}
