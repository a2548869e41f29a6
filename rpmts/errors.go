package rpmts

import "errors"

// Sentinel errors a caller can compare against with errors.Is, mirroring
// the teacher's yum.ErrChecksumMismatch idiom.
var (
	// ErrNotAbsolute is returned by SetRootDir when given a relative path.
	ErrNotAbsolute = errors.New("rpmts: root dir must be an absolute path")

	// ErrLockUnavailable is returned by Begin when the lock cannot be
	// acquired.
	ErrLockUnavailable = errors.New("rpmts: lock unavailable")

	// ErrPendingElements is returned by RebuildDB when the set still has
	// transaction elements queued.
	ErrPendingElements = errors.New("rpmts: cannot rebuild database with pending elements")

	// ErrKeyringDisabled reports that no keyring is available because
	// signature checking is fully disabled. Import and Delete do not return
	// it: both force-load the keyring with the signature mask cleared.
	ErrKeyringDisabled = errors.New("rpmts: keyring unavailable, signature checking is fully disabled")
)
