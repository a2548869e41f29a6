package rpmts

import (
	"os"

	"github.com/teknoraver/rpm/internal/rpmdb"
)

// OpenDB opens (or reopens) ts's database handle in mode, idempotent when
// already open in that mode (invariant 1).
func (ts *TransactionSet) OpenDB(mode int) error {
	return ts.openDB(mode)
}

func (ts *TransactionSet) openDB(mode int) error {
	if ts.db != nil && ts.dbMode == mode {
		return nil
	}
	if ts.db != nil {
		if err := ts.closeDBLocked(); err != nil {
			return err
		}
	}

	path := ts.dbFilePath()
	db, err := rpmdb.Open(path, mode, 0644)
	if err != nil {
		ts.log.Errorf(err, "cannot open database %s", path)
		return err
	}

	ts.db = db
	ts.dbMode = mode
	return nil
}

// CloseDB folds per-handle operation counters into ts's own statistics,
// then closes the handle.
func (ts *TransactionSet) CloseDB() error {
	return ts.closeDBLocked()
}

func (ts *TransactionSet) closeDBLocked() error {
	if ts.db == nil {
		return nil
	}

	get, put, del := ts.db.Op(rpmdb.OpGet), ts.db.Op(rpmdb.OpPut), ts.db.Op(rpmdb.OpDel)
	ts.foldDBStats(
		dbOpStats{Count: get.Count, Bytes: get.Bytes},
		dbOpStats{Count: put.Count, Bytes: put.Bytes},
		dbOpStats{Count: del.Count, Bytes: del.Bytes},
	)

	err := ts.db.Close()
	ts.db = nil
	return err
}

// InitDB creates ts's database under a write transaction.
func (ts *TransactionSet) InitDB(perm os.FileMode) error {
	txn, err := Begin(ts, LockWrite)
	if err != nil {
		return err
	}
	defer End(txn)

	if err := rpmdb.Init(ts.dbFilePath(), perm); err != nil {
		ts.log.Errorf(err, "cannot init database %s", ts.dbFilePath())
		return err
	}
	return nil
}

// RebuildDB refuses when the set has pending elements, otherwise rebuilds
// the database under a write transaction in salvage mode when requested,
// with the header-check hook bound unless VSFlagNoHdrChk is set.
func (ts *TransactionSet) RebuildDB(salvage bool) error {
	if ts.NElements() > 0 {
		return ErrPendingElements
	}

	txn, err := Begin(ts, LockWrite)
	if err != nil {
		return err
	}
	defer End(txn)

	if err := ts.openDB(os.O_RDWR); err != nil {
		return err
	}

	check := ts.headerCk
	if ts.vsFlags&VSFlagNoHdrChk != 0 {
		check = nil
	}

	if err := ts.db.Rebuild(salvage, check); err != nil {
		ts.log.Errorf(err, "cannot rebuild database %s", ts.dbFilePath())
		return err
	}
	return nil
}

// VerifyDB verifies the on-disk database structure under a read
// transaction.
func (ts *TransactionSet) VerifyDB() error {
	txn, err := Begin(ts, LockRead)
	if err != nil {
		return err
	}
	defer End(txn)

	if err := ts.openDB(os.O_RDONLY); err != nil {
		return err
	}

	if err := ts.db.Verify(); err != nil {
		ts.log.Errorf(err, "cannot verify database %s", ts.dbFilePath())
		return err
	}
	return nil
}

// SetHeaderCheck installs the header-check hook RebuildDB and InitIterator
// bind unless VSFlagNoHdrChk is set.
func (ts *TransactionSet) SetHeaderCheck(fn rpmdb.HeaderCheckFunc) {
	ts.headerCk = fn
}

// DbTag selects which index InitIterator matches against.
type DbTag int

const (
	// DbTagName matches by exact package name.
	DbTagName DbTag = iota
	// DbTagLabel translates key through the label-key grammar (§6), then
	// matches the translated string against the package name exactly.
	// Version and release are not matched separately, so a key carrying a
	// version only finds a package whose name is that whole string.
	DbTagLabel
	// DbTagOffset matches a single header by its database offset.
	DbTagOffset
)

// InitIterator opens the database and loads the keyring if necessary,
// translating key through the label-key grammar when tag is DbTagLabel,
// and returns the matching headers with the header-check hook bound
// unless VSFlagNoHdrChk is set.
func (ts *TransactionSet) InitIterator(tag DbTag, key string, offset int64) ([]*rpmdb.Header, error) {
	if err := ts.openDB(ts.dbMode); err != nil {
		return nil, err
	}
	if err := loadKeyring(ts); err != nil {
		return nil, err
	}

	check := ts.headerCk
	if ts.vsFlags&VSFlagNoHdrChk != 0 {
		check = nil
	}

	switch tag {
	case DbTagLabel:
		translated, err := parseLabelKey(key)
		if err != nil {
			ts.log.Errorf(err, "label parse error")
			return nil, err
		}
		return ts.db.FindByName(translated, check)

	case DbTagOffset:
		h, err := ts.db.FindByOffset(offset, check)
		if err != nil || h == nil {
			return nil, err
		}
		return []*rpmdb.Header{h}, nil

	default:
		return ts.db.FindByName(key, check)
	}
}
