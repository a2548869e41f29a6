package rpmts

import (
	"time"

	"code.cloudfoundry.org/bytefmt"
)

// OpKind addresses one counter in a TransactionSet's ops array, mirroring
// RPMTS_OP_* in the original.
type OpKind int

const (
	OpTotal OpKind = iota
	OpCheck
	OpOrder
	OpVerify
	OpInstall
	OpErase
	OpDBGet
	OpDBPut
	OpDBDel
	opKindMax
)

func (k OpKind) String() string {
	switch k {
	case OpTotal:
		return "total"
	case OpCheck:
		return "check"
	case OpOrder:
		return "order"
	case OpVerify:
		return "verify"
	case OpInstall:
		return "install"
	case OpErase:
		return "erase"
	case OpDBGet:
		return "dbget"
	case OpDBPut:
		return "dbput"
	case OpDBDel:
		return "dbdel"
	default:
		return "unknown"
	}
}

// opCounter is a single (count, bytes, duration) statistics counter,
// single-writer from the owning TransactionSet and read-only externally.
type opCounter struct {
	count int
	bytes int64
	spent time.Duration

	startedAt time.Time
}

func (c *opCounter) enter() {
	c.startedAt = time.Now()
}

func (c *opCounter) exit(n int64) {
	if !c.startedAt.IsZero() {
		c.spent += time.Since(c.startedAt)
		c.startedAt = time.Time{}
	}
	c.count++
	c.bytes += n
}

// Op returns a snapshot of the counter for kind.
func (ts *TransactionSet) Op(kind OpKind) (count int, bytes int64, spent time.Duration) {
	if ts == nil || kind < 0 || kind >= opKindMax {
		return 0, 0, 0
	}
	c := &ts.ops[kind]
	return c.count, c.bytes, c.spent
}

// dbOpStats is the subset of rpmdb.OpStats foldDBStats needs; kept as its
// own type so this file doesn't import internal/rpmdb directly.
type dbOpStats struct {
	Count int
	Bytes int64
}

// foldDBStats folds per-handle database operation counters into the set's
// own statistics, mirroring rpmtsCloseDB's rpmswAdd calls.
func (ts *TransactionSet) foldDBStats(get, put, del dbOpStats) {
	ts.ops[OpDBGet].count += get.Count
	ts.ops[OpDBGet].bytes += get.Bytes
	ts.ops[OpDBPut].count += put.Count
	ts.ops[OpDBPut].bytes += put.Bytes
	ts.ops[OpDBDel].count += del.Count
	ts.ops[OpDBDel].bytes += del.Bytes
}

// PrintStats writes a human-readable operation summary to w, matching the
// teacher's Dprintf byte-formatting style (bytefmt.ByteSize) rather than
// the original's raw MB-scaled fprintf.
func (ts *TransactionSet) PrintStats(w func(format string, a ...interface{})) {
	ts.ops[OpTotal].exit(0)

	for k := OpKind(0); k < opKindMax; k++ {
		c := &ts.ops[k]
		if c.count == 0 {
			continue
		}
		w("%-10s %6d %10s %10s\n", k, c.count, bytefmt.ByteSize(uint64(c.bytes)), c.spent)
	}
}
