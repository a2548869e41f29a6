// Package rpmts implements the transaction-set core of a package manager:
// lock/transaction lifecycle, keyring/keystore coordination and
// transaction-element membership and iteration against a rooted
// filesystem and a package database. The dependency solver, file-state
// machine, scriptlet execution, archive/payload codec and header parser
// remain external collaborators, referenced only by interface.
package rpmts

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/teknoraver/rpm/internal/rpmdb"
	"github.com/teknoraver/rpm/internal/rpmlog"
)

// scriptFd is a reference-counted handle standing in for the opaque
// scriptlet-output stream spec.md names but this core never reads from or
// writes to; the core only owns and releases it.
type scriptFd struct {
	f *os.File
}

func (s *scriptFd) Close() error {
	if s == nil || s.f == nil {
		return nil
	}
	return s.f.Close()
}

// pluginRegistry is the lazily constructed, external-collaborator plugin
// set. The core never interprets plugin behaviour beyond the hook points
// in plugins.go.
type pluginRegistry struct {
	hooks map[string][]PluginHook
}

// TransactionSet is the root aggregate: configuration, reference
// counting, lifecycle, notify/change callbacks, statistics, and element
// accessors, per §4.9. Fields are unexported; callers interact through
// methods, matching invariant enforcement at every mutation point.
type TransactionSet struct {
	log *rpmlog.Logger

	rootDir string
	dbPath  string

	dbMode   int
	db       *rpmdb.DB
	headerCk rpmdb.HeaderCheckFunc

	keyring      *Keyring
	keystoreKind KeystoreKind
	keystoreImpl keystore

	vsFlags  uint32
	vfyFlags uint32
	vfyLevel VerifyLevel

	transactionFlags TransactionFlags
	ignoreSet        uint32

	color, preferColor uint32

	tid             int64
	sourceDateEpoch *int64
	timeStep        int64

	netSharedPaths []string
	installLangs   []string

	script *scriptFd

	notifyFn    NotifyFunc
	notifyStyle NotifyStyle
	notifyData  interface{}

	changeFn   ChangeFunc
	changeData interface{}

	solveFn   SolveFunc
	solveData interface{}

	problems []Problem

	plugins *pluginRegistry

	triggersPending []string

	lockPath         string
	lockPathTemplate string
	lock             *lock

	minWrites      bool
	wantStats      bool
	rebuildSalvage bool

	ops [opKindMax]opCounter

	refCount int

	members *Members
}

// Create allocates a TransactionSet from cfg: read-only db mode, zeroed
// statistics with the TOTAL op timer started, tid seeded from
// SOURCE_DATE_EPOCH or wall clock, colours and list configuration
// resolved, no keyring, no plugins, no lock. The returned set already
// carries one reference (link), so callers always own it and must pair it
// with a matching Free, per §4.9.
func Create(cfg Config) (*TransactionSet, error) {
	root, err := normalizeRootDir(cfg.RootDir)
	if err != nil {
		return nil, err
	}

	ts := &TransactionSet{
		log:              rpmlog.Default,
		rootDir:          root,
		dbPath:           cfg.DBPath,
		dbMode:           os.O_RDONLY,
		keystoreKind:     cfg.KeystoreKind,
		vsFlags:          cfg.VSFlags,
		vfyLevel:         cfg.VerifyLevel,
		vfyFlags:         cfg.VerifyFlags,
		transactionFlags: TransFlagNone,
		color:            cfg.Color,
		preferColor:      cfg.PreferColor,
		netSharedPaths:   cfg.NetSharedPaths,
		installLangs:     cfg.InstallLangs,
		lockPathTemplate: cfg.LockPathTemplate,
		minWrites:        cfg.MinimizeWrites,
		wantStats:        cfg.Stats,
		rebuildSalvage:   cfg.RebuildSalvage,
		members:          newMembers(),
	}

	if v := os.Getenv("SOURCE_DATE_EPOCH"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			ts.sourceDateEpoch = &n
		}
	}

	ts.ops[OpTotal].enter()
	ts.tid = ts.GetTime(0)

	return ts.link(), nil
}

// normalizeRootDir applies invariant 7: absolute, ending in "/"; empty
// input means "/".
func normalizeRootDir(root string) (string, error) {
	if root == "" {
		return "/", nil
	}
	if !strings.HasPrefix(root, "/") {
		return "", ErrNotAbsolute
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return filepath.Clean(root) + "/", nil
}

// RootDir returns the set's absolute root directory, always ending in "/".
func (ts *TransactionSet) RootDir() string {
	return ts.rootDir
}

// SetRootDir sets the set's root directory. A non-absolute root leaves
// root_dir unchanged and returns ErrNotAbsolute; an empty root resets it
// to "/".
func (ts *TransactionSet) SetRootDir(root string) error {
	normalized, err := normalizeRootDir(root)
	if err != nil {
		return err
	}
	ts.rootDir = normalized
	return nil
}

// VSFlags returns the set's verify-signature flag bitset (vs_flags, §3).
func (ts *TransactionSet) VSFlags() uint32 {
	return ts.vsFlags
}

// SetVSFlags replaces the set's verify-signature flag bitset and returns
// the previous value, mirroring the original's rpmtsSetVSFlags. Setting
// every VSFlagNoSignatures bit disables signature checking entirely
// (invariant 6); setting VSFlagNoHdrChk disables the header-check hook
// RebuildDB and InitIterator bind.
func (ts *TransactionSet) SetVSFlags(flags uint32) uint32 {
	old := ts.vsFlags
	ts.vsFlags = flags
	return old
}

// pkiDir is the filesystem keystore variant's key directory under root.
func (ts *TransactionSet) pkiDir() string {
	return filepath.Join(ts.rootDir, "etc/pki/rpm-gpg")
}

// dbFilePath is the resolved package database path under root.
func (ts *TransactionSet) dbFilePath() string {
	return filepath.Join(ts.rootDir, ts.dbPath, "rpmdb.sqlite")
}

// logf logs a warning through the set's logger, used for the keystore
// fallback and other non-fatal configuration diagnostics.
func (ts *TransactionSet) logf(format string, a ...interface{}) {
	ts.log.Warningf(format, a...)
}

// GetTime returns tid-style deterministic time when SOURCE_DATE_EPOCH was
// set at Create, advancing by step on every call after the first;
// otherwise it returns the (non-decreasing) wall clock and step is
// ignored.
func (ts *TransactionSet) GetTime(step int64) int64 {
	if ts.sourceDateEpoch != nil {
		t := *ts.sourceDateEpoch + ts.timeStep
		ts.timeStep += step
		return t
	}
	return time.Now().Unix()
}

// Tid returns the transaction identifier seeded at Create.
func (ts *TransactionSet) Tid() int64 {
	return ts.tid
}

// RebuildSalvageDefault returns the salvage-mode default resolved from
// configuration at Create (%{_rebuilddb_salvage}).
func (ts *TransactionSet) RebuildSalvageDefault() bool {
	return ts.rebuildSalvage
}

// NElements returns the number of elements currently queued.
func (ts *TransactionSet) NElements() int {
	return ts.members.NElements()
}

// Element returns the element at ix, or nil if out of range.
func (ts *TransactionSet) Element(ix int) *Element {
	return ts.members.Element(ix)
}

// AddElement queues te, dispatching the change callback with EventAdd.
func (ts *TransactionSet) AddElement(te *Element) {
	ts.members.Add(te, ts.changeFn, ts.changeData)
}

// Pool returns the set's string interning pool, creating it on first
// access (invariant 5).
func (ts *TransactionSet) Pool() *stringPool {
	return ts.members.Pool()
}

// Clean frees addedPackages and the cached rpmlib capability set and
// clears element-level dependency-check problems, without touching order,
// per §7 (rpmtsClean/rpmtsCleanProblems).
func (ts *TransactionSet) Clean() {
	ts.members.Clean()
	ts.CleanProblems()
}

// Empty fires a DEL change event for every element, then clears order,
// removedPackages and the aggregated problems, as Clean does; the string
// pool survives, per invariant 5.
func (ts *TransactionSet) Empty() {
	ts.members.Empty(ts.changeFn, ts.changeData)
	ts.CleanProblems()
}

// link increments the reference count and returns ts, used by Create,
// Begin and Iterate.
func (ts *TransactionSet) link() *TransactionSet {
	ts.refCount++
	return ts
}

// free decrements the reference count, destroying the set and returning
// nil once it reaches zero; otherwise returns ts unchanged.
func (ts *TransactionSet) free() *TransactionSet {
	if ts == nil {
		return nil
	}
	ts.refCount--
	if ts.refCount > 0 {
		return ts
	}
	ts.destroy()
	return nil
}

// Free is the exported form of free, for callers holding the reference
// Create handed them.
func (ts *TransactionSet) Free() {
	ts.free()
}

// destroy runs the fixed teardown sequence from §4.9: disable the change
// callback, empty members, close the database, destroy the keystore,
// release the script fd, drop the lock, free the keyring, drop list
// configuration and plugins, optionally print statistics.
func (ts *TransactionSet) destroy() {
	ts.changeFn = nil
	ts.changeData = nil
	ts.members.Empty(nil, nil)

	if ts.db != nil {
		_ = ts.closeDBLocked()
	}

	ts.keystoreImpl = nil

	_ = ts.script.Close()
	ts.script = nil

	ts.rootDir = ""
	ts.lockPath = ""

	if ts.lock != nil {
		_ = ts.lock.close()
		ts.lock = nil
	}

	if ts.keyring != nil {
		ts.keyring.Free()
		ts.keyring = nil
	}

	ts.netSharedPaths = nil
	ts.installLangs = nil
	ts.plugins = nil
	ts.triggersPending = nil

	if ts.wantStats {
		ts.PrintStats(ts.log.Infof)
	}
}
