// Package rpmdb is the on-disk "Packages" database binding used by the
// rpmts transaction-set core. It stores installed package headers and, for
// the database keystore variant, trusted OpenPGP public keys, in a single
// SQLite file per root — the same storage engine the teacher's yum
// primary_db binding uses, repurposed from repository metadata to an
// installed-package database.
package rpmdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// schema provisions the packages table (one row per installed header),
// its index on package name for name lookups, and the keys table used by
// the database keystore variant.
const schema = `
CREATE TABLE IF NOT EXISTS db_info (dbversion INTEGER, checksum TEXT);
CREATE TABLE IF NOT EXISTS packages (
	hdrOffset INTEGER PRIMARY KEY AUTOINCREMENT
	, name TEXT
	, epoch TEXT
	, version TEXT
	, release TEXT
	, arch TEXT
	, blob BLOB
);
CREATE INDEX IF NOT EXISTS packagename ON packages (name);
CREATE TABLE IF NOT EXISTS keys (
	fingerprint TEXT PRIMARY KEY
	, packet BLOB
);
`

// HeaderCheckFunc verifies a raw header blob's signature/digest, mirroring
// rpmdbSetHdrChk's headerCheck hook. It is bound by the rpmts package and
// invoked by rpmdb on every read and on Rebuild unless verification is
// disabled.
type HeaderCheckFunc func(blob []byte) error

// Header is a single row of the packages table: a NEVRA identity plus the
// opaque header blob the (external) header parser owns.
type Header struct {
	Offset  int64
	Name    string
	Epoch   string
	Version string
	Release string
	Arch    string
	Blob    []byte
}

// Label returns the NEVRA string in "name-[epoch:]version-release.arch"
// form, used to name a header in error messages.
func (h *Header) Label() string {
	if h.Epoch != "" {
		return fmt.Sprintf("%s-%s:%s-%s.%s", h.Name, h.Epoch, h.Version, h.Release, h.Arch)
	}
	return fmt.Sprintf("%s-%s-%s.%s", h.Name, h.Version, h.Release, h.Arch)
}

// OpStats holds accumulated (count, bytes, microseconds) counters for one
// kind of database operation, addressed by OpKind. DB's operations update
// Count and Bytes only; Micros is never set by this package and stays zero.
type OpStats struct {
	Count  int
	Bytes  int64
	Micros int64
}

// OpKind identifies one of the operation counters a DB accumulates.
type OpKind int

const (
	OpGet OpKind = iota
	OpPut
	OpDel
	opMax
)

// DB is a SQLite-backed Packages database bound to one root directory.
type DB struct {
	mu   sync.Mutex
	sql  *sql.DB
	path string
	mode int

	ops [opMax]OpStats
}

// Init creates a new, empty Packages database at path. Any existing file is
// left untouched; Init fails if the path already exists, matching rpmdbInit
// refusing to clobber a live database.
func Init(path string, perm os.FileMode) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("rpmdb: %s already exists", path)
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("rpmdb: error provisioning schema: %v", err)
	}

	return os.Chmod(path, perm)
}

// Open opens the Packages database at path, creating it first when mode
// includes os.O_CREATE and it does not yet exist.
func Open(path string, mode int, perm os.FileMode) (*DB, error) {
	if mode&os.O_CREATE != 0 {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := Init(path, perm); err != nil {
				return nil, err
			}
		}
	}

	sqldb, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := sqldb.Exec(schema); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("rpmdb: error provisioning schema: %v", err)
	}

	return &DB{sql: sqldb, path: path, mode: mode}, nil
}

// Path returns the filesystem path of the open database.
func (d *DB) Path() string {
	return d.path
}

// Close closes the underlying SQLite handle.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sql.Close()
}

// Op returns the accumulated statistics for the given operation kind.
func (d *DB) Op(kind OpKind) OpStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ops[kind]
}

func (d *DB) record(kind OpKind, n int64) {
	d.ops[kind].Count++
	d.ops[kind].Bytes += n
}

// AddHeader inserts a new package header, returning its assigned offset.
func (d *DB) AddHeader(h *Header) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.sql.Exec(
		`INSERT INTO packages(name, epoch, version, release, arch, blob) VALUES (?, ?, ?, ?, ?, ?)`,
		h.Name, h.Epoch, h.Version, h.Release, h.Arch, h.Blob)
	if err != nil {
		return 0, fmt.Errorf("rpmdb: error inserting header for %s: %v", h.Name, err)
	}

	offset, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	d.record(OpPut, int64(len(h.Blob)))
	return offset, nil
}

// RemoveHeader deletes the package header at the given offset.
func (d *DB) RemoveHeader(offset int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.sql.Exec(`DELETE FROM packages WHERE hdrOffset = ?`, offset); err != nil {
		return fmt.Errorf("rpmdb: error removing header %d: %v", offset, err)
	}

	d.record(OpDel, 0)
	return nil
}

// headerColumns is the column order shared by every packages SELECT.
const headerColumns = `hdrOffset, name, epoch, version, release, arch, blob`

func scanHeader(rows *sql.Rows) (*Header, error) {
	h := &Header{}
	if err := rows.Scan(&h.Offset, &h.Name, &h.Epoch, &h.Version, &h.Release, &h.Arch, &h.Blob); err != nil {
		return nil, fmt.Errorf("rpmdb: error scanning header: %v", err)
	}
	return h, nil
}

// FindByName returns every header with the given package name, applying
// check to each blob unless check is nil.
func (d *DB) FindByName(name string, check HeaderCheckFunc) ([]*Header, error) {
	d.mu.Lock()
	rows, err := d.sql.Query(`SELECT `+headerColumns+` FROM packages WHERE name = ?`, name)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return d.collect(rows, check)
}

// FindByOffset returns the header stored at the given offset, or nil if
// there is none.
func (d *DB) FindByOffset(offset int64, check HeaderCheckFunc) (*Header, error) {
	d.mu.Lock()
	rows, err := d.sql.Query(`SELECT `+headerColumns+` FROM packages WHERE hdrOffset = ?`, offset)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hs, err := d.collect(rows, check)
	if err != nil || len(hs) == 0 {
		return nil, err
	}
	return hs[0], nil
}

// All returns every header currently stored, used by Rebuild and Verify to
// walk the whole database.
func (d *DB) All(check HeaderCheckFunc) ([]*Header, error) {
	d.mu.Lock()
	rows, err := d.sql.Query(`SELECT ` + headerColumns + ` FROM packages`)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return d.collect(rows, check)
}

func (d *DB) collect(rows *sql.Rows, check HeaderCheckFunc) ([]*Header, error) {
	var out []*Header
	for rows.Next() {
		h, err := scanHeader(rows)
		if err != nil {
			return nil, err
		}
		if check != nil {
			if err := check(h.Blob); err != nil {
				return nil, fmt.Errorf("rpmdb: header check failed for %s: %v", h.Label(), err)
			}
		}
		d.record(OpGet, int64(len(h.Blob)))
		out = append(out, h)
	}
	return out, rows.Err()
}

// Rebuild recreates the packages index structures. salvage mode tolerates
// and skips unreadable rows instead of aborting, mirroring
// RPMDB_REBUILD_FLAG_SALVAGE.
func (d *DB) Rebuild(salvage bool, check HeaderCheckFunc) error {
	headers, err := d.All(check)
	if err != nil {
		if !salvage {
			return err
		}
		// best effort: fall back to an unchecked pass so salvage can proceed
		headers, err = d.All(nil)
		if err != nil {
			return err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM packages`); err != nil {
		tx.Rollback()
		return err
	}

	for _, h := range headers {
		if _, err := tx.Exec(
			`INSERT INTO packages(hdrOffset, name, epoch, version, release, arch, blob) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			h.Offset, h.Name, h.Epoch, h.Version, h.Release, h.Arch, h.Blob); err != nil {
			if salvage {
				continue
			}
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Verify checks the on-disk structure of the database using SQLite's own
// integrity check.
func (d *DB) Verify() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var result string
	if err := d.sql.QueryRow(`PRAGMA integrity_check`).Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("rpmdb: integrity check failed: %s", result)
	}
	return nil
}

// ImportKey persists an OpenPGP public key packet under its fingerprint,
// replacing any existing record when replace is set.
func (d *DB) ImportKey(fingerprint string, packet []byte, replace bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var err error
	if replace {
		_, err = d.sql.Exec(`INSERT OR REPLACE INTO keys(fingerprint, packet) VALUES (?, ?)`, fingerprint, packet)
	} else {
		_, err = d.sql.Exec(`INSERT INTO keys(fingerprint, packet) VALUES (?, ?)`, fingerprint, packet)
	}
	if err != nil {
		return fmt.Errorf("rpmdb: error importing key %s: %v", fingerprint, err)
	}

	d.record(OpPut, int64(len(packet)))
	return nil
}

// DeleteKey removes the key record with the given fingerprint.
func (d *DB) DeleteKey(fingerprint string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.sql.Exec(`DELETE FROM keys WHERE fingerprint = ?`, fingerprint)
	if err != nil {
		return fmt.Errorf("rpmdb: error deleting key %s: %v", fingerprint, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("rpmdb: no such key: %s", fingerprint)
	}

	d.record(OpDel, 0)
	return nil
}

// LoadKeys returns every stored key packet.
func (d *DB) LoadKeys() ([][]byte, error) {
	d.mu.Lock()
	rows, err := d.sql.Query(`SELECT packet FROM keys`)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var packet []byte
		if err := rows.Scan(&packet); err != nil {
			return nil, fmt.Errorf("rpmdb: error reading key: %v", err)
		}
		out = append(out, packet)
		d.record(OpGet, int64(len(packet)))
	}
	return out, rows.Err()
}
