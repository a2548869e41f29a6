package rpmts

// Keyring is an in-memory, reference-counted collection of trusted public
// keys, shared so callers may outlive the TransactionSet's own reference
// (§5, "the keyring is shared").
type Keyring struct {
	byFingerprint map[string]*Key
	refCount      int
}

func newKeyring() *Keyring {
	return &Keyring{byFingerprint: make(map[string]*Key), refCount: 1}
}

// Link returns kr with its reference count incremented.
func (kr *Keyring) Link() *Keyring {
	if kr == nil {
		return nil
	}
	kr.refCount++
	return kr
}

// Free decrements kr's reference count, dropping its contents once it
// reaches zero.
func (kr *Keyring) Free() {
	if kr == nil {
		return
	}
	kr.refCount--
	if kr.refCount <= 0 {
		kr.byFingerprint = nil
	}
}

// Lookup returns the key with the given fingerprint, or nil.
func (kr *Keyring) Lookup(fingerprint string) *Key {
	if kr == nil {
		return nil
	}
	return kr.byFingerprint[fingerprint]
}

// fullyDisabled reports whether every signature-verification bit is set,
// the condition under which loadKeyring is a no-op per invariant 6.
func (ts *TransactionSet) fullyDisabled() bool {
	return ts.vsFlags&VSFlagNoSignatures == VSFlagNoSignatures
}

// loadKeyring populates ts.keyring from the selected keystore under a
// read transaction, unless it is already cached or signature checking is
// fully disabled, in which case it is a no-op and ts.keyring stays nil.
func loadKeyring(ts *TransactionSet) error {
	if ts.keyring != nil {
		return nil
	}
	if ts.fullyDisabled() {
		return nil
	}

	txn, err := Begin(ts, LockRead)
	if err != nil {
		return err
	}
	defer End(txn)

	if ts.keystoreImpl == nil {
		ts.keystoreImpl = newKeystore(ts, ts.keystoreKind)
	}

	kr := newKeyring()
	if err := ts.keystoreImpl.loadKeys(txn, kr); err != nil {
		return err
	}

	ts.keyring = kr
	return nil
}

// GetKeyring returns a counted clone of ts's keyring, loading it first
// when autoload is set and it isn't cached yet. It returns (nil, nil)
// when there is no keyring to return: none is cached and autoload is not
// set, or signature checking is fully disabled (autoload does not override
// that, since loadKeyring is then a no-op).
func GetKeyring(ts *TransactionSet, autoload bool) (*Keyring, error) {
	if ts.keyring == nil && autoload {
		if err := loadKeyring(ts); err != nil {
			return nil, err
		}
	}
	if ts.keyring == nil {
		return nil, nil
	}
	return ts.keyring.Link(), nil
}

// forceLoadKeyring runs fn with the "no signatures" mask temporarily
// cleared so loadKeyring will materialize a keyring even when the set's
// own configuration has signature checking fully disabled — users most
// often import their first key in exactly that environment (§4.7).
func (ts *TransactionSet) forceLoadKeyring() error {
	saved := ts.vsFlags
	ts.vsFlags &^= VSFlagNoSignatures
	err := loadKeyring(ts)
	ts.vsFlags = saved
	return err
}

// Import lints, parses, merges and persists a candidate OpenPGP public
// key packet, per §4.7:
//
//  1. A fatal lint failure aborts; non-fatal lint messages are logged at
//     warning severity.
//  2. The keyring is force-loaded regardless of the set's own signature
//     checking configuration.
//  3. An existing key with the same fingerprint is merged with the new
//     one; a no-op merge (no new material) returns success without
//     touching the keystore.
//  4. The merged (or new) key replaces the in-memory record; in test
//     mode the import stops here and reports success without writing to
//     the keystore, even though lint and merge already ran to surface
//     diagnostics.
func Import(ts *TransactionSet, txn *Txn, pkt []byte) error {
	key, warnings, err := lintPubkey(pkt)
	if err != nil {
		ts.log.Errorf(err, "key import lint failed")
		return err
	}
	for _, w := range warnings {
		ts.log.Warningf("%s", w)
	}

	if err := ts.forceLoadKeyring(); err != nil {
		return err
	}

	existing := ts.keyring.Lookup(key.Fingerprint())

	canonical := key
	replace := false
	if existing != nil {
		merged, changed, err := mergeKeys(existing, key)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		canonical = merged
		replace = true
	}

	ts.keyring.byFingerprint[canonical.Fingerprint()] = canonical

	if ts.transactionFlags&TransFlagTest != 0 {
		return nil
	}

	if ts.keystoreImpl == nil {
		ts.keystoreImpl = newKeystore(ts, ts.keystoreKind)
	}
	return ts.keystoreImpl.importKey(txn, canonical, replace)
}

// Delete removes key from the keystore and, on success, from the
// in-memory keyring. In test mode it always succeeds with no effect.
// Unlike the source this is grounded on, which overwrites the keystore's
// return code with success in every path, Delete preserves whatever
// deleteKey reports — see DESIGN.md's note on that discrepancy.
func Delete(ts *TransactionSet, txn *Txn, key *Key) error {
	if ts.transactionFlags&TransFlagTest != 0 {
		return nil
	}

	if err := ts.forceLoadKeyring(); err != nil {
		return err
	}

	if ts.keystoreImpl == nil {
		ts.keystoreImpl = newKeystore(ts, ts.keystoreKind)
	}

	err := ts.keystoreImpl.deleteKey(txn, key)
	if err == nil && ts.keyring != nil {
		delete(ts.keyring.byFingerprint, key.Fingerprint())
	}
	return err
}
