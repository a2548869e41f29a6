package rpmts

import "os"

// keystoreRPMDB is the database keystore variant, the default fallback:
// keys live as rows in the same SQLite-backed Packages database used for
// installed headers (internal/rpmdb's keys table).
type keystoreRPMDB struct {
	ts *TransactionSet
}

// ensureOpen opens ts's database handle (read-write with create when write
// is set, read-only otherwise) when it isn't open already in a mode that
// can satisfy it.
func (k *keystoreRPMDB) ensureOpen(write bool) error {
	mode := os.O_RDONLY
	if write {
		mode = os.O_RDWR | os.O_CREATE
	}
	if k.ts.db != nil && (!write || k.ts.dbMode&os.O_RDWR != 0) {
		return nil
	}
	return k.ts.openDB(mode)
}

func (k *keystoreRPMDB) loadKeys(txn *Txn, keyring *Keyring) error {
	if err := k.ensureOpen(false); err != nil {
		return err
	}

	packets, err := k.ts.db.LoadKeys()
	if err != nil {
		return err
	}

	for _, raw := range packets {
		key, err := newKeyFromPacket(raw)
		if err != nil {
			return err
		}
		keyring.byFingerprint[key.Fingerprint()] = key
	}
	return nil
}

func (k *keystoreRPMDB) importKey(txn *Txn, pubkey *Key, replace bool) error {
	if err := k.ensureOpen(true); err != nil {
		return err
	}
	return k.ts.db.ImportKey(pubkey.Fingerprint(), pubkey.Raw(), replace)
}

func (k *keystoreRPMDB) deleteKey(txn *Txn, pubkey *Key) error {
	if err := k.ensureOpen(true); err != nil {
		return err
	}
	return k.ts.db.DeleteKey(pubkey.Fingerprint())
}
