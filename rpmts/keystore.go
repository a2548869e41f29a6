package rpmts

// keystore is the polymorphic persistent key backend. Two concrete
// implementations (filesystem, database) satisfy it; the core dispatches
// on the tagged KeystoreKind rather than through an inheritance hierarchy.
type keystore interface {
	// loadKeys populates keyring with every trusted key under txn, a read
	// transaction.
	loadKeys(txn *Txn, keyring *Keyring) error

	// importKey persists pubkey, replacing any existing record when
	// replace is set.
	importKey(txn *Txn, pubkey *Key, replace bool) error

	// deleteKey removes pubkey's record.
	deleteKey(txn *Txn, pubkey *Key) error
}

// newKeystore selects a keystore backend from kind, warning and falling
// back to the database variant on anything unrecognized, per §4.6.
func newKeystore(ts *TransactionSet, kind KeystoreKind) keystore {
	switch kind {
	case KeystoreFS:
		return &keystoreFS{dir: ts.pkiDir()}
	case KeystoreRPMDB:
		return &keystoreRPMDB{ts: ts}
	default:
		ts.logf("unknown keyring type: %s, using rpmdb", kind)
		return &keystoreRPMDB{ts: ts}
	}
}
