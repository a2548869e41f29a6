package rpmts

import (
	"fmt"
	"os"
	"path/filepath"
)

// keystoreFS is the filesystem keystore variant: each trusted key is a
// single ".asc" file named by its fingerprint under dir, holding the key's
// packet bytes exactly as imported (armored or binary).
type keystoreFS struct {
	dir string
}

func (k *keystoreFS) path(fingerprint string) string {
	return filepath.Join(k.dir, fingerprint+".asc")
}

// loadKeys reads every key file under dir into keyring. A missing
// directory is treated as "no keys yet", not an error.
func (k *keystoreFS) loadKeys(txn *Txn, keyring *Keyring) error {
	entries, err := os.ReadDir(k.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("rpmts: error reading keystore directory %s: %v", k.dir, err)
	}

	for _, ent := range entries {
		if ent.IsDir() || filepath.Ext(ent.Name()) != ".asc" {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(k.dir, ent.Name()))
		if err != nil {
			return fmt.Errorf("rpmts: error reading key file %s: %v", ent.Name(), err)
		}

		key, err := newKeyFromPacket(raw)
		if err != nil {
			return fmt.Errorf("rpmts: error parsing key file %s: %v", ent.Name(), err)
		}

		keyring.byFingerprint[key.Fingerprint()] = key
	}

	return nil
}

// importKey writes pubkey's raw packet to its fingerprint-named file,
// creating dir as needed. replace has no separate effect here: writing
// the file always overwrites whatever was there, which is what "replace"
// means for a one-file-per-key layout.
func (k *keystoreFS) importKey(txn *Txn, pubkey *Key, replace bool) error {
	if err := os.MkdirAll(k.dir, 0755); err != nil {
		return fmt.Errorf("rpmts: cannot create keystore directory %s: %v", k.dir, err)
	}

	if err := os.WriteFile(k.path(pubkey.Fingerprint()), pubkey.Raw(), 0644); err != nil {
		return fmt.Errorf("rpmts: error writing key file for %s: %v", pubkey.Fingerprint(), err)
	}
	return nil
}

// deleteKey removes pubkey's file.
func (k *keystoreFS) deleteKey(txn *Txn, pubkey *Key) error {
	if err := os.Remove(k.path(pubkey.Fingerprint())); err != nil {
		return fmt.Errorf("rpmts: error deleting key file for %s: %v", pubkey.Fingerprint(), err)
	}
	return nil
}
