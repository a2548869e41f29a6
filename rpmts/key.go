package rpmts

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/openpgp"
)

// Key wraps a trusted OpenPGP public key entity together with the raw
// packet bytes it was parsed from, so the keystore backends can persist
// exactly what was imported.
type Key struct {
	entity *openpgp.Entity
	raw    []byte
}

// newKeyFromPacket parses a candidate public key packet, accepting either
// armored or raw binary OpenPGP data.
func newKeyFromPacket(pkt []byte) (*Key, error) {
	el, err := openpgp.ReadKeyRing(bytes.NewReader(pkt))
	if err != nil || len(el) == 0 {
		el, err = openpgp.ReadArmoredKeyRing(bytes.NewReader(pkt))
	}
	if err != nil {
		return nil, fmt.Errorf("error reading public key: %v", err)
	}
	if len(el) == 0 {
		return nil, fmt.Errorf("no public key found in packet")
	}

	return &Key{entity: el[0], raw: pkt}, nil
}

// Fingerprint returns the key's hex-encoded fingerprint.
func (k *Key) Fingerprint() string {
	return fmt.Sprintf("%X", k.entity.PrimaryKey.Fingerprint)
}

// Raw returns the original packet bytes this key was parsed from.
func (k *Key) Raw() []byte {
	return k.raw
}

// lintPubkey performs a minimal structural check of a candidate key
// packet, standing in for pgpPubKeyLint. A parse failure or a key with no
// identities is a fatal lint failure; an identity without a self-signature
// is reported as a warning only, per §4.7 and §7. No other property of the
// key (such as its size) is checked.
func lintPubkey(pkt []byte) (key *Key, warnings []string, err error) {
	key, err = newKeyFromPacket(pkt)
	if err != nil {
		return nil, nil, err
	}

	if len(key.entity.Identities) == 0 {
		return nil, nil, fmt.Errorf("public key %s has no user identities", key.Fingerprint())
	}

	var warn []string
	for name, id := range key.entity.Identities {
		if id.SelfSignature == nil {
			warn = append(warn, fmt.Sprintf("identity %q on key %s has no self-signature", name, key.Fingerprint()))
		}
	}

	return key, warn, nil
}

// mergeKeys combines old and new, which must share a fingerprint, adding
// any identity or subkey new carries that old lacks. It reports changed =
// false when new contributes nothing old didn't already have, matching
// rpmPubkeyMerge's "already have key" no-op result.
func mergeKeys(old, new *Key) (merged *Key, changed bool, err error) {
	if old.Fingerprint() != new.Fingerprint() {
		return nil, false, fmt.Errorf("cannot merge keys with different fingerprints")
	}

	out := &Key{entity: old.entity, raw: old.raw}

	for name, id := range new.entity.Identities {
		if _, ok := out.entity.Identities[name]; !ok {
			out.entity.Identities[name] = id
			changed = true
		}
	}

	existing := make(map[string]bool, len(out.entity.Subkeys))
	for _, sk := range out.entity.Subkeys {
		existing[fmt.Sprintf("%X", sk.PublicKey.Fingerprint)] = true
	}
	for _, sk := range new.entity.Subkeys {
		fp := fmt.Sprintf("%X", sk.PublicKey.Fingerprint)
		if !existing[fp] {
			out.entity.Subkeys = append(out.entity.Subkeys, sk)
			changed = true
		}
	}

	if changed {
		out.raw = new.raw
	}

	return out, changed, nil
}
