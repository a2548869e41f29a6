package rpmts

import (
	"bytes"
	"os"
	"testing"

	"golang.org/x/crypto/openpgp"
)

func generateTestKey(t *testing.T) []byte {
	t.Helper()
	entity, err := openpgp.NewEntity("Test User", "", "test@example.com", nil)
	if err != nil {
		t.Fatalf("generating test key: %v", err)
	}

	buf := &bytes.Buffer{}
	if err := entity.Serialize(buf); err != nil {
		t.Fatalf("serializing test key: %v", err)
	}
	return buf.Bytes()
}

func TestNewKeyFromPacket(t *testing.T) {
	key, err := newKeyFromPacket(generateTestKey(t))
	if err != nil {
		t.Fatalf("newKeyFromPacket: %v", err)
	}
	if key.Fingerprint() == "" {
		t.Errorf("expected a non-empty fingerprint")
	}
}

func TestNewKeyFromPacketRejectsGarbage(t *testing.T) {
	if _, err := newKeyFromPacket([]byte("not a key")); err == nil {
		t.Errorf("expected an error for a malformed packet")
	}
}

func TestLintPubkey(t *testing.T) {
	key, _, err := lintPubkey(generateTestKey(t))
	if err != nil {
		t.Fatalf("lintPubkey: %v", err)
	}
	if key == nil {
		t.Fatalf("lintPubkey returned a nil key with no error")
	}
}

func TestImportReimportIsNoOp(t *testing.T) {
	ts := newTestSet(t)
	pkt := generateTestKey(t)

	txn, err := Begin(ts, LockWrite)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := Import(ts, txn, pkt); err != nil {
		t.Fatalf("Import: %v", err)
	}
	End(txn)

	entries, err := os.ReadDir(ts.pkiDir())
	if err != nil {
		t.Fatalf("reading keystore dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 key file after import, got %d", len(entries))
	}

	if ts.keyring.Lookup(mustFingerprint(t, pkt)) == nil {
		t.Errorf("expected keyring to contain the imported key")
	}

	txn2, err := Begin(ts, LockWrite)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := Import(ts, txn2, pkt); err != nil {
		t.Fatalf("reimport: %v", err)
	}
	End(txn2)

	entries, err = os.ReadDir(ts.pkiDir())
	if err != nil {
		t.Fatalf("reading keystore dir after reimport: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected still 1 key file after reimport, got %d", len(entries))
	}
}

func mustFingerprint(t *testing.T, pkt []byte) string {
	t.Helper()
	key, err := newKeyFromPacket(pkt)
	if err != nil {
		t.Fatalf("newKeyFromPacket: %v", err)
	}
	return key.Fingerprint()
}

func TestDeleteTestModeNoOp(t *testing.T) {
	ts := newTestSet(t)
	ts.transactionFlags |= TransFlagTest

	pkt := generateTestKey(t)
	key, err := newKeyFromPacket(pkt)
	if err != nil {
		t.Fatalf("newKeyFromPacket: %v", err)
	}

	txn, err := Begin(ts, LockWrite)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer End(txn)

	if err := Delete(ts, txn, key); err != nil {
		t.Errorf("Delete in test mode: %v, want nil", err)
	}
}
