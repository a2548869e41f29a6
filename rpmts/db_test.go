package rpmts

import (
	"errors"
	"os"
	"testing"

	"github.com/teknoraver/rpm/internal/rpmdb"
)

func seedOneHeader(t *testing.T, ts *TransactionSet) {
	t.Helper()
	if err := ts.OpenDB(os.O_RDWR); err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	if _, err := ts.db.AddHeader(&rpmdb.Header{Name: "foo", Version: "1", Release: "1", Arch: "x86_64", Blob: []byte("blob")}); err != nil {
		t.Fatalf("AddHeader: %v", err)
	}
}

func TestRebuildDBRunsHeaderCheckByDefault(t *testing.T) {
	ts := newTestSet(t)
	if err := ts.InitDB(0644); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	seedOneHeader(t, ts)

	calls := 0
	ts.SetHeaderCheck(func(blob []byte) error {
		calls++
		return errors.New("boom")
	})

	if err := ts.RebuildDB(false); err == nil {
		t.Fatalf("RebuildDB with a failing header check and default VSFlags = nil error, want failure")
	}
	if calls != 1 {
		t.Errorf("header check ran %d times, want 1 (checked by default, VSFlagNoHdrChk unset)", calls)
	}
}

func TestRebuildDBSkipsHeaderCheckWhenNoHdrChkSet(t *testing.T) {
	ts := newTestSet(t)
	if err := ts.InitDB(0644); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	seedOneHeader(t, ts)

	calls := 0
	ts.SetHeaderCheck(func(blob []byte) error {
		calls++
		return errors.New("should not run")
	})

	ts.SetVSFlags(VSFlagNoHdrChk)

	if err := ts.RebuildDB(false); err != nil {
		t.Fatalf("RebuildDB with VSFlagNoHdrChk set = %v, want nil", err)
	}
	if calls != 0 {
		t.Errorf("header check ran %d times with VSFlagNoHdrChk set, want 0", calls)
	}
}

func TestInitIteratorHeaderCheckGating(t *testing.T) {
	ts := newTestSet(t)
	if err := ts.InitDB(0644); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	seedOneHeader(t, ts)

	ts.SetHeaderCheck(func(blob []byte) error { return errors.New("boom") })

	if _, err := ts.InitIterator(DbTagName, "foo", 0); err == nil {
		t.Errorf("InitIterator with a failing header check and default VSFlags = nil error, want failure")
	}

	ts.SetVSFlags(VSFlagNoHdrChk)

	hs, err := ts.InitIterator(DbTagName, "foo", 0)
	if err != nil {
		t.Fatalf("InitIterator with VSFlagNoHdrChk set = %v, want nil", err)
	}
	if len(hs) != 1 {
		t.Errorf("InitIterator returned %d headers, want 1", len(hs))
	}
}
