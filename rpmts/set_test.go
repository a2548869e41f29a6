package rpmts

import (
	"os"
	"testing"
)

func newTestSet(t *testing.T) *TransactionSet {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RootDir = t.TempDir()
	cfg.KeystoreKind = KeystoreFS
	ts, err := Create(cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(ts.Free)
	return ts
}

func TestCreateDefaults(t *testing.T) {
	ts := newTestSet(t)

	if ts.dbMode != os.O_RDONLY {
		t.Errorf("dbMode = %v, want read-only", ts.dbMode)
	}
	if ts.refCount != 1 {
		t.Errorf("refCount = %d, want 1", ts.refCount)
	}
	if ts.NElements() != 0 {
		t.Errorf("NElements() = %d, want 0", ts.NElements())
	}
}

func TestSetRootDir(t *testing.T) {
	ts := newTestSet(t)

	if err := ts.SetRootDir("relative/path"); err != ErrNotAbsolute {
		t.Errorf("SetRootDir(relative) error = %v, want ErrNotAbsolute", err)
	}

	if err := ts.SetRootDir("/srv/root"); err != nil {
		t.Fatalf("SetRootDir(/srv/root): %v", err)
	}
	if ts.RootDir() != "/srv/root/" {
		t.Errorf("RootDir() = %q, want %q", ts.RootDir(), "/srv/root/")
	}

	if err := ts.SetRootDir(""); err != nil {
		t.Fatalf("SetRootDir(\"\"): %v", err)
	}
	if ts.RootDir() != "/" {
		t.Errorf("RootDir() after reset = %q, want \"/\"", ts.RootDir())
	}
}

func TestGetTimeSourceDateEpoch(t *testing.T) {
	epoch := int64(1000000000)
	ts := &TransactionSet{sourceDateEpoch: &epoch}

	want := []int64{1000000000, 1000000003, 1000000006}
	for i, w := range want {
		if got := ts.GetTime(3); got != w {
			t.Errorf("GetTime() call %d = %d, want %d", i, got, w)
		}
	}
}

func TestGetTimeWallClock(t *testing.T) {
	ts := &TransactionSet{}

	first := ts.GetTime(3)
	second := ts.GetTime(3)
	if second < first {
		t.Errorf("GetTime() went backwards: %d then %d", first, second)
	}
}

func TestSetVSFlagsRoundTrip(t *testing.T) {
	ts := newTestSet(t)

	if ts.VSFlags() != 0 {
		t.Fatalf("VSFlags() default = %#x, want 0", ts.VSFlags())
	}
	if ts.fullyDisabled() {
		t.Errorf("fullyDisabled() with default flags = true, want false")
	}

	old := ts.SetVSFlags(VSFlagNoSignatures)
	if old != 0 {
		t.Errorf("SetVSFlags returned %#x, want previous value 0", old)
	}
	if ts.VSFlags() != VSFlagNoSignatures {
		t.Errorf("VSFlags() = %#x, want %#x", ts.VSFlags(), VSFlagNoSignatures)
	}
	if !ts.fullyDisabled() {
		t.Errorf("fullyDisabled() after SetVSFlags(NoSignatures) = false, want true")
	}
}

func TestConfigVSFlagsWiredAtCreate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RootDir = t.TempDir()
	cfg.VSFlags = VSFlagNoHdrChk

	ts, err := Create(cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer ts.Free()

	if ts.VSFlags() != VSFlagNoHdrChk {
		t.Errorf("VSFlags() = %#x, want %#x", ts.VSFlags(), VSFlagNoHdrChk)
	}
}

func TestRebuildDBRefusesPendingElements(t *testing.T) {
	ts := newTestSet(t)
	ts.AddElement(&Element{Type: ElementInstall, Name: "foo"})

	if err := ts.RebuildDB(false); err != ErrPendingElements {
		t.Errorf("RebuildDB() error = %v, want ErrPendingElements", err)
	}
	if ts.lock != nil {
		t.Errorf("RebuildDB must not acquire a lock when it refuses up front")
	}
}

func TestIteratorExhaustion(t *testing.T) {
	ts := newTestSet(t)
	ts.AddElement(&Element{Type: ElementInstall, Name: "a"})
	ts.AddElement(&Element{Type: ElementErase, Name: "b"})
	ts.AddElement(&Element{Type: ElementInstall, Name: "c"})

	it := ts.Iterate()
	var names []string
	for {
		te := it.Next(ElementTypeAny)
		if te == nil {
			break
		}
		names = append(names, te.Name)
	}
	it.Free()

	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Errorf("iteration order = %v, want [a b c]", names)
	}

	if te := it.Next(ElementTypeAny); te != nil {
		t.Errorf("Next() after Free/exhaustion = %v, want nil", te)
	}
}

func TestIteratorTypeFilter(t *testing.T) {
	ts := newTestSet(t)
	ts.AddElement(&Element{Type: ElementInstall, Name: "a"})
	ts.AddElement(&Element{Type: ElementErase, Name: "b"})
	ts.AddElement(&Element{Type: ElementInstall, Name: "c"})

	it := ts.Iterate()
	defer it.Free()

	var names []string
	for {
		te := it.Next(ElementInstall)
		if te == nil {
			break
		}
		names = append(names, te.Name)
	}

	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Errorf("filtered iteration = %v, want [a c]", names)
	}
}
