package rpmts

import (
	"fmt"
	"strings"
	"testing"
)

func TestOpCounterEnterExit(t *testing.T) {
	ts := newTestSet(t)

	ts.ops[OpInstall].enter()
	ts.ops[OpInstall].exit(1024)

	count, bytes, _ := ts.Op(OpInstall)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if bytes != 1024 {
		t.Errorf("bytes = %d, want 1024", bytes)
	}
}

func TestFoldDBStats(t *testing.T) {
	ts := newTestSet(t)

	ts.foldDBStats(
		dbOpStats{Count: 3, Bytes: 100},
		dbOpStats{Count: 2, Bytes: 50},
		dbOpStats{Count: 1, Bytes: 0},
	)

	if c, b, _ := ts.Op(OpDBGet); c != 3 || b != 100 {
		t.Errorf("OpDBGet = (%d, %d), want (3, 100)", c, b)
	}
	if c, b, _ := ts.Op(OpDBPut); c != 2 || b != 50 {
		t.Errorf("OpDBPut = (%d, %d), want (2, 50)", c, b)
	}
	if c, _, _ := ts.Op(OpDBDel); c != 1 {
		t.Errorf("OpDBDel count = %d, want 1", c)
	}
}

func TestPrintStats(t *testing.T) {
	ts := newTestSet(t)
	ts.ops[OpInstall].enter()
	ts.ops[OpInstall].exit(2048)

	var out strings.Builder
	ts.PrintStats(func(format string, a ...interface{}) {
		out.WriteString(fmt.Sprintf(format, a...))
	})

	if !strings.Contains(out.String(), "install") {
		t.Errorf("PrintStats output missing install line: %q", out.String())
	}
}
