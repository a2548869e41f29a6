package rpmts

import (
	"fmt"
	"testing"
)

func TestSplitColonList(t *testing.T) {
	if got := splitColonList(""); got != nil {
		t.Errorf("splitColonList(\"\") = %v, want nil", got)
	}
	if got := splitColonList("%{nope}"); got != nil {
		t.Errorf("splitColonList(unexpanded macro) = %v, want nil", got)
	}
	got := splitColonList("/a:/b::/c")
	want := []string{"/a", "/b", "/c"}
	if len(got) != len(want) {
		t.Fatalf("splitColonList = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitColonList[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolveInstallLangs(t *testing.T) {
	if got := resolveInstallLangs("en_US:all:fr_FR"); got != nil {
		t.Errorf("resolveInstallLangs with \"all\" = %v, want nil", got)
	}
	got := resolveInstallLangs("en_US:fr_FR")
	if len(got) != 2 || got[0] != "en_US" || got[1] != "fr_FR" {
		t.Errorf("resolveInstallLangs = %v, want [en_US fr_FR]", got)
	}
}

func TestParseVerifyLevel(t *testing.T) {
	cases := []struct {
		in   string
		want VerifyLevel
		ok   bool
	}{
		{"", VerifyLevelUnset, true},
		{"none", VerifyLevelUnset, true},
		{"all", VerifyAll, true},
		{"signature", VerifySignature, true},
		{"digest", VerifyDigest, true},
		{"bogus", VerifyLevelUnset, false},
	}
	for _, c := range cases {
		got, ok := parseVerifyLevel(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("parseVerifyLevel(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("RPMTS_KEYRING", "fs")
	t.Setenv("RPMTS_DBPATH", "custom/dbpath")
	t.Setenv("RPMTS_MINIMIZE_WRITES", "1")
	t.Setenv("RPMTS_PREFER_COLOR", "3")
	t.Setenv("RPMTS_VSFLAGS", fmt.Sprintf("%d", VSFlagNoHdrChk))

	cfg := ConfigFromEnv()

	if cfg.KeystoreKind != KeystoreFS {
		t.Errorf("KeystoreKind = %v, want fs", cfg.KeystoreKind)
	}
	if cfg.VSFlags != VSFlagNoHdrChk {
		t.Errorf("VSFlags = %#x, want %#x", cfg.VSFlags, VSFlagNoHdrChk)
	}
	if cfg.DBPath != "custom/dbpath" {
		t.Errorf("DBPath = %q, want custom/dbpath", cfg.DBPath)
	}
	if !cfg.MinimizeWrites {
		t.Errorf("MinimizeWrites = false, want true")
	}
	if cfg.PreferColor != 3 {
		t.Errorf("PreferColor = %d, want 3", cfg.PreferColor)
	}
}
