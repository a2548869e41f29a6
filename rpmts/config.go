package rpmts

import (
	"os"
	"strconv"
	"strings"

	"github.com/teknoraver/rpm/internal/rpmlog"
)

// Verification flag bits. A small subset of the real rpmlib bitset,
// sufficient for the "fully disabled" check loadKeyring needs and for the
// level/flags plumbing described by the spec.
const (
	VSFlagNoDSAHeader uint32 = 1 << iota
	VSFlagNoRSAHeader
	VSFlagNoSHA256Header
	VSFlagNoMD5Header
	VSFlagNoSignatures = VSFlagNoDSAHeader | VSFlagNoRSAHeader | VSFlagNoSHA256Header | VSFlagNoMD5Header
	VSFlagNoHdrChk     uint32 = 1 << 10
)

// VerifyLevel mirrors %{_pkgverify_level}.
type VerifyLevel int

const (
	VerifyLevelUnset VerifyLevel = 0
	VerifySignature  VerifyLevel = 1 << 0
	VerifyDigest     VerifyLevel = 1 << 1
)

const VerifyAll = VerifySignature | VerifyDigest

// KeystoreKind selects which Keystore backend a TransactionSet uses.
type KeystoreKind string

const (
	KeystoreFS    KeystoreKind = "fs"
	KeystoreRPMDB KeystoreKind = "rpmdb"
)

// TransactionFlags mirrors rpmtransFlags; only the bits this core cares
// about are modeled.
type TransactionFlags uint32

const (
	TransFlagNone TransactionFlags = 0
	TransFlagTest TransactionFlags = 1 << 0
)

// Config carries the cross-cutting configuration spec.md assigns to the
// macro/environment layer (external to this core). Create() resolves it
// once, the way the teacher's main.go resolves codegangsta/cli flags into
// package globals in app.Before, except here it lands on an explicit,
// non-global struct.
type Config struct {
	// RootDir must be absolute; "" means "/".
	RootDir string

	// DBPath is the database subdirectory under RootDir (%{_dbpath}).
	DBPath string

	// LockPathTemplate overrides the lock file location under RootDir
	// (%{_rpmlock_path}). Empty selects the compiled-in default.
	LockPathTemplate string

	// KeystoreKind selects "fs" or "rpmdb" (%{_keyring}).
	KeystoreKind KeystoreKind

	// VSFlags is the raw verify-signature flag bitset (VSFlagNo*
	// constants), mirroring rpmtsVSFlags/rpmtsSetVSFlags in the original.
	// Zero means signature checking and the header-check hook are both
	// fully enabled.
	VSFlags uint32

	// RebuildSalvage enables salvage mode on RebuildDB (%{_rebuilddb_salvage}).
	RebuildSalvage bool

	// VerifyLevel is one of VerifyLevelUnset/VerifySignature/VerifyDigest/VerifyAll
	// (%{_pkgverify_level}).
	VerifyLevel VerifyLevel

	// VerifyFlags is the raw numeric verification bitset (%{_pkgverify_flags}).
	VerifyFlags uint32

	// Color and PreferColor select multilib architecture preference
	// (%{_transaction_color}, %{_prefer_color}).
	Color       uint32
	PreferColor uint32

	// NetSharedPaths and InstallLangs come from colon-delimited macros
	// (%{_netsharedpath}, %{_install_langs}). A literal "all" anywhere in
	// InstallLangs clears the list entirely.
	NetSharedPaths []string
	InstallLangs   []string

	// MinimizeWrites enables write-amplification reduction (%{_minimize_writes}).
	MinimizeWrites bool

	// Stats enables printing operation statistics on Free (%{_rpmts_stats}).
	Stats bool
}

// DefaultConfig returns the configuration spec.md §6 assigns as defaults,
// reading %{_prefer_color}'s default of 2 and the one-shot environment
// check for _rpmts_stats.
func DefaultConfig() Config {
	return Config{
		RootDir:      "/",
		DBPath:       "var/lib/rpm",
		KeystoreKind: KeystoreRPMDB,
		PreferColor:  2,
		Stats:        os.Getenv("RPMTS_STATS") != "",
	}
}

// ConfigFromEnv resolves DefaultConfig's values, then overrides each with
// the environment variable standing in for the macro named in §6's table,
// external to this core (the CLI macro subsystem proper is out of scope).
// Unrecognized _pkgverify_level values are warned and ignored, matching
// the macro table's documented effect.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("RPMTS_ROOT"); v != "" {
		cfg.RootDir = v
	}
	if v := os.Getenv("RPMTS_DBPATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("RPMTS_KEYRING"); v != "" {
		cfg.KeystoreKind = KeystoreKind(v)
	}
	if v := os.Getenv("RPMTS_VSFLAGS"); v != "" {
		cfg.VSFlags = uint32(atoiOr(v, 0))
	}
	if v := os.Getenv("RPMTS_RPMLOCK_PATH"); v != "" {
		cfg.LockPathTemplate = v
	}
	if v := os.Getenv("RPMTS_REBUILDDB_SALVAGE"); v != "" {
		cfg.RebuildSalvage = atoiOr(v, 0) != 0
	}
	if v := os.Getenv("RPMTS_PKGVERIFY_LEVEL"); v != "" {
		if level, ok := parseVerifyLevel(v); ok {
			cfg.VerifyLevel = level
		} else {
			rpmlog.Default.Warningf("unrecognized _pkgverify_level value: %s", v)
		}
	}
	if v := os.Getenv("RPMTS_PKGVERIFY_FLAGS"); v != "" {
		cfg.VerifyFlags = uint32(atoiOr(v, 0))
	}
	if v := os.Getenv("RPMTS_TRANSACTION_COLOR"); v != "" {
		cfg.Color = uint32(atoiOr(v, 0))
	}
	if v := os.Getenv("RPMTS_PREFER_COLOR"); v != "" {
		cfg.PreferColor = uint32(atoiOr(v, int(cfg.PreferColor)))
	}
	if v := os.Getenv("RPMTS_NETSHAREDPATH"); v != "" {
		cfg.NetSharedPaths = splitColonList(v)
	}
	if v := os.Getenv("RPMTS_INSTALL_LANGS"); v != "" {
		cfg.InstallLangs = resolveInstallLangs(v)
	}
	if v := os.Getenv("RPMTS_MINIMIZE_WRITES"); v != "" {
		cfg.MinimizeWrites = atoiOr(v, 0) != 0
	}

	return cfg
}

// splitColonList mirrors argvSplit(tmp, ":") with the %-unexpanded guard the
// original applies before splitting.
func splitColonList(v string) []string {
	if v == "" || strings.HasPrefix(v, "%") {
		return nil
	}

	var out []string
	for _, s := range strings.Split(v, ":") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// resolveInstallLangs applies the "all" escape hatch: if any entry is
// literally "all", installing every language makes the whole list
// pointless, so it is dropped entirely.
func resolveInstallLangs(v string) []string {
	langs := splitColonList(v)
	for _, l := range langs {
		if l == "all" {
			return nil
		}
	}
	return langs
}

func parseVerifyLevel(v string) (VerifyLevel, bool) {
	switch v {
	case "":
		return VerifyLevelUnset, true
	case "all":
		return VerifyAll, true
	case "signature":
		return VerifySignature, true
	case "digest":
		return VerifyDigest, true
	case "none":
		return VerifyLevelUnset, true
	default:
		return VerifyLevelUnset, false
	}
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
