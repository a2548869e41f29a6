package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/codegangsta/cli"

	"github.com/teknoraver/rpm/internal/rpmlog"
	"github.com/teknoraver/rpm/rpmts"
)

var ts *rpmts.TransactionSet

func main() {
	app := cli.NewApp()
	app.Name = "rpmtxctl"
	app.Usage = "drive the rpm transaction-set core from the command line"
	app.Version = "0.1.0"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "root, r",
			Usage: "installation root directory",
			Value: "/",
		},
		cli.StringFlag{
			Name:  "dbpath",
			Usage: "database subdirectory under root",
			Value: "var/lib/rpm",
		},
		cli.StringFlag{
			Name:  "keyring",
			Usage: "keystore backend: fs or rpmdb",
			Value: "rpmdb",
		},
		cli.BoolFlag{
			Name:  "quiet, q",
			Usage: "less verbose",
		},
		cli.BoolFlag{
			Name:  "debug, d",
			Usage: "print debug output",
		},
	}

	app.Before = func(c *cli.Context) error {
		rpmlog.Default.SetDebug(c.GlobalBool("debug"))

		cfg := rpmts.ConfigFromEnv()
		if c.IsSet("root") {
			cfg.RootDir = c.GlobalString("root")
		}
		if c.IsSet("dbpath") {
			cfg.DBPath = c.GlobalString("dbpath")
		}
		if c.IsSet("keyring") {
			cfg.KeystoreKind = rpmts.KeystoreKind(c.GlobalString("keyring"))
		}

		var err error
		ts, err = rpmts.Create(cfg)
		return err
	}

	app.After = func(c *cli.Context) error {
		if ts != nil {
			ts.Free()
		}
		return nil
	}

	app.Commands = []cli.Command{
		{
			Name:   "initdb",
			Usage:  "create the package database",
			Action: actionInitDB,
		},
		{
			Name:  "rebuilddb",
			Usage: "rebuild the package database",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "salvage", Usage: "tolerate and skip unreadable rows"},
			},
			Action: actionRebuildDB,
		},
		{
			Name:   "verifydb",
			Usage:  "verify the package database's on-disk structure",
			Action: actionVerifyDB,
		},
		{
			Name:   "import-key",
			Usage:  "import a trusted OpenPGP public key: import-key <keyfile>",
			Action: actionImportKey,
		},
		{
			Name:   "delete-key",
			Usage:  "delete a trusted OpenPGP public key: delete-key <fingerprint>",
			Action: actionDeleteKey,
		},
		{
			Name:   "stats",
			Usage:  "print operation statistics",
			Action: actionStats,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func actionInitDB(c *cli.Context) error {
	return ts.InitDB(0644)
}

func actionRebuildDB(c *cli.Context) error {
	salvage := ts.RebuildSalvageDefault()
	if c.IsSet("salvage") {
		salvage = c.Bool("salvage")
	}
	return ts.RebuildDB(salvage)
}

func actionVerifyDB(c *cli.Context) error {
	return ts.VerifyDB()
}

func actionImportKey(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("import-key: expected exactly one keyfile argument")
	}

	pkt, err := ioutil.ReadFile(c.Args().Get(0))
	if err != nil {
		return err
	}

	txn, err := rpmts.Begin(ts, rpmts.LockWrite)
	if err != nil {
		return err
	}
	defer rpmts.End(txn)

	return rpmts.Import(ts, txn, pkt)
}

func actionDeleteKey(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("delete-key: expected exactly one fingerprint argument")
	}
	fingerprint := c.Args().Get(0)

	keyring, err := rpmts.GetKeyring(ts, true)
	if err != nil {
		return err
	}
	key := keyring.Lookup(fingerprint)
	if key == nil {
		return fmt.Errorf("delete-key: no such key: %s", fingerprint)
	}

	txn, err := rpmts.Begin(ts, rpmts.LockWrite)
	if err != nil {
		return err
	}
	defer rpmts.End(txn)

	return rpmts.Delete(ts, txn, key)
}

func actionStats(c *cli.Context) error {
	ts.PrintStats(func(format string, a ...interface{}) {
		fmt.Printf(format, a...)
	})
	return nil
}
