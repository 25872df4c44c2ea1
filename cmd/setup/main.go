// Command setup prepares a data directory for the engine: config file,
// database schema, and optionally the Hunter API key in the OS keychain.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/secrets"
	"leadgen-engine/internal/store"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "setup:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	config.LoadDotEnv()

	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	fs.SetOutput(out)
	dataDir := fs.String("data-dir", envOr("LEADGEN_DATA_DIR", "."), "engine data directory")
	hunterKey := fs.String("hunter-key", "", "store this Hunter API key in the OS keychain")
	validate := fs.Bool("validate", false, "validate the config and fail on errors")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		return err
	}
	fmt.Fprintf(out, "data dir: %s\n", *dataDir)

	// Refuse to migrate under a running engine.
	fl := flock.New(filepath.Join(*dataDir, "engine.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("engine is running against " + *dataDir + "; stop it first")
	}
	defer func() { _ = fl.Unlock() }()

	cfgPath, err := config.EnsureUserConfig(*dataDir)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfgPath, err)
	}
	config.OverlayEnv(&cfg)
	fmt.Fprintf(out, "config:   %s\n", cfgPath)

	if *validate {
		_, vr := config.NormalizeAndValidate(cfg)
		for _, w := range vr.Warnings {
			fmt.Fprintf(out, "  warning: %s\n", w)
		}
		for _, e := range vr.Errors {
			fmt.Fprintf(out, "  error:   %s\n", e)
		}
		if !vr.OK() {
			return fmt.Errorf("config has %d error(s)", len(vr.Errors))
		}
		fmt.Fprintln(out, "config:   ok")
	}

	dbPath := filepath.Join(*dataDir, "leads.db")
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", dbPath, err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	counts, err := store.TableCounts(db.Pool)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "database: %s\n", dbPath)
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(out, "  %-22s %d rows\n", n, counts[n])
	}

	if *hunterKey != "" {
		acct := secrets.HunterKeyringAccount(cfg)
		if err := secrets.SetHunterKey(acct, *hunterKey); err != nil {
			return fmt.Errorf("store hunter key: %w", err)
		}
		fmt.Fprintf(out, "hunter key stored in keychain (%s)\n", acct)
	} else if secrets.ResolveHunterKey(cfg) == "" {
		fmt.Fprintln(out, "hunter key: not set; email discovery will be skipped")
	}

	fmt.Fprintln(out, "setup complete")
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
