package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/qryptchat/pq-engine/internal/config"
	"github.com/qryptchat/pq-engine/internal/obslog"
	"github.com/qryptchat/pq-engine/pkg/engine"
	"github.com/qryptchat/pq-engine/pkg/vault/store"
)

// newEngineFlagSet returns a flag set pre-populated with the --vault-dir
// and --log-level flags shared by every subcommand that touches the vault.
func newEngineFlagSet(name string) (*flag.FlagSet, *string, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	vaultDir := fs.String("vault-dir", "", "key vault directory (default: $QRYPTCHAT_VAULT_DIR or ~/.qryptchat/keys)")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error, silent")
	return fs, vaultDir, logLevel
}

func openEngine(vaultDir, logLevel string) (*engine.Engine, error) {
	cfg := *config.Load()
	if vaultDir != "" {
		cfg.VaultDir = vaultDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log := obslog.New(
		obslog.WithLevel(obslog.ParseLevel(cfg.LogLevel)),
		obslog.WithOutput(os.Stderr),
	)

	s, err := store.NewFileStore(cfg.VaultDir)
	if err != nil {
		return nil, fmt.Errorf("open vault store: %w", err)
	}

	e := engine.New(s, cfg, log)
	if err := e.Init(context.Background()); err != nil {
		return nil, fmt.Errorf("init engine: %w", err)
	}
	return e, nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
