// Package config loads the engine's ambient configuration from the process
// environment: where the key vault persists its records, whether the
// public-key hygiene near-size padding hazard is enabled, and the log
// level. It is deliberately small — the engine itself takes its store and
// logger as constructor parameters and participant directories per call;
// the tracer is installed process-wide through obslog.SetTracer.
package config

import (
	"os"
	"path/filepath"

	env "github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds the engine's environment-derived settings.
type Config struct {
	// VaultDir is where store.FileStore persists key-pair records.
	VaultDir string

	// LogLevel is parsed by obslog.ParseLevel.
	LogLevel string

	// LogFormat selects "text" or "json" in obslog.
	LogFormat string

	// AllowNearSizePadding enables the §4.4 near-size normalization hazard.
	// Defaults to true to match the spec's tolerant policy; an operator who
	// wants the safer "reject any non-exact size" behavior can disable it.
	AllowNearSizePadding bool
}

// Load loads configuration from environment variables, first attempting to
// load a .env file found by walking up from the working directory.
func Load() *Config {
	loadDotEnv()

	home, _ := os.UserHomeDir()
	defaultVaultDir := filepath.Join(home, ".qryptchat", "keys")

	return &Config{
		VaultDir:             env.GetString("QRYPTCHAT_VAULT_DIR", defaultVaultDir),
		LogLevel:             env.GetString("QRYPTCHAT_LOG_LEVEL", "info"),
		LogFormat:            env.GetString("QRYPTCHAT_LOG_FORMAT", "text"),
		AllowNearSizePadding: env.GetBool("QRYPTCHAT_ALLOW_NEAR_SIZE_PADDING", true),
	}
}

// loadDotEnv searches for a .env file recursively from the current
// directory up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
