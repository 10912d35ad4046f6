// Package config provides configuration management functionality for the issuevault application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultTokenEnv is the environment variable consulted for the tracker
// credential when the config file does not name one.
const DefaultTokenEnv = "ISSUEVAULT_TOKEN"

// TrackerConfig holds the tracker connection settings. The credential itself
// is never stored in the file; TokenEnv names the environment variable
// holding it.
type TrackerConfig struct {
	Kind     string   `yaml:"kind"`
	BaseURL  string   `yaml:"base_url,omitempty"`
	Email    string   `yaml:"email,omitempty"`
	TokenEnv string   `yaml:"token_env,omitempty"`
	Projects []string `yaml:"projects,omitempty"`
	// Timezone is the IANA name of the Jira profile timezone, e.g.
	// "Europe/Paris". Jira evaluates naked JQL datetimes in that zone; when
	// unset the query bound is padded westward instead.
	Timezone string `yaml:"timezone,omitempty"`
}

// Token resolves the tracker credential from the environment.
func (t TrackerConfig) Token() string {
	env := t.TokenEnv
	if env == "" {
		env = DefaultTokenEnv
	}
	return os.Getenv(env)
}

// Config represents the application configuration.
type Config struct {
	VaultPath      string        `yaml:"vault_path"`
	BaseFolder     string        `yaml:"base_folder"`
	DigestFolder   string        `yaml:"digest_folder"`
	CheckpointFile string        `yaml:"checkpoint_file,omitempty"`
	LookbackDays   int           `yaml:"lookback_days,omitempty"`
	Tracker        TrackerConfig `yaml:"tracker"`
}

// CheckpointPath returns the checkpoint file path, defaulting to a dotfile
// inside the vault when not configured explicitly.
func (c *Config) CheckpointPath() string {
	if c.CheckpointFile != "" {
		return c.CheckpointFile
	}
	return filepath.Join(c.VaultPath, ".issuevault_last_sync")
}

// LockPath returns the advisory lock file path guarding the vault.
func (c *Config) LockPath() string {
	return filepath.Join(c.VaultPath, ".issuevault.lock")
}

// BasePath returns the directory holding per-project issue notes.
func (c *Config) BasePath() string {
	return filepath.Join(c.VaultPath, c.BaseFolder)
}

// DigestPath returns the directory holding digest notes.
func (c *Config) DigestPath() string {
	return filepath.Join(c.VaultPath, c.DigestFolder)
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.VaultPath == "" {
		return ErrVaultPathEmpty
	}
	if !filepath.IsAbs(c.VaultPath) {
		return ErrVaultPathRelative
	}
	switch strings.ToLower(c.Tracker.Kind) {
	case "jira":
		if c.Tracker.BaseURL == "" {
			return ErrTrackerBaseURLEmpty
		}
	case "github":
		// Base URL optional, defaults to api.github.com.
	case "":
		return ErrTrackerKindEmpty
	default:
		return ErrTrackerKindUnknown
	}
	return nil
}
