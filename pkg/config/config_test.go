//go:build unit

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		VaultPath:    t.TempDir(),
		BaseFolder:   "Issues",
		DigestFolder: "Notifications",
		Tracker: TrackerConfig{
			Kind:    "jira",
			BaseURL: "https://example.atlassian.net",
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_EmptyVaultPath(t *testing.T) {
	cfg := validConfig(t)
	cfg.VaultPath = ""
	assert.ErrorIs(t, cfg.Validate(), ErrVaultPathEmpty)
}

func TestValidate_RelativeVaultPath(t *testing.T) {
	cfg := validConfig(t)
	cfg.VaultPath = "relative/vault"
	assert.ErrorIs(t, cfg.Validate(), ErrVaultPathRelative)
}

func TestValidate_TrackerKind(t *testing.T) {
	cfg := validConfig(t)
	cfg.Tracker.Kind = ""
	assert.ErrorIs(t, cfg.Validate(), ErrTrackerKindEmpty)

	cfg.Tracker.Kind = "gitlab"
	assert.ErrorIs(t, cfg.Validate(), ErrTrackerKindUnknown)

	cfg.Tracker.Kind = "github"
	cfg.Tracker.BaseURL = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidate_JiraRequiresBaseURL(t *testing.T) {
	cfg := validConfig(t)
	cfg.Tracker.BaseURL = ""
	assert.ErrorIs(t, cfg.Validate(), ErrTrackerBaseURLEmpty)
}

func TestPaths_Defaults(t *testing.T) {
	cfg := validConfig(t)

	assert.Equal(t, filepath.Join(cfg.VaultPath, ".issuevault_last_sync"), cfg.CheckpointPath())
	assert.Equal(t, filepath.Join(cfg.VaultPath, ".issuevault.lock"), cfg.LockPath())
	assert.Equal(t, filepath.Join(cfg.VaultPath, "Issues"), cfg.BasePath())
	assert.Equal(t, filepath.Join(cfg.VaultPath, "Notifications"), cfg.DigestPath())
}

func TestCheckpointPath_Override(t *testing.T) {
	cfg := validConfig(t)
	cfg.CheckpointFile = "/tmp/custom_checkpoint"

	assert.Equal(t, "/tmp/custom_checkpoint", cfg.CheckpointPath())
}

func TestToken_ResolvesFromEnvironment(t *testing.T) {
	t.Setenv(DefaultTokenEnv, "default-secret")
	t.Setenv("CUSTOM_TOKEN", "custom-secret")

	tc := TrackerConfig{}
	assert.Equal(t, "default-secret", tc.Token())

	tc.TokenEnv = "CUSTOM_TOKEN"
	assert.Equal(t, "custom-secret", tc.Token())
}

func TestManager_SaveThenGetRoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".issuevault", "config.yaml")
	manager := NewManager(configPath)

	want := validConfig(t)
	require.NoError(t, manager.SaveConfig(want))

	got, err := manager.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestManager_GetConfigNotInitialized(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := manager.GetConfig()

	assert.ErrorIs(t, err, ErrConfigNotInitialized)
}

func TestManager_GetConfigParseError(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("vault_path: [broken"), 0600))

	manager := NewManager(configPath)
	_, err := manager.GetConfig()

	assert.ErrorIs(t, err, ErrConfigFileParse)
}

func TestManager_GetConfigWithFallback(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := manager.GetConfigWithFallback()

	require.NoError(t, err)
	assert.Equal(t, manager.DefaultConfig(), cfg)
}

func TestManager_DefaultConfig(t *testing.T) {
	cfg := NewManager("").DefaultConfig()

	assert.Equal(t, "Issues", cfg.BaseFolder)
	assert.Equal(t, "Notifications", cfg.DigestFolder)
	assert.Equal(t, 7, cfg.LookbackDays)
	assert.Equal(t, "jira", cfg.Tracker.Kind)
	assert.Equal(t, DefaultTokenEnv, cfg.Tracker.TokenEnv)
}
