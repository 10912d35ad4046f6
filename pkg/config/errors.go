package config

import "errors"

// Error definitions for config package.
var (
	// Configuration file errors.
	ErrConfigFileParse = errors.New("failed to parse config file")
	// Configuration initialization errors.
	ErrConfigNotInitialized = errors.New("issuevault configuration not found. Run 'issuevault init' to initialize")
	// Configuration validation errors.
	ErrVaultPathEmpty      = errors.New("vault_path cannot be empty")
	ErrVaultPathRelative   = errors.New("vault_path must be an absolute path")
	ErrTrackerKindEmpty    = errors.New("tracker.kind cannot be empty")
	ErrTrackerKindUnknown  = errors.New("tracker.kind must be \"jira\" or \"github\"")
	ErrTrackerBaseURLEmpty = errors.New("tracker.base_url cannot be empty for jira")
)
