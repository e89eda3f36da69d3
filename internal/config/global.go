// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"sync"
)

var (
	globalMu sync.Mutex

	// configDirOverride allows tests to override the config directory.
	// This is necessary because os.UserHomeDir() doesn't reliably respect
	// the HOME environment variable on all platforms (e.g., macOS in CI).
	configDirOverride string

	// configFilePathOverride forces loading from a specific config file
	// (set via the --config flag).
	configFilePathOverride string

	cachedConfig *Config
)

// Reset clears overrides and the cached config. Call from test cleanup to
// restore defaults.
func Reset() {
	globalMu.Lock()
	defer globalMu.Unlock()
	configDirOverride = ""
	configFilePathOverride = ""
	cachedConfig = nil
}

// SetConfigDirOverride sets a custom config directory path.
// This is primarily intended for testing to bypass os.UserHomeDir() which
// doesn't reliably respect the HOME env var on all platforms (e.g., macOS in CI).
func SetConfigDirOverride(dir string) {
	globalMu.Lock()
	defer globalMu.Unlock()
	configDirOverride = dir
	cachedConfig = nil
}

// SetConfigFilePathOverride forces subsequent Load calls to read the given
// config file exclusively.
func SetConfigFilePathOverride(path string) {
	globalMu.Lock()
	defer globalMu.Unlock()
	configFilePathOverride = path
	cachedConfig = nil
}

// Load returns the process-wide configuration, loading it on first use and
// caching the result. CLI handlers that need request-scoped loading should
// use a Provider instead.
func Load() (*Config, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if cachedConfig != nil {
		return cachedConfig, nil
	}

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: configFilePathOverride,
	})
	if err != nil {
		return nil, err
	}

	cachedConfig = cfg
	return cfg, nil
}
