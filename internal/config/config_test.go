package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, defaults and format validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Nil config.
	require.Error(t, Validate(nil))

	// Empty config picks up every default.
	cfg := new(Config)

	require.NoError(t, Validate(cfg))
	require.NotEmpty(t, cfg.RootDir)
	require.Equal(t, defaultBinDir, cfg.BinDir)
	require.Equal(t, defaultServerBinary, cfg.ServerBinary)
	require.Equal(t, DefaultTimeout, cfg.Timeout)

	// Bad index URL.
	cfg = &Config{IndexURL: "not a url"}

	require.Error(t, Validate(cfg))

	// Template without placeholder.
	cfg = &Config{TarballTemplate: "https://example.com/src.tar.gz"}

	require.Error(t, Validate(cfg))
}

// TestLoad_MissingFileYieldsDefaults ensures the tool works without a config file.
func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default().IndexURL, cfg.IndexURL)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := &Config{
		RootDir:         filepath.Join(dir, "store"),
		BinDir:          filepath.Join(dir, "bin"),
		IndexURL:        "https://updates.local/src/",
		TarballTemplate: "https://updates.local/src/db-%s.tar.gz",
		ServerBinary:    "dbd",
		BuildCommand:    "make",
		BuildArgs:       []string{"install", "-j4"},
		Timeout:         3 * time.Second,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.IndexURL, loaded.IndexURL)
	require.Equal(t, cfg.TarballTemplate, loaded.TarballTemplate)
	require.Equal(t, cfg.BuildArgs, loaded.BuildArgs)
	require.Equal(t, filepath.Join(cfg.RootDir, "versions"), loaded.VersionsDir())

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}
