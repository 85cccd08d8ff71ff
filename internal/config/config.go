package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by every mongovm command.
type Config struct {
	// RootDir is the directory owning the version store and build logs.
	RootDir string `yaml:"root_dir"`
	// BinDir is the system execution path where active binaries live.
	BinDir string `yaml:"bin_dir"`
	// IndexURL is the remote directory listing scraped for available versions.
	IndexURL string `yaml:"index_url"`
	// TarballTemplate is the source archive URL with a %s placeholder for the version.
	TarballTemplate string `yaml:"tarball_template"`
	// ServerBinary is the server entry-point binary, also used to probe the active version.
	ServerBinary string `yaml:"server_binary"`
	// BuildCommand is the external build tool invoked in the extracted source tree.
	BuildCommand string `yaml:"build_command"`
	// BuildArgs are arguments always passed to the build tool, before user options.
	BuildArgs []string `yaml:"build_args"`
	// Timeout bounds the version probe; fetches and builds run unbounded.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the config file looked up under the root directory.
	DefaultConfigFilename = "config.yaml"

	// DefaultTimeout is the default duration for the version probe.
	DefaultTimeout = 10 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	defaultRootDirName     = ".mongovm"
	defaultBinDir          = "/usr/local/bin"
	defaultIndexURL        = "https://fastdl.mongodb.org/src/"
	defaultTarballTemplate = "https://fastdl.mongodb.org/src/mongodb-src-r%s.tar.gz"
	defaultServerBinary    = "mongod"
	defaultBuildCommand    = "scons"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBadTemplate is returned when the tarball template has no version placeholder.
	errBadTemplate = errors.New("tarball template must contain a %s version placeholder")
)

// Default returns the configuration used when no config file exists.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return &Config{
		RootDir:         filepath.Join(home, defaultRootDirName),
		BinDir:          defaultBinDir,
		IndexURL:        defaultIndexURL,
		TarballTemplate: defaultTarballTemplate,
		ServerBinary:    defaultServerBinary,
		BuildCommand:    defaultBuildCommand,
		BuildArgs:       []string{"install"},
		Timeout:         DefaultTimeout,
	}
}

// DefaultPath returns the default config file location under the root directory.
func DefaultPath() string {
	return filepath.Join(Default().RootDir, DefaultConfigFilename)
}

// Load reads configuration from the provided path and validates essential fields.
// A missing file is not an error: defaults are returned so the tool works
// out of the box.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultPath()
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	// Restrict permissions.
	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// filling defaults for optional ones.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	defaults := Default()

	if cfg.RootDir == "" {
		cfg.RootDir = defaults.RootDir
	}

	if cfg.BinDir == "" {
		cfg.BinDir = defaults.BinDir
	}

	if cfg.ServerBinary == "" {
		cfg.ServerBinary = defaults.ServerBinary
	}

	if cfg.BuildCommand == "" {
		cfg.BuildCommand = defaults.BuildCommand
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.IndexURL == "" {
		cfg.IndexURL = defaults.IndexURL
	}

	if _, err := url.ParseRequestURI(cfg.IndexURL); err != nil {
		return fmt.Errorf("invalid index URL: %w", err)
	}

	if cfg.TarballTemplate == "" {
		cfg.TarballTemplate = defaults.TarballTemplate
	}

	if !strings.Contains(cfg.TarballTemplate, "%s") {
		return errBadTemplate
	}

	return nil
}

// VersionsDir returns the store root holding one subdirectory per installed version.
func (c *Config) VersionsDir() string {
	return filepath.Join(c.RootDir, "versions")
}

// LogsDir returns the directory holding per-version build logs.
func (c *Config) LogsDir() string {
	return filepath.Join(c.RootDir, "log")
}
