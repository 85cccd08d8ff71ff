package activation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	goupdate "github.com/doitdistributed/go-update"
	"github.com/mitchellh/go-ps"

	"github.com/oshokin/mongovm/internal/logger"
	"github.com/oshokin/mongovm/internal/semver"
	"github.com/oshokin/mongovm/internal/store"
	"github.com/oshokin/mongovm/internal/toolchain"
)

const (
	// probeVersionFlag is passed to the live server binary to make it
	// report its own version on stdout.
	probeVersionFlag = "--version"

	// activeFileMode is applied to binaries switched into the bin directory.
	activeFileMode os.FileMode = 0o755
)

// errBinaryNotProvided is returned when an installed version lacks a requested binary.
var errBinaryNotProvided = errors.New("binary not provided by version")

// Manager switches which installed version is active and reports the current
// one. The active version is process-external state: every query re-probes
// the live binary instead of trusting a stored pointer, so the answer never
// drifts from reality.
type Manager struct {
	store        *store.Store
	binDir       string
	serverBinary string
	runner       toolchain.Runner
	probeTimeout time.Duration
}

// NewManager creates a manager switching binaries from the store into binDir.
func NewManager(s *store.Store, binDir, serverBinary string, runner toolchain.Runner, probeTimeout time.Duration) *Manager {
	return &Manager{
		store:        s,
		binDir:       filepath.Clean(binDir),
		serverBinary: serverBinary,
		runner:       runner,
		probeTimeout: probeTimeout,
	}
}

// Current probes the live binary on the execution path for its self-reported
// version. The absence of a runnable binary (or unparseable output) yields
// ok == false, never an error.
func (m *Manager) Current(ctx context.Context) (semver.Version, bool, error) {
	binary := filepath.Join(m.binDir, m.serverBinary)
	if _, err := os.Stat(binary); err != nil {
		return semver.Version{}, false, nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	result, err := m.runner.Run(probeCtx, binary, []string{probeVersionFlag}, toolchain.RunOptions{})
	if err != nil {
		logger.Warnf(ctx, "Could not probe %s for its version: %v", binary, err)
		return semver.Version{}, false, nil
	}

	output := append(result.Stdout, result.Stderr...)

	// The binary reports its own version first; later lines mention other
	// component versions, so document order matters here.
	v, found := semver.First(string(output))
	if !found {
		logger.WarnKV(ctx, "Probe output carried no version", "binary", binary)
		return semver.Version{}, false, nil
	}

	return v, true, nil
}

// Activate switches the active version to v by replacing the store entry's
// binaries on the execution path. Each file is applied atomically; binaries
// owned by other installs that v no longer provides are removed afterwards.
// Re-activating the already-active version is a no-op success.
func (m *Manager) Activate(ctx context.Context, v semver.Version) error {
	binPath, err := m.store.BinPath(v)
	if err != nil {
		return err
	}

	if current, ok, _ := m.Current(ctx); ok && current.Equal(v) {
		logger.InfoKV(ctx, "Version is already active", "version", v.String())
		return nil
	}

	m.warnIfServerRunning(ctx)

	entries, err := os.ReadDir(binPath)
	if err != nil {
		return fmt.Errorf("read store binaries: %w", err)
	}

	if err = os.MkdirAll(m.binDir, 0o755); err != nil {
		return fmt.Errorf("create bin directory: %w", err)
	}

	provided := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		provided[name] = struct{}{}

		if err = m.applyBinary(filepath.Join(binPath, name), filepath.Join(m.binDir, name)); err != nil {
			return fmt.Errorf("switch binary %s: %w", name, err)
		}

		logger.DebugKV(ctx, "Switched binary", "name", name, "version", v.String())
	}

	if err = m.removeStaleBinaries(ctx, v, provided); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Activated version", "version", v.String())

	return nil
}

// ExecPath returns the path of a named binary inside an installed version,
// for running it without switching the active version.
func (m *Manager) ExecPath(v semver.Version, name string) (string, error) {
	binPath, err := m.store.BinPath(v)
	if err != nil {
		return "", err
	}

	path := filepath.Join(binPath, name)
	if _, err = os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s in %s", errBinaryNotProvided, name, v)
	}

	return path, nil
}

// applyBinary replaces the target with the source file contents atomically
// and clears the .old leftover the swap produces.
func (m *Manager) applyBinary(source, target string) error {
	in, err := os.Open(filepath.Clean(source))
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	// go-update replaces an existing file; seed an empty one on first activation.
	if _, err = os.Stat(target); err != nil && os.IsNotExist(err) {
		seed, createErr := os.Create(filepath.Clean(target))
		if createErr != nil {
			return createErr
		}

		if err = seed.Close(); err != nil {
			return err
		}
	}

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: activeFileMode,
	}

	if err = goupdate.Apply(in, options); err != nil {
		return err
	}

	oldFileName := target + ".old"
	if _, err = os.Stat(oldFileName); err == nil {
		_ = os.Remove(oldFileName)
	}

	return nil
}

// removeStaleBinaries drops bin-dir entries that belong to other installed
// versions but are not provided by the newly activated one, so no mixture of
// old and new binaries stays visible.
func (m *Manager) removeStaleBinaries(ctx context.Context, active semver.Version, provided map[string]struct{}) error {
	installed, err := m.store.List()
	if err != nil {
		return err
	}

	for _, v := range installed {
		if v.Equal(active) {
			continue
		}

		entries, err := os.ReadDir(m.store.BinDir(v))
		if err != nil {
			continue
		}

		for _, entry := range entries {
			name := entry.Name()
			if _, found := provided[name]; found {
				continue
			}

			stale := filepath.Join(m.binDir, name)
			if _, err = os.Stat(stale); err != nil {
				continue
			}

			if err = os.Remove(stale); err != nil {
				return fmt.Errorf("remove stale binary %s: %w", name, err)
			}

			logger.DebugKV(ctx, "Removed stale binary", "name", name)
		}
	}

	return nil
}

// warnIfServerRunning scans the process table and warns when the managed
// server binary is running while its binaries are being switched.
func (m *Manager) warnIfServerRunning(ctx context.Context) {
	processList, err := ps.Processes()
	if err != nil {
		logger.Warnf(ctx, "Could not inspect process table: %v", err)
		return
	}

	for _, process := range processList {
		if process.Executable() == m.serverBinary {
			logger.WarnKV(ctx, "Server is running while its binaries are being switched",
				"binary", m.serverBinary, "pid", process.Pid())

			return
		}
	}
}
