package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/mongovm/internal/semver"
)

const (
	// optionsFilename is the sidecar recording the literal build options
	// used to produce an installed version, one token per line.
	optionsFilename = ".build-options"

	// binDirName is the subtree of a version directory holding its binaries.
	binDirName = "bin"

	// defaultDirPermissions is used when creating store directories.
	defaultDirPermissions = 0o755
)

// NotInstalledError is returned by operations that require an existing
// store entry (activate, bin-path lookup, execute) when there is none.
type NotInstalledError struct {
	Version semver.Version
}

// Error implements the error interface.
func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("version %s is not installed", e.Version)
}

// Store owns the on-disk layout of installed versions: one directory per
// version under the root, each with a bin subtree and an options sidecar.
type Store struct {
	// root is the directory holding one subdirectory per installed version.
	root string
	// serverBinary is the entry-point binary a valid install must contain.
	serverBinary string
}

// New creates a store over the given root directory.
// The root is created lazily on the first Place.
func New(root, serverBinary string) *Store {
	return &Store{
		root:         filepath.Clean(root),
		serverBinary: serverBinary,
	}
}

// Root returns the store root directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the store directory for a version. Deterministic, no side effects.
func (s *Store) Path(v semver.Version) string {
	return filepath.Join(s.root, v.String())
}

// BinDir returns the binaries subtree of a version's store directory.
func (s *Store) BinDir(v semver.Version) string {
	return filepath.Join(s.Path(v), binDirName)
}

// BinPath returns the binaries subtree of an installed version,
// or NotInstalledError when there is no valid store entry.
func (s *Store) BinPath(v semver.Version) (string, error) {
	if !s.Has(v) {
		return "", &NotInstalledError{Version: v}
	}

	return s.BinDir(v), nil
}

// Has reports whether a valid install of v exists: the version directory is
// present and its bin subtree contains the server entry-point binary.
// Half-completed placements never satisfy this.
func (s *Store) Has(v semver.Version) bool {
	info, err := os.Stat(s.Path(v))
	if err != nil || !info.IsDir() {
		return false
	}

	entry, err := os.Stat(filepath.Join(s.BinDir(v), s.serverBinary))

	return err == nil && entry.Mode().IsRegular()
}

// Place moves the built artifact tree at sourceDir into the store directory
// for v and records the build options alongside it. The sidecar is written
// into the tree before it is renamed into place, so a placement is either
// fully visible or not visible at all. Any prior install of v is replaced
// wholesale.
func (s *Store) Place(v semver.Version, sourceDir string, buildOptions []string) error {
	if err := writeOptions(filepath.Join(sourceDir, optionsFilename), buildOptions); err != nil {
		return fmt.Errorf("record build options: %w", err)
	}

	if err := os.MkdirAll(s.root, defaultDirPermissions); err != nil {
		return fmt.Errorf("create store root: %w", err)
	}

	target := s.Path(v)
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("clear previous install: %w", err)
	}

	if err := os.Rename(sourceDir, target); err == nil {
		return nil
	}

	// Rename across filesystems fails; stage a copy next to the target and
	// rename that instead, so visibility is still switched in one step.
	staging, err := os.MkdirTemp(s.root, "."+v.String()+"-staging-")
	if err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}

	defer func() {
		_ = os.RemoveAll(staging)
	}()

	if err = copyTree(sourceDir, staging); err != nil {
		return fmt.Errorf("stage artifact tree: %w", err)
	}

	if err = os.Rename(staging, target); err != nil {
		return fmt.Errorf("place version %s: %w", v, err)
	}

	return nil
}

// Remove deletes the store directory for v.
// Removing a version that was never installed is a no-op success,
// so removal stays safely repeatable.
func (s *Store) Remove(v semver.Version) error {
	if err := os.RemoveAll(s.Path(v)); err != nil {
		return fmt.Errorf("remove version %s: %w", v, err)
	}

	return nil
}

// ConfigOf reads the recorded build options of an installed version.
// An absent sidecar yields (nil, false, nil), not an error.
func (s *Store) ConfigOf(v semver.Version) ([]string, bool, error) {
	contents, err := os.ReadFile(filepath.Join(s.Path(v), optionsFilename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("read build options: %w", err)
	}

	var options []string

	for _, line := range strings.Split(string(contents), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			options = append(options, line)
		}
	}

	return options, true, nil
}

// List returns every validly installed version, ascending.
// A missing store root yields an empty list.
func (s *Store) List() ([]semver.Version, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read store root: %w", err)
	}

	versions := make([]semver.Version, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		v, err := semver.Parse(entry.Name())
		if err != nil {
			continue
		}

		if s.Has(v) {
			versions = append(versions, v)
		}
	}

	semver.Sort(versions)

	return versions, nil
}

// writeOptions writes the literal build-option list, one token per line.
func writeOptions(path string, options []string) error {
	var builder strings.Builder

	for _, option := range options {
		builder.WriteString(option)
		builder.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(builder.String()), 0o644)
}

// copyTree copies a directory tree preserving file modes and symlinks.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		if relPath == "." {
			return nil
		}

		target := filepath.Join(dst, relPath)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}

			return os.Symlink(link, target)
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

// copyFile copies a single regular file.
func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()

		return err
	}

	return out.Close()
}
