package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oshokin/mongovm/internal/catalog"
	"github.com/oshokin/mongovm/internal/config"
	"github.com/oshokin/mongovm/internal/logger"
	"github.com/oshokin/mongovm/internal/semver"
	"github.com/oshokin/mongovm/internal/store"
	"github.com/oshokin/mongovm/internal/toolchain"
)

// prefixOption is the install-prefix flag appended to user build options.
// The build output lands in a scratch tree and is renamed into the store
// only on success, so a failed build never leaves a visible store entry.
const prefixOption = "--prefix="

// errNoVersionInName is returned when a local archive name carries no version literal.
var errNoVersionInName = errors.New("archive name carries no version")

// InstallError reports an extraction or build failure for a version.
type InstallError struct {
	Version semver.Version
	Err     error
}

// Error implements the error interface.
func (e *InstallError) Error() string {
	return fmt.Sprintf("install %s: %v", e.Version, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *InstallError) Unwrap() error {
	return e.Err
}

// Resolver turns a symbolic or literal version target into a concrete version.
type Resolver interface {
	Resolve(ctx context.Context, target string) (semver.Version, error)
}

// Activator switches the active version after a completed install.
type Activator interface {
	Activate(ctx context.Context, v semver.Version) error
}

// Installer orchestrates the install pipeline: resolve, fetch, extract,
// build, place, activate. One invocation is fully synchronous; temporary
// build directories are scoped to it and cleaned on every exit path.
type Installer struct {
	cfg       *config.Config
	resolver  Resolver
	store     *store.Store
	activator Activator
	fetcher   catalog.Fetcher
	runner    toolchain.Runner
}

// New wires an installer from its collaborators.
func New(
	cfg *config.Config,
	resolver Resolver,
	s *store.Store,
	activator Activator,
	fetcher catalog.Fetcher,
	runner toolchain.Runner,
) *Installer {
	return &Installer{
		cfg:       cfg,
		resolver:  resolver,
		store:     s,
		activator: activator,
		fetcher:   fetcher,
		runner:    runner,
	}
}

// Install resolves the target and installs it, then activates it.
// Installing an already-built version skips the build entirely and only
// activates, so re-invoking install is idempotent. Activation failure is
// reported but does not roll back the completed install.
func (i *Installer) Install(ctx context.Context, target string, buildOptions []string) error {
	ctx = logger.WithName(ctx, "installer")

	v, err := i.resolver.Resolve(ctx, target)
	if err != nil {
		return err
	}

	if i.store.Has(v) {
		logger.InfoKV(ctx, "Version is already installed, activating", "version", v.String())
		return i.activator.Activate(ctx, v)
	}

	if err = i.fetchAndBuild(ctx, v, buildOptions); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Installed version", "version", v.String(), "path", i.store.Path(v))

	if err = i.activator.Activate(ctx, v); err != nil {
		logger.ErrorKV(ctx, "Version installed but activation failed", "version", v.String(), "error", err)
		return err
	}

	return nil
}

// InstallLocal installs from a local source archive instead of the remote.
// The version is inferred from the archive filename; a name carrying no
// version literal fails before any extraction.
func (i *Installer) InstallLocal(ctx context.Context, archivePath string, buildOptions []string) error {
	ctx = logger.WithName(ctx, "installer")

	v, found := semver.First(filepath.Base(archivePath))
	if !found {
		return fmt.Errorf("%w: %s", errNoVersionInName, filepath.Base(archivePath))
	}

	if i.store.Has(v) {
		logger.InfoKV(ctx, "Version is already installed, activating", "version", v.String())
		return i.activator.Activate(ctx, v)
	}

	archive, err := os.Open(filepath.Clean(archivePath))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = archive.Close()
	}()

	logger.InfoKV(ctx, "Installing from local archive", "archive", archivePath, "version", v.String())

	if err = i.buildFromStream(ctx, v, archive, buildOptions); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Installed version", "version", v.String(), "path", i.store.Path(v))

	if err = i.activator.Activate(ctx, v); err != nil {
		logger.ErrorKV(ctx, "Version installed but activation failed", "version", v.String(), "error", err)
		return err
	}

	return nil
}

// fetchAndBuild streams the source archive for v from the remote through
// extraction and runs the build. A failed tarball fetch (an unknown version
// typically surfaces as a 404 here) aborts the install with no store entry.
func (i *Installer) fetchAndBuild(ctx context.Context, v semver.Version, buildOptions []string) error {
	url := fmt.Sprintf(i.cfg.TarballTemplate, v.String())

	logger.InfoKV(ctx, "Downloading source archive", "url", url)

	body, err := i.fetcher.Fetch(ctx, url)
	if err != nil {
		return &InstallError{Version: v, Err: err}
	}

	defer func() {
		_ = body.Close()
	}()

	return i.buildFromStream(ctx, v, body, buildOptions)
}

// buildFromStream extracts the archive stream into a fresh temporary build
// directory, invokes the build toolchain and places the output into the
// store. The temporary directory is removed on every exit path; a failure in
// any step leaves no partial store entry behind.
func (i *Installer) buildFromStream(ctx context.Context, v semver.Version, archive io.Reader, buildOptions []string) error {
	workDir, err := os.MkdirTemp("", "mongovm-install-"+v.String()+"-")
	if err != nil {
		return fmt.Errorf("create build directory: %w", err)
	}

	defer func() {
		_ = os.RemoveAll(workDir)
	}()

	srcDir := filepath.Join(workDir, "src")
	if err = os.MkdirAll(srcDir, 0o755); err != nil {
		return fmt.Errorf("create source directory: %w", err)
	}

	logger.InfoKV(ctx, "Extracting source archive", "version", v.String())

	if err = extractTarGz(archive, srcDir); err != nil {
		return &InstallError{Version: v, Err: fmt.Errorf("extract archive: %w", err)}
	}

	outDir := filepath.Join(workDir, "out")

	if err = i.build(ctx, v, sourceRoot(srcDir), outDir, buildOptions); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Placing build output into the store", "version", v.String())

	if err = i.store.Place(v, outDir, buildOptions); err != nil {
		return &InstallError{Version: v, Err: err}
	}

	return nil
}

// build runs the external toolchain in the extracted source tree, passing
// user options through verbatim plus the required install prefix. Output is
// captured to a persistent per-version log so failures stay diagnosable
// after the temporary build directory is gone.
func (i *Installer) build(ctx context.Context, v semver.Version, srcRoot, outDir string, buildOptions []string) error {
	if err := os.MkdirAll(i.cfg.LogsDir(), 0o755); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}

	logPath := filepath.Join(i.cfg.LogsDir(), "build-"+v.String()+".log")

	logFile, err := os.OpenFile(filepath.Clean(logPath), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open build log: %w", err)
	}

	defer func() {
		_ = logFile.Close()
	}()

	args := make([]string, 0, len(i.cfg.BuildArgs)+len(buildOptions)+1)
	args = append(args, i.cfg.BuildArgs...)
	args = append(args, buildOptions...)
	args = append(args, prefixOption+outDir)

	logger.InfoKV(ctx, "Building from source",
		"version", v.String(), "command", i.cfg.BuildCommand, "log", logPath)

	options := toolchain.RunOptions{
		Dir:    srcRoot,
		Stdout: logFile,
		Stderr: logFile,
	}

	if _, err = i.runner.Run(ctx, i.cfg.BuildCommand, args, options); err != nil {
		return &InstallError{Version: v, Err: fmt.Errorf("build failed: %w (see %s)", err, logPath)}
	}

	return nil
}

// sourceRoot returns the single top-level directory of an extracted archive
// when there is one, since source tarballs usually wrap their tree in a
// versioned directory, and the extraction directory itself otherwise.
func sourceRoot(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		return dir
	}

	return filepath.Join(dir, entries[0].Name())
}
