package activation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/mongovm/internal/semver"
	"github.com/oshokin/mongovm/internal/store"
	"github.com/oshokin/mongovm/internal/toolchain"
)

const testServerBinary = "mongod"

// fakeRunner scripts the probe output without executing anything.
type fakeRunner struct {
	output string
	err    error
	calls  int
}

func (f *fakeRunner) Run(_ context.Context, _ string, _ []string, _ toolchain.RunOptions) (toolchain.RunResult, error) {
	f.calls++

	return toolchain.RunResult{Stdout: []byte(f.output)}, f.err
}

// newTestStore places a fake install of the given versions, each binary's
// contents being its version literal so switches are observable.
func newTestStore(t *testing.T, versions ...string) *store.Store {
	t.Helper()

	s := store.New(filepath.Join(t.TempDir(), "versions"), testServerBinary)

	for _, literal := range versions {
		out := filepath.Join(t.TempDir(), "out-"+literal)
		require.NoError(t, os.MkdirAll(filepath.Join(out, "bin"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(out, "bin", testServerBinary), []byte(literal), 0o755))
		require.NoError(t, s.Place(semver.MustParse(literal), out, nil))
	}

	return s
}

// TestCurrent_NoBinary reports none active rather than an error.
func TestCurrent_NoBinary(t *testing.T) {
	t.Parallel()

	m := NewManager(newTestStore(t), t.TempDir(), testServerBinary, &fakeRunner{}, time.Second)

	_, ok, err := m.Current(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

// TestCurrent_ParsesNoisyOutput scrapes the version literal out of real-looking probe output.
func TestCurrent_ParsesNoisyOutput(t *testing.T) {
	t.Parallel()

	binDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(binDir, testServerBinary), []byte("bin"), 0o755))

	// Later lines carry other component versions; the binary's own version
	// comes first and lower triples further down must not win.
	runner := &fakeRunner{
		output: "db version v6.0.4\n" +
			"Build Info: deadbeef\n" +
			"    \"openSSLVersion\": \"OpenSSL 1.1.1f  31 Mar 2020\",\n",
	}
	m := NewManager(newTestStore(t), binDir, testServerBinary, runner, time.Second)

	v, ok, err := m.Current(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "6.0.4", v.String())
	require.Equal(t, 1, runner.calls)
}

// TestCurrent_ProbeFailure reports none active when the binary will not run.
func TestCurrent_ProbeFailure(t *testing.T) {
	t.Parallel()

	binDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(binDir, testServerBinary), []byte("bin"), 0o755))

	runner := &fakeRunner{err: errors.New("exec format error")}
	m := NewManager(newTestStore(t), binDir, testServerBinary, runner, time.Second)

	_, ok, err := m.Current(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

// TestActivate_NotInstalled requires an existing store entry.
func TestActivate_NotInstalled(t *testing.T) {
	t.Parallel()

	m := NewManager(newTestStore(t), t.TempDir(), testServerBinary, &fakeRunner{}, time.Second)

	err := m.Activate(context.Background(), semver.MustParse("6.0.4"))

	var notInstalled *store.NotInstalledError

	require.ErrorAs(t, err, &notInstalled)
}

// TestActivate_SwitchesBinaries replaces the execution-path binaries with the store entry's.
func TestActivate_SwitchesBinaries(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, "6.0.4")
	binDir := filepath.Join(t.TempDir(), "bin")
	m := NewManager(s, binDir, testServerBinary, &fakeRunner{}, time.Second)

	require.NoError(t, m.Activate(context.Background(), semver.MustParse("6.0.4")))

	contents, err := os.ReadFile(filepath.Join(binDir, testServerBinary))
	require.NoError(t, err)
	require.Equal(t, "6.0.4", string(contents))

	// No .old leftovers.
	_, err = os.Stat(filepath.Join(binDir, testServerBinary+".old"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestActivate_ReplacesPriorVersion ensures the previously active binaries are fully replaced.
func TestActivate_ReplacesPriorVersion(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, "6.0.4", "6.0.5")
	binDir := filepath.Join(t.TempDir(), "bin")

	// Probe parses the binary contents written by newTestStore.
	runner := &fakeRunner{output: "db version v6.0.4"}
	m := NewManager(s, binDir, testServerBinary, runner, time.Second)

	require.NoError(t, m.Activate(context.Background(), semver.MustParse("6.0.4")))
	require.NoError(t, m.Activate(context.Background(), semver.MustParse("6.0.5")))

	contents, err := os.ReadFile(filepath.Join(binDir, testServerBinary))
	require.NoError(t, err)
	require.Equal(t, "6.0.5", string(contents))
}

// TestActivate_AlreadyActive is a no-op success that leaves the bin directory alone.
func TestActivate_AlreadyActive(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, "6.0.4")
	binDir := t.TempDir()

	// A sentinel that would be overwritten if activation did any work.
	sentinel := filepath.Join(binDir, testServerBinary)
	require.NoError(t, os.WriteFile(sentinel, []byte("sentinel"), 0o755))

	runner := &fakeRunner{output: "db version v6.0.4"}
	m := NewManager(s, binDir, testServerBinary, runner, time.Second)

	require.NoError(t, m.Activate(context.Background(), semver.MustParse("6.0.4")))

	contents, err := os.ReadFile(sentinel)
	require.NoError(t, err)
	require.Equal(t, "sentinel", string(contents))
}

// TestExecPath resolves binaries inside an install without switching.
func TestExecPath(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, "6.0.4")
	m := NewManager(s, t.TempDir(), testServerBinary, &fakeRunner{}, time.Second)

	path, err := m.ExecPath(semver.MustParse("6.0.4"), testServerBinary)
	require.NoError(t, err)
	require.FileExists(t, path)

	_, err = m.ExecPath(semver.MustParse("6.0.4"), "mongotop")
	require.ErrorIs(t, err, errBinaryNotProvided)

	_, err = m.ExecPath(semver.MustParse("9.9.9"), testServerBinary)

	var notInstalled *store.NotInstalledError

	require.ErrorAs(t, err, &notInstalled)
}
