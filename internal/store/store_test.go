package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/mongovm/internal/semver"
)

const testServerBinary = "mongod"

// makeArtifactTree builds a fake build-output tree with a bin entry point.
func makeArtifactTree(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", testServerBinary), []byte("#!server"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "libdb.so"), []byte("lib"), 0o644))

	return dir
}

// TestPath_Deterministic ensures the version to directory mapping has no side effects.
func TestPath_Deterministic(t *testing.T) {
	t.Parallel()

	s := New(filepath.Join(t.TempDir(), "versions"), testServerBinary)
	v := semver.MustParse("6.0.4")

	require.Equal(t, s.Path(v), s.Path(v))
	require.Equal(t, filepath.Join(s.Root(), "6.0.4"), s.Path(v))
	require.NoDirExists(t, s.Path(v))
}

// TestHas_RejectsPartialPlacement ensures a directory without the entry-point
// binary is never reported as installed.
func TestHas_RejectsPartialPlacement(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir(), testServerBinary)
	v := semver.MustParse("6.0.4")

	require.False(t, s.Has(v))

	// Simulate an interrupted placement: directory exists, binary missing.
	require.NoError(t, os.MkdirAll(filepath.Join(s.Path(v), "bin"), 0o755))
	require.False(t, s.Has(v))
}

// TestPlace_Roundtrip covers placement, sidecar recording and wholesale replacement.
func TestPlace_Roundtrip(t *testing.T) {
	t.Parallel()

	s := New(filepath.Join(t.TempDir(), "versions"), testServerBinary)
	v := semver.MustParse("6.0.4")

	require.NoError(t, s.Place(v, makeArtifactTree(t), []string{"--ssl", "-j4"}))
	require.True(t, s.Has(v))

	options, found, err := s.ConfigOf(v)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []string{"--ssl", "-j4"}, options)

	// Reinstalling overwrites the directory wholesale.
	require.NoError(t, s.Place(v, makeArtifactTree(t), nil))
	require.True(t, s.Has(v))

	options, found, err = s.ConfigOf(v)
	require.NoError(t, err)
	require.True(t, found)
	require.Empty(t, options)
}

// TestConfigOf_AbsentSidecar yields no config, not an error.
func TestConfigOf_AbsentSidecar(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir(), testServerBinary)
	v := semver.MustParse("6.0.4")

	require.NoError(t, os.MkdirAll(s.Path(v), 0o755))

	options, found, err := s.ConfigOf(v)
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, options)
}

// TestRemove_Idempotent ensures removing a never-installed version succeeds.
func TestRemove_Idempotent(t *testing.T) {
	t.Parallel()

	s := New(filepath.Join(t.TempDir(), "versions"), testServerBinary)
	v := semver.MustParse("9.9.9")

	require.NoError(t, s.Remove(v))
	require.False(t, s.Has(v))

	require.NoError(t, s.Place(v, makeArtifactTree(t), nil))
	require.NoError(t, s.Remove(v))
	require.NoError(t, s.Remove(v))
	require.False(t, s.Has(v))
}

// TestBinPath_NotInstalled fails with NotInstalledError, not an empty path.
func TestBinPath_NotInstalled(t *testing.T) {
	t.Parallel()

	s := New(t.TempDir(), testServerBinary)

	_, err := s.BinPath(semver.MustParse("6.0.4"))

	var notInstalled *NotInstalledError

	require.ErrorAs(t, err, &notInstalled)
	require.Equal(t, "6.0.4", notInstalled.Version.String())
}

// TestList_SortedAndFiltered ensures only valid installs are listed, ascending.
func TestList_SortedAndFiltered(t *testing.T) {
	t.Parallel()

	s := New(filepath.Join(t.TempDir(), "versions"), testServerBinary)

	// Missing root yields an empty list.
	versions, err := s.List()
	require.NoError(t, err)
	require.Empty(t, versions)

	require.NoError(t, s.Place(semver.MustParse("1.2.10"), makeArtifactTree(t), nil))
	require.NoError(t, s.Place(semver.MustParse("1.2.9"), makeArtifactTree(t), nil))

	// A partial directory and a stray file are both ignored.
	require.NoError(t, os.MkdirAll(filepath.Join(s.Root(), "2.0.0"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "junk.txt"), []byte("x"), 0o644))

	versions, err = s.List()
	require.NoError(t, err)
	require.Len(t, versions, 2)
	require.Equal(t, "1.2.9", versions[0].String())
	require.Equal(t, "1.2.10", versions[1].String())
}
