package semver

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	semverlib "github.com/Masterminds/semver/v3"
)

// errMalformedVersion is returned when a string does not look like a release literal.
var errMalformedVersion = fmt.Errorf("malformed version")

// Version is an immutable semantic version of the managed server,
// optionally carrying a release-candidate tag (e.g. "6.1.0-rc2").
// The zero value is not a valid version; check IsZero before use.
type Version struct {
	// literal is the canonical string form, with "_rc" normalized to "-rc".
	literal string
	// parsed backs all comparisons.
	parsed *semverlib.Version
}

// rcSuffixPattern captures the numeric part of a release-candidate tag.
var rcSuffixPattern = regexp.MustCompile(`-rc(\d+)$`)

// Parse converts a release literal into a Version.
// Accepted forms are "X.Y.Z", "X.Y.Z-rcN" and "X.Y.Z_rcN";
// the underscore spelling used by older listings is normalized to a dash.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if !versionPattern.MatchString(s) || versionPattern.FindString(s) != s {
		return Version{}, fmt.Errorf("%w: %q", errMalformedVersion, s)
	}

	literal := strings.Replace(s, "_rc", "-rc", 1)

	// Dot the rc number into its own identifier so comparison treats it
	// numerically: "rc10" must sort after "rc2", not before it.
	comparable := rcSuffixPattern.ReplaceAllString(literal, "-rc.$1")

	parsed, err := semverlib.NewVersion(comparable)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", errMalformedVersion, s, err)
	}

	return Version{literal: literal, parsed: parsed}, nil
}

// MustParse is Parse that panics on error, for constants and tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return v
}

// String returns the canonical literal, e.g. "6.0.4" or "6.1.0-rc2".
func (v Version) String() string {
	return v.literal
}

// IsZero reports whether v is the zero value rather than a parsed version.
func (v Version) IsZero() bool {
	return v.parsed == nil
}

// Major returns the major component.
func (v Version) Major() uint64 {
	return v.parsed.Major()
}

// Minor returns the minor component.
func (v Version) Minor() uint64 {
	return v.parsed.Minor()
}

// Patch returns the patch component.
func (v Version) Patch() uint64 {
	return v.parsed.Patch()
}

// Prerelease returns the release-candidate tag ("rc2") or "" for final releases.
// It reads the literal, not the parsed form, which carries the tag in dotted
// shape for comparison purposes.
func (v Version) Prerelease() string {
	if i := strings.IndexByte(v.literal, '-'); i >= 0 {
		return v.literal[i+1:]
	}

	return ""
}

// IsStable reports whether v is a stable release:
// an even minor component and no release-candidate tag.
func (v Version) IsStable() bool {
	return v.Minor()%2 == 0 && v.Prerelease() == ""
}

// WithoutPrerelease returns the same numeric triple with any tag removed.
func (v Version) WithoutPrerelease() Version {
	if v.Prerelease() == "" {
		return v
	}

	return MustParse(fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch()))
}

// Compare orders versions ascending by numeric triple; a tagged version
// sorts before the untagged same triple, and rc tags order by their
// numeric suffix ("rc2" before "rc10").
func (v Version) Compare(other Version) int {
	return v.parsed.Compare(other.parsed)
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// Equal reports whether all components including the tag match.
func (v Version) Equal(other Version) bool {
	if v.IsZero() || other.IsZero() {
		return v.IsZero() == other.IsZero()
	}

	return v.Compare(other) == 0 && v.Prerelease() == other.Prerelease()
}

// Sort orders versions ascending in place.
func Sort(versions []Version) {
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Less(versions[j])
	})
}
