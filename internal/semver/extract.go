package semver

import "regexp"

// versionPattern matches release literals as they appear in the remote
// directory listing: a numeric triple with an optional rc marker.
var versionPattern = regexp.MustCompile(`\d+\.\d+\.\d+(?:[-_]rc\d+)?`)

// First returns the release literal appearing earliest in text, in document
// order. The leading position matters where surrounding text carries other
// triples (probe output mentioning library versions, archive names embedding
// dependency versions); Extract sorts and would prefer the lowest instead.
func First(text string) (Version, bool) {
	match := versionPattern.FindString(text)
	if match == "" {
		return Version{}, false
	}

	v, err := Parse(match)
	if err != nil {
		return Version{}, false
	}

	return v, true
}

// Extract scrapes every release literal out of arbitrary text (typically an
// HTML directory listing), suppresses duplicates, and returns the versions
// in ascending order. Text with no matches yields an empty slice.
func Extract(text string) []Version {
	matches := versionPattern.FindAllString(text, -1)

	seen := make(map[string]struct{}, len(matches))
	versions := make([]Version, 0, len(matches))

	for _, match := range matches {
		v, err := Parse(match)
		if err != nil {
			// The pattern guarantees parseability; skip rather than fail.
			continue
		}

		if _, found := seen[v.String()]; found {
			continue
		}

		seen[v.String()] = struct{}{}

		versions = append(versions, v)
	}

	Sort(versions)

	return versions
}

// ExtractStable scrapes release literals like Extract but keeps only stable
// series (even minor component, by the server's versioning convention) and
// strips any release-candidate marker, since stable releases are final.
func ExtractStable(text string) []Version {
	extracted := Extract(text)

	seen := make(map[string]struct{}, len(extracted))
	versions := make([]Version, 0, len(extracted))

	for _, v := range extracted {
		if v.Minor()%2 != 0 {
			continue
		}

		v = v.WithoutPrerelease()
		if _, found := seen[v.String()]; found {
			continue
		}

		seen[v.String()] = struct{}{}

		versions = append(versions, v)
	}

	Sort(versions)

	return versions
}
