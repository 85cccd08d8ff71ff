package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/oshokin/mongovm/internal/logger"
	"github.com/oshokin/mongovm/internal/semver"
)

// Symbolic targets accepted by Resolve in place of a literal version string.
const (
	TargetLatest = "latest"
	TargetStable = "stable"
)

// ErrEmpty is returned when the remote listing parses to no versions,
// either because its format changed or the body came back empty.
var ErrEmpty = errors.New("remote listing contains no versions")

// Catalog answers which server versions exist on the remote index.
// Every query re-fetches the listing; nothing is cached or persisted.
type Catalog struct {
	fetcher  Fetcher
	indexURL string
}

// New creates a catalog scraping the given index URL through the fetcher.
func New(fetcher Fetcher, indexURL string) *Catalog {
	return &Catalog{
		fetcher:  fetcher,
		indexURL: indexURL,
	}
}

// List returns every version found in the remote listing, ascending.
func (c *Catalog) List(ctx context.Context) ([]semver.Version, error) {
	text, err := c.fetchListing(ctx)
	if err != nil {
		return nil, err
	}

	return semver.Extract(text), nil
}

// Latest returns the highest version in the remote listing.
func (c *Catalog) Latest(ctx context.Context) (semver.Version, error) {
	versions, err := c.List(ctx)
	if err != nil {
		return semver.Version{}, err
	}

	if len(versions) == 0 {
		return semver.Version{}, ErrEmpty
	}

	return versions[len(versions)-1], nil
}

// LatestStable returns the highest stable (even-minor) version in the remote listing.
func (c *Catalog) LatestStable(ctx context.Context) (semver.Version, error) {
	text, err := c.fetchListing(ctx)
	if err != nil {
		return semver.Version{}, err
	}

	versions := semver.ExtractStable(text)
	if len(versions) == 0 {
		return semver.Version{}, ErrEmpty
	}

	return versions[len(versions)-1], nil
}

// Resolve turns a symbolic target ("latest" or "stable") into a concrete
// version via the remote listing. Any other string is parsed as an explicit
// version with no existence check against the catalog: a well-formed but
// unknown version is attempted and fails later at fetch time.
func (c *Catalog) Resolve(ctx context.Context, target string) (semver.Version, error) {
	switch target {
	case TargetLatest:
		v, err := c.Latest(ctx)
		if err != nil {
			return semver.Version{}, fmt.Errorf("resolve %q: %w", target, err)
		}

		logger.InfoKV(ctx, "Resolved symbolic target", "target", target, "version", v.String())

		return v, nil
	case TargetStable:
		v, err := c.LatestStable(ctx)
		if err != nil {
			return semver.Version{}, fmt.Errorf("resolve %q: %w", target, err)
		}

		logger.InfoKV(ctx, "Resolved symbolic target", "target", target, "version", v.String())

		return v, nil
	default:
		return semver.Parse(target)
	}
}

// fetchListing downloads the index page as text.
func (c *Catalog) fetchListing(ctx context.Context) (string, error) {
	body, err := c.fetcher.Fetch(ctx, c.indexURL)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = body.Close()
	}()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", &FetchError{URL: c.indexURL, Err: err}
	}

	return string(data), nil
}
