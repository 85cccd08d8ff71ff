package installer

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxArchiveFiles caps extraction to guard against archive bombs.
const maxArchiveFiles = 1_000_000

// errTooManyFiles is returned when extraction hits the file-count cap.
var errTooManyFiles = errors.New("archive contains too many files")

// extractTarGz streams a gzipped tarball into destPath. The stream is never
// buffered whole; source archives can run to hundreds of megabytes.
func extractTarGz(r io.Reader, destPath string) error {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}

	defer func() {
		_ = gr.Close()
	}()

	tr := tar.NewReader(gr)
	fileCount := 0

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		fileCount++
		if fileCount > maxArchiveFiles {
			return fmt.Errorf("%w (limit: %d)", errTooManyFiles, maxArchiveFiles)
		}

		// targetPath is validated below before any filesystem operations.
		targetPath := filepath.Join(destPath, header.Name) //nolint:gosec // G305: validated below

		// Reject entries that escape destPath.
		relToDest, err := filepath.Rel(destPath, targetPath)
		if err != nil || strings.HasPrefix(relToDest, "..") {
			return fmt.Errorf("invalid path in archive: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err = os.MkdirAll(targetPath, os.FileMode(header.Mode).Perm()); err != nil {
				return fmt.Errorf("create directory %s: %w", header.Name, err)
			}
		case tar.TypeReg:
			if err = writeArchiveFile(tr, targetPath, os.FileMode(header.Mode).Perm()); err != nil {
				return fmt.Errorf("extract %s: %w", header.Name, err)
			}
		case tar.TypeSymlink:
			if err = os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
				return fmt.Errorf("create directory for %s: %w", header.Name, err)
			}

			if err = os.Symlink(header.Linkname, targetPath); err != nil {
				return fmt.Errorf("create symlink %s: %w", header.Name, err)
			}
		default:
			// Hard links, devices and the like do not occur in source tarballs.
			continue
		}
	}

	return nil
}

// writeArchiveFile writes one regular file from the tar stream.
func writeArchiveFile(tr *tar.Reader, targetPath string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return err
	}

	out, err := os.OpenFile(filepath.Clean(targetPath), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, tr); err != nil { //nolint:gosec // G110: capped by maxArchiveFiles and disk space
		_ = out.Close()

		return err
	}

	return out.Close()
}
