package gateways

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rbowen/verify-release/internal/domain/entities"
	"github.com/rbowen/verify-release/internal/domain/interfaces"
)

// complianceDocs maps each required document to its accepted on-disk
// spellings, checked in order. New spellings go here, not in code.
var complianceDocs = map[string][]string{
	"LICENSE": {"LICENSE", "LICENSE.txt"},
	"NOTICE":  {"NOTICE", "NOTICE.txt"},
}

// ArchiveInspector extracts release archives and checks license and
// notice hygiene.
type ArchiveInspector struct {
	log interfaces.Logger
	now func() time.Time
}

// NewArchiveInspector creates a new archive inspector
func NewArchiveInspector(log interfaces.Logger) *ArchiveInspector {
	return &ArchiveInspector{log: log, now: time.Now}
}

// Inspect extracts archivePath into workDir and checks the extracted
// top-level directory for LICENSE and NOTICE declarations. On
// extraction failure all findings are unknown and the error is
// returned.
func (a *ArchiveInspector) Inspect(_ context.Context, archivePath, workDir string) (entities.LicenseCheck, error) {
	topDir, err := a.extract(archivePath, workDir)
	if err != nil {
		return entities.LicenseCheck{}, err
	}
	if topDir == "" {
		// Archive had no members; nothing to check
		return entities.LicenseCheck{}, nil
	}

	check := entities.LicenseCheck{License: entities.StatusFail, Notice: entities.StatusFail}
	root := filepath.Join(workDir, topDir)

	// A license declaration counts regardless of size
	for _, name := range complianceDocs["LICENSE"] {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			check.License = entities.StatusPass
			break
		}
	}

	// A notice declaration must be non-empty to count
	var noticePath string
	for _, name := range complianceDocs["NOTICE"] {
		info, err := os.Stat(filepath.Join(root, name))
		if err == nil && info.Size() > 0 {
			noticePath = filepath.Join(root, name)
			check.Notice = entities.StatusPass
			break
		}
	}

	if noticePath != "" {
		check.NoticeCurrentYear = a.checkNoticeYear(noticePath)
	}
	return check, nil
}

// checkNoticeYear reports whether the notice text mentions the current
// calendar year. Unreadable content counts as year-not-present.
func (a *ArchiveInspector) checkNoticeYear(noticePath string) entities.Status {
	//nolint:gosec // G304: noticePath comes from the extracted archive
	content, err := os.ReadFile(noticePath)
	if err != nil {
		return entities.StatusFail
	}
	year := strconv.Itoa(a.now().Year())
	if strings.Contains(string(content), year) {
		return entities.StatusPass
	}
	return entities.StatusFail
}

// extract unpacks a .tgz / .tar.gz archive into destDir and returns
// the first member's top-level path segment, or "" for an empty
// archive. Members whose path would escape destDir are rejected.
func (a *ArchiveInspector) extract(archivePath, destDir string) (string, error) {
	//nolint:gosec // G304: archivePath is the archive under verification
	file, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to create gzip reader: %w", err)
	}
	//nolint:errcheck // Defer close on gzip reader
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	cleanDest := filepath.Clean(destDir)
	topDir := ""

	// Collect symlinks for a second pass so targets exist first
	type symlinkInfo struct {
		name     string
		target   string
		linkname string
	}
	var symlinks []symlinkInfo

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("tar read error: %w", err)
		}

		if topDir == "" {
			topDir = firstSegment(header.Name)
		}

		//nolint:gosec // G305: Path traversal rejected by containment check below
		target := filepath.Join(cleanDest, header.Name)
		if target != cleanDest && !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
			return "", fmt.Errorf("invalid file path in archive: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0750); err != nil {
				return "", fmt.Errorf("failed to create directory: %w", err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
				return "", fmt.Errorf("failed to create parent directory: %w", err)
			}

			//nolint:gosec // G115: Mode comes from the tar header
			outFile, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_RDWR, os.FileMode(header.Mode))
			if err != nil {
				return "", fmt.Errorf("failed to create file: %w", err)
			}

			// Size cap guards against decompression bombs
			if _, err := io.Copy(outFile, io.LimitReader(tr, 1<<30)); err != nil {
				_ = outFile.Close()
				return "", fmt.Errorf("failed to write file: %w", err)
			}
			if err := outFile.Close(); err != nil {
				return "", fmt.Errorf("failed to close file: %w", err)
			}

		case tar.TypeSymlink:
			symlinks = append(symlinks, symlinkInfo{name: header.Name, target: target, linkname: header.Linkname})

		default:
			a.log.Warn(fmt.Sprintf("ignoring unsupported file type %c: %s", header.Typeflag, header.Name))
		}
	}

	for _, link := range symlinks {
		// Link targets obey the same containment rule as member paths
		resolved := link.linkname
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(filepath.Dir(link.target), link.linkname)
		}
		resolved = filepath.Clean(resolved)
		if resolved != cleanDest && !strings.HasPrefix(resolved, cleanDest+string(os.PathSeparator)) {
			return "", fmt.Errorf("invalid symlink target in archive: %s -> %s", link.name, link.linkname)
		}
		if err := os.MkdirAll(filepath.Dir(link.target), 0750); err != nil {
			return "", fmt.Errorf("failed to create directory for symlink: %w", err)
		}
		if err := os.Symlink(link.linkname, link.target); err != nil {
			// Some tarballs carry broken symlinks
			a.log.Warn(fmt.Sprintf("failed to create symlink %s -> %s: %v", link.target, link.linkname, err))
		}
	}

	return topDir, nil
}

// firstSegment returns the leading path segment of a tar member name
func firstSegment(name string) string {
	name = strings.TrimPrefix(name, "./")
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[:i]
	}
	return name
}
