package gateways

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbowen/verify-release/internal/domain/interfaces"
)

// Files a verification run can leave behind besides archives and
// their sidecars.
var incidentalFiles = []string{"index.html", "robots.txt", keysFileName, keysBackupName}

func isArchiveFile(name string) bool {
	return strings.HasSuffix(name, ".tgz") || strings.HasSuffix(name, ".tar.gz")
}

// isRunResidue reports whether a file name looks like a downloaded
// archive or sidecar from a verification run.
func isRunResidue(name string) bool {
	return isArchiveFile(name) ||
		strings.HasSuffix(name, ".asc") ||
		strings.Contains(name, ".sha")
}

// Cleaner removes everything a verification run can create from a
// working directory.
type Cleaner struct {
	log interfaces.Logger
}

// NewCleaner creates a new cleaner
func NewCleaner(log interfaces.Logger) *Cleaner {
	return &Cleaner{log: log}
}

// Cleanup removes extracted directories, archives, digest and
// signature sidecars, and incidental files from dir. Extracted
// directory names are recovered by re-opening each archive's member
// list. Safe to call on an already-clean directory.
func (c *Cleaner) Cleanup(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	var removed []string

	// Recover the extracted directory names from the archives that
	// are still present
	extractedDirs := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !isArchiveFile(entry.Name()) {
			continue
		}
		for _, top := range archiveTopDirs(filepath.Join(dir, entry.Name())) {
			extractedDirs[top] = true
		}
	}

	for name := range extractedDirs {
		target := filepath.Join(dir, name)
		info, err := os.Stat(target)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := os.RemoveAll(target); err != nil {
			c.log.Warn("failed to remove directory", interfaces.F("dir", name), interfaces.F("error", err))
			continue
		}
		removed = append(removed, name+"/")
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isRunResidue(name) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			c.log.Warn("failed to remove file", interfaces.F("file", name), interfaces.F("error", err))
			continue
		}
		removed = append(removed, name)
	}

	for _, name := range incidentalFiles {
		target := filepath.Join(dir, name)
		if _, err := os.Stat(target); err != nil {
			continue
		}
		if err := os.Remove(target); err != nil {
			c.log.Warn("failed to remove file", interfaces.F("file", name), interfaces.F("error", err))
			continue
		}
		removed = append(removed, name)
	}

	return removed, nil
}

// archiveTopDirs lists the top-level path segments of an archive's
// members. Corrupt archives yield nothing; their top directory cannot
// be recovered, and cleanup of the rest proceeds.
func archiveTopDirs(archivePath string) []string {
	//nolint:gosec // G304: archivePath was matched in the working directory
	file, err := os.Open(archivePath)
	if err != nil {
		return nil
	}
	//nolint:errcheck // Defer close on read-only file
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return nil
	}
	//nolint:errcheck // Defer close on gzip reader
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	seen := make(map[string]bool)
	var tops []string
	for {
		header, err := tr.Next()
		if err == io.EOF || err != nil {
			break
		}
		top := firstSegment(header.Name)
		if top != "" && !seen[top] {
			seen[top] = true
			tops = append(tops, top)
		}
	}
	return tops
}
