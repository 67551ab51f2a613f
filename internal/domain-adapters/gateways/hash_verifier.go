package gateways

import (
	"context"
	"crypto/sha1" //nolint:gosec // G505: SHA1 sidecars are still published for releases
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rbowen/verify-release/internal/domain/entities"
	"github.com/rbowen/verify-release/internal/domain/interfaces"
)

var hexRun = regexp.MustCompile(`[0-9a-fA-F]+`)

// digestSuffix matches the remainder of a sidecar name after the
// archive name: exactly ".sha" followed by digits. A further suffix
// (a signed x.tgz.sha512.asc) makes the file something else entirely.
var digestSuffix = regexp.MustCompile(`^\.sha\d+$`)

// digestAlgorithm pairs a hash constructor with its hex digest length
type digestAlgorithm struct {
	name    string
	hexLen  int
	newHash func() hash.Hash
}

// algorithmForSuffix resolves the numeric part of a .sha<N> sidecar
// suffix. "1" means SHA-1 (160 bits); any other suffix names the
// digest bit length.
func algorithmForSuffix(suffix string) (digestAlgorithm, error) {
	switch suffix {
	case "1":
		return digestAlgorithm{"SHA1", 40, sha1.New}, nil
	case "224":
		return digestAlgorithm{"SHA224", 56, sha256.New224}, nil
	case "256":
		return digestAlgorithm{"SHA256", 64, sha256.New}, nil
	case "384":
		return digestAlgorithm{"SHA384", 96, sha512.New384}, nil
	case "512":
		return digestAlgorithm{"SHA512", 128, sha512.New}, nil
	default:
		return digestAlgorithm{}, fmt.Errorf("unsupported digest algorithm sha%s", suffix)
	}
}

// HashVerifier verifies archives against their digest sidecar files
// using in-process digests, no external checksum binaries needed.
type HashVerifier struct {
	log interfaces.Logger
}

// NewHashVerifier creates a new hash verifier
func NewHashVerifier(log interfaces.Logger) *HashVerifier {
	return &HashVerifier{log: log}
}

// VerifyHashes checks every <archive>.sha<N> sidecar present next to
// the archive. Files carrying anything beyond the .sha<N> suffix are
// not digest sidecars and are skipped. Each sidecar yields one record;
// a failure verifying one algorithm never blocks the others.
func (v *HashVerifier) VerifyHashes(_ context.Context, archivePath string) []entities.DigestRecord {
	dir := filepath.Dir(archivePath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	base := filepath.Base(archivePath)
	var records []entities.DigestRecord
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, base) || !digestSuffix.MatchString(name[len(base):]) {
			continue
		}
		suffix := strings.TrimPrefix(name[len(base):], ".sha")
		records = append(records, v.verifySidecar(archivePath, filepath.Join(dir, name), suffix))
	}
	return records
}

func (v *HashVerifier) verifySidecar(archivePath, sidecarPath, suffix string) entities.DigestRecord {
	record := entities.DigestRecord{Algorithm: "SHA" + suffix}

	algo, err := algorithmForSuffix(suffix)
	if err != nil {
		v.log.Warn(err.Error(), interfaces.F("sidecar", filepath.Base(sidecarPath)))
		return record
	}
	record.Algorithm = algo.name

	actual, err := digestFile(archivePath, algo.newHash())
	if err != nil {
		v.log.Warn("failed to digest archive", interfaces.F("error", err))
		return record
	}
	record.Actual = actual

	expected, err := readExpectedDigest(sidecarPath, algo.hexLen)
	if err != nil {
		v.log.Warn("failed to read digest sidecar", interfaces.F("error", err))
		return record
	}
	record.Expected = expected

	if actual == expected {
		record.Matched = true
	} else {
		record.Diff = diffPositions(expected, actual)
	}
	return record
}

// digestFile computes the hex digest of a file's bytes
func digestFile(path string, h hash.Hash) (string, error) {
	//nolint:gosec // G304: path is the archive under verification
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// readExpectedDigest extracts the expected digest from a sidecar
// file. Content after the first colon is the hash payload (supports
// "filename: hash" conventions); the first run of at least hexLen hex
// characters, truncated to hexLen, is the digest.
func readExpectedDigest(sidecarPath string, hexLen int) (string, error) {
	//nolint:gosec // G304: sidecarPath was discovered next to the archive
	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		return "", fmt.Errorf("failed to read sidecar: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if i := strings.Index(content, ":"); i >= 0 {
		content = content[i+1:]
	}

	for _, run := range hexRun.FindAllString(content, -1) {
		if len(run) >= hexLen {
			return strings.ToLower(run[:hexLen]), nil
		}
	}
	return "", fmt.Errorf("no %d-character hex digest in %s", hexLen, filepath.Base(sidecarPath))
}

// diffPositions returns the character positions where a and b differ,
// including positions past the end of the shorter string.
func diffPositions(a, b string) []int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var positions []int
	for i := 0; i < n; i++ {
		if i >= len(a) || i >= len(b) || a[i] != b[i] {
			positions = append(positions, i)
		}
	}
	return positions
}
