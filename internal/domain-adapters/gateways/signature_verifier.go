package gateways

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbowen/verify-release/internal/domain/entities"
	"github.com/rbowen/verify-release/internal/domain/interfaces"
	"github.com/rbowen/verify-release/internal/external-adapters/gpg"
)

// Well-known key bundle paths in the working directory
const (
	keysFileName   = "KEYS"
	keysBackupName = "KEYS.bak"
)

// SignatureVerifier checks detached .asc signatures against archives.
// The keyring loads from a KEYS bundle in the working directory; on
// verification failure the project's published bundle is fetched so
// the operator can import it and re-run.
type SignatureVerifier struct {
	fetcher   *Fetcher
	log       interfaces.Logger
	deriveURL func(string) (string, error)
}

// NewSignatureVerifier creates a new signature verifier
func NewSignatureVerifier(fetcher *Fetcher, log interfaces.Logger) *SignatureVerifier {
	return &SignatureVerifier{fetcher: fetcher, log: log, deriveURL: DeriveKeysURL}
}

// VerifySignature verifies <archive>.asc against the archive bytes.
// Returns StatusUnknown when no .asc sidecar exists. A failure fetches
// the project's KEYS bundle (best effort) and still reports failure.
func (s *SignatureVerifier) VerifySignature(ctx context.Context, archivePath, stagingURL string) entities.Status {
	ascPath := archivePath + ".asc"
	if _, err := os.Stat(ascPath); err != nil {
		return entities.StatusUnknown
	}

	workDir := filepath.Dir(archivePath)
	verifier := gpg.NewVerifier()

	keysPath := filepath.Join(workDir, keysFileName)
	if _, err := os.Stat(keysPath); err == nil {
		if err := verifier.ImportKeyFile(keysPath); err != nil {
			s.log.Warn("failed to import local KEYS file", interfaces.F("error", err))
		}
	}

	err := verifier.VerifyDetached(archivePath, ascPath)
	if err == nil {
		return entities.StatusPass
	}

	s.log.Error(fmt.Sprintf("GPG verification failed for %s", filepath.Base(archivePath)),
		interfaces.F("error", err))
	s.fetchKeyBundle(ctx, stagingURL, workDir)
	return entities.StatusFail
}

// DeriveKeysURL maps a dist.apache.org staging URL to the project's
// published KEYS bundle. The project name is the path segment after
// "dev", or the one after "incubator" for incubator projects.
func DeriveKeysURL(stagingURL string) (string, error) {
	parts := strings.Split(stagingURL, "/")

	devIndex := -1
	for i, part := range parts {
		if part == "dev" {
			devIndex = i
			break
		}
	}
	if devIndex < 0 || devIndex+1 >= len(parts) {
		return "", fmt.Errorf("no project segment in staging URL %s", stagingURL)
	}

	if parts[devIndex+1] == "incubator" && devIndex+2 < len(parts) {
		return fmt.Sprintf("https://downloads.apache.org/incubator/%s/KEYS", parts[devIndex+2]), nil
	}
	return fmt.Sprintf("https://downloads.apache.org/%s/KEYS", parts[devIndex+1]), nil
}

// fetchKeyBundle downloads the project's KEYS bundle into workDir for
// manual import. An existing bundle is renamed to KEYS.bak before the
// fetch, never silently overwritten. Best effort: failures are logged
// and do not change the verification outcome.
func (s *SignatureVerifier) fetchKeyBundle(ctx context.Context, stagingURL, workDir string) {
	keysURL, err := s.deriveURL(stagingURL)
	if err != nil {
		s.log.Warn("could not derive KEYS URL", interfaces.F("error", err))
		return
	}

	s.log.Info(fmt.Sprintf("Attempting to download KEYS file from %s", keysURL))

	keysPath := filepath.Join(workDir, keysFileName)
	if _, err := os.Stat(keysPath); err == nil {
		if err := os.Rename(keysPath, filepath.Join(workDir, keysBackupName)); err != nil {
			s.log.Warn("failed to back up existing KEYS file", interfaces.F("error", err))
			return
		}
		s.log.Info("Backed up existing KEYS file to " + keysBackupName)
	}

	if err := s.fetcher.Download(ctx, keysURL, keysPath); err != nil {
		s.log.Warn("could not download KEYS file", interfaces.F("error", err))
		return
	}

	s.log.Info("Downloaded KEYS file; it will be used on the next verification run")
}
