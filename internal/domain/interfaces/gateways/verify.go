// Package gateways defines the contracts the verification pipeline
// depends on. Implementations live in internal/domain-adapters.
package gateways

import (
	"context"

	"github.com/rbowen/verify-release/internal/domain/entities"
)

// Fetcher retrieves staged release files over HTTP
type Fetcher interface {
	// ListArtifacts parses the staging directory listing and returns
	// the archive and sidecar files it links to, in listing order.
	ListArtifacts(ctx context.Context, stagingURL string) ([]entities.Artifact, error)

	// Download fetches url into destPath. If destPath already exists
	// the download is skipped and the local file is authoritative.
	Download(ctx context.Context, url, destPath string) error
}

// HashVerifier checks an archive against its digest sidecar files
type HashVerifier interface {
	// VerifyHashes discovers every <archive>.sha<N> sidecar and
	// returns one record per sidecar. An archive with no sidecars
	// yields an empty slice.
	VerifyHashes(ctx context.Context, archivePath string) []entities.DigestRecord
}

// SignatureVerifier checks an archive's detached signature
type SignatureVerifier interface {
	// VerifySignature returns StatusUnknown when no .asc sidecar
	// exists, otherwise the verification outcome. The staging URL is
	// used to derive the project's KEYS bundle on failure.
	VerifySignature(ctx context.Context, archivePath, stagingURL string) entities.Status
}

// ArchiveInspector extracts an archive and checks release hygiene
type ArchiveInspector interface {
	// Inspect extracts archivePath into workDir and checks for
	// license and notice declarations. A non-nil error means the
	// archive could not be inspected and all findings are unknown.
	Inspect(ctx context.Context, archivePath, workDir string) (entities.LicenseCheck, error)
}

// Cleaner restores a working directory to its pre-run state
type Cleaner interface {
	// Cleanup removes archives, sidecars, extracted directories and
	// incidental files from dir, returning what was removed. Safe to
	// call on an already-clean directory.
	Cleanup(dir string) ([]string, error)
}

// MailingList fetches mailing-list archives for the vote finder
type MailingList interface {
	// FetchMbox returns the raw mbox content for a project's dev list
	// for the given YYYY-MM month.
	FetchMbox(ctx context.Context, project, month string) (string, error)
}
