// Package services holds the verification pipeline's domain logic:
// orchestration, reporting and vote-thread analysis.
package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbowen/verify-release/internal/domain/entities"
	"github.com/rbowen/verify-release/internal/domain/interfaces"
	"github.com/rbowen/verify-release/internal/domain/interfaces/gateways"
)

// VerificationService runs the full release-candidate pipeline:
// list, download, then digest / signature / compliance checks per
// archive in listing order.
//
// The service assumes exclusive ownership of its working directory
// for the duration of a run; two simultaneous invocations against the
// same directory will clobber each other's downloads.
type VerificationService struct {
	fetcher    gateways.Fetcher
	hashes     gateways.HashVerifier
	signatures gateways.SignatureVerifier
	inspector  gateways.ArchiveInspector
	log        interfaces.Logger
	workDir    string
}

// NewVerificationService wires the pipeline's gateways
func NewVerificationService(
	fetcher gateways.Fetcher,
	hashes gateways.HashVerifier,
	signatures gateways.SignatureVerifier,
	inspector gateways.ArchiveInspector,
	log interfaces.Logger,
	workDir string,
) *VerificationService {
	return &VerificationService{
		fetcher:    fetcher,
		hashes:     hashes,
		signatures: signatures,
		inspector:  inspector,
		log:        log,
		workDir:    workDir,
	}
}

// Run verifies every archive staged at stagingURL and returns one
// record per archive in discovery order. Listing failure or an empty
// listing is fatal; every per-archive failure is isolated and only
// degrades that archive's record.
func (s *VerificationService) Run(ctx context.Context, stagingURL string) (*entities.Report, error) {
	stagingURL = strings.TrimSuffix(stagingURL, "/")

	artifacts, err := s.fetcher.ListArtifacts(ctx, stagingURL)
	if err != nil {
		return nil, fmt.Errorf("error fetching URL: %w", err)
	}
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("no files found at %s", stagingURL)
	}

	// Download everything first; archives with failed downloads are
	// simply excluded from verification
	for i := range artifacts {
		dest := filepath.Join(s.workDir, artifacts[i].Filename)
		if err := s.fetcher.Download(ctx, artifacts[i].SourceURL, dest); err != nil {
			s.log.Warn(fmt.Sprintf("error downloading %s", artifacts[i].Filename),
				interfaces.F("error", err))
			continue
		}
		artifacts[i].LocalPath = dest
	}

	report := &entities.Report{}
	for _, artifact := range artifacts {
		if !artifact.IsArchive() {
			continue
		}
		// Cooperative cancellation between archives
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if artifact.LocalPath == "" {
			continue
		}
		if _, err := os.Stat(artifact.LocalPath); err != nil {
			continue
		}
		report.Records = append(report.Records, s.verifyArchive(ctx, artifact, stagingURL))
	}
	return report, nil
}

// verifyArchive runs the three independent checks for one archive and
// merges their results into a single record.
func (s *VerificationService) verifyArchive(ctx context.Context, artifact entities.Artifact, stagingURL string) entities.VerificationRecord {
	record := entities.VerificationRecord{Archive: artifact}

	record.Digests = s.hashes.VerifyHashes(ctx, artifact.LocalPath)
	record.Signature = s.signatures.VerifySignature(ctx, artifact.LocalPath, stagingURL)

	s.log.Info(fmt.Sprintf("Extracting %s...", artifact.Filename))
	license, err := s.inspector.Inspect(ctx, artifact.LocalPath, s.workDir)
	if err != nil {
		// Compliance findings stay unknown for this archive
		s.log.Error(fmt.Sprintf("error extracting %s", artifact.Filename), interfaces.F("error", err))
	} else {
		record.License = license
	}

	return record
}
