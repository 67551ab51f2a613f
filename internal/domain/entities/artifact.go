// Package entities defines core domain models and data structures.
package entities

import "regexp"

// ArtifactKind classifies a file discovered in a staging directory listing.
type ArtifactKind string

// Artifact kinds recognized in a staging area
const (
	KindArchive          ArtifactKind = "archive"
	KindDigestSidecar    ArtifactKind = "digest"
	KindSignatureSidecar ArtifactKind = "signature"
	KindUnknown          ArtifactKind = "unknown"
)

// Artifact represents one file published in the staging area
type Artifact struct {
	Filename  string
	SourceURL string
	LocalPath string
	Kind      ArtifactKind
}

var (
	archiveName = regexp.MustCompile(`\.(tgz|tar\.gz)$`)
	digestName  = regexp.MustCompile(`\.sha\d+$`)
	sigName     = regexp.MustCompile(`\.asc$`)
)

// KindOf classifies a filename by its extension
func KindOf(filename string) ArtifactKind {
	switch {
	case archiveName.MatchString(filename):
		return KindArchive
	case digestName.MatchString(filename):
		return KindDigestSidecar
	case sigName.MatchString(filename):
		return KindSignatureSidecar
	default:
		return KindUnknown
	}
}

// IsArchive reports whether the artifact is a release archive
func (a *Artifact) IsArchive() bool {
	return a.Kind == KindArchive
}
