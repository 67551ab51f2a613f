package entities

// Status is a tri-state check outcome. The zero value means the check
// could not be performed (no signature sidecar, unreadable archive) and
// must never count toward verification.
type Status int

// Check outcomes
const (
	StatusUnknown Status = iota
	StatusPass
	StatusFail
)

// DigestRecord holds the result of checking one digest sidecar file
// against an archive.
type DigestRecord struct {
	Algorithm string // display name, e.g. "SHA512"
	Expected  string // lower-case hex from the sidecar, truncated to the algorithm's length
	Actual    string // lower-case hex computed from the archive bytes
	Matched   bool
	// Diff lists the character positions where Expected and Actual
	// differ. Presentation only; empty when Matched.
	Diff []int
}

// LicenseCheck holds the compliance findings for an extracted archive.
// NoticeCurrentYear is StatusUnknown when no notice file exists.
type LicenseCheck struct {
	License           Status
	Notice            Status
	NoticeCurrentYear Status
}

// VerificationRecord aggregates every check performed on one archive
type VerificationRecord struct {
	Archive   Artifact
	Digests   []DigestRecord
	Signature Status
	License   LicenseCheck
}

// Verified reports whether the archive passed full verification: at
// least one digest sidecar, every digest matched, and the detached
// signature verified. A missing signature (StatusUnknown) never counts.
func (r *VerificationRecord) Verified() bool {
	if len(r.Digests) == 0 || r.Signature != StatusPass {
		return false
	}
	for _, d := range r.Digests {
		if !d.Matched {
			return false
		}
	}
	return true
}

// Report is the ordered outcome of a verification run. Records appear
// in directory-listing discovery order.
type Report struct {
	Records []VerificationRecord
}

// Verified returns the subsequence of fully verified records, in
// report order.
func (r *Report) Verified() []VerificationRecord {
	var out []VerificationRecord
	for _, rec := range r.Records {
		if rec.Verified() {
			out = append(out, rec)
		}
	}
	return out
}
