package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/rbowen/verify-release/internal/domain/entities"
)

func renderToString(t *testing.T, report *entities.Report) string {
	t.Helper()
	// Disable ANSI sequences so assertions can match plain text
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	NewReportService(&buf).Render(report)
	return buf.String()
}

func fullyVerifiedRecord(filename string) entities.VerificationRecord {
	return entities.VerificationRecord{
		Archive: entities.Artifact{Filename: filename, Kind: entities.KindArchive},
		Digests: []entities.DigestRecord{
			{Algorithm: "SHA512", Matched: true},
		},
		Signature: entities.StatusPass,
		License: entities.LicenseCheck{
			License:           entities.StatusPass,
			Notice:            entities.StatusPass,
			NoticeCurrentYear: entities.StatusPass,
		},
	}
}

func TestRender_FullyVerified(t *testing.T) {
	report := &entities.Report{Records: []entities.VerificationRecord{
		fullyVerifiedRecord("apache-foo-1.0.tgz"),
	}}

	out := renderToString(t, report)

	for _, want := range []string{
		"=== VERIFICATION REPORT ===",
		"File: apache-foo-1.0.tgz",
		"SHA512: ✓",
		"GPG:     ✓",
		"LICENSE: ✓",
		"NOTICE:  ✓",
		"Current Year: ✓",
		"=== COPY-PASTE VOTE RESPONSE ===",
		"+1 (non-binding)",
		"- apache-foo-1.0.tgz (SHA512, GPG signature)",
		"* Verified LICENSE and NOTICE files",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
}

func TestRender_DigestMismatchExcludesFromVote(t *testing.T) {
	record := fullyVerifiedRecord("apache-foo-1.0.tgz")
	record.Digests = append(record.Digests, entities.DigestRecord{
		Algorithm: "SHA256",
		Expected:  "aaaa",
		Actual:    "aabb",
		Matched:   false,
		Diff:      []int{2, 3},
	})

	out := renderToString(t, &entities.Report{Records: []entities.VerificationRecord{record}})

	if !strings.Contains(out, "SHA256: ✗") {
		t.Errorf("mismatched digest not marked failed:\n%s", out)
	}
	if !strings.Contains(out, "Expected: aaaa") || !strings.Contains(out, "Actual:   aabb") {
		t.Errorf("mismatch detail lines missing:\n%s", out)
	}
	// One failing digest excludes the archive even though the
	// signature passed
	if strings.Contains(out, "COPY-PASTE VOTE RESPONSE") {
		t.Errorf("vote response rendered for an unverified archive:\n%s", out)
	}
}

func TestRender_NoDigestSidecars(t *testing.T) {
	record := fullyVerifiedRecord("apache-foo-1.0.tgz")
	record.Digests = nil

	out := renderToString(t, &entities.Report{Records: []entities.VerificationRecord{record}})

	if !strings.Contains(out, "Hashes: N/A") {
		t.Errorf("missing hashes N/A mark:\n%s", out)
	}
	if strings.Contains(out, "COPY-PASTE VOTE RESPONSE") {
		t.Errorf("an archive without digest sidecars must never be verified:\n%s", out)
	}
}

func TestRender_MissingSignatureIsNotAvailable(t *testing.T) {
	record := fullyVerifiedRecord("apache-foo-1.0.tgz")
	record.Signature = entities.StatusUnknown

	out := renderToString(t, &entities.Report{Records: []entities.VerificationRecord{record}})

	if !strings.Contains(out, "GPG:     N/A") {
		t.Errorf("missing signature should render N/A:\n%s", out)
	}
	if strings.Contains(out, "COPY-PASTE VOTE RESPONSE") {
		t.Errorf("N/A signature must exclude the archive from the vote response:\n%s", out)
	}
}

func TestRender_StaleNoticeYearIsWarning(t *testing.T) {
	record := fullyVerifiedRecord("apache-foo-1.0.tgz")
	record.License.NoticeCurrentYear = entities.StatusFail

	out := renderToString(t, &entities.Report{Records: []entities.VerificationRecord{record}})

	if !strings.Contains(out, "Current Year: ⚠") {
		t.Errorf("stale notice year should render a warning mark:\n%s", out)
	}
	// A warning never blocks the vote response
	if !strings.Contains(out, "COPY-PASTE VOTE RESPONSE") {
		t.Errorf("stale year must not exclude the archive:\n%s", out)
	}
}

func TestRender_NoYearLineWithoutNotice(t *testing.T) {
	record := fullyVerifiedRecord("apache-foo-1.0.tgz")
	record.License.Notice = entities.StatusFail
	record.License.NoticeCurrentYear = entities.StatusUnknown

	out := renderToString(t, &entities.Report{Records: []entities.VerificationRecord{record}})

	if strings.Contains(out, "Current Year:") {
		t.Errorf("year line rendered without a notice:\n%s", out)
	}
}

func TestRender_MultipleRecordsKeepListingOrder(t *testing.T) {
	report := &entities.Report{Records: []entities.VerificationRecord{
		fullyVerifiedRecord("apache-foo-1.0.tgz"),
		fullyVerifiedRecord("apache-foo-1.0-src.tar.gz"),
	}}

	out := renderToString(t, report)
	first := strings.Index(out, "File: apache-foo-1.0.tgz")
	second := strings.Index(out, "File: apache-foo-1.0-src.tar.gz")
	if first < 0 || second < 0 || second < first {
		t.Errorf("records out of order:\n%s", out)
	}
}

func TestHighlightPositions_PlainWhenNoDiff(t *testing.T) {
	if got := highlightPositions("abcd", nil); got != "abcd" {
		t.Errorf("highlightPositions() = %q, want unchanged text", got)
	}
}
