package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/rbowen/verify-release/internal/domain/entities"
)

// Marks are rendered per call so color.NoColor is honored at output
// time, not at package init.
func passMark() string { return color.GreenString("✓") }
func failMark() string { return color.RedString("✗") }
func warnMark() string { return color.YellowString("⚠") }

// ReportService renders a verification report and, when at least one
// archive is fully verified, a copy-paste vote response.
type ReportService struct {
	out io.Writer
}

// NewReportService creates a report renderer writing to out
func NewReportService(out io.Writer) *ReportService {
	return &ReportService{out: out}
}

// Render writes the per-file report followed by the vote response
func (r *ReportService) Render(report *entities.Report) {
	fmt.Fprintln(r.out, "\n=== VERIFICATION REPORT ===")

	for i := range report.Records {
		r.renderRecord(&report.Records[i])
	}

	if verified := report.Verified(); len(verified) > 0 {
		r.renderVoteResponse(verified)
	}
}

func (r *ReportService) renderRecord(record *entities.VerificationRecord) {
	fmt.Fprintf(r.out, "\nFile: %s\n", record.Archive.Filename)

	if len(record.Digests) > 0 {
		for _, d := range record.Digests {
			fmt.Fprintf(r.out, "  %s: %s\n", d.Algorithm, boolMark(d.Matched))
			if !d.Matched && d.Expected != "" && d.Actual != "" {
				fmt.Fprintf(r.out, "    Expected: %s\n", highlightPositions(d.Expected, d.Diff))
				fmt.Fprintf(r.out, "    Actual:   %s\n", highlightPositions(d.Actual, d.Diff))
			}
		}
	} else {
		fmt.Fprintln(r.out, "  Hashes: N/A")
	}

	fmt.Fprintf(r.out, "  GPG:     %s\n", statusMark(record.Signature))
	fmt.Fprintf(r.out, "  LICENSE: %s\n", statusMark(record.License.License))
	fmt.Fprintf(r.out, "  NOTICE:  %s\n", statusMark(record.License.Notice))
	if record.License.Notice == entities.StatusPass {
		// Stale copyright year is a warning, not a failure
		mark := passMark()
		if record.License.NoticeCurrentYear != entities.StatusPass {
			mark = warnMark()
		}
		fmt.Fprintf(r.out, "  Current Year: %s\n", mark)
	}
}

func (r *ReportService) renderVoteResponse(verified []entities.VerificationRecord) {
	fmt.Fprintln(r.out, "\n=== COPY-PASTE VOTE RESPONSE ===")
	fmt.Fprintln(r.out, "+1 (non-binding)")
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "* Verified signatures and hashes on the following files as per https://apache.org/info/verification.html")

	for _, record := range verified {
		var checks []string
		for _, d := range record.Digests {
			checks = append(checks, d.Algorithm)
		}
		checks = append(checks, "GPG signature")
		fmt.Fprintf(r.out, "  - %s (%s)\n", record.Archive.Filename, strings.Join(checks, ", "))
	}

	fmt.Fprintln(r.out, "* Verified LICENSE and NOTICE files")
}

func boolMark(ok bool) string {
	if ok {
		return passMark()
	}
	return failMark()
}

func statusMark(s entities.Status) string {
	switch s {
	case entities.StatusPass:
		return passMark()
	case entities.StatusFail:
		return failMark()
	default:
		return "N/A"
	}
}

// highlightPositions colors the characters of text at the given
// positions. The positions come precomputed from the digest
// comparison; this function only decides how they look.
func highlightPositions(text string, positions []int) string {
	if len(positions) == 0 {
		return text
	}
	flagged := make(map[int]bool, len(positions))
	for _, p := range positions {
		flagged[p] = true
	}
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		if flagged[i] {
			b.WriteString(color.RedString("%c", text[i]))
		} else {
			b.WriteByte(text[i])
		}
	}
	return b.String()
}
