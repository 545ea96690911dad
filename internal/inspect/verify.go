package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"coffre/internal/format"
	"coffre/internal/security"
)

// Severity grades a verification issue.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityWarning:  1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Issue is one finding from archive verification.
type Issue struct {
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Path     string   `json:"path,omitempty"`
	Message  string   `json:"message"`
	Context  string   `json:"context,omitempty"`
}

// CheckStatus is the outcome of one verification dimension.
type CheckStatus string

const (
	CheckPass CheckStatus = "pass"
	CheckFail CheckStatus = "fail"
)

// VerificationReport is the result of verifying an archive without
// extracting it.
type VerificationReport struct {
	Status            CheckStatus `json:"status"`
	IntegrityStatus   CheckStatus `json:"integrity_status"`
	SecurityStatus    CheckStatus `json:"security_status"`
	Issues            []Issue     `json:"issues"`
	TotalEntries      int         `json:"total_entries"`
	SuspiciousEntries int         `json:"suspicious_entries"`
	TotalSize         uint64      `json:"total_size"`
	Format            string      `json:"format"`
}

// IsSafe reports whether no issue reached High severity.
func (r *VerificationReport) IsSafe() bool {
	for _, issue := range r.Issues {
		if severityRank[issue.Severity] >= severityRank[SeverityHigh] {
			return false
		}
	}
	return true
}

// Verify runs every entry through the same validation checks extraction
// uses, purely textually, and collects the findings instead of aborting on
// the first one. Policy findings land in the report; only unreadable
// archives error.
func Verify(ctx context.Context, archivePath string, cfg *security.Config) (*VerificationReport, error) {
	if cfg == nil {
		cfg = security.DefaultConfig()
	}

	report := &VerificationReport{
		Status:          CheckPass,
		IntegrityStatus: CheckPass,
		SecurityStatus:  CheckPass,
	}

	reader, typ, err := format.Open(archivePath, cfg)
	if err != nil {
		var violation *security.SecurityViolationError
		var invalid *security.InvalidArchiveError
		switch {
		case errors.As(err, &violation):
			report.Format = "7z"
			report.Issues = append(report.Issues, Issue{
				Severity: SeverityCritical,
				Category: "policy",
				Message:  violation.Error(),
			})
			finalize(report)
			return report, nil
		case errors.As(err, &invalid):
			report.Issues = append(report.Issues, Issue{
				Severity: SeverityCritical,
				Category: "integrity",
				Message:  invalid.Error(),
			})
			report.IntegrityStatus = CheckFail
			finalize(report)
			return report, nil
		default:
			return nil, err
		}
	}
	defer reader.Close()
	report.Format = typ.String()

	quota := security.NewAccountant(cfg)
	seenFiles := make(map[string]struct{})

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.Issues = append(report.Issues, Issue{
				Severity: SeverityCritical,
				Category: "integrity",
				Message:  err.Error(),
			})
			report.IntegrityStatus = CheckFail
			break
		}

		report.TotalEntries++
		if raw.Kind == security.KindFile {
			report.TotalSize += raw.Size
		}

		issues := verifyEntry(raw, cfg, quota, seenFiles)
		if len(issues) > 0 {
			report.SuspiciousEntries++
			report.Issues = append(report.Issues, issues...)
		}
	}

	finalize(report)
	return report, nil
}

// verifyEntry runs the textual validation chain for one entry, mapping each
// typed error onto a severity instead of aborting.
func verifyEntry(raw *format.RawEntry, cfg *security.Config, quota *security.Accountant, seenFiles map[string]struct{}) []Issue {
	var issues []Issue

	if raw.Kind == security.KindUnsupported {
		return []Issue{{
			Severity: SeverityWarning,
			Category: "entry-type",
			Path:     raw.Path,
			Message:  "unsupported entry type is skipped during extraction",
		}}
	}

	rel, err := security.NormalizePath(raw.Path, raw.Kind, cfg)
	if err != nil {
		return []Issue{issueFromError(raw.Path, err)}
	}

	switch raw.Kind {
	case security.KindFile:
		if err := quota.AdmitFile(raw.Size); err != nil {
			issues = append(issues, issueFromError(raw.Path, err))
		} else {
			quota.CommitFile(raw.Size)
		}
		if raw.HasCompressedSize {
			if err := security.CheckCompressionRatio(raw.CompressedSize, raw.Size, cfg); err != nil {
				issues = append(issues, issueFromError(raw.Path, err))
			} else if raw.CompressedSize > 0 {
				// Legal but unusually high ratios are worth a look.
				ratio := float64(raw.Size) / float64(raw.CompressedSize)
				if ratio > cfg.MaxCompressionRatio/2 {
					issues = append(issues, Issue{
						Severity: SeverityWarning,
						Category: "compression",
						Path:     raw.Path,
						Message:  fmt.Sprintf("compression ratio %.1f approaches the limit of %.1f", ratio, cfg.MaxCompressionRatio),
					})
				}
			}
		}
		if raw.HasMode {
			issues = append(issues, permissionFindings(raw.Path, raw.Mode, cfg)...)
		}
		seenFiles[rel] = struct{}{}

	case security.KindSymlink:
		if _, err := security.CheckSymlinkTarget(rel, raw.LinkTarget, cfg); err != nil {
			issues = append(issues, issueFromError(raw.Path, err))
		}

	case security.KindHardlink:
		target, err := security.CheckHardlinkTarget(rel, raw.LinkTarget, cfg)
		if err != nil {
			issues = append(issues, issueFromError(raw.Path, err))
		} else if _, ok := seenFiles[target]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityCritical,
				Category: "hardlink-escape",
				Path:     raw.Path,
				Message:  "hardlink target is not an earlier entry of this archive",
				Context:  raw.LinkTarget,
			})
		}
	}

	return issues
}

// permissionFindings surfaces suspicious mode bits as warnings: setuid and
// setgid would be stripped, a world-writable file would be rejected.
func permissionFindings(path string, mode uint32, cfg *security.Config) []Issue {
	var issues []Issue
	if mode&0o4000 != 0 || mode&0o2000 != 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Category: "permissions",
			Path:     path,
			Message:  fmt.Sprintf("setuid/setgid bits present (%#o); they are stripped on extraction", mode),
		})
	}
	if _, err := security.SanitizeMode(path, mode, cfg); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Category: "permissions",
			Path:     path,
			Message:  err.Error(),
		})
	}
	return issues
}

// issueFromError maps the error taxonomy onto severities: anything that
// could place bytes outside the root or exhaust resources is Critical,
// category-level policy denials are High, integrity defects High.
func issueFromError(path string, err error) Issue {
	issue := Issue{Path: path, Message: err.Error()}

	var (
		traversal *security.PathTraversalError
		symlink   *security.SymlinkEscapeError
		hardlink  *security.HardlinkEscapeError
		bomb      *security.ZipBombError
		quota     *security.QuotaExceededError
		violation *security.SecurityViolationError
		perms     *security.InvalidPermissionsError
		invalid   *security.InvalidArchiveError
	)
	switch {
	case errors.As(err, &traversal):
		issue.Severity = SeverityCritical
		issue.Category = "path-traversal"
	case errors.As(err, &symlink):
		issue.Severity = SeverityCritical
		issue.Category = "symlink-escape"
	case errors.As(err, &hardlink):
		issue.Severity = SeverityCritical
		issue.Category = "hardlink-escape"
	case errors.As(err, &bomb):
		issue.Severity = SeverityCritical
		issue.Category = "zip-bomb"
	case errors.As(err, &quota):
		issue.Severity = SeverityCritical
		issue.Category = "quota"
	case errors.As(err, &violation):
		issue.Severity = SeverityHigh
		issue.Category = "policy"
	case errors.As(err, &perms):
		issue.Severity = SeverityWarning
		issue.Category = "permissions"
	case errors.As(err, &invalid):
		issue.Severity = SeverityHigh
		issue.Category = "integrity"
	default:
		issue.Severity = SeverityHigh
		issue.Category = "other"
	}
	return issue
}

func finalize(report *VerificationReport) {
	sort.SliceStable(report.Issues, func(i, j int) bool {
		return severityRank[report.Issues[i].Severity] > severityRank[report.Issues[j].Severity]
	})
	for _, issue := range report.Issues {
		if issue.Category == "integrity" {
			report.IntegrityStatus = CheckFail
		}
	}
	if !report.IsSafe() {
		report.SecurityStatus = CheckFail
	}
	if report.IntegrityStatus == CheckFail || report.SecurityStatus == CheckFail {
		report.Status = CheckFail
	}
}
