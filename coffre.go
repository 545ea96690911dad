// Package coffre is a secure archive extraction and creation engine for
// TAR-, ZIP- and 7z-family containers. Every file it materializes on disk
// has passed through a validator that produces a typed path proven to
// resolve inside the extraction root; quotas, compression-ratio limits and
// link-escape checks are enforced while the bytes stream, not after.
//
// The engine is stateless across invocations and single-threaded per
// archive; extract different archives concurrently for parallelism.
package coffre

import (
	"context"

	"coffre/internal/archive"
	"coffre/internal/extract"
	"coffre/internal/inspect"
	"coffre/internal/security"
)

// Re-exported configuration and result types, so callers only import this
// package.
type (
	SecurityConfig     = security.Config
	CreationConfig     = archive.CreationConfig
	ExtractionReport   = extract.Report
	CreationReport     = archive.CreationReport
	ArchiveManifest    = inspect.Manifest
	VerificationReport = inspect.VerificationReport
	Progress           = extract.Progress
)

// DefaultSecurityConfig returns the deny-all policy.
func DefaultSecurityConfig() *SecurityConfig { return security.DefaultConfig() }

// PermissiveSecurityConfig returns the everything-allowed policy for
// trusted inputs.
func PermissiveSecurityConfig() *SecurityConfig { return security.Permissive() }

// DefaultCreationConfig returns the balanced creation defaults.
func DefaultCreationConfig() *CreationConfig { return archive.DefaultCreationConfig() }

// ExtractArchive extracts archivePath into outputDir under cfg; nil cfg
// selects the deny-all defaults. The report is non-nil even on failure and
// reflects what was written before the abort.
func ExtractArchive(archivePath, outputDir string, cfg *SecurityConfig) (*ExtractionReport, error) {
	return ExtractArchiveContext(context.Background(), archivePath, outputDir, cfg)
}

// ExtractArchiveContext is ExtractArchive with cooperative cancellation:
// ctx is consulted at entry boundaries and inside the copy loop.
func ExtractArchiveContext(ctx context.Context, archivePath, outputDir string, cfg *SecurityConfig) (*ExtractionReport, error) {
	return extract.New(cfg).Extract(ctx, archivePath, outputDir)
}

// ExtractArchiveProgress extracts with a progress sink; callbacks run
// synchronously on the extraction goroutine and must not block.
func ExtractArchiveProgress(ctx context.Context, archivePath, outputDir string, cfg *SecurityConfig, p Progress) (*ExtractionReport, error) {
	return extract.New(cfg).WithProgress(p).Extract(ctx, archivePath, outputDir)
}

// CreateArchive builds an archive at outputPath from sources; nil cfg
// selects the defaults. The format follows the output suffix unless the
// config overrides it.
func CreateArchive(outputPath string, sources []string, cfg *CreationConfig) (*CreationReport, error) {
	return CreateArchiveContext(context.Background(), outputPath, sources, cfg)
}

// CreateArchiveContext is CreateArchive with cooperative cancellation.
func CreateArchiveContext(ctx context.Context, outputPath string, sources []string, cfg *CreationConfig) (*CreationReport, error) {
	return archive.Create(ctx, outputPath, sources, cfg)
}

// ListArchive reads archive metadata without writing anything.
func ListArchive(archivePath string, cfg *SecurityConfig) (*ArchiveManifest, error) {
	return ListArchiveContext(context.Background(), archivePath, cfg)
}

// ListArchiveContext is ListArchive with cooperative cancellation.
func ListArchiveContext(ctx context.Context, archivePath string, cfg *SecurityConfig) (*ArchiveManifest, error) {
	return inspect.List(ctx, archivePath, cfg)
}

// VerifyArchive runs the extraction-time validation chain against every
// entry without extracting, collecting findings instead of aborting on the
// first one.
func VerifyArchive(archivePath string, cfg *SecurityConfig) (*VerificationReport, error) {
	return VerifyArchiveContext(context.Background(), archivePath, cfg)
}

// VerifyArchiveContext is VerifyArchive with cooperative cancellation.
func VerifyArchiveContext(ctx context.Context, archivePath string, cfg *SecurityConfig) (*VerificationReport, error) {
	return inspect.Verify(ctx, archivePath, cfg)
}
