// Package extract runs the streaming extraction pipeline: format reader →
// entry validation → dispatch → quota-checked writes. Control flow is
// single-threaded per archive; concurrency comes from extracting different
// archives in parallel.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"coffre/internal/format"
	"coffre/internal/security"
)

// Extractor extracts whole archives under one security policy. It is
// reusable and safe for concurrent use as long as each call targets a
// distinct destination.
type Extractor struct {
	cfg      *security.Config
	progress Progress
}

// New returns an extractor with the given policy; a nil cfg selects the
// deny-all defaults.
func New(cfg *security.Config) *Extractor {
	if cfg == nil {
		cfg = security.DefaultConfig()
	}
	return &Extractor{cfg: cfg, progress: NopProgress{}}
}

// WithProgress installs a progress sink and returns the extractor.
func (e *Extractor) WithProgress(p Progress) *Extractor {
	if p != nil {
		e.progress = p
	}
	return e
}

// Extract materializes archivePath under outputDir. The returned report is
// non-nil even on failure and reflects what was written before the abort.
// Security errors are fatal for the archive: no further entries are
// processed once one is detected.
func (e *Extractor) Extract(ctx context.Context, archivePath, outputDir string) (*Report, error) {
	start := time.Now()
	report := &Report{}
	defer func() {
		report.DurationMS = time.Since(start).Milliseconds()
	}()

	reader, _, err := format.Open(archivePath, e.cfg)
	if err != nil {
		return report, err
	}
	defer reader.Close()

	root, err := security.PrepareRoot(outputDir)
	if err != nil {
		return report, err
	}

	validator := security.NewEntryValidator(e.cfg, root)
	writer := NewWriter()

	for index := 1; ; index++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		entry, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, err
		}

		e.progress.EntryStart(entry.Path, index)

		if entry.Kind == security.KindUnsupported {
			// Special files are never materialized; the archive is
			// otherwise intact, so record and continue.
			report.FilesSkipped++
			report.AddWarning(fmt.Sprintf("skipped unsupported entry type: %s", entry.Path))
			continue
		}

		validated, err := validator.Validate(entry.Info())
		if err != nil {
			return report, err
		}

		if err := e.dispatch(ctx, validated, entry, validator, writer, report); err != nil {
			return report, err
		}

		e.progress.EntryDone(entry.Path)
	}

	e.progress.Done()
	return report, nil
}

func (e *Extractor) dispatch(
	ctx context.Context,
	validated *security.ValidatedEntry,
	entry *format.RawEntry,
	validator *security.EntryValidator,
	writer *Writer,
	report *Report,
) error {
	dirs := validator.DirCache()

	switch validated.Kind {
	case security.KindDirectory:
		if err := dirs.Ensure(validated.Path.Abs()); err != nil {
			return err
		}
		report.DirectoriesCreated++

	case security.KindFile:
		if err := dirs.Ensure(validated.Path.ParentAbs()); err != nil {
			return err
		}
		mode := security.EffectiveFileMode(validated.Mode, e.cfg)
		if !validated.HasMode {
			mode = 0o644
		}
		written, err := writer.WriteFile(ctx, validated.Path, entry.Body, mode,
			entry.Size, entry.CompressedSize, validator.Quota(), e.progress)
		if err != nil {
			return err
		}
		validator.Quota().CommitFile(written)
		validator.RecordExtracted(validated.Path)
		report.FilesExtracted++
		report.BytesWritten += written

	case security.KindSymlink:
		if err := dirs.Ensure(validated.Path.ParentAbs()); err != nil {
			return err
		}
		if err := createSymlink(validated.Symlink.TargetText(), validated.Path.Abs()); err != nil {
			return err
		}
		report.SymlinksCreated++

	case security.KindHardlink:
		if err := dirs.Ensure(validated.Path.ParentAbs()); err != nil {
			return err
		}
		if err := createHardlink(validated.HardlinkSource.Abs(), validated.Path.Abs()); err != nil {
			return err
		}
		validator.RecordExtracted(validated.Path)
		report.HardlinksCreated++
	}

	return nil
}
