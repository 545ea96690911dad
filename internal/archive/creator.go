package archive

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"coffre/internal/format"
	"coffre/internal/security"
)

// Create builds an archive at outputPath from the given sources. The format
// comes from the config override or the output filename suffix; 7z is
// extract-only. The archive is written to a uniquely named partial file and
// renamed into place only on success, so a failed run never leaves a
// truncated archive under the final name.
func Create(ctx context.Context, outputPath string, sources []string, cfg *CreationConfig) (*CreationReport, error) {
	if cfg == nil {
		cfg = DefaultCreationConfig()
	}

	start := time.Now()
	report := &CreationReport{}
	defer func() {
		report.DurationMS = time.Since(start).Milliseconds()
	}()

	typ, err := creationFormat(outputPath, cfg)
	if err != nil {
		return report, err
	}

	entries, err := collectSources(sources, cfg, report)
	if err != nil {
		return report, err
	}

	partial := fmt.Sprintf("%s.%s.partial", outputPath, uuid.NewString())
	f, err := os.Create(partial)
	if err != nil {
		return report, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = os.Remove(partial)
		}
	}()

	switch typ {
	case format.TypeZip:
		err = writeZip(ctx, f, entries, cfg, report)
	default:
		err = writeTar(ctx, f, typ, entries, cfg, report)
	}
	if err != nil {
		return report, err
	}

	if info, serr := f.Stat(); serr == nil {
		report.BytesWritten = uint64(info.Size())
	}
	if err := f.Close(); err != nil {
		return report, err
	}
	if err := os.Rename(partial, outputPath); err != nil {
		_ = os.Remove(partial)
		return report, err
	}
	committed = true

	return report, nil
}

func creationFormat(outputPath string, cfg *CreationConfig) (format.Type, error) {
	var typ format.Type
	var err error
	if cfg.Format != "" {
		typ, err = format.Parse(cfg.Format)
	} else {
		typ, err = format.Detect(outputPath)
	}
	if err != nil {
		return 0, err
	}
	if !format.CreatableType(typ) {
		return 0, &security.UnsupportedFormatError{Path: outputPath}
	}
	return typ, nil
}
