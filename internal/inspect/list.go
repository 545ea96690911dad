package inspect

import (
	"context"
	"errors"
	"io"

	"coffre/internal/format"
	"coffre/internal/security"
)

// List reads archive metadata without touching the destination filesystem.
// The file-count quota still applies: it bounds the manifest an adversarial
// archive can make the engine hold in memory.
func List(ctx context.Context, archivePath string, cfg *security.Config) (*Manifest, error) {
	if cfg == nil {
		cfg = security.DefaultConfig()
	}

	reader, typ, err := format.Open(archivePath, cfg)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	manifest := &Manifest{Format: typ.String()}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if cfg.MaxFileCount != security.UnlimitedCount && len(manifest.Entries) >= cfg.MaxFileCount {
			return nil, &security.QuotaExceededError{
				Resource: security.QuotaFiles,
				Current:  uint64(len(manifest.Entries) + 1),
				Max:      uint64(cfg.MaxFileCount),
			}
		}

		entry := Entry{
			Path:       raw.Path,
			Kind:       raw.Kind.String(),
			Size:       raw.Size,
			ModTime:    raw.ModTime,
			LinkTarget: raw.LinkTarget,
		}
		if raw.HasCompressedSize {
			entry.CompressedSize = raw.CompressedSize
		}
		if raw.HasMode {
			entry.Mode = raw.Mode
		}
		manifest.Entries = append(manifest.Entries, entry)
		if raw.Kind == security.KindFile {
			manifest.TotalSize += raw.Size
		}
	}

	manifest.TotalEntries = len(manifest.Entries)
	return manifest, nil
}
