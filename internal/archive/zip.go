package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
)

// writeZip streams entries into a ZIP stream on w, with deflate provided by
// the faster flate implementation.
func writeZip(ctx context.Context, w io.Writer, entries []sourceEntry, cfg *CreationConfig, report *CreationReport) error {
	zw := zip.NewWriter(w)
	level := cfg.CompressionLevel
	if level < 1 || level > 9 {
		level = flate.DefaultCompression
	}
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeZipEntry(zw, entry, cfg, report); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeZipEntry(zw *zip.Writer, entry sourceEntry, cfg *CreationConfig, report *CreationReport) error {
	hdr, err := zip.FileInfoHeader(entry.info)
	if err != nil {
		return fmt.Errorf("zip header for %s: %w", entry.relPath, err)
	}
	hdr.Name = entry.relPath
	if entry.isDir {
		hdr.Name += "/"
	}
	hdr.Method = zip.Deflate
	if !cfg.PreservePermissions && !entry.isSymlink {
		if entry.isDir {
			hdr.SetMode(os.ModeDir | 0o755)
		} else {
			hdr.SetMode(0o644)
		}
	}

	fw, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("write zip header %s: %w", entry.relPath, err)
	}

	switch {
	case entry.isDir:
		report.DirectoriesAdded++
	case entry.isSymlink:
		// ZIP stores the target text as the member body.
		if _, err := io.WriteString(fw, entry.linkTarget); err != nil {
			return fmt.Errorf("store symlink %s: %w", entry.relPath, err)
		}
		report.SymlinksStored++
	default:
		f, err := os.Open(entry.absPath)
		if err != nil {
			return err
		}
		n, err := io.Copy(fw, f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("archive %s: %w", entry.relPath, err)
		}
		report.FilesAdded++
		report.BytesRead += uint64(n)
	}
	return nil
}
