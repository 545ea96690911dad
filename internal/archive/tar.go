package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"

	"coffre/internal/format"
)

// writeTar streams entries into a (possibly compressed) tar stream on w.
func writeTar(ctx context.Context, w io.Writer, typ format.Type, entries []sourceEntry, cfg *CreationConfig, report *CreationReport) error {
	compressed, closeCompressor, err := compressStream(w, typ, cfg.CompressionLevel)
	if err != nil {
		return err
	}

	tw := tar.NewWriter(compressed)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeTarEntry(tw, entry, cfg, report); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return closeCompressor()
}

func writeTarEntry(tw *tar.Writer, entry sourceEntry, cfg *CreationConfig, report *CreationReport) error {
	hdr, err := tar.FileInfoHeader(entry.info, entry.linkTarget)
	if err != nil {
		return fmt.Errorf("tar header for %s: %w", entry.relPath, err)
	}
	hdr.Name = entry.relPath
	if entry.isDir {
		hdr.Name += "/"
	}
	if !cfg.PreservePermissions {
		if entry.isDir {
			hdr.Mode = 0o755
		} else if !entry.isSymlink {
			hdr.Mode = 0o644
		}
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write tar header %s: %w", entry.relPath, err)
	}

	switch {
	case entry.isDir:
		report.DirectoriesAdded++
	case entry.isSymlink:
		report.SymlinksStored++
	default:
		f, err := os.Open(entry.absPath)
		if err != nil {
			return err
		}
		n, err := io.Copy(tw, f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("archive %s: %w", entry.relPath, err)
		}
		report.FilesAdded++
		report.BytesRead += uint64(n)
	}
	return nil
}

// compressStream wraps w with the compression codec the format calls for.
// Level 0 selects each codec's default.
func compressStream(w io.Writer, typ format.Type, level int) (io.Writer, func() error, error) {
	switch typ {
	case format.TypeTar:
		return w, func() error { return nil }, nil

	case format.TypeTarGz:
		gw, err := pgzip.NewWriterLevel(w, gzipLevel(level))
		if err != nil {
			return nil, nil, err
		}
		return gw, gw.Close, nil

	case format.TypeTarBz2:
		bw, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2Level(level)})
		if err != nil {
			return nil, nil, err
		}
		return bw, bw.Close, nil

	case format.TypeTarXz:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, err
		}
		return xw, xw.Close, nil

	case format.TypeTarZst:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstdLevel(level)))
		if err != nil {
			return nil, nil, err
		}
		return zw, zw.Close, nil

	default:
		return nil, nil, fmt.Errorf("no compressor for format %s", typ)
	}
}

func gzipLevel(level int) int {
	if level < 1 || level > 9 {
		return pgzip.DefaultCompression
	}
	return level
}

func bzip2Level(level int) int {
	if level < bzip2.BestSpeed || level > bzip2.BestCompression {
		return bzip2.DefaultCompression
	}
	return level
}

func zstdLevel(level int) zstd.EncoderLevel {
	if level < 1 || level > 9 {
		return zstd.SpeedDefault
	}
	return zstd.EncoderLevelFromZstd(level)
}
