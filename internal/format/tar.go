package format

import (
	"archive/tar"
	"bufio"
	"errors"
	"io"
	"os"

	"coffre/internal/security"
)

// tarReader adapts archive/tar (behind an optional decompression codec) to
// the Reader interface.
type tarReader struct {
	f         *os.File
	tr        *tar.Reader
	closeCode func()
}

// openTar opens a plain or compressed tar archive.
func openTar(path string, typ Type) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	stream, closeCode, err := decompressStream(bufio.NewReaderSize(f, 64*1024), typ)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &tarReader{
		f:         f,
		tr:        tar.NewReader(stream),
		closeCode: closeCode,
	}, nil
}

func (r *tarReader) Next() (*RawEntry, error) {
	for {
		hdr, err := r.tr.Next()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			var sec *security.InvalidArchiveError
			if errors.As(err, &sec) {
				return nil, err
			}
			return nil, &security.InvalidArchiveError{Reason: "tar entry", Err: err}
		}

		entry := &RawEntry{
			Path:    hdr.Name,
			Size:    uint64(max(hdr.Size, 0)),
			Mode:    uint32(hdr.Mode) & 0o7777,
			HasMode: true,
			ModTime: hdr.ModTime,
		}

		switch hdr.Typeflag {
		case tar.TypeReg:
			entry.Kind = security.KindFile
			entry.Body = r.tr
		case tar.TypeDir:
			entry.Kind = security.KindDirectory
		case tar.TypeSymlink:
			entry.Kind = security.KindSymlink
			entry.LinkTarget = hdr.Linkname
		case tar.TypeLink:
			entry.Kind = security.KindHardlink
			entry.LinkTarget = hdr.Linkname
		case tar.TypeXGlobalHeader:
			// PAX global headers carry no extractable content.
			continue
		default:
			// FIFOs, devices, sockets: surfaced so the engine can skip
			// them with a warning instead of silently dropping entries.
			entry.Kind = security.KindUnsupported
		}

		return entry, nil
	}
}

func (r *tarReader) Close() error {
	r.closeCode()
	return r.f.Close()
}
