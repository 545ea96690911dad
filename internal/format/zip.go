package format

import (
	"archive/zip"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"

	"coffre/internal/security"
)

const (
	zipMethodBzip2 = 12
	zipMethodZstd  = 93

	zipFlagEncrypted = 0x1

	// Symlink targets are stored as the member body; anything past this is
	// not a plausible link target.
	maxSymlinkTargetLen = 4096
)

// zipReader adapts archive/zip to the Reader interface.
type zipReader struct {
	rc   *zip.ReadCloser
	idx  int
	body io.ReadCloser
}

// openZip opens a ZIP archive with the extended decompressor set: deflate
// through the faster flate implementation, plus bzip2 and zstd members.
func openZip(path string) (Reader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, &security.InvalidArchiveError{Reason: "zip central directory", Err: err}
	}

	rc.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
	rc.RegisterDecompressor(zipMethodBzip2, func(r io.Reader) io.ReadCloser {
		return io.NopCloser(bzip2.NewReader(r))
	})
	rc.RegisterDecompressor(zipMethodZstd, func(r io.Reader) io.ReadCloser {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return io.NopCloser(&errReader{err: err})
		}
		return zr.IOReadCloser()
	})

	return &zipReader{rc: rc}, nil
}

func (r *zipReader) Next() (*RawEntry, error) {
	if r.body != nil {
		_ = r.body.Close()
		r.body = nil
	}

	if r.idx >= len(r.rc.File) {
		return nil, io.EOF
	}
	f := r.rc.File[r.idx]
	r.idx++

	if f.Flags&zipFlagEncrypted != 0 {
		return nil, &security.InvalidArchiveError{
			Reason: fmt.Sprintf("entry %q is encrypted; decrypt the archive with its producer before extracting", f.Name),
		}
	}
	if err := checkLocalHeader(f); err != nil {
		return nil, err
	}

	mode := f.Mode()
	entry := &RawEntry{
		Path:              f.Name,
		Size:              f.UncompressedSize64,
		CompressedSize:    f.CompressedSize64,
		HasCompressedSize: true,
		Mode:              unixModeBits(mode),
		HasMode:           true,
		ModTime:           f.Modified,
	}

	switch {
	case mode.IsDir() || strings.HasSuffix(f.Name, "/"):
		entry.Kind = security.KindDirectory

	case mode&os.ModeSymlink != 0:
		entry.Kind = security.KindSymlink
		target, err := readSymlinkTarget(f)
		if err != nil {
			return nil, err
		}
		entry.LinkTarget = target

	case mode.IsRegular():
		entry.Kind = security.KindFile
		body, err := f.Open()
		if err != nil {
			return nil, &security.InvalidArchiveError{Reason: "open zip entry " + f.Name, Err: err}
		}
		r.body = body
		entry.Body = body

	default:
		entry.Kind = security.KindUnsupported
	}

	return entry, nil
}

func (r *zipReader) Close() error {
	if r.body != nil {
		_ = r.body.Close()
	}
	return r.rc.Close()
}

// checkLocalHeader parses the member's local header through DataOffset and
// rejects an unreadable header or a negative data offset. The offset is not
// compared with the archive's size, and names and sizes in the local header
// are not compared with the central directory.
func checkLocalHeader(f *zip.File) error {
	offset, err := f.DataOffset()
	if err != nil {
		return &security.InvalidArchiveError{Reason: "local header for " + f.Name, Err: err}
	}
	if offset < 0 {
		return &security.InvalidArchiveError{Reason: "negative data offset for " + f.Name}
	}
	return nil
}

func readSymlinkTarget(f *zip.File) (string, error) {
	body, err := f.Open()
	if err != nil {
		return "", &security.InvalidArchiveError{Reason: "open zip symlink " + f.Name, Err: err}
	}
	defer body.Close()

	target, err := io.ReadAll(io.LimitReader(body, maxSymlinkTargetLen+1))
	if err != nil {
		return "", &security.InvalidArchiveError{Reason: "read zip symlink " + f.Name, Err: err}
	}
	if len(target) > maxSymlinkTargetLen {
		return "", &security.InvalidArchiveError{Reason: "oversized symlink target in " + f.Name}
	}
	return string(target), nil
}

// unixModeBits reconstructs raw permission bits from an fs.FileMode,
// including the special bits stdlib folds into flags.
func unixModeBits(m os.FileMode) uint32 {
	bits := uint32(m.Perm())
	if m&os.ModeSetuid != 0 {
		bits |= 0o4000
	}
	if m&os.ModeSetgid != 0 {
		bits |= 0o2000
	}
	if m&os.ModeSticky != 0 {
		bits |= 0o1000
	}
	return bits
}

type errReader struct{ err error }

func (e *errReader) Read([]byte) (int, error) { return 0, e.err }
