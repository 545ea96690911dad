package format

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bodgit/sevenzip"

	"coffre/internal/security"
)

// sevenzReader adapts the 7z reader to the Reader interface. 7z is
// extract-only: creation is not supported.
type sevenzReader struct {
	rc   *sevenzip.ReadCloser
	idx  int
	body io.ReadCloser
}

// openSevenZ opens a 7z archive.
//
// Encrypted archives are rejected up front. Because 7z compresses solid
// blocks as a unit, extraction cost is bounded by the archive's total
// declared uncompressed size, which is capped by MaxSolidBlockBytes before
// any entry is processed.
func openSevenZ(path string, cfg *security.Config) (Reader, error) {
	rc, err := sevenzip.OpenReader(path)
	if err != nil {
		if isPasswordError(err) {
			return nil, encryptedSevenZError(path)
		}
		return nil, &security.InvalidArchiveError{Reason: "7z archive", Err: err}
	}

	var total uint64
	for _, f := range rc.File {
		if info := f.FileInfo(); !info.IsDir() {
			total += uint64(info.Size())
		}
	}
	if cfg.MaxSolidBlockBytes != security.UnlimitedBytes && total > cfg.MaxSolidBlockBytes {
		_ = rc.Close()
		return nil, &security.SecurityViolationError{
			Reason: fmt.Sprintf("7z archive declares %d uncompressed bytes, above the solid-block cap of %d; raise MaxSolidBlockBytes for trusted inputs",
				total, cfg.MaxSolidBlockBytes),
		}
	}

	return &sevenzReader{rc: rc}, nil
}

func (r *sevenzReader) Next() (*RawEntry, error) {
	if r.body != nil {
		_ = r.body.Close()
		r.body = nil
	}

	if r.idx >= len(r.rc.File) {
		return nil, io.EOF
	}
	f := r.rc.File[r.idx]
	r.idx++

	info := f.FileInfo()
	mode := info.Mode()
	entry := &RawEntry{
		Path:    f.Name,
		Size:    uint64(info.Size()),
		Mode:    unixModeBits(mode),
		HasMode: true,
		ModTime: info.ModTime(),
	}

	switch {
	case info.IsDir():
		entry.Kind = security.KindDirectory

	case mode&os.ModeSymlink != 0:
		entry.Kind = security.KindSymlink
		target, err := readSevenZTarget(f)
		if err != nil {
			return nil, err
		}
		entry.LinkTarget = target

	case mode.IsRegular():
		entry.Kind = security.KindFile
		body, err := f.Open()
		if err != nil {
			if isPasswordError(err) {
				return nil, encryptedSevenZError(f.Name)
			}
			return nil, &security.InvalidArchiveError{Reason: "open 7z entry " + f.Name, Err: err}
		}
		r.body = body
		entry.Body = body

	default:
		entry.Kind = security.KindUnsupported
	}

	return entry, nil
}

func (r *sevenzReader) Close() error {
	if r.body != nil {
		_ = r.body.Close()
	}
	return r.rc.Close()
}

func readSevenZTarget(f *sevenzip.File) (string, error) {
	body, err := f.Open()
	if err != nil {
		return "", &security.InvalidArchiveError{Reason: "open 7z symlink " + f.Name, Err: err}
	}
	defer body.Close()

	target, err := io.ReadAll(io.LimitReader(body, maxSymlinkTargetLen+1))
	if err != nil {
		return "", &security.InvalidArchiveError{Reason: "read 7z symlink " + f.Name, Err: err}
	}
	if len(target) > maxSymlinkTargetLen {
		return "", &security.InvalidArchiveError{Reason: "oversized symlink target in " + f.Name}
	}
	return string(target), nil
}

func isPasswordError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "aes7z")
}

func encryptedSevenZError(name string) error {
	return &security.InvalidArchiveError{
		Reason: fmt.Sprintf("%s is password protected; encrypted archives are not extracted, decrypt it with the producing tool first", name),
	}
}
