// Package format opens TAR-, ZIP- and 7z-family containers and presents
// their contents as a uniform stream of raw, untrusted entries. Nothing in
// this package touches the destination filesystem; the security engine is
// the only consumer of what it yields.
package format

import (
	"io"
	"time"

	"coffre/internal/security"
)

// RawEntry is one archive member as the container reports it. All fields
// are untrusted until the entry passes validation.
type RawEntry struct {
	// Path is the member path exactly as stored.
	Path string

	Kind security.EntryKind

	// Size is the declared uncompressed size.
	Size uint64

	// CompressedSize is the per-entry compressed size for containers that
	// record one (ZIP; the 7z reader does not set it). HasCompressedSize
	// distinguishes unknown from zero.
	CompressedSize    uint64
	HasCompressedSize bool

	// Mode carries permission bits when the container stores them.
	Mode    uint32
	HasMode bool

	ModTime time.Time

	// LinkTarget is the symlink/hardlink target text.
	LinkTarget string

	// Body streams the member content. It is only valid until the next
	// Next call on the reader that produced it, and is nil for
	// directories and links.
	Body io.Reader
}

// Info converts the entry to the validator's input form.
func (e *RawEntry) Info() security.EntryInfo {
	return security.EntryInfo{
		Path:              e.Path,
		Kind:              e.Kind,
		Size:              e.Size,
		CompressedSize:    e.CompressedSize,
		HasCompressedSize: e.HasCompressedSize,
		Mode:              e.Mode,
		HasMode:           e.HasMode,
		LinkTarget:        e.LinkTarget,
	}
}

// Reader iterates the members of one archive in container order. Next
// returns io.EOF after the final member.
type Reader interface {
	Next() (*RawEntry, error)
	Close() error
}

// Open opens the archive at path with the format chosen by suffix
// detection. The security config is consulted for format-level policy
// (7z solid-size cap); per-entry checks happen downstream.
func Open(path string, cfg *security.Config) (Reader, Type, error) {
	typ, err := Detect(path)
	if err != nil {
		return nil, 0, err
	}

	var r Reader
	switch typ {
	case TypeZip:
		r, err = openZip(path)
	case TypeSevenZ:
		r, err = openSevenZ(path, cfg)
	default:
		r, err = openTar(path, typ)
	}
	if err != nil {
		return nil, 0, err
	}
	return r, typ, nil
}
