package security

import (
	"fmt"
)

// QuotaResource identifies which extraction quota was exhausted.
type QuotaResource string

const (
	QuotaFiles        QuotaResource = "files"
	QuotaPerFileBytes QuotaResource = "per_file_bytes"
	QuotaTotalBytes   QuotaResource = "total_bytes"
	QuotaDepth        QuotaResource = "depth"
)

// PathTraversalError reports an entry path that would resolve outside the
// extraction root: a `..` component, a disallowed absolute path, or a
// resolved prefix that leaves the root.
type PathTraversalError struct {
	Path string
}

func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("path traversal detected: %s", e.Path)
}

// SymlinkEscapeError reports a symlink whose target resolves outside the
// extraction root.
type SymlinkEscapeError struct {
	Path   string
	Target string
}

func (e *SymlinkEscapeError) Error() string {
	return fmt.Sprintf("symlink target outside extraction directory: %s -> %s", e.Path, e.Target)
}

// HardlinkEscapeError reports a hardlink whose target is outside the root or
// does not reference an entry extracted earlier in the same archive.
type HardlinkEscapeError struct {
	Path   string
	Target string
}

func (e *HardlinkEscapeError) Error() string {
	return fmt.Sprintf("hardlink target outside extraction directory: %s -> %s", e.Path, e.Target)
}

// ZipBombError reports an entry whose observed compression ratio exceeds the
// configured maximum.
type ZipBombError struct {
	Compressed   uint64
	Uncompressed uint64
	Ratio        float64
}

func (e *ZipBombError) Error() string {
	return fmt.Sprintf("potential zip bomb: compressed=%d bytes, uncompressed=%d bytes (ratio: %.2f)",
		e.Compressed, e.Uncompressed, e.Ratio)
}

// QuotaExceededError reports an exhausted extraction quota.
type QuotaExceededError struct {
	Resource QuotaResource
	Current  uint64
	Max      uint64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %s (%d > %d)", e.Resource, e.Current, e.Max)
}

// InvalidPermissionsError reports a mode the policy refuses to materialize.
type InvalidPermissionsError struct {
	Path string
	Mode uint32
}

func (e *InvalidPermissionsError) Error() string {
	return fmt.Sprintf("invalid permissions for %s: %#o", e.Path, e.Mode)
}

// SecurityViolationError reports a category-level policy deny, e.g. a symlink
// entry while symlinks are disabled, or a banned path component.
type SecurityViolationError struct {
	Reason string
}

func (e *SecurityViolationError) Error() string {
	return "operation denied by security policy: " + e.Reason
}

// UnsupportedFormatError reports an archive whose format could not be
// determined or is not handled.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Path == "" {
		return "unsupported archive format"
	}
	return "unsupported archive format: " + e.Path
}

// InvalidArchiveError reports a structurally broken or incoherent archive.
type InvalidArchiveError struct {
	Reason string
	Err    error
}

func (e *InvalidArchiveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid archive: %s: %v", e.Reason, e.Err)
	}
	return "invalid archive: " + e.Reason
}

func (e *InvalidArchiveError) Unwrap() error {
	return e.Err
}
