package security

import (
	"math"
	"strings"
)

// Sentinels that disable the corresponding quota. The accountant takes a
// fast path when every quota is unlimited.
const (
	UnlimitedBytes = math.MaxUint64
	UnlimitedCount = math.MaxInt
)

// UnlimitedRatio disables compression-ratio checking.
func UnlimitedRatio() float64 { return math.Inf(1) }

// Config is the declarative extraction policy: quotas, allow-flags and
// deny-lists. It is immutable after construction and shared by reference
// across the whole extraction.
type Config struct {
	// MaxFileSize caps a single file's uncompressed size in bytes.
	MaxFileSize uint64

	// MaxTotalSize caps the total uncompressed bytes across all files.
	MaxTotalSize uint64

	// MaxCompressionRatio caps uncompressed/compressed per entry.
	MaxCompressionRatio float64

	// MaxFileCount caps the number of extracted files.
	MaxFileCount int

	// MaxPathDepth caps the number of path components per entry.
	MaxPathDepth int

	// MaxSolidBlockBytes caps the total declared uncompressed size of a 7z
	// archive, solid or not; the check runs when the archive is opened.
	MaxSolidBlockBytes uint64

	AllowSymlinks      bool
	AllowHardlinks     bool
	AllowAbsolutePaths bool
	AllowWorldWritable bool

	// PreservePermissions applies (sanitized) archive modes on disk.
	// When false every file is written 0o644.
	PreservePermissions bool

	// AllowedExtensions restricts regular files to the listed extensions
	// (without the dot, case-insensitive). Empty allows everything.
	AllowedExtensions []string

	// BannedPathComponents are path segments refused anywhere in an entry
	// path, compared case-insensitively.
	BannedPathComponents []string
}

// DefaultConfig returns the deny-all policy: no symlinks, no hardlinks, no
// absolute paths, conservative quotas, sensitive dotdirs banned.
func DefaultConfig() *Config {
	return &Config{
		MaxFileSize:         50 * 1024 * 1024,
		MaxTotalSize:        500 * 1024 * 1024,
		MaxCompressionRatio: 100.0,
		MaxFileCount:        10_000,
		MaxPathDepth:        32,
		MaxSolidBlockBytes:  256 * 1024 * 1024,
		BannedPathComponents: []string{
			".git", ".ssh", ".gnupg", ".aws", ".kube", ".docker", ".env",
		},
	}
}

// Permissive returns a policy with every allow-flag on and no banned
// components. Reserved for trusted inputs.
func Permissive() *Config {
	cfg := DefaultConfig()
	cfg.AllowSymlinks = true
	cfg.AllowHardlinks = true
	cfg.AllowAbsolutePaths = true
	cfg.AllowWorldWritable = true
	cfg.PreservePermissions = true
	cfg.MaxCompressionRatio = 1000.0
	cfg.BannedPathComponents = nil
	return cfg
}

// ComponentAllowed reports whether a path segment passes the deny-list.
// Comparison is case-insensitive so case-insensitive filesystems (Windows,
// macOS default) cannot be used to bypass the list.
func (c *Config) ComponentAllowed(component string) bool {
	for _, banned := range c.BannedPathComponents {
		if strings.EqualFold(banned, component) {
			return false
		}
	}
	return true
}

// ExtensionAllowed reports whether a file extension (without the dot) passes
// the allow-list. An empty list allows all extensions.
func (c *Config) ExtensionAllowed(ext string) bool {
	if len(c.AllowedExtensions) == 0 {
		return true
	}
	for _, allowed := range c.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

// quotasUnlimited reports whether every counting quota is disabled.
func (c *Config) quotasUnlimited() bool {
	return c.MaxFileSize == UnlimitedBytes &&
		c.MaxTotalSize == UnlimitedBytes &&
		c.MaxFileCount == UnlimitedCount
}

// ratioUnlimited reports whether compression-ratio checking is disabled.
func (c *Config) ratioUnlimited() bool {
	return math.IsInf(c.MaxCompressionRatio, 1)
}
