// Package archive creates TAR-family and ZIP archives from filesystem
// sources: a deterministic walker with glob exclusion feeding
// format-specific writers.
package archive

// CreationConfig controls how archives are built from sources.
type CreationConfig struct {
	// FollowSymlinks stores the symlink target's content instead of the
	// link itself. Off by default: following links can pull in files from
	// outside the source tree.
	FollowSymlinks bool

	// IncludeHidden adds dotfiles and dot-directories.
	IncludeHidden bool

	// MaxFileSize skips files larger than this many bytes; 0 means no
	// limit.
	MaxFileSize uint64

	// ExcludePatterns are segment globs matched against slash-separated
	// relative paths; `**` spans directories.
	ExcludePatterns []string

	// StripPrefix is removed from the front of every entry path.
	StripPrefix string

	// CompressionLevel is 1 (fastest) to 9 (smallest); 0 selects the
	// codec default.
	CompressionLevel int

	// PreservePermissions stores source modes; otherwise files are
	// archived as 0o644 and directories as 0o755.
	PreservePermissions bool

	// Format overrides suffix detection on the output path, e.g.
	// "tar.zst". Empty auto-detects.
	Format string
}

// DefaultCreationConfig returns the balanced defaults.
func DefaultCreationConfig() *CreationConfig {
	return &CreationConfig{
		ExcludePatterns:     []string{".git", ".DS_Store", "*.tmp"},
		CompressionLevel:    6,
		PreservePermissions: true,
	}
}
