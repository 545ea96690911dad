// Package config loads extraction and creation profiles. Precedence is
// flags > environment > profile file > built-in defaults; the CLI applies
// its flag overrides after Load returns.
package config

import (
	"fmt"
	"math"

	"coffre/internal/archive"
	"coffre/internal/security"
)

// Profile mirrors the on-disk TOML profile. Pointer fields distinguish
// "absent" from a genuine zero so the file only overrides what it names.
type Profile struct {
	Security securitySection `toml:"security"`
	Creation creationSection `toml:"creation"`
}

type securitySection struct {
	Preset               *string  `toml:"preset"`
	MaxFileSize          *uint64  `toml:"max_file_size"`
	MaxTotalSize         *uint64  `toml:"max_total_size"`
	MaxCompressionRatio  *float64 `toml:"max_compression_ratio"`
	MaxFileCount         *int     `toml:"max_file_count"`
	MaxPathDepth         *int     `toml:"max_path_depth"`
	MaxSolidBlockBytes   *uint64  `toml:"max_solid_block_bytes"`
	AllowSymlinks        *bool    `toml:"allow_symlinks"`
	AllowHardlinks       *bool    `toml:"allow_hardlinks"`
	AllowAbsolutePaths   *bool    `toml:"allow_absolute_paths"`
	AllowWorldWritable   *bool    `toml:"allow_world_writable"`
	PreservePermissions  *bool    `toml:"preserve_permissions"`
	AllowedExtensions    []string `toml:"allowed_extensions"`
	BannedPathComponents []string `toml:"banned_path_components"`
}

type creationSection struct {
	FollowSymlinks      *bool    `toml:"follow_symlinks"`
	IncludeHidden       *bool    `toml:"include_hidden"`
	MaxFileSize         *uint64  `toml:"max_file_size"`
	ExcludePatterns     []string `toml:"exclude_patterns"`
	CompressionLevel    *int     `toml:"compression_level"`
	PreservePermissions *bool    `toml:"preserve_permissions"`
	Format              *string  `toml:"format"`
}

// apply overlays the profile onto cfg and ccfg in place.
func (p *Profile) apply(cfg *security.Config, ccfg *archive.CreationConfig) error {
	s := p.Security
	if s.Preset != nil {
		switch *s.Preset {
		case "", "default":
		case "permissive":
			*cfg = *security.Permissive()
		default:
			return fmt.Errorf("CONFIG_INVALID: unknown security preset %q", *s.Preset)
		}
	}
	if s.MaxFileSize != nil {
		cfg.MaxFileSize = *s.MaxFileSize
	}
	if s.MaxTotalSize != nil {
		cfg.MaxTotalSize = *s.MaxTotalSize
	}
	if s.MaxCompressionRatio != nil {
		cfg.MaxCompressionRatio = *s.MaxCompressionRatio
	}
	if s.MaxFileCount != nil {
		cfg.MaxFileCount = *s.MaxFileCount
	}
	if s.MaxPathDepth != nil {
		cfg.MaxPathDepth = *s.MaxPathDepth
	}
	if s.MaxSolidBlockBytes != nil {
		cfg.MaxSolidBlockBytes = *s.MaxSolidBlockBytes
	}
	if s.AllowSymlinks != nil {
		cfg.AllowSymlinks = *s.AllowSymlinks
	}
	if s.AllowHardlinks != nil {
		cfg.AllowHardlinks = *s.AllowHardlinks
	}
	if s.AllowAbsolutePaths != nil {
		cfg.AllowAbsolutePaths = *s.AllowAbsolutePaths
	}
	if s.AllowWorldWritable != nil {
		cfg.AllowWorldWritable = *s.AllowWorldWritable
	}
	if s.PreservePermissions != nil {
		cfg.PreservePermissions = *s.PreservePermissions
	}
	if s.AllowedExtensions != nil {
		cfg.AllowedExtensions = s.AllowedExtensions
	}
	if s.BannedPathComponents != nil {
		cfg.BannedPathComponents = s.BannedPathComponents
	}

	c := p.Creation
	if c.FollowSymlinks != nil {
		ccfg.FollowSymlinks = *c.FollowSymlinks
	}
	if c.IncludeHidden != nil {
		ccfg.IncludeHidden = *c.IncludeHidden
	}
	if c.MaxFileSize != nil {
		ccfg.MaxFileSize = *c.MaxFileSize
	}
	if c.ExcludePatterns != nil {
		ccfg.ExcludePatterns = c.ExcludePatterns
	}
	if c.CompressionLevel != nil {
		ccfg.CompressionLevel = *c.CompressionLevel
	}
	if c.PreservePermissions != nil {
		ccfg.PreservePermissions = *c.PreservePermissions
	}
	if c.Format != nil {
		ccfg.Format = *c.Format
	}
	return nil
}

// Validate rejects configurations the engine cannot enforce.
func Validate(cfg *security.Config, ccfg *archive.CreationConfig) error {
	if cfg.MaxCompressionRatio <= 0 || math.IsNaN(cfg.MaxCompressionRatio) {
		return fmt.Errorf("CONFIG_INVALID: max_compression_ratio must be > 0, got %v", cfg.MaxCompressionRatio)
	}
	if cfg.MaxFileCount <= 0 {
		return fmt.Errorf("CONFIG_INVALID: max_file_count must be positive")
	}
	if cfg.MaxPathDepth <= 0 {
		return fmt.Errorf("CONFIG_INVALID: max_path_depth must be positive")
	}
	if ccfg.CompressionLevel < 0 || ccfg.CompressionLevel > 9 {
		return fmt.Errorf("CONFIG_INVALID: compression_level must be 0-9, got %d", ccfg.CompressionLevel)
	}
	return nil
}
