package security

const (
	modeSetuid        = 0o4000
	modeSetgid        = 0o2000
	modeWorldWritable = 0o002
)

// SanitizeMode strips privilege-escalation bits from an archive mode and
// enforces the world-writable policy.
//
// Setuid and setgid are stripped unconditionally; the sticky bit survives
// (it is how /tmp-style directories are expressed). The world-writable bit
// is rejected unless the policy allows it.
func SanitizeMode(path string, mode uint32, cfg *Config) (uint32, error) {
	sanitized := mode &^ (modeSetuid | modeSetgid)

	if !cfg.AllowWorldWritable && sanitized&modeWorldWritable != 0 {
		return 0, &InvalidPermissionsError{Path: path, Mode: sanitized}
	}
	return sanitized, nil
}

// EffectiveFileMode maps a sanitized archive mode to the mode actually
// applied on disk. With PreservePermissions off every file is 0o644.
func EffectiveFileMode(sanitized uint32, cfg *Config) uint32 {
	if !cfg.PreservePermissions {
		return 0o644
	}
	// Permission and sticky bits only; file-type bits never reach disk.
	return sanitized & 0o1777
}
