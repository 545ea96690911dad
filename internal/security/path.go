package security

import (
	"fmt"
	"strings"
)

// NormalizePath validates the textual form of an archive entry path without
// touching the filesystem and returns it as a clean slash-separated relative
// path.
//
// Validation order: NUL bytes, absolute forms, separator normalization,
// per-component checks (empty, `.`, `..`, deny-list), depth, extension
// allow-list (regular files only).
func NormalizePath(raw string, kind EntryKind, cfg *Config) (string, error) {
	if raw == "" {
		return "", &SecurityViolationError{Reason: "empty path not allowed"}
	}
	if strings.ContainsRune(raw, 0) {
		return "", &SecurityViolationError{Reason: fmt.Sprintf("path contains null bytes: %q", raw)}
	}

	if isAbsoluteEntryPath(raw) && !cfg.AllowAbsolutePaths {
		return "", &PathTraversalError{Path: raw}
	}

	p := strings.ReplaceAll(raw, `\`, "/")
	// Absolute paths allowed by policy are re-rooted: the drive/root prefix
	// is stripped and the remainder extracts relative to the root.
	p = stripAbsolutePrefix(p)
	p = strings.TrimSuffix(p, "/")

	var components []string
	for _, comp := range strings.Split(p, "/") {
		switch comp {
		case "", ".":
			// Collapsed separators and self references carry no meaning.
			continue
		case "..":
			return "", &PathTraversalError{Path: raw}
		}
		// Banned-component deny is stronger than the absolute-path allow.
		if !cfg.ComponentAllowed(comp) {
			return "", &SecurityViolationError{Reason: "banned path component: " + comp}
		}
		components = append(components, comp)
	}

	if len(components) == 0 {
		return "", &SecurityViolationError{Reason: fmt.Sprintf("path has no usable components: %q", raw)}
	}
	if len(components) > cfg.MaxPathDepth {
		return "", &QuotaExceededError{
			Resource: QuotaDepth,
			Current:  uint64(len(components)),
			Max:      uint64(cfg.MaxPathDepth),
		}
	}

	if kind == KindFile && len(cfg.AllowedExtensions) > 0 {
		ext := fileExtension(components[len(components)-1])
		if !cfg.ExtensionAllowed(ext) {
			return "", &SecurityViolationError{Reason: "file extension not allowed: " + components[len(components)-1]}
		}
	}

	return strings.Join(components, "/"), nil
}

// isAbsoluteEntryPath recognizes every absolute form an archive may carry
// regardless of the host platform: POSIX roots, backslash roots, UNC
// prefixes and drive letters.
func isAbsoluteEntryPath(p string) bool {
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return true
	}
	// Drive letter, e.g. C: or c:/foo.
	if len(p) >= 2 && p[1] == ':' &&
		(p[0] >= 'a' && p[0] <= 'z' || p[0] >= 'A' && p[0] <= 'Z') {
		return true
	}
	return false
}

// stripAbsolutePrefix removes a leading root, UNC marker or drive letter
// from a slash-normalized path.
func stripAbsolutePrefix(p string) string {
	if len(p) >= 2 && p[1] == ':' &&
		(p[0] >= 'a' && p[0] <= 'z' || p[0] >= 'A' && p[0] <= 'Z') {
		p = p[2:]
	}
	return strings.TrimLeft(p, "/")
}

// fileExtension returns the final extension of name without the dot, or ""
// when name has none.
func fileExtension(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return name[idx+1:]
}
