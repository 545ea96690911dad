package security

import (
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// SafeSymlink is a symlink whose target has been proven to resolve inside
// the extraction root. The link is created on disk with the original target
// text so on-disk semantics match the archive.
type SafeSymlink struct {
	link   *SafePath
	target string
}

// Link returns the validated location the symlink will be created at.
func (s *SafeSymlink) Link() *SafePath { return s.link }

// TargetText returns the target exactly as stored in the archive.
func (s *SafeSymlink) TargetText() string { return s.target }

// CheckSymlinkTarget applies the textual symlink policy: targets must be
// non-empty, NUL-free, relative (unless absolute paths are allowed), free of
// banned components, and must not climb above the root when resolved
// against the link's directory.
//
// It returns the lexically resolved root-relative target, or "" for an
// absolute target the policy admits. linkRel must already be a normalized
// relative path.
func CheckSymlinkTarget(linkRel, target string, cfg *Config) (string, error) {
	if !cfg.AllowSymlinks {
		return "", &SecurityViolationError{Reason: "symlinks not allowed"}
	}
	if target == "" {
		return "", &SecurityViolationError{Reason: "empty symlink target: " + linkRel}
	}
	if strings.ContainsRune(target, 0) {
		return "", &SecurityViolationError{Reason: "symlink target contains null bytes: " + linkRel}
	}

	if isAbsoluteEntryPath(target) {
		if !cfg.AllowAbsolutePaths {
			return "", &SymlinkEscapeError{Path: linkRel, Target: target}
		}
		// Absolute targets are only reachable on trusted inputs; no
		// containment to prove.
		return "", nil
	}

	// Resolve the target against the link's directory, purely textually.
	// Climbing above the root is an escape regardless of what exists on
	// disk.
	stack := parentComponents(linkRel)
	for _, comp := range strings.Split(strings.ReplaceAll(target, `\`, "/"), "/") {
		switch comp {
		case "", ".":
			continue
		case "..":
			if len(stack) == 0 {
				return "", &SymlinkEscapeError{Path: linkRel, Target: target}
			}
			stack = stack[:len(stack)-1]
		default:
			if !cfg.ComponentAllowed(comp) {
				return "", &SecurityViolationError{Reason: "symlink target contains banned component: " + comp}
			}
			stack = append(stack, comp)
		}
	}

	return strings.Join(stack, "/"), nil
}

// validateSymlink proves that target, resolved relative to the link's
// directory, stays inside the root.
//
// The resolution is textual first (the target usually does not exist yet),
// then a hop-safe join confirms that symlinks already present inside the
// root cannot redirect the result outside it.
func validateSymlink(link *SafePath, target string, root *Root, cfg *Config) (*SafeSymlink, error) {
	resolvedRel, err := CheckSymlinkTarget(link.Rel(), target, cfg)
	if err != nil {
		return nil, err
	}
	if resolvedRel == "" && isAbsoluteEntryPath(target) {
		return &SafeSymlink{link: link, target: target}, nil
	}

	joined, err := securejoin.SecureJoin(root.Path(), resolvedRel)
	if err != nil {
		return nil, &SymlinkEscapeError{Path: link.Rel(), Target: target}
	}
	if !pathWithin(joined, root.Path()) {
		return nil, &SymlinkEscapeError{Path: link.Rel(), Target: target}
	}

	return &SafeSymlink{link: link, target: target}, nil
}

// parentComponents returns the directory components of a normalized
// slash-separated relative path.
func parentComponents(rel string) []string {
	parts := strings.Split(rel, "/")
	if len(parts) <= 1 {
		return nil
	}
	return append([]string(nil), parts[:len(parts)-1]...)
}
