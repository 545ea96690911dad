package security

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Root is the caller-supplied extraction destination, canonicalized once at
// the start of an extraction. Every SafePath is proven to live under it.
type Root struct {
	path string
}

// PrepareRoot ensures dir exists and returns its canonical form.
func PrepareRoot(dir string) (*Root, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return nil, err
	}
	return &Root{path: filepath.Clean(abs)}, nil
}

// Path returns the canonical absolute root directory.
func (r *Root) Path() string { return r.path }

// join returns root/rel without any validation. Callers outside this
// package go through the validator instead.
func (r *Root) join(rel string) string {
	return filepath.Join(r.path, filepath.FromSlash(rel))
}

// SafePath is a path proven at construction time to resolve inside the
// extraction root. It can only be produced by the validator; every
// filesystem mutation takes a SafePath, never a raw string.
type SafePath struct {
	rel string // normalized, slash-separated
	abs string // root-joined platform path
}

// Rel returns the normalized archive-relative path (slash-separated).
func (p *SafePath) Rel() string { return p.rel }

// Abs returns the absolute on-disk location inside the root.
func (p *SafePath) Abs() string { return p.abs }

// ParentAbs returns the absolute parent directory of the path.
func (p *SafePath) ParentAbs() string { return filepath.Dir(p.abs) }

// makeSafePath joins a normalized relative path onto the root and proves the
// result stays inside it.
//
// The canonicalization syscalls are skipped on two fast paths: when the
// parent directory is tracked in DirCache (created by the engine, or
// resolved inside the root when first seen), and when symlinks are impossible in the tree
// because the policy forbids them and none have been seen. The textual
// prefix check always runs.
func makeSafePath(rel string, root *Root, ctx *validationContext) (*SafePath, error) {
	abs := root.join(rel)

	if !pathWithin(abs, root.path) {
		return nil, &PathTraversalError{Path: rel}
	}

	parent := filepath.Dir(abs)
	if !ctx.trustedParent(parent) {
		resolved, err := filepath.EvalSymlinks(parent)
		switch {
		case err == nil:
			if !pathWithin(resolved, root.path) {
				return nil, &PathTraversalError{Path: rel}
			}
		case errors.Is(err, fs.ErrNotExist):
			// Parent will be created under the root by DirCache.Ensure,
			// which rejects an existing ancestor that resolves outside it;
			// the textual check above bounds the path itself.
		default:
			return nil, err
		}
	}

	if ctx.needsFullResolve() {
		resolved, err := filepath.EvalSymlinks(abs)
		switch {
		case err == nil:
			if !pathWithin(resolved, root.path) {
				return nil, &PathTraversalError{Path: rel}
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	return &SafePath{rel: rel, abs: abs}, nil
}

// pathWithin reports whether path equals base or is a descendant of it.
// Comparison is case-insensitive on platforms whose default filesystems are
// (Windows, macOS), closing the mixed-case bypass.
func pathWithin(path, base string) bool {
	path = filepath.Clean(path)
	base = filepath.Clean(base)
	if caseInsensitiveFS() {
		path = strings.ToLower(path)
		base = strings.ToLower(base)
	}
	if path == base {
		return true
	}
	return strings.HasPrefix(path, base+string(filepath.Separator))
}

func caseInsensitiveFS() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}
