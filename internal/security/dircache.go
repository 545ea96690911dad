package security

import (
	"os"
	"path/filepath"
)

// DirCache memoises directories known to exist inside the extraction root.
// It removes the redundant mkdir syscalls an archive full of sibling files
// would otherwise issue, and feeds the canonicalization fast path: a cached
// directory was either created by the engine or already existed and was
// resolved inside the root when first seen.
type DirCache struct {
	root  *Root
	known map[string]struct{}
	order []string
}

// NewDirCache returns a cache primed with the root itself.
func NewDirCache(root *Root) *DirCache {
	c := &DirCache{
		root:  root,
		known: make(map[string]struct{}, 64),
	}
	c.insert(root.Path())
	return c
}

// Contains reports whether abs is a directory the cache knows to exist
// inside the root.
func (c *DirCache) Contains(abs string) bool {
	_, ok := c.known[filepath.Clean(abs)]
	return ok
}

// Ensure creates abs and any missing ancestors below the root, mode 0o755,
// recording each created directory. An ancestor that already exists is
// recorded only if it resolves inside the root; otherwise Ensure returns a
// PathTraversalError. Calling it again for the same path is a map lookup.
// abs must come from a SafePath (or be the root itself).
func (c *DirCache) Ensure(abs string) error {
	abs = filepath.Clean(abs)
	if c.Contains(abs) {
		return nil
	}

	// Walk up to the nearest known ancestor, then create downward.
	var missing []string
	cur := abs
	for !c.Contains(cur) {
		missing = append(missing, cur)
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	for i := len(missing) - 1; i >= 0; i-- {
		if err := os.Mkdir(missing[i], 0o755); err != nil {
			if !os.IsExist(err) {
				return err
			}
			// Something already sits here: trust it only if it resolves
			// inside the root, so a pre-existing symlink cannot carry
			// later writes outside.
			resolved, rerr := filepath.EvalSymlinks(missing[i])
			if rerr != nil {
				return rerr
			}
			if !pathWithin(resolved, c.root.Path()) {
				return &PathTraversalError{Path: missing[i]}
			}
		}
		c.insert(missing[i])
	}
	return nil
}

// Len returns the number of known directories, the root included.
func (c *DirCache) Len() int { return len(c.order) }

func (c *DirCache) insert(abs string) {
	if _, ok := c.known[abs]; ok {
		return
	}
	c.known[abs] = struct{}{}
	c.order = append(c.order, abs)
}
