package security

// validationContext carries the state that lets SafePath construction skip
// canonicalization syscalls when safety can be proven another way.
//
// EvalSymlinks exists only to detect symlink hops in the path chain. A
// directory tracked in DirCache was created by the engine or resolved inside
// the root when first seen, and when the policy forbids symlinks and the
// archive has not produced one, the archive cannot have added a symlink to
// the extraction tree.
type validationContext struct {
	dirCache        *DirCache
	symlinkSeen     bool
	symlinksAllowed bool
}

func newValidationContext(symlinksAllowed bool, cache *DirCache) *validationContext {
	return &validationContext{dirCache: cache, symlinksAllowed: symlinksAllowed}
}

func (c *validationContext) markSymlinkSeen() { c.symlinkSeen = true }

// trustedParent reports whether parent was created by the engine and needs
// no canonicalization.
func (c *validationContext) trustedParent(parent string) bool {
	return c.dirCache != nil && c.dirCache.Contains(parent)
}

// needsFullResolve reports whether the fully joined path must be
// canonicalized before trusting the prefix check.
func (c *validationContext) needsFullResolve() bool {
	return c.symlinksAllowed || c.symlinkSeen
}
