package security

import "strings"

// HardlinkSet tracks the entries already extracted in this archive that are
// eligible as hardlink sources. Insertion order is kept in a slice; lookups
// go through a map index keyed by the normalized relative path.
type HardlinkSet struct {
	order []*SafePath
	index map[string]*SafePath
}

// NewHardlinkSet returns an empty set.
func NewHardlinkSet() *HardlinkSet {
	return &HardlinkSet{index: make(map[string]*SafePath, 8)}
}

// Record marks p as extracted and available as a hardlink source.
func (s *HardlinkSet) Record(p *SafePath) {
	if _, ok := s.index[p.Rel()]; ok {
		return
	}
	s.order = append(s.order, p)
	s.index[p.Rel()] = p
}

// Lookup returns the already-extracted entry for a normalized relative
// path.
func (s *HardlinkSet) Lookup(rel string) (*SafePath, bool) {
	p, ok := s.index[rel]
	return p, ok
}

// Len returns the number of recorded entries.
func (s *HardlinkSet) Len() int { return len(s.order) }

// CheckHardlinkTarget applies the textual hardlink policy and returns the
// normalized root-relative target. Targets are archive-root relative;
// absolute targets and targets climbing above the root are escapes.
func CheckHardlinkTarget(linkRel, target string, cfg *Config) (string, error) {
	if !cfg.AllowHardlinks {
		return "", &SecurityViolationError{Reason: "hardlinks not allowed"}
	}
	if target == "" {
		return "", &SecurityViolationError{Reason: "empty hardlink target: " + linkRel}
	}
	if strings.ContainsRune(target, 0) {
		return "", &SecurityViolationError{Reason: "hardlink target contains null bytes: " + linkRel}
	}
	if isAbsoluteEntryPath(target) {
		return "", &HardlinkEscapeError{Path: linkRel, Target: target}
	}

	var stack []string
	for _, comp := range strings.Split(strings.ReplaceAll(target, `\`, "/"), "/") {
		switch comp {
		case "", ".":
			continue
		case "..":
			if len(stack) == 0 {
				return "", &HardlinkEscapeError{Path: linkRel, Target: target}
			}
			stack = stack[:len(stack)-1]
		default:
			if !cfg.ComponentAllowed(comp) {
				return "", &SecurityViolationError{Reason: "hardlink target contains banned component: " + comp}
			}
			stack = append(stack, comp)
		}
	}
	if len(stack) == 0 {
		return "", &HardlinkEscapeError{Path: linkRel, Target: target}
	}
	return strings.Join(stack, "/"), nil
}

// validateHardlink resolves a hardlink target against the set of entries
// already extracted from this archive. External and forward references both
// fail: a target that has not been extracted yet cannot be proven to live
// inside the root.
func validateHardlink(link *SafePath, target string, set *HardlinkSet, cfg *Config) (*SafePath, error) {
	rel, err := CheckHardlinkTarget(link.Rel(), target, cfg)
	if err != nil {
		return nil, err
	}
	source, ok := set.Lookup(rel)
	if !ok {
		return nil, &HardlinkEscapeError{Path: link.Rel(), Target: target}
	}
	return source, nil
}
