package archive

import (
	"path"
	"path/filepath"
	"strings"
)

// matchesAnyExclude reports whether relPath matches one of the configured
// exclusion globs. Patterns are segment globs: each `/`-separated segment
// matches with path.Match semantics and `**` spans any number of segments.
// A bare name like `.git` matches that segment anywhere in the path.
func matchesAnyExclude(relPath string, globs []string) bool {
	normalized := normalizeForGlob(relPath)
	if normalized == "" {
		return false
	}
	for _, glob := range globs {
		if matchExclude(glob, normalized) {
			return true
		}
	}
	return false
}

func matchExclude(glob, relPath string) bool {
	pattern := normalizeForGlob(glob)
	if pattern == "" {
		return false
	}
	if strings.HasSuffix(pattern, "/") {
		pattern += "**"
	}
	// A single-segment pattern excludes matching segments at any depth.
	if !strings.Contains(pattern, "/") {
		pattern = "**/" + pattern + "/**"
		return matchGlobSegments(strings.Split(pattern, "/"), strings.Split(relPath+"/", "/"))
	}
	return matchGlobSegments(strings.Split(pattern, "/"), strings.Split(relPath, "/"))
}

func matchGlobSegments(pattern, value []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			for len(pattern) > 1 && pattern[1] == "**" {
				pattern = pattern[1:]
			}
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(value); i++ {
				if matchGlobSegments(pattern[1:], value[i:]) {
					return true
				}
			}
			return false
		}

		if len(value) == 0 {
			return false
		}

		ok, err := path.Match(pattern[0], value[0])
		if err != nil || !ok {
			return false
		}
		pattern = pattern[1:]
		value = value[1:]
	}
	return len(value) == 0
}

func normalizeForGlob(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	raw = filepath.ToSlash(raw)
	raw = strings.TrimPrefix(raw, "./")
	raw = strings.TrimPrefix(raw, "/")
	return strings.TrimSpace(raw)
}
