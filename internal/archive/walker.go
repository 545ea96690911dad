package archive

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// sourceEntry is one filesystem object selected for archiving.
type sourceEntry struct {
	absPath    string
	relPath    string // slash-separated archive path
	info       fs.FileInfo
	isDir      bool
	isSymlink  bool
	linkTarget string
}

// collectSources walks every source and returns the entries to archive in a
// deterministic order. Policy skips (hidden files, excluded globs,
// over-limit files) are counted on the report; unreadable sources error.
func collectSources(sources []string, cfg *CreationConfig, report *CreationReport) ([]sourceEntry, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources given")
	}

	var entries []sourceEntry
	for _, src := range sources {
		abs, err := filepath.Abs(src)
		if err != nil {
			return nil, fmt.Errorf("resolve source %s: %w", src, err)
		}
		info, err := os.Lstat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat source %s: %w", src, err)
		}

		base := filepath.Base(abs)
		if info.IsDir() {
			collected, err := walkDir(abs, base, cfg, report)
			if err != nil {
				return nil, err
			}
			entries = append(entries, collected...)
			continue
		}

		entry, keep, err := fileEntry(abs, base, info, cfg, report)
		if err != nil {
			return nil, err
		}
		if keep {
			entries = append(entries, entry)
		}
	}

	if cfg.StripPrefix != "" {
		entries = stripPrefix(entries, cfg.StripPrefix)
	}
	return entries, nil
}

// walkDir walks one source directory. WalkDir visits entries in lexical
// order, which keeps archive layout deterministic across runs.
func walkDir(absRoot, relRoot string, cfg *CreationConfig, report *CreationReport) ([]sourceEntry, error) {
	var entries []sourceEntry

	err := filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel := relRoot
		if p != absRoot {
			inner, rerr := filepath.Rel(absRoot, p)
			if rerr != nil {
				return rerr
			}
			rel = relRoot + "/" + filepath.ToSlash(inner)
		}
		name := d.Name()

		if p != absRoot && !cfg.IncludeHidden && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			report.FilesSkipped++
			return nil
		}
		if matchesAnyExclude(rel, cfg.ExcludePatterns) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			report.FilesSkipped++
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		if d.IsDir() {
			entries = append(entries, sourceEntry{
				absPath: p, relPath: rel, info: info, isDir: true,
			})
			return nil
		}

		entry, keep, err := fileEntry(p, rel, info, cfg, report)
		if err != nil {
			return err
		}
		if keep {
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// fileEntry classifies one non-directory source object under the config's
// symlink and size policies.
func fileEntry(abs, rel string, info fs.FileInfo, cfg *CreationConfig, report *CreationReport) (sourceEntry, bool, error) {
	if info.Mode()&os.ModeSymlink != 0 {
		if cfg.FollowSymlinks {
			resolved, err := os.Stat(abs)
			if err != nil {
				return sourceEntry{}, false, fmt.Errorf("follow symlink %s: %w", rel, err)
			}
			if resolved.IsDir() {
				// A followed directory symlink would make cycles possible;
				// store nothing and say so.
				report.FilesSkipped++
				report.AddWarning("skipped symlink to directory: " + rel)
				return sourceEntry{}, false, nil
			}
			info = resolved
		} else {
			target, err := os.Readlink(abs)
			if err != nil {
				return sourceEntry{}, false, fmt.Errorf("readlink %s: %w", rel, err)
			}
			return sourceEntry{
				absPath: abs, relPath: rel, info: info,
				isSymlink: true, linkTarget: target,
			}, true, nil
		}
	}

	if !info.Mode().IsRegular() {
		report.FilesSkipped++
		report.AddWarning("skipped special file: " + rel)
		return sourceEntry{}, false, nil
	}
	if cfg.MaxFileSize > 0 && uint64(info.Size()) > cfg.MaxFileSize {
		report.FilesSkipped++
		report.AddWarning(fmt.Sprintf("skipped %s: %d bytes over size limit", rel, info.Size()))
		return sourceEntry{}, false, nil
	}

	return sourceEntry{absPath: abs, relPath: rel, info: info}, true, nil
}

func stripPrefix(entries []sourceEntry, prefix string) []sourceEntry {
	prefix = strings.Trim(filepath.ToSlash(prefix), "/")
	if prefix == "" {
		return entries
	}
	out := entries[:0]
	for _, e := range entries {
		switch {
		case e.relPath == prefix:
			// The prefix directory itself vanishes.
			continue
		case strings.HasPrefix(e.relPath, prefix+"/"):
			e.relPath = e.relPath[len(prefix)+1:]
		}
		out = append(out, e)
	}
	return out
}
