package security

import (
	"errors"
	"testing"
)

func TestNormalizePathValid(t *testing.T) {
	cfg := DefaultConfig()

	cases := map[string]string{
		"foo/bar.txt":      "foo/bar.txt",
		"./foo/bar.txt":    "foo/bar.txt",
		"foo//bar.txt":     "foo/bar.txt",
		"dir/":             "dir",
		`win\style\p.txt`:  "win/style/p.txt",
		"a/./b/./file.txt": "a/b/file.txt",
	}
	for raw, want := range cases {
		got, err := NormalizePath(raw, KindFile, cfg)
		if err != nil {
			t.Fatalf("NormalizePath(%q) failed: %v", raw, err)
		}
		if got != want {
			t.Fatalf("NormalizePath(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizePathTraversal(t *testing.T) {
	cfg := DefaultConfig()

	for _, raw := range []string{
		"../etc/passwd",
		"foo/../../etc/passwd",
		"../../../etc/passwd",
		`..\..\windows\system32`,
	} {
		_, err := NormalizePath(raw, KindFile, cfg)
		var traversal *PathTraversalError
		if !errors.As(err, &traversal) {
			t.Fatalf("NormalizePath(%q) = %v, want PathTraversalError", raw, err)
		}
	}
}

func TestNormalizePathAbsolute(t *testing.T) {
	cfg := DefaultConfig()

	for _, raw := range []string{"/etc/passwd", `\windows\evil`, `C:\evil`, "c:/evil"} {
		_, err := NormalizePath(raw, KindFile, cfg)
		var traversal *PathTraversalError
		if !errors.As(err, &traversal) {
			t.Fatalf("NormalizePath(%q) = %v, want PathTraversalError", raw, err)
		}
	}

	// Allowed absolute paths are re-rooted rather than honored verbatim.
	cfg.AllowAbsolutePaths = true
	got, err := NormalizePath("/etc/passwd", KindFile, cfg)
	if err != nil {
		t.Fatalf("absolute path with allow flag failed: %v", err)
	}
	if got != "etc/passwd" {
		t.Fatalf("got %q, want etc/passwd", got)
	}
}

func TestNormalizePathBannedComponent(t *testing.T) {
	cfg := DefaultConfig()

	for _, raw := range []string{".ssh/authorized_keys", "home/user/.GIT/config", "a/.env"} {
		_, err := NormalizePath(raw, KindFile, cfg)
		var violation *SecurityViolationError
		if !errors.As(err, &violation) {
			t.Fatalf("NormalizePath(%q) = %v, want SecurityViolationError", raw, err)
		}
	}
}

func TestNormalizePathBannedBeatsAbsoluteAllow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowAbsolutePaths = true

	_, err := NormalizePath("/home/user/.ssh/id_rsa", KindFile, cfg)
	var violation *SecurityViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("got %v, want SecurityViolationError for banned component", err)
	}
}

func TestNormalizePathDepth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPathDepth = 3

	if _, err := NormalizePath("a/b/c", KindFile, cfg); err != nil {
		t.Fatalf("depth exactly at limit should pass: %v", err)
	}

	_, err := NormalizePath("a/b/c/d", KindFile, cfg)
	var quota *QuotaExceededError
	if !errors.As(err, &quota) {
		t.Fatalf("got %v, want QuotaExceededError", err)
	}
	if quota.Resource != QuotaDepth {
		t.Fatalf("got resource %s, want depth", quota.Resource)
	}
}

func TestNormalizePathNullByte(t *testing.T) {
	cfg := DefaultConfig()
	_, err := NormalizePath("evil\x00.txt", KindFile, cfg)
	var violation *SecurityViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("got %v, want SecurityViolationError for NUL", err)
	}
}

func TestNormalizePathEmpty(t *testing.T) {
	cfg := DefaultConfig()
	for _, raw := range []string{"", ".", "./"} {
		if _, err := NormalizePath(raw, KindFile, cfg); err == nil {
			t.Fatalf("NormalizePath(%q) should fail", raw)
		}
	}
}

func TestNormalizePathExtensionAllowList(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowedExtensions = []string{"txt"}

	if _, err := NormalizePath("docs/a.txt", KindFile, cfg); err != nil {
		t.Fatalf("allowed extension rejected: %v", err)
	}
	if _, err := NormalizePath("bin/a.exe", KindFile, cfg); err == nil {
		t.Fatal("disallowed extension should fail")
	}
	// Directories are not subject to the allow-list.
	if _, err := NormalizePath("bin.exe/", KindDirectory, cfg); err != nil {
		t.Fatalf("directory should not be extension-checked: %v", err)
	}
}
