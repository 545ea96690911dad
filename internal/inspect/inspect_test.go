package inspect

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"coffre/internal/security"
)

func buildTarFile(t *testing.T, name string, build func(*tar.Writer)) string {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	build(tw)
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}

func addFile(t *testing.T, tw *tar.Writer, name, body string, mode int64) {
	t.Helper()
	hdr := &tar.Header{Name: name, Mode: mode, Size: int64(len(body))}
	if err := tw.WriteHeader(hdr); err != nil {
		t.Fatalf("header %s: %v", name, err)
	}
	if _, err := tw.Write([]byte(body)); err != nil {
		t.Fatalf("body %s: %v", name, err)
	}
}

func TestListManifest(t *testing.T) {
	path := buildTarFile(t, "l.tar", func(tw *tar.Writer) {
		if err := tw.WriteHeader(&tar.Header{Name: "dir/", Mode: 0o755, Typeflag: tar.TypeDir}); err != nil {
			t.Fatalf("dir header: %v", err)
		}
		addFile(t, tw, "dir/a.txt", "aaaa", 0o644)
		addFile(t, tw, "dir/b.txt", "bb", 0o644)
	})

	manifest, err := List(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if manifest.Format != "tar" {
		t.Fatalf("format = %s", manifest.Format)
	}
	if manifest.TotalEntries != 3 {
		t.Fatalf("entries = %d, want 3", manifest.TotalEntries)
	}
	if manifest.TotalSize != 6 {
		t.Fatalf("total size = %d, want 6", manifest.TotalSize)
	}
	if manifest.Entries[1].Path != "dir/a.txt" || manifest.Entries[1].Kind != "file" {
		t.Fatalf("unexpected entry: %+v", manifest.Entries[1])
	}
}

func TestListQuotaBoundsManifest(t *testing.T) {
	path := buildTarFile(t, "many.tar", func(tw *tar.Writer) {
		for _, name := range []string{"a", "b", "c"} {
			addFile(t, tw, name, "x", 0o644)
		}
	})

	cfg := security.DefaultConfig()
	cfg.MaxFileCount = 2
	_, err := List(context.Background(), path, cfg)
	var quota *security.QuotaExceededError
	if !errors.As(err, &quota) {
		t.Fatalf("got %v, want QuotaExceededError", err)
	}
}

func TestVerifySafeArchive(t *testing.T) {
	path := buildTarFile(t, "safe.tar", func(tw *tar.Writer) {
		addFile(t, tw, "docs/readme.txt", "fine", 0o644)
	})

	report, err := Verify(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !report.IsSafe() {
		t.Fatalf("safe archive flagged unsafe: %+v", report.Issues)
	}
	if report.Status != CheckPass || report.SecurityStatus != CheckPass {
		t.Fatalf("status = %s/%s", report.Status, report.SecurityStatus)
	}
	if report.TotalEntries != 1 {
		t.Fatalf("entries = %d", report.TotalEntries)
	}
}

func TestVerifyTraversalIsCritical(t *testing.T) {
	path := buildTarFile(t, "evil.tar", func(tw *tar.Writer) {
		addFile(t, tw, "../../../etc/passwd", "malicious content", 0o644)
	})

	report, err := Verify(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if report.IsSafe() {
		t.Fatal("traversal archive must be unsafe")
	}
	if report.SecurityStatus != CheckFail || report.Status != CheckFail {
		t.Fatalf("status = %s/%s, want fail", report.Status, report.SecurityStatus)
	}

	found := false
	for _, issue := range report.Issues {
		if issue.Category == "path-traversal" && issue.Severity == SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing critical path-traversal issue: %+v", report.Issues)
	}
}

func TestVerifySymlinkFindings(t *testing.T) {
	path := buildTarFile(t, "sym.tar", func(tw *tar.Writer) {
		hdr := &tar.Header{Name: "evil_link", Mode: 0o777, Typeflag: tar.TypeSymlink, Linkname: "/etc/passwd"}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("symlink header: %v", err)
		}
	})

	// Default policy: symlinks denied → High.
	report, err := Verify(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if report.IsSafe() {
		t.Fatal("symlink under deny-all must be unsafe")
	}

	// Symlinks allowed: the escape itself → Critical.
	cfg := security.DefaultConfig()
	cfg.AllowSymlinks = true
	report, err = Verify(context.Background(), path, cfg)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	found := false
	for _, issue := range report.Issues {
		if issue.Category == "symlink-escape" && issue.Severity == SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing symlink-escape issue: %+v", report.Issues)
	}
}

func TestVerifySetuidWarning(t *testing.T) {
	path := buildTarFile(t, "suid.tar", func(tw *tar.Writer) {
		addFile(t, tw, "tool", "#!/bin/sh\n", 0o4755)
	})

	report, err := Verify(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	// Warnings alone do not make the archive unsafe.
	if !report.IsSafe() {
		t.Fatalf("setuid warning should not fail verification: %+v", report.Issues)
	}
	if len(report.Issues) == 0 || report.Issues[0].Severity != SeverityWarning {
		t.Fatalf("expected a warning issue, got %+v", report.Issues)
	}
}

func TestVerifyIssuesSortedBySeverity(t *testing.T) {
	path := buildTarFile(t, "mixed.tar", func(tw *tar.Writer) {
		addFile(t, tw, "tool", "x", 0o4755)                  // warning
		addFile(t, tw, "../../../etc/passwd", "boom", 0o644) // critical
	})

	report, err := Verify(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if len(report.Issues) < 2 {
		t.Fatalf("want two issues, got %+v", report.Issues)
	}
	if report.Issues[0].Severity != SeverityCritical {
		t.Fatalf("issues not sorted, first = %s", report.Issues[0].Severity)
	}
}
