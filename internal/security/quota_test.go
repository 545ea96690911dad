package security

import (
	"errors"
	"testing"
)

func TestAccountantAdmitAndCommit(t *testing.T) {
	cfg := DefaultConfig()
	acct := NewAccountant(cfg)

	if err := acct.AdmitFile(1000); err != nil {
		t.Fatalf("AdmitFile failed: %v", err)
	}
	acct.CommitFile(1000)

	if acct.FilesSeen() != 1 {
		t.Fatalf("files seen = %d, want 1", acct.FilesSeen())
	}
	if acct.BytesTotal() != 1000 {
		t.Fatalf("bytes total = %d, want 1000", acct.BytesTotal())
	}
}

func TestAccountantFileCountLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFileCount = 3
	acct := NewAccountant(cfg)

	for i := 0; i < 3; i++ {
		if err := acct.AdmitFile(100); err != nil {
			t.Fatalf("file %d should pass: %v", i+1, err)
		}
	}

	err := acct.AdmitFile(100)
	var quota *QuotaExceededError
	if !errors.As(err, &quota) {
		t.Fatalf("got %v, want QuotaExceededError", err)
	}
	if quota.Resource != QuotaFiles {
		t.Fatalf("got resource %s, want files", quota.Resource)
	}
}

func TestAccountantPerFileLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFileSize = 5000
	acct := NewAccountant(cfg)

	if err := acct.AdmitFile(5000); err != nil {
		t.Fatalf("exactly at limit should pass: %v", err)
	}

	err := acct.AdmitFile(5001)
	var quota *QuotaExceededError
	if !errors.As(err, &quota) || quota.Resource != QuotaPerFileBytes {
		t.Fatalf("got %v, want per_file_bytes quota error", err)
	}
}

func TestAccountantTotalLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTotalSize = 1000
	acct := NewAccountant(cfg)

	if err := acct.AdmitFile(600); err != nil {
		t.Fatalf("first file failed: %v", err)
	}
	acct.CommitFile(600)
	if err := acct.AdmitFile(400); err != nil {
		t.Fatalf("exactly at limit should pass: %v", err)
	}
	acct.CommitFile(400)

	err := acct.AdmitFile(1)
	var quota *QuotaExceededError
	if !errors.As(err, &quota) || quota.Resource != QuotaTotalBytes {
		t.Fatalf("got %v, want total_bytes quota error", err)
	}
}

func TestAccountantCountCheckedBeforeSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFileCount = 1
	cfg.MaxFileSize = 100
	acct := NewAccountant(cfg)

	if err := acct.AdmitFile(10); err != nil {
		t.Fatalf("first file failed: %v", err)
	}

	// An entry busting both the count and the per-file limit classifies as
	// a file-count violation: count is checked first.
	err := acct.AdmitFile(5000)
	var quota *QuotaExceededError
	if !errors.As(err, &quota) {
		t.Fatalf("got %v, want QuotaExceededError", err)
	}
	if quota.Resource != QuotaFiles {
		t.Fatalf("got resource %s, want files", quota.Resource)
	}
}

func TestAccountantStreamRatio(t *testing.T) {
	cfg := DefaultConfig() // ratio limit 100

	acct := NewAccountant(cfg)
	if err := acct.CheckStream(4200, 42); err != nil {
		t.Fatalf("ratio exactly 100 should pass: %v", err)
	}

	err := acct.CheckStream(4201, 42)
	var bomb *ZipBombError
	if !errors.As(err, &bomb) {
		t.Fatalf("got %v, want ZipBombError", err)
	}
}

func TestAccountantStreamUnknownCompressed(t *testing.T) {
	cfg := DefaultConfig()
	acct := NewAccountant(cfg)

	// Compressed size 0 means unknown: no ratio check, totals still bind.
	if err := acct.CheckStream(1024, 0); err != nil {
		t.Fatalf("unknown compressed size should not trip ratio: %v", err)
	}
}

func TestAccountantUnlimitedFastPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFileSize = UnlimitedBytes
	cfg.MaxTotalSize = UnlimitedBytes
	cfg.MaxFileCount = UnlimitedCount
	acct := NewAccountant(cfg)

	for i := 0; i < 1000; i++ {
		if err := acct.AdmitFile(1 << 40); err != nil {
			t.Fatalf("unlimited quotas should always admit: %v", err)
		}
	}
}
