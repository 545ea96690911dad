package format

import (
	"errors"
	"testing"

	"coffre/internal/security"
)

func TestDetectSuffixes(t *testing.T) {
	cases := map[string]Type{
		"a.tar":          TypeTar,
		"a.tar.gz":       TypeTarGz,
		"a.tgz":          TypeTarGz,
		"a.tar.bz2":      TypeTarBz2,
		"a.tbz2":         TypeTarBz2,
		"a.tar.xz":       TypeTarXz,
		"a.txz":          TypeTarXz,
		"a.tar.zst":      TypeTarZst,
		"a.tzst":         TypeTarZst,
		"a.zip":          TypeZip,
		"a.7z":           TypeSevenZ,
		"A.TAR.GZ":       TypeTarGz,
		"dir/nested.zip": TypeZip,
	}
	for name, want := range cases {
		got, err := Detect(name)
		if err != nil {
			t.Fatalf("Detect(%q) failed: %v", name, err)
		}
		if got != want {
			t.Fatalf("Detect(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestDetectLongestMatchWins(t *testing.T) {
	// ".tar.gz" must not be mistaken for a bare ".gz" or ".tar".
	got, err := Detect("backup.tar.gz")
	if err != nil || got != TypeTarGz {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestDetectUnknown(t *testing.T) {
	for _, name := range []string{"a.rar", "a.gz", "archive", "a.tar.lz4"} {
		_, err := Detect(name)
		var unsup *security.UnsupportedFormatError
		if !errors.As(err, &unsup) {
			t.Fatalf("Detect(%q) = %v, want UnsupportedFormatError", name, err)
		}
	}
}

func TestParse(t *testing.T) {
	for name, want := range map[string]Type{
		"tar.gz":  TypeTarGz,
		"tgz":     TypeTarGz,
		"zip":     TypeZip,
		".tar":    TypeTar,
		"TAR.ZST": TypeTarZst,
	} {
		got, err := Parse(name)
		if err != nil || got != want {
			t.Fatalf("Parse(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	if _, err := Parse("rar"); err == nil {
		t.Fatal("Parse(rar) should fail")
	}
}

func TestCreatableType(t *testing.T) {
	if CreatableType(TypeSevenZ) {
		t.Fatal("7z must be extract-only")
	}
	if !CreatableType(TypeTarZst) || !CreatableType(TypeZip) {
		t.Fatal("tar family and zip must be creatable")
	}
}
