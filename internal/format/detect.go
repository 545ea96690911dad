package format

import (
	"path/filepath"
	"strings"

	"coffre/internal/security"
)

// Type identifies a supported container format, with the compression codec
// folded in for the TAR family.
type Type int

const (
	TypeTar Type = iota
	TypeTarGz
	TypeTarBz2
	TypeTarXz
	TypeTarZst
	TypeZip
	TypeSevenZ
)

func (t Type) String() string {
	switch t {
	case TypeTar:
		return "tar"
	case TypeTarGz:
		return "tar.gz"
	case TypeTarBz2:
		return "tar.bz2"
	case TypeTarXz:
		return "tar.xz"
	case TypeTarZst:
		return "tar.zst"
	case TypeZip:
		return "zip"
	case TypeSevenZ:
		return "7z"
	default:
		return "unknown"
	}
}

// suffixes maps filename suffixes to formats, longest match first so
// ".tar.gz" wins over ".gz".
var suffixes = []struct {
	suffix string
	typ    Type
}{
	{".tar.gz", TypeTarGz},
	{".tar.bz2", TypeTarBz2},
	{".tar.xz", TypeTarXz},
	{".tar.zst", TypeTarZst},
	{".tgz", TypeTarGz},
	{".tbz2", TypeTarBz2},
	{".txz", TypeTarXz},
	{".tzst", TypeTarZst},
	{".tar", TypeTar},
	{".zip", TypeZip},
	{".7z", TypeSevenZ},
}

// Detect determines the archive format from the filename suffix,
// case-insensitively.
func Detect(path string) (Type, error) {
	name := strings.ToLower(filepath.Base(path))
	for _, s := range suffixes {
		if strings.HasSuffix(name, s.suffix) {
			return s.typ, nil
		}
	}
	return 0, &security.UnsupportedFormatError{Path: path}
}

// Parse maps an explicit format name ("tar.gz", "tgz", "zip", ...) to its
// Type.
func Parse(name string) (Type, error) {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	for _, s := range suffixes {
		if strings.TrimPrefix(s.suffix, ".") == name {
			return s.typ, nil
		}
	}
	return 0, &security.UnsupportedFormatError{Path: name}
}

// CreatableType reports whether the engine can produce archives of this
// format. 7z is extract-only.
func CreatableType(t Type) bool {
	return t != TypeSevenZ
}
