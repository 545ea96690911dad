package format

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"

	"coffre/internal/security"
)

// tarSpec describes one member for test archive construction.
type tarSpec struct {
	name     string
	body     string
	typeflag byte
	linkname string
	mode     int64
}

func buildTar(t *testing.T, specs []tarSpec) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, s := range specs {
		flag := s.typeflag
		if flag == 0 {
			flag = tar.TypeReg
		}
		mode := s.mode
		if mode == 0 {
			mode = 0o644
		}
		hdr := &tar.Header{
			Name:     s.name,
			Mode:     mode,
			Size:     int64(len(s.body)),
			Typeflag: flag,
			Linkname: s.linkname,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write header %s: %v", s.name, err)
		}
		if len(s.body) > 0 {
			if _, err := tw.Write([]byte(s.body)); err != nil {
				t.Fatalf("write body %s: %v", s.name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	return buf.Bytes()
}

func writeTestArchive(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}

func TestTarReaderKinds(t *testing.T) {
	data := buildTar(t, []tarSpec{
		{name: "dir/", typeflag: tar.TypeDir, mode: 0o755},
		{name: "dir/file.txt", body: "hello"},
		{name: "link", typeflag: tar.TypeSymlink, linkname: "dir/file.txt"},
		{name: "hard", typeflag: tar.TypeLink, linkname: "dir/file.txt"},
		{name: "fifo", typeflag: tar.TypeFifo},
	})
	path := writeTestArchive(t, "t.tar", data)

	reader, typ, err := Open(path, security.DefaultConfig())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reader.Close()
	if typ != TypeTar {
		t.Fatalf("type = %s", typ)
	}

	wantKinds := []security.EntryKind{
		security.KindDirectory,
		security.KindFile,
		security.KindSymlink,
		security.KindHardlink,
		security.KindUnsupported,
	}
	for i, want := range wantKinds {
		entry, err := reader.Next()
		if err != nil {
			t.Fatalf("entry %d: %v", i, err)
		}
		if entry.Kind != want {
			t.Fatalf("entry %d kind = %s, want %s", i, entry.Kind, want)
		}
		if want == security.KindFile {
			body, err := io.ReadAll(entry.Body)
			if err != nil || string(body) != "hello" {
				t.Fatalf("body = %q, %v", body, err)
			}
			if entry.Size != 5 {
				t.Fatalf("size = %d", entry.Size)
			}
			if !entry.HasMode || entry.Mode != 0o644 {
				t.Fatalf("mode = %#o has=%v", entry.Mode, entry.HasMode)
			}
		}
	}
	if _, err := reader.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("want EOF, got %v", err)
	}
}

func TestTarGzReader(t *testing.T) {
	plain := buildTar(t, []tarSpec{{name: "hello.txt", body: "Hello, World!"}})
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(plain); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	path := writeTestArchive(t, "t.tar.gz", buf.Bytes())

	reader, typ, err := Open(path, security.DefaultConfig())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reader.Close()
	if typ != TypeTarGz {
		t.Fatalf("type = %s", typ)
	}

	entry, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	body, _ := io.ReadAll(entry.Body)
	if string(body) != "Hello, World!" {
		t.Fatalf("body = %q", body)
	}
}

func TestTarReaderCorrupt(t *testing.T) {
	path := writeTestArchive(t, "bad.tar", []byte("this is not a tar archive at all, but it is long enough to try"))

	reader, _, err := Open(path, security.DefaultConfig())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reader.Close()

	_, err = reader.Next()
	var invalid *security.InvalidArchiveError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidArchiveError", err)
	}
}
