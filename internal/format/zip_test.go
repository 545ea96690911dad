package format

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"testing"

	"coffre/internal/security"
)

func buildZip(t *testing.T, build func(*zip.Writer)) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	build(zw)
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return writeTestArchive(t, "t.zip", buf.Bytes())
}

func TestZipReaderFileAndDir(t *testing.T) {
	path := buildZip(t, func(zw *zip.Writer) {
		if _, err := zw.Create("dir/"); err != nil {
			t.Fatalf("create dir: %v", err)
		}
		fw, err := zw.Create("dir/file.txt")
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		if _, err := fw.Write([]byte("zip body")); err != nil {
			t.Fatalf("write: %v", err)
		}
	})

	reader, typ, err := Open(path, security.DefaultConfig())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reader.Close()
	if typ != TypeZip {
		t.Fatalf("type = %s", typ)
	}

	dir, err := reader.Next()
	if err != nil || dir.Kind != security.KindDirectory {
		t.Fatalf("dir entry: %v, %v", dir, err)
	}

	file, err := reader.Next()
	if err != nil || file.Kind != security.KindFile {
		t.Fatalf("file entry: %v, %v", file, err)
	}
	if !file.HasCompressedSize {
		t.Fatal("zip entries must carry a compressed size")
	}
	body, _ := io.ReadAll(file.Body)
	if string(body) != "zip body" {
		t.Fatalf("body = %q", body)
	}

	if _, err := reader.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("want EOF, got %v", err)
	}
}

func TestZipReaderSymlink(t *testing.T) {
	path := buildZip(t, func(zw *zip.Writer) {
		hdr := &zip.FileHeader{Name: "link"}
		hdr.SetMode(os.ModeSymlink | 0o777)
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("create symlink header: %v", err)
		}
		if _, err := fw.Write([]byte("target.txt")); err != nil {
			t.Fatalf("write target: %v", err)
		}
	})

	reader, _, err := Open(path, security.DefaultConfig())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reader.Close()

	entry, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if entry.Kind != security.KindSymlink {
		t.Fatalf("kind = %s, want symlink", entry.Kind)
	}
	if entry.LinkTarget != "target.txt" {
		t.Fatalf("target = %q", entry.LinkTarget)
	}
}

func TestZipReaderEncryptedRejected(t *testing.T) {
	// Flip the encryption flag on an otherwise valid member; the engine
	// must refuse it with an actionable message rather than produce
	// garbage bytes.
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: "secret.txt", Flags: zipFlagEncrypted})
	if err != nil {
		t.Fatalf("create header: %v", err)
	}
	if _, err := fw.Write([]byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	path := writeTestArchive(t, "enc.zip", buf.Bytes())

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

func TestZipReaderNotAZip(t *testing.T) {
	path := writeTestArchive(t, "junk.zip", []byte("not a zip"))
	_, _, err := Open(path, security.DefaultConfig())
	var invalid *security.InvalidArchiveError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidArchiveError", err)
	}
}
