package extract

import (
	"context"
	"fmt"
	"io"
	"os"

	"coffre/internal/security"
)

// copyBufferSize matches typical filesystem block sizes; one buffer is
// shared across every entry of an archive.
const copyBufferSize = 64 * 1024

// Writer copies entry bodies to disk through a fixed reusable buffer,
// re-checking quotas after every buffer so a lying container is stopped
// within one buffer of the limit and its partial file removed.
type Writer struct {
	buf []byte
}

// NewWriter allocates the shared copy buffer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, copyBufferSize)}
}

// WriteFile streams body into dst. declared is the container's declared
// uncompressed size, compressed its per-entry compressed size (0 =
// unknown). The partially written file is removed on quota violation,
// cancellation and I/O failure alike.
func (w *Writer) WriteFile(
	ctx context.Context,
	dst *security.SafePath,
	body io.Reader,
	mode uint32,
	declared, compressed uint64,
	quota *security.Accountant,
	progress Progress,
) (written uint64, err error) {
	f, err := openRegular(dst.Abs(), mode)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dst.Abs())
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, rerr := body.Read(w.buf)
		if n > 0 {
			if _, werr := f.Write(w.buf[:n]); werr != nil {
				return written, werr
			}
			written += uint64(n)
			progress.BytesWritten(n)

			if qerr := quota.CheckStream(written, compressed); qerr != nil {
				return written, qerr
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return written, &security.InvalidArchiveError{Reason: "read entry " + dst.Rel(), Err: rerr}
		}
	}

	// The container's declared size and the bytes the codec produced must
	// agree; a mismatch means the headers lie.
	if written != declared {
		return written, &security.InvalidArchiveError{
			Reason: fmt.Sprintf("entry %s declared %d bytes but produced %d", dst.Rel(), declared, written),
		}
	}

	return written, nil
}
