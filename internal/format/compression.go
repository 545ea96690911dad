package format

import (
	"compress/bzip2"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"coffre/internal/security"
)

// decompressStream wraps r with the decompression codec the TAR-family
// format calls for. The returned closer releases any codec state; it does
// not close r.
func decompressStream(r io.Reader, typ Type) (io.Reader, func(), error) {
	switch typ {
	case TypeTar:
		return r, func() {}, nil

	case TypeTarGz:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, &security.InvalidArchiveError{Reason: "gzip stream", Err: err}
		}
		return gr, func() { _ = gr.Close() }, nil

	case TypeTarBz2:
		return bzip2.NewReader(r), func() {}, nil

	case TypeTarXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, &security.InvalidArchiveError{Reason: "xz stream", Err: err}
		}
		return xr, func() {}, nil

	case TypeTarZst:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, &security.InvalidArchiveError{Reason: "zstd stream", Err: err}
		}
		return zr.IOReadCloser(), func() { zr.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("no decompressor for format %s", typ)
	}
}
