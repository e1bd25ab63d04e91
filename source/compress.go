// Package source discovers log files under a path (recursive post-order
// walk), opens each through the right decompressor, and frames it into
// lines for the tokenizer.
package source

import (
	"io"
	"runtime"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

// newParallelGzipReader decompresses with a thread count derived from
// GOMAXPROCS, capped to avoid excessive goroutine churn on large hosts,
// and 1 MiB blocks.
func newParallelGzipReader(r io.Reader) (io.ReadCloser, error) {
	threads := runtime.GOMAXPROCS(0)
	if threads < 1 {
		threads = 1
	}
	if threads > 8 {
		threads = 8
	}
	const blockSize = 1 << 20
	return pgzip.NewReaderN(r, blockSize, threads)
}

type zstdReadCloser struct {
	*zstd.Decoder
}

func (z *zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

func newZstdDecoder(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &zstdReadCloser{Decoder: dec}, nil
}
