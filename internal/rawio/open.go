package rawio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

// gzipBlockSize is the pgzip read-ahead block size. Soundings are small, so
// a modest block keeps memory flat while still using every core on large
// sunspot archives.
const gzipBlockSize = 256 * 1024

// Compression identifies how a file on disk is encoded.
type Compression int

const (
	// CompressionNone means plain text.
	CompressionNone Compression = iota
	// CompressionGzip means a gzip stream.
	CompressionGzip
	// CompressionZstd means a zstd stream.
	CompressionZstd
)

// String returns the compression name.
func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

// DetectCompression chooses the decoder from the file extension.
func DetectCompression(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// TrimCompressionExt removes a compression extension so callers can match
// the underlying file name (e.g. "x_iono.ion.gz" -> "x_iono.ion").
func TrimCompressionExt(path string) string {
	if DetectCompression(path) == CompressionNone {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// Open opens path for reading, decompressing it when the extension says so.
// Closing the returned reader closes both the decoder and the file.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path) //nolint:gosec // Operator-supplied path is intentional
	if err != nil {
		return nil, err
	}

	rc, err := wrap(f, DetectCompression(path))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return rc, nil
}

// wrap returns a ReadCloser decoding f with the given compression.
func wrap(f *os.File, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionGzip:
		gz, err := pgzip.NewReaderN(f, gzipBlockSize, runtime.NumCPU())
		if err != nil {
			return nil, err
		}
		return &stackedCloser{Reader: gz, closers: []io.Closer{gz, f}}, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		return &stackedCloser{Reader: dec, closers: []io.Closer{zstdCloser{dec}, f}}, nil
	default:
		return f, nil
	}
}

// stackedCloser closes a decoder and then its underlying file.
type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

// Close closes every layer and returns the first error.
func (s *stackedCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// zstdCloser adapts zstd.Decoder, whose Close returns nothing.
type zstdCloser struct {
	dec *zstd.Decoder
}

// Close releases the decoder's goroutines.
func (z zstdCloser) Close() error {
	z.dec.Close()
	return nil
}
