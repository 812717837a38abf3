// Package rawio opens instrument and side-table files, transparently
// decompressing archived copies.
//
// Station archives keep old soundings and sunspot tables gzip or zstd
// compressed. Open picks the decoder from the file extension so the parsers
// only ever see plain text:
//   - ".gz": parallel gzip via github.com/klauspost/pgzip
//   - ".zst", ".zstd": github.com/klauspost/compress/zstd
//   - anything else: the file as-is
package rawio
