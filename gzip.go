package spz

import (
	"bytes"
	"compress/gzip"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
)

// gzipHeader is the fixed 10-byte gzip header the encoder emits: magic
// 1f 8b, CM=08 (deflate), FLG=00 (no FNAME/FEXTRA/FCOMMENT), MTIME=0,
// XFL=0, OS=0.
var gzipHeader = [10]byte{0x1f, 0x8b, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// gzipCompress wraps data in a minimal, deterministic gzip stream: the fixed
// 10-byte header above, a raw-deflate body produced by klauspost/compress's
// flate writer, and the trailing CRC32+ISIZE the gzip format requires.
func gzipCompress(data []byte) ([]byte, error) {
	var body bytes.Buffer
	w, err := flate.NewWriter(&body, flate.DefaultCompression)
	if err != nil {
		return nil, wrapError(CompressionError, err, "spz: failed to create deflate writer")
	}
	if _, err := w.Write(data); err != nil {
		return nil, wrapError(CompressionError, err, "spz: failed to compress payload")
	}
	if err := w.Close(); err != nil {
		return nil, wrapError(CompressionError, err, "spz: failed to flush deflate stream")
	}

	out := make([]byte, 0, len(gzipHeader)+body.Len()+8)
	out = append(out, gzipHeader[:]...)
	out = append(out, body.Bytes()...)

	crc := crc32.ChecksumIEEE(data)
	isize := uint32(len(data))
	out = append(out,
		byte(crc), byte(crc>>8), byte(crc>>16), byte(crc>>24),
		byte(isize), byte(isize>>8), byte(isize>>16), byte(isize>>24),
	)
	return out, nil
}

// gzipDecompress accepts any valid gzip stream — including ones written
// with FNAME/FEXTRA/FCOMMENT by other encoders — and returns the inflated
// bytes. It uses the standard library's gzip.Reader, which already tolerates
// those optional fields, rather than hand-parsing the 10-byte fixed header
// the encoder emits; decode must be permissive where encode is strict.
func gzipDecompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, wrapError(DecompressionError, err, "spz: not a valid gzip stream")
	}
	defer r.Close()

	// A 16 MiB initial buffer is sufficient for the overwhelming majority of
	// clouds and growing is cheap; bytes.Buffer handles the growth.
	buf := bytes.NewBuffer(make([]byte, 0, 16<<20))
	if _, err := io.Copy(buf, r); err != nil {
		return nil, wrapError(DecompressionError, err, "spz: failed to inflate payload")
	}
	return buf.Bytes(), nil
}
