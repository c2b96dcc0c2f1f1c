package codec

import (
	"fmt"
	"io"

	"github.com/desertwitch/archreader/internal/base"
	"github.com/klauspost/compress/gzip"
)

// gzipMagic is the gzip signature: magic bytes plus the DEFLATE method.
var gzipMagic = []byte{0x1F, 0x8B, 0x08}

// GzipValid reports whether s begins with a gzip header.
func GzipValid(s base.Seekable) bool {
	return checkSignature(s, 0, gzipMagic)
}

// GzipWrap wraps s (already positioned at offset 0) in a decoding stream
// that transparently decodes every concatenated gzip member. Member
// framing (FEXTRA/FNAME/FCOMMENT/FHCRC skipping, CRC32/ISIZE trailer
// verification) is handled by [gzip.Reader] itself, which already
// implements RFC 1952 multistream concatenation. Bytes after a complete
// member that do not begin another member, trailing NUL padding
// included, are not skipped: reading past the last member's data then
// fails with the gzip reader's header error instead of io.EOF.
func GzipWrap(s base.Seekable) (base.Seekable, error) {
	return newDecodingStream(s, newGzipDecoder)
}

func newGzipDecoder(r io.Reader) (io.Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}

	gz.Multistream(true)

	return gz, nil
}
