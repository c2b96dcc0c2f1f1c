package codec

import (
	"compress/bzip2"
	"io"

	"github.com/desertwitch/archreader/internal/base"
)

// bzip2Magic is the bzip2 signature ('B' 'Z' 'h').
var bzip2Magic = []byte{'B', 'Z', 'h'}

// Bzip2Valid reports whether s begins with a bzip2 header.
func Bzip2Valid(s base.Seekable) bool {
	return checkSignature(s, 0, bzip2Magic)
}

// Bzip2Wrap wraps s in a decoding stream over its bzip2 payload.
//
// Decoding uses the standard library's compress/bzip2, which is
// decode-only (matching this pipeline's read-only scope exactly, and
// matching what nabbar-golib's own archive/bz2 adapter reaches for too).
// There is no ecosystem bzip2 decoder preferred over it.
func Bzip2Wrap(s base.Seekable) (base.Seekable, error) {
	return newDecodingStream(s, newBzip2Decoder)
}

func newBzip2Decoder(r io.Reader) (io.Reader, error) {
	return bzip2.NewReader(r), nil
}
