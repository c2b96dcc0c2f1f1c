package codec

import (
	"fmt"
	"io"

	"github.com/desertwitch/archreader/internal/base"
	"github.com/ulikunitz/xz"
)

// xzMagic is the xz stream signature.
var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// XZValid reports whether s begins with an xz header.
func XZValid(s base.Seekable) bool {
	return checkSignature(s, 0, xzMagic)
}

// XZWrap wraps s in a decoding stream over its xz/LZMA2 payload.
func XZWrap(s base.Seekable) (base.Seekable, error) {
	return newDecodingStream(s, newXZDecoder)
}

func newXZDecoder(r io.Reader) (io.Reader, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("xz: %w", err)
	}

	return xr, nil
}
