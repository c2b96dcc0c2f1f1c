// Package codec implements the transparent decompression layer: magic
// sniffing for gzip/bzip2/xz, and the seekable decoding stream that
// re-presents a compressed [base.Seekable] as a seekable stream of
// decoded bytes.
package codec

import (
	"bytes"

	"github.com/desertwitch/archreader/internal/base"
)

// Codec is a single compression layer's sniff+wrap pair: a magic-byte
// test and a constructor that re-presents the underlying bytes as their
// decoded form.
type Codec struct {
	Name    string
	IsValid func(base.Seekable) bool
	Wrap    func(base.Seekable) (base.Seekable, error)
}

// All is the ordered set of codecs tried by the peel loop. Order does
// not affect correctness, since magics are mutually exclusive.
var All = []Codec{
	{Name: "gzip", IsValid: GzipValid, Wrap: GzipWrap},
	{Name: "bzip2", IsValid: Bzip2Valid, Wrap: Bzip2Wrap},
	{Name: "xz", IsValid: XZValid, Wrap: XZWrap},
}

// checkSignature peeks at offset for magic within s, restoring the
// caller's position to 0 before returning regardless of the outcome.
func checkSignature(s base.Seekable, offset int64, magic []byte) bool {
	defer func() { _, _ = s.Seek(0) }()

	if _, err := s.Seek(offset); err != nil {
		return false
	}

	buf := make([]byte, len(magic))

	n, _ := readFull(s, buf)
	if n < len(magic) {
		return false
	}

	return bytes.Equal(buf, magic)
}

// readFull reads until buf is full or a read returns no progress.
func readFull(s base.Stream, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := s.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
	}

	return total, nil
}
