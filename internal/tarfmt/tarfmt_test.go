package tarfmt

import (
	"io"

	"github.com/desertwitch/archreader/internal/base"
)

// memSeekable is an in-memory [base.Seekable] over a fixed byte slice,
// used to build synthetic TAR fixtures without touching the filesystem.
type memSeekable struct {
	data []byte
	pos  int64
}

var _ base.Seekable = (*memSeekable)(nil)

func newMemSeekable(data []byte) *memSeekable {
	return &memSeekable{data: data}
}

func (m *memSeekable) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}

	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)

	return n, nil
}

func (m *memSeekable) Seek(pos int64) (int64, error) {
	m.pos = pos

	return m.pos, nil
}

func (m *memSeekable) SeekEnd() (int64, error) {
	m.pos = int64(len(m.data))

	return m.pos, nil
}

func (m *memSeekable) Tell() int64 { return m.pos }

// buildRecord lays out one 512-byte USTAR header record for the given
// field values, computing a correct (unsigned) checksum.
func buildRecord(name string, typeflag byte, linkname string, size uint64, mtime int64, mode uint32) []byte {
	rec := make([]byte, recordSize)

	copy(rec[offName:offName+lenName], name)
	putOctal(rec[offMode:offMode+lenMode], uint64(mode))
	putOctal(rec[offSize:offSize+lenSize], size)
	putOctal(rec[offMtime:offMtime+lenMtime], uint64(mtime)) //nolint:gosec
	rec[offTypeflag] = typeflag
	copy(rec[offLinkname:offLinkname+lenLinkname], linkname)
	copy(rec[offMagic:offMagic+lenMagic], "ustar")

	for i := offChksum; i < offChksum+lenChksum; i++ {
		rec[i] = ' '
	}

	var sum int64
	for _, c := range rec {
		sum += int64(c)
	}
	putOctal(rec[offChksum:offChksum+lenChksum], uint64(sum)) //nolint:gosec

	return rec
}

// putOctal writes v as zero-padded octal ASCII, terminated with a NUL,
// matching the USTAR fixed-width numeric field convention.
func putOctal(b []byte, v uint64) {
	width := len(b) - 1
	digits := make([]byte, width)

	for i := width - 1; i >= 0; i-- {
		digits[i] = byte('0' + v%8)
		v /= 8
	}

	copy(b, digits)
	b[width] = 0
}

func padToBlock(b []byte) []byte {
	n := blockSize(uint64(len(b))) //nolint:gosec
	out := make([]byte, n)
	copy(out, b)

	return out
}
