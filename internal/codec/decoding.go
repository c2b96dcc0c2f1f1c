package codec

import (
	"errors"
	"io"

	"github.com/desertwitch/archreader/internal/base"
)

// skipBufSize is the chunk size used when skipping forward during a seek.
const skipBufSize = 10 * 1024

// rawBufSize is the intermediate buffer used to pull bytes through the
// active decompressor on each Read call.
const rawBufSize = 10 * 1024 * 1024

// newDecompressorFunc constructs a fresh decoder reading compressed bytes
// from r, starting at r's current position. Codec adapters are
// reconstructed (never reused) on rewind or once exhausted, because most
// decompression libraries do not support being fed a second logical stream.
type newDecompressorFunc func(r io.Reader) (io.Reader, error)

var _ base.Seekable = (*decodingStream)(nil)

// decodingStream wraps a seekable over compressed bytes and presents a
// seekable over the decoded bytes, peeling exactly one compression layer.
// Seeking backward re-decodes from scratch (see Seek); this cost is
// accepted in exchange for presenting the same [base.Seekable] contract
// the format dispatcher and the TAR parser rely upon.
type decodingStream struct {
	raw       base.Seekable
	newDecomp newDecompressorFunc

	cur      io.Reader
	curEOF   bool
	noMore   bool // set once reconstruction has failed; the stream is exhausted for good
	pos      int64
	eof      bool
	sizeKnow bool
	size     int64
}

// newDecodingStream returns a [decodingStream] over raw (already
// positioned at its start), decoding via fresh decoders built by newDecomp.
func newDecodingStream(raw base.Seekable, newDecomp newDecompressorFunc) (*decodingStream, error) {
	d := &decodingStream{raw: raw, newDecomp: newDecomp}

	if err := d.reconstruct(); err != nil {
		return nil, err
	}

	return d, nil
}

// reconstruct builds a fresh decompressor over raw at its current position.
// A failure to construct one (typically: no more compressed data) marks
// the stream permanently exhausted rather than propagating a fatal error,
// matching the multi-member gzip case where a second, absent member is
// indistinguishable from clean end-of-file.
func (d *decodingStream) reconstruct() error {
	cur, err := d.newDecomp(d.raw)
	if err != nil {
		d.noMore = true
		d.curEOF = true

		return nil //nolint:nilerr
	}

	d.cur = cur
	d.curEOF = false

	return nil
}

// Read pulls bytes through the active decompressor, reconstructing it
// whenever it reports EOF (the generalized multi-member case), stopping
// once buf is full, no bytes were produced, or no further progress is
// possible.
func (d *decodingStream) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	if d.eof {
		return 0, io.EOF
	}

	result := 0
	for result < len(buf) {
		if d.curEOF {
			if d.noMore {
				break
			}

			if err := d.reconstruct(); err != nil {
				return result, err
			}
			if d.curEOF {
				break
			}
		}

		n, err := d.cur.Read(buf[result:])
		if n > 0 {
			result += n
			d.pos += int64(n)
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				d.curEOF = true
			} else {
				if result == 0 {
					return 0, err
				}

				return result, nil
			}
		}

		if n == 0 && err == nil {
			break
		}
	}

	if result == 0 {
		d.eof = true
		d.size = d.pos
		d.sizeKnow = true

		return 0, io.EOF
	}

	return result, nil
}

// Seek moves the decoded-bytes cursor to the absolute offset pos.
func (d *decodingStream) Seek(pos int64) (int64, error) {
	if pos == d.pos {
		return d.pos, nil
	}

	toSkip := pos
	if pos < d.pos {
		if err := d.rewind(); err != nil {
			return d.pos, err
		}
	} else {
		toSkip = pos - d.pos
	}

	buf := make([]byte, skipBufSize)
	for toSkip > 0 {
		chunk := int64(len(buf))
		if chunk > toSkip {
			chunk = toSkip
		}

		n, err := d.Read(buf[:chunk])
		if n == 0 {
			break
		}
		toSkip -= int64(n)

		if err != nil {
			break
		}
	}

	return d.pos, nil
}

// rewind resets the stream to position 0, re-seeking raw and
// reconstructing the decompressor.
func (d *decodingStream) rewind() error {
	if _, err := d.raw.Seek(0); err != nil {
		return err //nolint:wrapcheck
	}

	d.pos = 0
	d.eof = false
	d.noMore = false

	return d.reconstruct()
}

// SeekEnd reads and discards until EOF, returning the final position.
func (d *decodingStream) SeekEnd() (int64, error) {
	buf := make([]byte, skipBufSize)
	for {
		n, err := d.Read(buf)
		if n == 0 || errors.Is(err, io.EOF) {
			break
		}
	}

	return d.pos, nil
}

// Tell reports the current decoded-bytes position.
func (d *decodingStream) Tell() int64 { return d.pos }
