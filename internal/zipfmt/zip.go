// Package zipfmt is a thin adapter over [zip.Reader], translating the
// central-directory view of a ZIP archive into the package's format-
// agnostic [base.Archive]/[base.Entry] model.
package zipfmt

import (
	"errors"
	"io"

	"github.com/desertwitch/archreader/internal/base"
	"github.com/klauspost/compress/zip"
)

var errEntryOutOfRange = errors.New("zipfmt: entry index out of range")

// Archive is a read-only ZIP archive, backed by the shared seekable it
// was opened from.
type Archive struct {
	raw   base.Seekable
	files []*zip.File
}

var _ base.Archive = (*Archive)(nil)

// IsValid reports whether s is readable as a ZIP central directory.
// The caller's position is restored to 0 before returning.
func IsValid(s base.Seekable) bool {
	defer func() { _, _ = s.Seek(0) }()

	size, err := s.SeekEnd()
	if err != nil {
		return false
	}

	_, err = zip.NewReader(&readerAt{s: s}, size)

	return err == nil
}

// Open opens a ZIP archive over s, reading its central directory.
func Open(s base.Seekable) (*Archive, error) {
	size, err := s.SeekEnd()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if _, err := s.Seek(0); err != nil {
		return nil, err //nolint:wrapcheck
	}

	zr, err := zip.NewReader(&readerAt{s: s}, size)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &Archive{raw: s, files: zr.File}, nil
}

// Count returns the number of entries in the archive's central directory.
func (a *Archive) Count() int { return len(a.files) }

// Entry returns the i'th entry, in central-directory order.
func (a *Archive) Entry(i int) (base.Entry, error) {
	if i < 0 || i >= len(a.files) {
		return nil, errEntryOutOfRange
	}

	f := a.files[i]
	status := statusFromHeader(f)

	return &Entry{
		file:         f,
		filename:     f.Name,
		fileStatus:   status,
		linkedStatus: status,
	}, nil
}

// Close releases the underlying file.
func (a *Archive) Close() error {
	if closer, ok := a.raw.(interface{ Close() error }); ok {
		return closer.Close() //nolint:wrapcheck
	}

	return nil
}

// readerAt adapts a [base.Seekable]'s shared cursor to [io.ReaderAt], as
// required by [zip.NewReader]. Reads are serialized through seek-then-
// read, same as every other payload projection in this package.
type readerAt struct {
	s base.Seekable
}

var _ io.ReaderAt = (*readerAt)(nil)

func (r *readerAt) ReadAt(p []byte, off int64) (int, error) {
	if _, err := r.s.Seek(off); err != nil {
		return 0, err //nolint:wrapcheck
	}

	total := 0
	for total < len(p) {
		n, err := r.s.Read(p[total:])
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
