package tarfmt

import (
	"io"

	"github.com/desertwitch/archreader/internal/base"
)

// Entry is one exposed TAR archive member.
type Entry struct {
	archive  *Archive
	index    int
	filename string
	linkname string

	fileStatus   base.Status
	linkedStatus base.Status

	payloadOffset int64
	payloadSize   uint64
}

var _ base.Entry = (*Entry)(nil)

func (e *Entry) Filename() string        { return e.filename }
func (e *Entry) FileStatus() base.Status { return e.fileStatus }
func (e *Entry) LinkedStatus() base.Status {
	return e.linkedStatus
}
func (e *Entry) Linkname() string { return e.linkname }

// Open returns a stream over the entry's payload bytes. Every read
// re-seeks the archive's shared underlying file to payloadOffset+pos
// first, since all entries project through one cursor.
func (e *Entry) Open() (base.Stream, error) {
	return &entryStream{
		file:   e.archive.file,
		offset: e.payloadOffset,
		size:   e.payloadSize,
	}, nil
}

// entryStream projects a byte range of the archive's shared seekable
// file as an independent, zero-based stream for one entry's payload.
type entryStream struct {
	file   base.Seekable
	offset int64
	size   uint64
	pos    uint64
}

var _ base.Stream = (*entryStream)(nil)

func (s *entryStream) Read(p []byte) (int, error) {
	if s.pos >= s.size {
		return 0, io.EOF
	}

	remaining := s.size - s.pos
	if uint64(len(p)) > remaining { //nolint:gosec
		p = p[:remaining]
	}

	if _, err := s.file.Seek(s.offset + int64(s.pos)); err != nil { //nolint:gosec
		return 0, err //nolint:wrapcheck
	}

	n, err := s.file.Read(p)
	s.pos += uint64(n) //nolint:gosec

	return n, err
}
