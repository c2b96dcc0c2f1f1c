// Package tarfmt implements the TAR archive reader: USTAR/GNU header
// parsing, GNU long-name/long-link stitching, hardlink and symlink
// resolution across the entry list, and per-entry payload projection as
// an independently seekable sub-stream of the underlying archive file.
package tarfmt

import (
	"github.com/desertwitch/archreader/internal/base"
)

// cookedEntry is one fully-decoded TAR entry, after GNU long-name/
// long-link stitching, ready for link resolution and exposure.
type cookedEntry struct {
	name       string
	linkname   string
	typeflag   byte
	mode       uint32
	size       uint64
	mtime      int64
	dataOffset int64
}

// Archive is a read-only, random-access TAR archive.
type Archive struct {
	file    base.Seekable
	entries []cookedEntry
}

var _ base.Archive = (*Archive)(nil)

// IsValid reports whether s begins with a TAR header: either the USTAR
// magic at offset 257, or a header that parses and checksums from
// offset 0. The caller's position is restored to 0 before returning.
func IsValid(s base.Seekable) bool {
	buf := make([]byte, recordSize)
	if n, err := readAt(s, 0, buf); err == nil && n == recordSize && looksLikeUstar(buf) {
		_, _ = s.Seek(0)

		return true
	}

	_, ok := parseHeader(buf)
	_, _ = s.Seek(0)

	return ok
}

// readAt seeks s to offset and reads len(buf) bytes into it.
func readAt(s base.Seekable, offset int64, buf []byte) (int, error) {
	if _, err := s.Seek(offset); err != nil {
		return 0, err //nolint:wrapcheck
	}

	return readFull(s, buf)
}

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

// Open loads the entry list of a TAR archive from file (owned by the
// returned Archive on success). It fails if file is empty or if no
// entry headers could be read.
func Open(file base.Seekable) (*Archive, bool) {
	buf := make([]byte, 1)

	n, _ := file.Read(buf)
	_, _ = file.Seek(0)

	if n != 1 {
		return nil, false
	}

	a := &Archive{file: file}
	a.loadEntries()

	return a, len(a.entries) > 0
}

// loadEntries repeatedly reads headers starting at offset 0 until a
// header fails to parse (a benign end-of-archive condition: a run of
// NUL records).
func (a *Archive) loadEntries() {
	var offset int64

	for {
		entry, next, ok := a.next(offset)
		if !ok {
			return
		}

		a.entries = append(a.entries, entry)
		offset = next
	}
}

// next reads the header record at offset, applying GNU long-name/
// long-link stitching, and returns the cooked entry plus the offset of
// the following header.
func (a *Archive) next(offset int64) (cookedEntry, int64, bool) {
	raw := make([]byte, recordSize)
	if n, err := readAt(a.file, offset, raw); err != nil || n != recordSize {
		return cookedEntry{}, 0, false
	}

	h, ok := parseHeader(raw)
	if !ok {
		return cookedEntry{}, 0, false
	}

	dataOffset := offset + recordSize

	switch h.typeflag {
	case typeHardlink, typeSymlink, typeDirectory, typeFIFO, typeContig, typeCharacter, typeBlock:
		return cookFromHeader(h, dataOffset), dataOffset, true

	case typeGNULong, typeGNULink:
		return a.applyGNULong(h, dataOffset)

	default:
		next := dataOffset + int64(blockSize(h.size)) //nolint:gosec

		return cookFromHeader(h, dataOffset), next, true
	}
}

// applyGNULong reads the long-name/long-link payload attached to header
// h, recurses to read the real header that follows it, and overwrites
// that entry's name (for 'L') or linkname (for 'K') with the stitched
// value. The returned offset is the one following the *real* entry.
func (a *Archive) applyGNULong(h rawHeader, payloadOffset int64) (cookedEntry, int64, bool) {
	buf := make([]byte, blockSize(h.size)) //nolint:gosec
	if n, err := readAt(a.file, payloadOffset, buf); err != nil || uint64(n) != blockSize(h.size) { //nolint:gosec
		return cookedEntry{}, 0, false
	}

	nextHeaderOffset := payloadOffset + int64(len(buf)) //nolint:gosec

	entry, next, ok := a.next(nextHeaderOffset)
	if !ok {
		return cookedEntry{}, 0, false
	}

	stitched := asString(buf)

	switch h.typeflag {
	case typeGNULong:
		entry.name = stitched
	case typeGNULink:
		entry.linkname = stitched
	}

	return entry, next, true
}

func cookFromHeader(h rawHeader, dataOffset int64) cookedEntry {
	return cookedEntry{
		name:       h.name,
		linkname:   h.linkname,
		typeflag:   h.typeflag,
		mode:       h.mode,
		size:       h.size,
		mtime:      h.mtime,
		dataOffset: dataOffset,
	}
}

// Count returns the number of entries in the archive.
func (a *Archive) Count() int { return len(a.entries) }

// Close releases the underlying file.
func (a *Archive) Close() error {
	if closer, ok := a.file.(interface{ Close() error }); ok {
		return closer.Close() //nolint:wrapcheck
	}

	return nil
}

// Entry returns the i'th entry (insertion order), resolving its link
// status lazily and deterministically, independent of access order.
func (a *Archive) Entry(i int) (base.Entry, error) {
	if i < 0 || i >= len(a.entries) {
		return nil, errEntryOutOfRange
	}

	ref := a.entries[i]

	isHardlink := ref.typeflag == typeHardlink
	fileType := fsType(ref.typeflag)
	fileStatus := base.Status{
		Size:     ref.size,
		Mtime:    mtimeOf(ref.mtime),
		Type:     fileType,
		Perms:    perms(ref.mode),
		Hardlink: isHardlink,
	}

	status := a.linkedStatusFor(i, isHardlink, fileStatus)

	payloadOffset, payloadSize := ref.dataOffset, ref.size
	if isHardlink {
		if target := a.hardlinkFor(i); target != i && target < len(a.entries) {
			payloadOffset, payloadSize = a.entries[target].dataOffset, a.entries[target].size
		}
	}

	return &Entry{
		archive:       a,
		index:         i,
		filename:      ref.name,
		linkname:      ref.linkname,
		fileStatus:    fileStatus,
		linkedStatus:  status,
		payloadOffset: payloadOffset,
		payloadSize:   payloadSize,
	}, nil
}

// linkedStatusFor computes linked_status for entry i: hard links resolve
// via hardlinkFor (exact linkname match), symlinks via realpath
// (lexical `.`/`..` resolution with cycle detection).
func (a *Archive) linkedStatusFor(i int, isHardlink bool, fileStatus base.Status) base.Status {
	var link int
	if isHardlink {
		link = a.hardlinkFor(i)
	} else {
		link = a.realpath(i)
	}

	if link == i {
		return fileStatus
	}
	if link == len(a.entries) {
		return base.NotFound
	}

	linked := a.entries[link]
	linkIsHard := linked.typeflag == typeHardlink

	return base.Status{
		Size:     linked.size,
		Mtime:    mtimeOf(linked.mtime),
		Type:     fsType(linked.typeflag),
		Perms:    perms(linked.mode),
		Hardlink: linkIsHard,
	}
}

func fsType(typeflag byte) base.FileType {
	switch typeflag {
	case typeRegular, typeRegularA, typeContig:
		return base.TypeRegular
	case typeHardlink, typeSymlink:
		return base.TypeSymlink
	case typeCharacter:
		return base.TypeCharacter
	case typeBlock:
		return base.TypeBlock
	case typeDirectory:
		return base.TypeDirectory
	case typeFIFO:
		return base.TypeFIFO
	default:
		return base.TypeUnknown
	}
}

func perms(mode uint32) uint16 {
	const all = 0o7777

	return uint16(mode & all) //nolint:gosec
}
