// Package archreader opens compressed archive files for read-only,
// random-access inspection: transparent gzip/bzip2/xz decompression
// layered in front of a TAR or ZIP archive reader.
package archreader

import (
	"github.com/desertwitch/archreader/internal/base"
	"github.com/desertwitch/archreader/internal/codec"
	"github.com/desertwitch/archreader/internal/tarfmt"
	"github.com/desertwitch/archreader/internal/zipfmt"
)

// Re-exported types, so callers never need to import internal/base directly.
type (
	// Status describes one archive member's size, type, permissions,
	// and modification time.
	Status = base.Status

	// FileType is the kind of filesystem object an entry represents.
	FileType = base.FileType

	// Entry is one member of an opened archive.
	Entry = base.Entry

	// Archive is a read-only, random-access view over an archive's entries.
	Archive = base.Archive

	// Stream is a sequential byte source, as returned by Entry.Open.
	Stream = base.Stream

	// Seekable is a random-access byte source, as required by Open.
	Seekable = base.Seekable
)

// FileType values.
const (
	TypeNone      = base.TypeNone
	TypeNotFound  = base.TypeNotFound
	TypeRegular   = base.TypeRegular
	TypeDirectory = base.TypeDirectory
	TypeSymlink   = base.TypeSymlink
	TypeBlock     = base.TypeBlock
	TypeCharacter = base.TypeCharacter
	TypeFIFO      = base.TypeFIFO
	TypeSocket    = base.TypeSocket
	TypeUnknown   = base.TypeUnknown
)

// OpenStatus reports the outcome of [Open].
type OpenStatus = base.OpenStatus

// OpenStatus values.
const (
	StatusOK                 = base.StatusOK
	StatusCompressionDamaged = base.StatusCompressionDamaged
	StatusArchiveDamaged     = base.StatusArchiveDamaged
	StatusArchiveUnknown     = base.StatusArchiveUnknown
)

// archives lists the supported archive formats, tried in order.
var archives = []struct {
	name    string
	isValid func(base.Seekable) bool
	open    func(base.Seekable) (base.Archive, bool)
}{
	{"zip", zipfmt.IsValid, func(s base.Seekable) (base.Archive, bool) {
		a, err := zipfmt.Open(s)

		return a, err == nil
	}},
	{"tar", tarfmt.IsValid, func(s base.Seekable) (base.Archive, bool) {
		return tarfmt.Open(s)
	}},
}

// Open runs the peel-loop/dispatch pipeline over file: it strips away
// any number of layered gzip/bzip2/xz compression wrappers (restarting
// the codec scan after each successful peel, so stacked compression of
// any depth is handled), then dispatches to the ZIP or TAR archive
// reader.
//
// On StatusOK, the returned Archive is ready for use and must be
// Close()d by the caller. On any other status, the returned Archive is
// nil.
func Open(file base.Seekable) (base.Archive, base.OpenStatus, error) {
	cur := file

	for {
		peeled := false

		for _, c := range codec.All {
			if _, err := cur.Seek(0); err != nil {
				return nil, base.StatusArchiveDamaged, err
			}

			if !c.IsValid(cur) {
				continue
			}

			if _, err := cur.Seek(0); err != nil {
				return nil, base.StatusArchiveDamaged, err
			}

			wrapped, err := c.Wrap(cur)
			if err != nil || wrapped == nil {
				return nil, base.StatusCompressionDamaged, nil //nolint:nilerr
			}

			cur = wrapped
			peeled = true

			break
		}

		if !peeled {
			break
		}
	}

	for _, fmtEntry := range archives {
		if _, err := cur.Seek(0); err != nil {
			return nil, base.StatusArchiveDamaged, err
		}

		if !fmtEntry.isValid(cur) {
			continue
		}

		if _, err := cur.Seek(0); err != nil {
			return nil, base.StatusArchiveDamaged, err
		}

		a, ok := fmtEntry.open(cur)
		if !ok {
			return nil, base.StatusArchiveDamaged, nil
		}

		return a, base.StatusOK, nil
	}

	return nil, base.StatusArchiveUnknown, nil
}
