package zipfmt

import (
	"io"

	"github.com/desertwitch/archreader/internal/base"
	"github.com/klauspost/compress/zip"
)

// Entry is one exposed ZIP archive member.
//
// ZIP carries no equivalent of TAR's hard links or symlinks, so unlike
// [tarfmt], there is no cross-entry resolution here: LinkedStatus
// always equals FileStatus, and Linkname is always empty.
type Entry struct {
	file         *zip.File
	filename     string
	fileStatus   base.Status
	linkedStatus base.Status
}

var _ base.Entry = (*Entry)(nil)

func (e *Entry) Filename() string          { return e.filename }
func (e *Entry) FileStatus() base.Status   { return e.fileStatus }
func (e *Entry) LinkedStatus() base.Status { return e.linkedStatus }

// Linkname always returns the empty string: ZIP entries are never
// reported as symlinks, so there is never a link target to read.
func (e *Entry) Linkname() string { return "" }

// Open returns a stream over the entry's decompressed payload.
func (e *Entry) Open() (base.Stream, error) {
	rc, err := e.file.Open()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &entryStream{rc: rc}, nil
}

type entryStream struct {
	rc io.ReadCloser
}

var _ base.Stream = (*entryStream)(nil)

func (s *entryStream) Read(p []byte) (int, error) {
	return s.rc.Read(p) //nolint:wrapcheck
}

// defaultPerms is the POSIX mode ZIP entries are reported with: ZIP
// carries no portable notion of a symlink, device node, or permission
// bits, so every entry is surfaced as a regular file at 0644 regardless
// of what its (platform-specific, often absent) external attributes say.
const defaultPerms = 0o644

func statusFromHeader(f *zip.File) base.Status {
	return base.Status{
		Size:  f.UncompressedSize64,
		Mtime: f.Modified,
		Type:  base.TypeRegular,
		Perms: defaultPerms,
	}
}
