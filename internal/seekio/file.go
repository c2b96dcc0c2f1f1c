// Package seekio implements the seekable byte-source that the rest of
// the archive-reading pipeline is built over: an OS file opened for
// reading or writing, plus the lstat/readlink inspection performed at
// open time.
package seekio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertwitch/archreader/internal/base"
)

var _ base.Seekable = (*File)(nil)

// errUnsupportedMode occurs when Open is called with neither "rb" nor "wb".
var errUnsupportedMode = errors.New("unsupported file mode")

// File is a seekable OS file that also captures its own [base.Status],
// the status of whatever it links to, and its link target, at open time.
//
// A File owns its OS handle and must be Close()d once no longer in use.
type File struct {
	f *os.File

	fileStatus   base.Status
	linkedStatus base.Status
	linkname     string
}

// Open opens path in mode "rb" (read) or "wb" (write/truncate) and
// captures its status. Read mode requires the file to already exist;
// write mode creates or truncates it.
func Open(path string, mode string) (*File, error) {
	var (
		f   *os.File
		err error
	)

	switch mode {
	case "rb":
		f, err = os.Open(path)
	case "wb":
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666) //nolint:mnd
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedMode, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}

	fileStatus, linkedStatus, linkname := statPath(path)

	return &File{
		f:            f,
		fileStatus:   fileStatus,
		linkedStatus: linkedStatus,
		linkname:     linkname,
	}, nil
}

// statPath performs the lstat/stat/readlink inspection of path, mirroring
// what a [File] opened from that path would report about itself.
func statPath(path string) (fileStatus, linkedStatus base.Status, linkname string) {
	lst, err := os.Lstat(path)
	if err != nil {
		return base.Status{}, base.Status{}, ""
	}

	fileStatus = statusFromFileInfo(lst, lst.Mode()&os.ModeSymlink != 0)

	if lst.Mode()&os.ModeSymlink != 0 {
		if target, lerr := os.Readlink(path); lerr == nil {
			linkname = target

			resolved := target
			if !filepath.IsAbs(resolved) {
				resolved = filepath.Join(filepath.Dir(path), resolved)
			}

			if st, serr := os.Stat(resolved); serr == nil {
				linkedStatus = statusFromFileInfo(st, false)
			} else {
				linkedStatus = base.NotFound
			}
		}
	}

	return fileStatus, linkedStatus, linkname
}

func statusFromFileInfo(info os.FileInfo, isSymlinkZeroSize bool) base.Status {
	st := base.Status{
		Mtime: info.ModTime(),
		Perms: uint16(info.Mode().Perm()), //nolint:gosec
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		st.Type = base.TypeSymlink
	case info.IsDir():
		st.Type = base.TypeDirectory
	case info.Mode()&os.ModeNamedPipe != 0:
		st.Type = base.TypeFIFO
	case info.Mode()&os.ModeSocket != 0:
		st.Type = base.TypeSocket
	case info.Mode()&os.ModeDevice != 0:
		if info.Mode()&os.ModeCharDevice != 0 {
			st.Type = base.TypeCharacter
		} else {
			st.Type = base.TypeBlock
		}
	default:
		st.Type = base.TypeRegular
	}

	if isSymlinkZeroSize {
		st.Size = 0
	} else {
		st.Size = uint64(info.Size()) //nolint:gosec
	}

	return st
}

// FileStatus reports the status Open captured for path itself.
func (f *File) FileStatus() base.Status { return f.fileStatus }

// LinkedStatus reports the status of whatever path links to, if any.
func (f *File) LinkedStatus() base.Status { return f.linkedStatus }

// Linkname reports the literal link target captured at open time.
func (f *File) Linkname() string { return f.linkname }

// Read reads into p, returning a short count at EOF.
func (f *File) Read(p []byte) (int, error) {
	return f.f.Read(p) //nolint:wrapcheck
}

// Write writes p; only valid for a File opened in "wb" mode.
func (f *File) Write(p []byte) (int, error) {
	return f.f.Write(p) //nolint:wrapcheck
}

// Seek moves to the absolute offset pos. Seeking past EOF is permitted
// and leaves the position wherever the OS places it; reads then fall short.
func (f *File) Seek(pos int64) (int64, error) {
	n, err := f.f.Seek(pos, os.SEEK_SET)
	if err != nil {
		return n, fmt.Errorf("seek failed: %w", err)
	}

	return n, nil
}

// SeekEnd seeks to the end of the file and returns the resulting offset.
func (f *File) SeekEnd() (int64, error) {
	n, err := f.f.Seek(0, os.SEEK_END)
	if err != nil {
		return n, fmt.Errorf("seek failed: %w", err)
	}

	return n, nil
}

// Tell reports the current offset.
func (f *File) Tell() int64 {
	n, err := f.f.Seek(0, os.SEEK_CUR)
	if err != nil {
		return 0
	}

	return n
}

// Close closes the underlying OS handle.
func (f *File) Close() error {
	if err := f.f.Close(); err != nil {
		return fmt.Errorf("close failed: %w", err)
	}

	return nil
}
