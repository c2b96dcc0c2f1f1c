// Package expander materializes an opened archive's entries onto the
// filesystem: regular files, directories, symlinks, and in-archive
// hard links become their OS equivalents, with original permissions
// and modification times applied best-effort.
package expander

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	archreader "github.com/desertwitch/archreader"
)

const copyBufferSize = 32 * 1024

var errEmptyDestination = errors.New("expander: empty destination path")

// Unpacker extracts archive entries beneath a root directory.
type Unpacker struct {
	rootDir string

	// OnFile, if set, is called after each regular file is
	// successfully extracted, with its destination path and size.
	OnFile func(name string, size uint64)
}

// New returns an Unpacker that writes extracted files relative to
// rootDir (the current directory, if rootDir is empty).
func New(rootDir string) *Unpacker {
	return &Unpacker{rootDir: rootDir}
}

// destination resolves entry's filename against the Unpacker's root,
// unless the filename is already absolute.
func (u *Unpacker) destination(entry archreader.Entry) string {
	name := entry.Filename()
	if name == "" {
		return ""
	}

	if filepath.IsAbs(name) || u.rootDir == "" {
		return filepath.Clean(name)
	}

	return filepath.Join(u.rootDir, name)
}

// Unpack extracts every entry of archive. It stops and returns the
// first error encountered; entries already extracted are left in place.
func (u *Unpacker) Unpack(archive archreader.Archive) error {
	for i := 0; i < archive.Count(); i++ {
		entry, err := archive.Entry(i)
		if err != nil {
			return fmt.Errorf("read entry %d: %w", i, err)
		}
		if entry == nil {
			continue
		}

		if err := u.expand(entry); err != nil {
			return err
		}
	}

	return nil
}

func (u *Unpacker) expand(entry archreader.Entry) error {
	status := entry.FileStatus()

	switch status.Type {
	case archreader.TypeRegular:
		return u.expandFile(entry)
	case archreader.TypeDirectory:
		return u.makeDirectory(entry)
	case archreader.TypeSymlink:
		if status.Hardlink {
			return u.makeLink(entry)
		}

		return u.makeSymlink(entry)
	default:
		return nil
	}
}

func (u *Unpacker) expandFile(entry archreader.Entry) error {
	name := u.destination(entry)
	if name == "" {
		return errEmptyDestination
	}

	if err := ensureParent(name); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	if err := copyEntry(entry, name); err != nil {
		_ = os.Remove(name)

		return fmt.Errorf("%s: cannot extract file: %w", name, err)
	}

	copyAttributes(name, entry.FileStatus())

	if u.OnFile != nil {
		u.OnFile(name, entry.FileStatus().Size)
	}

	return nil
}

func copyEntry(entry archreader.Entry, name string) error {
	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open entry: %w", err)
	}

	dst, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666) //nolint:mnd
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(dst, src, buf); err != nil {
		return fmt.Errorf("copy payload: %w", err)
	}

	return nil
}

func (u *Unpacker) makeDirectory(entry archreader.Entry) error {
	name := u.destination(entry)
	if name == "" {
		return nil
	}

	if err := os.MkdirAll(name, 0o777); err != nil { //nolint:mnd
		return fmt.Errorf("%s: %w", name, err)
	}

	copyAttributes(name, entry.FileStatus())

	return nil
}

func (u *Unpacker) makeLink(entry archreader.Entry) error {
	name := u.destination(entry)
	if name == "" {
		return nil
	}

	if err := ensureParent(name); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	target := u.resolveLinkTarget(entry.Linkname())

	if err := os.Link(target, name); err != nil {
		return fmt.Errorf("%s: while making hard link to %s: %w", name, target, err)
	}

	copyAttributes(name, entry.FileStatus())

	return nil
}

// makeSymlink creates a symbolic link. Unlike the Windows-aware original
// this ports from, POSIX symlinks carry no directory/file distinction,
// so the resolved target's type only matters for display purposes
// (see internal/listfmt), not for which syscall to use here.
func (u *Unpacker) makeSymlink(entry archreader.Entry) error {
	name := u.destination(entry)
	if name == "" {
		return nil
	}

	if err := ensureParent(name); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	if err := os.Symlink(entry.Linkname(), name); err != nil {
		return fmt.Errorf("%s: while making symlink to %s: %w", name, entry.Linkname(), err)
	}

	copyAttributes(name, entry.FileStatus())

	return nil
}

// resolveLinkTarget maps an in-archive hard-link name to the path it
// was (or will be) extracted to, so os.Link sees a real filesystem path.
func (u *Unpacker) resolveLinkTarget(linkname string) string {
	if linkname == "" || filepath.IsAbs(linkname) || u.rootDir == "" {
		return filepath.Clean(linkname)
	}

	return filepath.Join(u.rootDir, linkname)
}

func ensureParent(name string) error {
	parent := filepath.Dir(name)
	if parent == "" || parent == "." {
		return nil
	}

	if err := os.MkdirAll(parent, 0o777); err != nil { //nolint:mnd
		return fmt.Errorf("create parent directories: %w", err)
	}

	return nil
}

// copyAttributes applies the archive entry's permissions and
// modification time; failures here are deliberately ignored, matching
// the original extractor's best-effort chmod/utime semantics.
func copyAttributes(name string, status archreader.Status) {
	_ = os.Chmod(name, os.FileMode(status.Perms))
	_ = os.Chtimes(name, status.Mtime, status.Mtime)
}
