package expander

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	archreader "github.com/desertwitch/archreader"
	"github.com/stretchr/testify/require"
)

type memEntry struct {
	name         string
	fileStatus   archreader.Status
	linkedStatus archreader.Status
	linkname     string
	content      []byte
}

func (e *memEntry) Filename() string               { return e.name }
func (e *memEntry) FileStatus() archreader.Status   { return e.fileStatus }
func (e *memEntry) LinkedStatus() archreader.Status { return e.linkedStatus }
func (e *memEntry) Linkname() string                { return e.linkname }

func (e *memEntry) Open() (archreader.Stream, error) {
	return &byteStream{data: e.content}, nil
}

type byteStream struct {
	data []byte
	pos  int
}

func (s *byteStream) Read(p []byte) (int, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}

	n := copy(p, s.data[s.pos:])
	s.pos += n

	return n, nil
}

type memArchive struct {
	entries []*memEntry
}

func (a *memArchive) Count() int { return len(a.entries) }
func (a *memArchive) Entry(i int) (archreader.Entry, error) {
	return a.entries[i], nil
}
func (a *memArchive) Close() error { return nil }

// Expectation: a regular file entry is written with its content.
func Test_Unpack_RegularFile_Success(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	mtime := time.Now().Add(-time.Hour).Truncate(time.Second)
	arch := &memArchive{entries: []*memEntry{
		{
			name:       "hello.txt",
			fileStatus: archreader.Status{Type: archreader.TypeRegular, Size: 5, Perms: 0o640, Mtime: mtime},
			content:    []byte("hello"),
		},
	}}

	u := New(dir)
	require.NoError(t, u.Unpack(arch))

	data, err := os.ReadFile(filepath.Join(dir, "hello.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}

// Expectation: a nested regular file creates its parent directories.
func Test_Unpack_NestedFile_CreatesParents_Success(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	arch := &memArchive{entries: []*memEntry{
		{
			name:       "a/b/c.txt",
			fileStatus: archreader.Status{Type: archreader.TypeRegular, Size: 1, Perms: 0o644},
			content:    []byte("x"),
		},
	}}

	u := New(dir)
	require.NoError(t, u.Unpack(arch))

	data, err := os.ReadFile(filepath.Join(dir, "a", "b", "c.txt"))
	require.NoError(t, err)
	require.Equal(t, "x", string(data))
}

// Expectation: a directory entry creates the directory.
func Test_Unpack_Directory_Success(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	arch := &memArchive{entries: []*memEntry{
		{name: "sub", fileStatus: archreader.Status{Type: archreader.TypeDirectory, Perms: 0o755}},
	}}

	u := New(dir)
	require.NoError(t, u.Unpack(arch))

	info, err := os.Stat(filepath.Join(dir, "sub"))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

// Expectation: a symlink entry is created pointing at its recorded target.
func Test_Unpack_Symlink_Success(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	arch := &memArchive{entries: []*memEntry{
		{
			name:       "link",
			fileStatus: archreader.Status{Type: archreader.TypeSymlink, Perms: 0o777},
			linkname:   "target.txt",
		},
	}}

	u := New(dir)
	require.NoError(t, u.Unpack(arch))

	target, err := os.Readlink(filepath.Join(dir, "link"))
	require.NoError(t, err)
	require.Equal(t, "target.txt", target)
}

// Expectation: a hardlink-flagged entry creates an OS hard link to the
// already-extracted target, sharing its content.
func Test_Unpack_Hardlink_Success(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	arch := &memArchive{entries: []*memEntry{
		{
			name:       "a.txt",
			fileStatus: archreader.Status{Type: archreader.TypeRegular, Size: 3, Perms: 0o644},
			content:    []byte("abc"),
		},
		{
			name:       "b.txt",
			fileStatus: archreader.Status{Type: archreader.TypeSymlink, Hardlink: true, Perms: 0o644},
			linkname:   "a.txt",
		},
	}}

	u := New(dir)
	require.NoError(t, u.Unpack(arch))

	data, err := os.ReadFile(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	require.Equal(t, "abc", string(data))
}
