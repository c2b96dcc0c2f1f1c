package tarfmt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildEntry(t *testing.T, name string, typeflag byte, linkname string, content []byte) []byte {
	t.Helper()

	rec := buildRecord(name, typeflag, linkname, uint64(len(content)), 1_700_000_000, 0o644) //nolint:gosec

	switch typeflag {
	case typeHardlink, typeSymlink, typeDirectory, typeFIFO, typeContig, typeCharacter, typeBlock:
		return rec
	default:
		return append(rec, padToBlock(content)...)
	}
}

// Expectation: a minimal single-file archive loads with one entry whose
// fields match the header, and Open() returns its exact content.
func Test_Open_SingleRegularFile_Success(t *testing.T) {
	t.Parallel()

	content := []byte("hello world")
	data := buildEntry(t, "hello.txt", typeRegular, "", content)

	a, ok := Open(newMemSeekable(data))
	require.True(t, ok)
	require.Equal(t, 1, a.Count())

	e, err := a.Entry(0)
	require.NoError(t, err)
	require.Equal(t, "hello.txt", e.Filename())
	require.Equal(t, uint64(len(content)), e.FileStatus().Size)

	stream, err := e.Open()
	require.NoError(t, err)

	buf := make([]byte, len(content))
	n, err := stream.Read(buf)
	require.NoError(t, err)
	require.Equal(t, content, buf[:n])
}

// Expectation: a GNU long-name ('L') record stitches its payload in as
// the following header's name, and the payload offset still points at
// the real entry's own data, not the long-name record's.
func Test_Open_GNULongName_Success(t *testing.T) {
	t.Parallel()

	longName := "a/very/deeply/nested/path/that/exceeds/the/hundred/byte/ustar/name/field/limit/file.txt"
	content := []byte("payload")

	var data []byte
	data = append(data, buildEntry(t, "././@LongLink", typeGNULong, "", append([]byte(longName), 0))...)
	data = append(data, buildEntry(t, "truncated-name.txt", typeRegular, "", content)...)

	a, ok := Open(newMemSeekable(data))
	require.True(t, ok)
	require.Equal(t, 1, a.Count())

	e, err := a.Entry(0)
	require.NoError(t, err)
	require.Equal(t, longName, e.Filename())

	stream, err := e.Open()
	require.NoError(t, err)
	buf := make([]byte, len(content))
	n, err := stream.Read(buf)
	require.NoError(t, err)
	require.Equal(t, content, buf[:n])
}

// Expectation: a hard link ('1') entry reports Hardlink=true and its
// LinkedStatus reflects the target entry's size and type; reading the
// hard link's payload yields the target's bytes.
func Test_Open_Hardlink_Success(t *testing.T) {
	t.Parallel()

	content := []byte("shared bytes")

	var data []byte
	data = append(data, buildEntry(t, "original.txt", typeRegular, "", content)...)
	data = append(data, buildEntry(t, "alias.txt", typeHardlink, "original.txt", nil)...)

	a, ok := Open(newMemSeekable(data))
	require.True(t, ok)
	require.Equal(t, 2, a.Count())

	link, err := a.Entry(1)
	require.NoError(t, err)
	require.True(t, link.FileStatus().Hardlink)
	require.Equal(t, uint64(len(content)), link.LinkedStatus().Size)

	stream, err := link.Open()
	require.NoError(t, err)
	buf := make([]byte, len(content))
	n, err := stream.Read(buf)
	require.NoError(t, err)
	require.Equal(t, content, buf[:n])
}

// Expectation: a symlink resolving to a regular file reports the
// target's status as LinkedStatus, while its own FileStatus stays a
// symlink with Hardlink=false.
func Test_Open_Symlink_ResolvesToTarget_Success(t *testing.T) {
	t.Parallel()

	content := []byte("target data")

	var data []byte
	data = append(data, buildEntry(t, "dir/real.txt", typeRegular, "", content)...)
	data = append(data, buildEntry(t, "dir/link.txt", typeSymlink, "real.txt", nil)...)

	a, ok := Open(newMemSeekable(data))
	require.True(t, ok)

	link, err := a.Entry(1)
	require.NoError(t, err)
	require.False(t, link.FileStatus().Hardlink)
	require.Equal(t, uint64(len(content)), link.LinkedStatus().Size)
}

// Expectation: a symlink pointing outside the archive's namespace
// resolves to NotFound rather than erroring.
func Test_Open_Symlink_Dangling_ResolvesNotFound(t *testing.T) {
	t.Parallel()

	data := buildEntry(t, "broken", typeSymlink, "does/not/exist", nil)

	a, ok := Open(newMemSeekable(data))
	require.True(t, ok)

	e, err := a.Entry(0)
	require.NoError(t, err)
	require.Equal(t, uint8(1), uint8(e.LinkedStatus().Type)) // TypeNotFound
}

// Expectation: a two-entry symlink cycle resolves to NotFound instead
// of looping forever.
func Test_Open_Symlink_Cycle_ResolvesNotFound(t *testing.T) {
	t.Parallel()

	var data []byte
	data = append(data, buildEntry(t, "a", typeSymlink, "b", nil)...)
	data = append(data, buildEntry(t, "b", typeSymlink, "a", nil)...)

	a, ok := Open(newMemSeekable(data))
	require.True(t, ok)

	e, err := a.Entry(0)
	require.NoError(t, err)
	require.Equal(t, uint8(1), uint8(e.LinkedStatus().Type))
}

// Expectation: an empty underlying file fails to open.
func Test_Open_Empty_Failure(t *testing.T) {
	t.Parallel()

	_, ok := Open(newMemSeekable(nil))
	require.False(t, ok)
}

// Expectation: IsValid recognizes the USTAR magic and restores position.
func Test_IsValid_Success(t *testing.T) {
	t.Parallel()

	data := buildEntry(t, "f", typeRegular, "", []byte("x"))
	s := newMemSeekable(data)

	require.True(t, IsValid(s))
	require.Equal(t, int64(0), s.Tell())
}
