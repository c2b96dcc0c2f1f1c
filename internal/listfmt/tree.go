package listfmt

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	archreader "github.com/desertwitch/archreader"
	"github.com/dustin/go-humanize"
)

type fileInfo struct {
	status      archreader.Status
	linkedType  archreader.FileType
	symlinkSize uint64
	linkname    string
}

// sizeOf mirrors the original `size_from`: a hard link reports the
// target's size, a symbolic link reports the length of its own target
// path text, everything else reports its own status size.
func (nfo fileInfo) sizeOf() uint64 {
	if nfo.status.Type == archreader.TypeSymlink {
		if nfo.status.Hardlink {
			return nfo.symlinkSize
		}

		return uint64(len(nfo.linkname))
	}

	return nfo.status.Size
}

// Tree groups an archive's entries by directory, in the same shape a
// filesystem directory listing would, for `ls -l`-style rendering.
type Tree struct {
	entries  map[string]fileInfo
	subnodes map[string]*Tree
}

// NewTree returns an empty Tree.
func NewTree() *Tree {
	return &Tree{
		entries:  make(map[string]fileInfo),
		subnodes: make(map[string]*Tree),
	}
}

// Append adds every entry of archive to the tree.
func (t *Tree) Append(archive archreader.Archive) {
	for i := 0; i < archive.Count(); i++ {
		entry, err := archive.Entry(i)
		if err != nil || entry == nil {
			continue
		}

		t.appendEntry(entry)
	}
}

func (t *Tree) appendEntry(entry archreader.Entry) {
	dirname, filename := splitPath(entry.Filename())

	nfo := fileInfo{status: entry.FileStatus()}
	if nfo.status.Type == archreader.TypeSymlink {
		linked := entry.LinkedStatus()
		nfo.linkedType = linked.Type
		nfo.symlinkSize = linked.Size
		nfo.linkname = entry.Linkname()
	}

	t.navigate(dirname).entries[filename] = nfo
}

// splitPath splits a slash-separated archive path into its directory
// and its final component, treating a trailing slash as naming the
// directory itself rather than an empty final component.
func splitPath(full string) (dirname, filename string) {
	full = strings.TrimSuffix(full, "/")
	dirname, filename = path.Split(full)

	return strings.TrimSuffix(dirname, "/"), filename
}

func (t *Tree) navigate(dirname string) *Tree {
	node := t

	for _, seg := range strings.Split(dirname, "/") {
		if seg == "" {
			continue
		}

		sub, ok := node.subnodes[seg]
		if !ok {
			sub = NewTree()
			node.subnodes[seg] = sub
		}

		node = sub
	}

	return node
}

// Minimize flattens directories holding at most one child (file or
// subdirectory) into their parent, recursively, bottom-up.
func (t *Tree) Minimize() {
	for _, sub := range t.subnodes {
		sub.Minimize()
	}

	var remove []string

	additional := make(map[string]*Tree)

	for name, sub := range t.subnodes {
		if !sub.minimizable() {
			continue
		}

		remove = append(remove, name)
		prefix := name + "/"

		for file, nfo := range sub.entries {
			t.entries[prefix+file] = nfo
		}

		for file, subsub := range sub.subnodes {
			additional[prefix+file] = subsub
		}
	}

	for _, name := range remove {
		delete(t.subnodes, name)
	}

	for file, sub := range additional {
		t.subnodes[file] = sub
	}
}

func (t *Tree) minimizable() bool {
	return len(t.subnodes)+len(t.entries) < 2
}

// Print renders the tree to w in ls-style, colored via painter. now is
// used to decide whether a modification time is "recent" (the last six
// months) for date-column formatting, matching `ls`'s own rule.
func (t *Tree) Print(w io.Writer, painter *Painter, now time.Time) {
	first := true
	t.print(w, painter, now, &first, "")
}

func (t *Tree) print(w io.Writer, painter *Painter, now time.Time, first *bool, prefix string) {
	if len(t.entries) > 0 || len(t.subnodes) > 0 {
		wasFirst := *first

		if !*first {
			fmt.Fprintln(w)
		}

		*first = false

		switch {
		case prefix == "" && !wasFirst:
			fmt.Fprintln(w, "<root>:")
		case prefix != "":
			fmt.Fprintf(w, "%s:\n", prefix)
		}

		combined := make(map[string]fileInfo, len(t.entries)+len(t.subnodes))
		for name, nfo := range t.entries {
			combined[name] = nfo
		}

		for name := range t.subnodes {
			combined[name] = fileInfo{status: archreader.Status{
				Type:  archreader.TypeDirectory,
				Perms: 0o755, //nolint:mnd
				Mtime: now,
			}}
		}

		printDir(w, painter, now, combined)
	}

	for _, name := range sortedKeys(t.subnodes) {
		pre := prefix
		if pre != "" {
			pre += "/"
		}

		t.subnodes[name].print(w, painter, now, first, pre+name)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func printDir(w io.Writer, painter *Painter, now time.Time, entries map[string]fileInfo) {
	names := sortedKeys(entries)

	sizeWidth := 0
	for _, name := range names {
		width := len(humanize.Bytes(entries[name].sizeOf()))
		if width > sizeWidth {
			sizeWidth = width
		}
	}

	for _, name := range names {
		nfo := entries[name]

		fmt.Fprintf(w, "%c%s ", typeChar(nfo.status.Type), rwxString(nfo.status.Perms))

		size := humanize.Bytes(nfo.sizeOf())
		fmt.Fprintf(w, "%s%s ", strings.Repeat(" ", sizeWidth-len(size)), size)
		fmt.Fprintf(w, "%s ", formatTime(nfo.status.Mtime, now))

		printEntryName(w, painter, name, nfo)
		fmt.Fprintln(w)
	}
}

func printEntryName(w io.Writer, painter *Painter, name string, nfo fileInfo) {
	switch {
	case nfo.status.Type == archreader.TypeSymlink && nfo.linkedType == archreader.TypeNotFound:
		fmt.Fprint(w, painter.Sprint(name, archreader.TypeNotFound, nfo.status.Perms))
	case nfo.status.Type == archreader.TypeSymlink && nfo.status.Hardlink:
		fmt.Fprint(w, painter.Sprint(name, archreader.TypeRegular, nfo.status.Perms))
	default:
		fmt.Fprint(w, painter.Sprint(name, nfo.status.Type, nfo.status.Perms))
	}

	if nfo.status.Type != archreader.TypeSymlink {
		return
	}

	if nfo.status.Hardlink {
		fmt.Fprintf(w, " [%s]", nfo.linkname)

		return
	}

	fmt.Fprint(w, " -> ")

	targetType := nfo.linkedType
	if targetType == archreader.TypeNotFound {
		fmt.Fprint(w, painter.Sprint(nfo.linkname, archreader.TypeNotFound, 0))

		return
	}

	fmt.Fprint(w, painter.Sprint(nfo.linkname, targetType, 0))
}

func typeChar(t archreader.FileType) byte {
	switch t {
	case archreader.TypeNone:
		return 'n'
	case archreader.TypeNotFound:
		return '*'
	case archreader.TypeRegular:
		return '-'
	case archreader.TypeDirectory:
		return 'd'
	case archreader.TypeSymlink:
		return 'l'
	case archreader.TypeBlock:
		return 'b'
	case archreader.TypeCharacter:
		return 'c'
	case archreader.TypeFIFO:
		return 'p'
	case archreader.TypeSocket:
		return 's'
	default:
		return '?'
	}
}

func rwxString(perms uint16) string {
	var b strings.Builder

	triplet := func(bits uint16) {
		b.WriteByte(bit(bits, 4, 'r')) //nolint:mnd
		b.WriteByte(bit(bits, 2, 'w')) //nolint:mnd
		b.WriteByte(bit(bits, 1, 'x'))
	}

	triplet(perms >> 6) //nolint:mnd
	triplet(perms >> 3) //nolint:mnd
	triplet(perms)

	return b.String()
}

func bit(val, b uint16, yes byte) byte {
	if val&b == b {
		return yes
	}

	return '-'
}

// sixMonthsInSeconds is a Gregorian year's worth of seconds, halved, the
// same constant ls.c documents using for its "recent" cutoff.
const sixMonthsInSeconds = 31556952 / 2

func formatTime(mtime, now time.Time) string {
	recent := now.Sub(mtime) >= 0 && now.Sub(mtime) <= sixMonthsInSeconds*time.Second

	if recent {
		return fmt.Sprintf("%s %2d %02d:%02d", monthAbbrev(int(mtime.Month())), mtime.Day(), mtime.Hour(), mtime.Minute())
	}

	return fmt.Sprintf("%s %2d  %d", monthAbbrev(int(mtime.Month())), mtime.Day(), mtime.Year())
}
