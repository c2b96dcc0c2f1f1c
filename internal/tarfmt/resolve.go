package tarfmt

import (
	"errors"
	"path"
	"strings"
	"time"
)

var errEntryOutOfRange = errors.New("tarfmt: entry index out of range")

func mtimeOf(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// hardlinkFor resolves entry i's linkname against every entry's name
// with a linear scan, returning the first match. It returns i itself if
// no match is found, signalling "points at nothing resolvable" to the
// caller.
func (a *Archive) hardlinkFor(i int) int {
	target := a.entries[i].linkname

	for j, e := range a.entries {
		if e.name == target {
			return j
		}
	}

	return i
}

// realpath resolves entry i's symlink chain to its final target,
// applying lexical `.`/`..` normalization relative to the symlink's own
// directory at each hop and detecting cycles via a visited set. It
// returns len(entries) for a dangling or cyclic chain, or the index of
// the final non-symlink entry otherwise.
func (a *Archive) realpath(i int) int {
	visited := make(map[int]bool)
	dangling := len(a.entries)

	cur := i
	for {
		if visited[cur] {
			return dangling
		}
		visited[cur] = true

		e := a.entries[cur]
		if e.typeflag != typeSymlink {
			return cur
		}

		target := normalizeSymlinkTarget(e.name, e.linkname)

		next := dangling
		for j, candidate := range a.entries {
			if candidate.name == target {
				next = j

				break
			}
		}

		if next == dangling {
			return dangling
		}

		cur = next
	}
}

// normalizeSymlinkTarget resolves linkname relative to the directory
// containing entryName, collapsing `.` and `..` segments lexically
// (no filesystem access; the archive's own entry names are the only
// namespace that exists).
func normalizeSymlinkTarget(entryName, linkname string) string {
	if linkname == "" {
		return linkname
	}

	var base string
	if linkname[0] == '/' {
		base = "/"
	} else {
		base = path.Dir(entryName)
	}

	joined := path.Join(base, linkname)

	return strings.TrimPrefix(joined, "/")
}
