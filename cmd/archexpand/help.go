package main

const (
	helpTextUse = "archexpand <archive> [<archive> ...]"

	helpTextShort = "extracts ZIP/TAR archives (optionally gzip/bzip2/xz compressed) to disk"

	helpTextLong = `archexpand reads one or more archives - ZIP or TAR, optionally wrapped in any
stack of gzip/bzip2/xz compression - and extracts their contents beneath the
current directory (or --into, if given). Permissions and modification times
are preserved; in-archive hard links become OS hard links, and symlinks are
recreated pointing at their recorded target.

A partially written file is deleted if extraction fails partway through, and
the whole archive is aborted. Directory-creation failures abort the archive;
failures restoring file attributes (chmod, utime) are ignored.

When --serve is given, a diagnostics dashboard is served at that address for
the duration of the run.`
)
