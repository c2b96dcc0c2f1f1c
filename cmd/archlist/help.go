package main

const (
	helpTextUse = "archlist <archive> [<archive> ...]"

	helpTextShort = "lists ZIP/TAR archive contents in an `ls -l`-style tree"

	helpTextLong = `archlist reads one or more archives - ZIP or TAR, optionally wrapped in any
stack of gzip/bzip2/xz compression - and renders their contents grouped by
directory, in an 'ls -l'-style layout: type, permissions, size, modification
time, and name. Output is colored per the LS_COLORS environment variable (or
a built-in default palette when unset); directories holding at most one
child are flattened into their parent for a denser listing.

When --serve is given, a diagnostics dashboard is served at that address for
the duration of the run.`
)
