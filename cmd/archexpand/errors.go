package main

import "errors"

var (
	errNoArchives       = errors.New("no archives given")
	errExtractionFailed = errors.New("one or more archives failed to extract")
)
