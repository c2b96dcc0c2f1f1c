package main

import "errors"

var (
	errNoArchives = errors.New("no archives given")
	errListFailed = errors.New("one or more archives failed to list")
)
