/*
archexpand extracts ZIP/TAR archives (optionally gzip/bzip2/xz compressed)
beneath the current directory, preserving permissions, modification times,
hard links, and symlinks.
*/
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/desertwitch/archreader/internal/archcache"
	"github.com/desertwitch/archreader/internal/expander"
	"github.com/desertwitch/archreader/internal/logging"
	"github.com/desertwitch/archreader/internal/metrics"
	"github.com/desertwitch/archreader/internal/webserver"
	"github.com/spf13/cobra"
)

// Version is the program version (filled in at build time).
var Version string //nolint:gochecknoglobals

const defaultCacheTTL = 5 * time.Minute

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		serveAddr string
		into      string
		verbose   bool
	)

	root := &cobra.Command{
		Use:           helpTextUse,
		Short:         helpTextShort,
		Long:          helpTextLong,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, cmdArgs []string) error {
			return runExpand(cmdArgs, serveAddr, into, verbose)
		},
	}

	root.Flags().StringVar(&serveAddr, "serve", "", "serve a diagnostics dashboard at addr")
	root.Flags().StringVar(&into, "into", "", "extract beneath this directory instead of the current one")
	root.Flags().BoolVar(&verbose, "verbose", false, "log each archive as it is processed")
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		return 1
	}

	return 0
}

func runExpand(paths []string, serveAddr, into string, verbose bool) error {
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "expand: no archives given")

		return errNoArchives
	}

	limit, err := cacheLimit()
	if err != nil {
		logging.Printf("cache sizing: %v", err)

		limit = defaultFallbackCacheLimit
	}

	cache := archcache.New(limit, defaultCacheTTL)

	if serveAddr != "" {
		srv := webserver.New(cache, Version).Serve(serveAddr)
		defer srv.Close()
	}

	failed := false

	for _, path := range paths {
		if verbose {
			logging.Printf("expanding %s", path)
		}

		if err := expandOne(cache, path, into); err != nil {
			fmt.Fprintf(os.Stderr, "expand: %s: %s\n", path, err)
			metrics.TotalErrors.Add(1)

			failed = true

			continue
		}
	}

	if failed {
		return errExtractionFailed
	}

	return nil
}

const defaultFallbackCacheLimit = 64

func expandOne(cache *archcache.Cache, path, into string) error {
	handle, err := cache.Acquire(path)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer handle.Release() //nolint:errcheck

	unpacker := expander.New(into)
	unpacker.OnFile = func(_ string, size uint64) {
		metrics.TotalExtracted.Add(1)
		metrics.TotalExtractedBytes.Add(int64(size)) //nolint:gosec
	}

	start := time.Now()

	if err := unpacker.Unpack(handle); err != nil {
		return err //nolint:wrapcheck
	}

	metrics.TotalExtractTimeNanos.Add(time.Since(start).Nanoseconds())

	return nil
}
