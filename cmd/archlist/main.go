/*
archlist renders ZIP/TAR archive contents (optionally gzip/bzip2/xz
compressed) as an `ls -l`-style, colored, directory-minimized tree.
*/
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/desertwitch/archreader/internal/archcache"
	"github.com/desertwitch/archreader/internal/listfmt"
	"github.com/desertwitch/archreader/internal/logging"
	"github.com/desertwitch/archreader/internal/metrics"
	"github.com/desertwitch/archreader/internal/webserver"
	"github.com/spf13/cobra"
)

// Version is the program version (filled in at build time).
var Version string //nolint:gochecknoglobals

const (
	defaultCacheTTL           = 5 * time.Minute
	defaultFallbackCacheLimit = 64
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		serveAddr string
		noColor   bool
		verbose   bool
	)

	root := &cobra.Command{
		Use:           helpTextUse,
		Short:         helpTextShort,
		Long:          helpTextLong,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, cmdArgs []string) error {
			return runList(cmdArgs, serveAddr, noColor, verbose)
		},
	}

	root.Flags().StringVar(&serveAddr, "serve", "", "serve a diagnostics dashboard at addr")
	root.Flags().BoolVar(&noColor, "no-color", false, "disable LS_COLORS-based coloring")
	root.Flags().BoolVar(&verbose, "verbose", false, "log each archive as it is processed")
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		return 1
	}

	return 0
}

func runList(paths []string, serveAddr string, noColor, verbose bool) error {
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "list: no archives given")

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

	painter := listfmt.NewPainter(noColor)
	now := time.Now()
	failed := false

	for _, path := range paths {
		if verbose {
			logging.Printf("listing %s", path)
		}

		if err := listOne(cache, painter, now, path); err != nil {
			fmt.Fprintf(os.Stderr, "list: %s: %s\n", path, err)
			metrics.TotalErrors.Add(1)

			failed = true

			continue
		}
	}

	if failed {
		return errListFailed
	}

	return nil
}

func listOne(cache *archcache.Cache, painter *listfmt.Painter, now time.Time, path string) error {
	handle, err := cache.Acquire(path)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer handle.Release() //nolint:errcheck

	tree := listfmt.NewTree()
	tree.Append(handle)
	tree.Minimize()
	tree.Print(os.Stdout, painter, now)

	metrics.TotalListed.Add(int64(handle.Count()))

	return nil
}
