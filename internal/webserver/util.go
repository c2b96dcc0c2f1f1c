package webserver

import (
	"fmt"
	"strconv"
	"text/template"

	"github.com/desertwitch/archreader/internal/metrics"
	"github.com/dustin/go-humanize"
)

func parseTemplate() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/index.html"))
}

func parseBool(s string) (bool, error) {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("parse bool: %w", err)
	}

	return v, nil
}

// cacheHitRatio returns the archive-cache hit ratio as a percentage string.
func cacheHitRatio() string {
	hits := metrics.TotalCacheHits.Load()
	misses := metrics.TotalCacheMisses.Load()
	total := hits + misses

	if total == 0 {
		return "0.00%"
	}

	return fmt.Sprintf("%.2f%%", (float64(hits)/float64(total))*100) //nolint:mnd
}

func extractedBytes() uint64 {
	bytes := metrics.TotalExtractedBytes.Load()
	if bytes < 0 {
		return 0
	}

	return uint64(bytes) //nolint:gosec
}

// avgExtractSpeed returns the average extraction throughput as a
// human-readable rate.
func avgExtractSpeed() string {
	bytes := metrics.TotalExtractedBytes.Load()
	ns := metrics.TotalExtractTimeNanos.Load()

	if ns == 0 {
		return "0 B/s"
	}

	bps := float64(bytes) / (float64(ns) / 1e9) //nolint:mnd

	return humanize.IBytes(uint64(bps)) + "/s"
}
