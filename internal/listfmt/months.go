package listfmt

import (
	"sync"
	"time"
)

var (
	monthAbbrevOnce  sync.Once //nolint:gochecknoglobals
	monthAbbrevCache [12]string
)

// monthAbbrev returns the three-letter abbreviation for the given
// month (1-12), built once and cached for the life of the process.
func monthAbbrev(month int) string {
	monthAbbrevOnce.Do(func() {
		for i := range monthAbbrevCache {
			monthAbbrevCache[i] = time.Month(i + 1).String()[:3] //nolint:mnd
		}
	})

	if month < 1 || month > 12 { //nolint:mnd
		return "???"
	}

	return monthAbbrevCache[month-1]
}
