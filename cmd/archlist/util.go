package main

import (
	"fmt"
	"math"

	"golang.org/x/sys/unix"
)

// cacheLimit sizes the archive-handle cache from the process's open-file
// rlimit.
//
//nolint:mnd,err113
func cacheLimit() (int, error) {
	var rlim unix.Rlimit

	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlim); err != nil {
		return 0, fmt.Errorf("failed to get rlimit: %w", err)
	}

	if rlim.Cur == unix.RLIM_INFINITY {
		rlim.Cur = 1 << 20
	}

	if rlim.Cur == 0 {
		return 0, fmt.Errorf("got invalid rlimit: %d", rlim.Cur)
	}

	if rlim.Cur > math.MaxInt {
		return 0, fmt.Errorf("rlimit too large: %d", rlim.Cur)
	}

	limit := int(rlim.Cur) / 4 // 25% of the OS limit

	if limit < 1 {
		limit = 1
	}

	return limit, nil
}
