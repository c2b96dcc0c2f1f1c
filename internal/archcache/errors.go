package archcache

import (
	"errors"
	"fmt"

	archreader "github.com/desertwitch/archreader"
)

var errCacheItemNil = errors.New("archcache: cache returned a nil item or value")

func statusError(status archreader.OpenStatus) error {
	return fmt.Errorf("%s", status) //nolint:err113
}
