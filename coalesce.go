package sessions

import (
	"golang.org/x/sync/singleflight"
)

// buildGroup deduplicates concurrent session construction per cache key.
// While a build for a key is in flight, every caller for that key waits on
// the same result and observes the same outcome, success or failure. The
// in-flight entry is removed as soon as the build settles, so a failed build
// never blocks a later retry.
type buildGroup struct {
	group singleflight.Group
}

// Do runs build for key, coalescing with any in-flight build for the same
// key.
func (b *buildGroup) Do(key string, build func() (Handle, error)) (Handle, error) {
	value, err, _ := b.group.Do(key, func() (any, error) {
		return build()
	})
	if err != nil {
		return nil, err
	}
	return value.(Handle), nil
}
