package tenant

import "time"

// NewInMemoryCacheWithClock exposes the clock seam to external tests.
func NewInMemoryCacheWithClock(maxSize int, now func() time.Time) Cache {
	return newInMemoryCache(maxSize, now, time.Hour)
}
