package store

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDSource produces candidate recipe ids.
type IDSource func() string

// TimestampSource renders the current Unix time in milliseconds. Ids never
// repeat within one source: a call landing in the same millisecond as the
// previous one is pushed forward.
func TimestampSource(now func() time.Time) IDSource {
	if now == nil {
		now = time.Now
	}
	var (
		mu   sync.Mutex
		last int64
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()

		ms := now().UnixMilli()
		if ms <= last {
			ms = last + 1
		}
		last = ms
		return strconv.FormatInt(ms, 10)
	}
}

// UUIDSource returns random v4 UUIDs.
func UUIDSource() IDSource {
	return func() string {
		return uuid.New().String()
	}
}
