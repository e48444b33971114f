package ports

import (
	"context"
	"time"
)

// Cache stores short strings under a key for a bounded time. The syllabus
// pipeline keeps raw understanding responses here, keyed by text hash, so a
// resubmitted document does not pay for a second upstream call.
//
// A ttl of zero or less stores the value without expiry. Get on an expired or
// missing key reports found=false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
