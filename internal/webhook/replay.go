package webhook

import (
	"strconv"
	"strings"
	"time"
)

// Guard rejects webhook timestamps outside the acceptance window
// [now-MaxAge, now+Skew], inclusive at both ends. Skew absorbs sender clocks
// running slightly ahead.
type Guard struct {
	MaxAge time.Duration
	Skew   time.Duration
	Now    func() time.Time
}

func NewGuard(maxAge, skew time.Duration) Guard {
	return Guard{MaxAge: maxAge, Skew: skew, Now: time.Now}
}

// Check validates a claimed unix-seconds timestamp. Only call it with a
// timestamp that was covered by a verified signature.
func (g Guard) Check(claimed int64) error {
	now := g.now().Unix()
	if claimed-now > int64(g.Skew/time.Second) {
		return ErrTimestampFuture
	}
	if now-claimed > int64(g.MaxAge/time.Second) {
		return ErrTimestampExpired
	}
	return nil
}

func (g Guard) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// ParseTimestamp parses a raw claimed timestamp (unix seconds).
func ParseTimestamp(raw string) (int64, error) {
	ts, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, ErrInvalidTimestamp
	}
	return ts, nil
}
