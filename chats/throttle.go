package chats

import (
	"strings"
	"time"
)

// throttled coalesces stream deltas so the downstream callback runs at
// most once per interval. It never blocks, pending text rides along
// with a later delta or the final Flush.
type throttled struct {
	fn       func(string)
	interval time.Duration
	last     time.Time
	pending  strings.Builder
}

func newThrottled(fn func(string), interval time.Duration) *throttled {
	return &throttled{
		fn:       fn,
		interval: interval,
	}
}

func (t *throttled) Write(text string) {
	t.pending.WriteString(text)
	if time.Since(t.last) < t.interval {
		return
	}
	t.flush()
}

func (t *throttled) Flush() {
	if t.pending.Len() == 0 {
		return
	}
	t.flush()
}

func (t *throttled) flush() {
	t.fn(t.pending.String())
	t.pending.Reset()
	t.last = time.Now()
}
