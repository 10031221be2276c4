package player

import (
	"sync"
	"time"
)

// oneShot is a restartable single-shot timer. Restart cancels any pending
// fire and schedules a new one, so rapid repeated triggers never stack.
type oneShot struct {
	mu sync.Mutex
	fn func()
	t  *time.Timer
}

func newOneShot(fn func()) *oneShot {
	return &oneShot{fn: fn}
}

func (o *oneShot) Restart(d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.t != nil {
		o.t.Stop()
	}
	o.t = time.AfterFunc(d, o.fn)
}

func (o *oneShot) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.t != nil {
		o.t.Stop()
		o.t = nil
	}
}
