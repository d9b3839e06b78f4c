package watch

import (
	"context"
	"time"
)

// debouncer coalesces bursts of notifications into at most one fire per
// quiet window. Fire callbacks run inline in the loop, so triggers are
// serialized by construction: a notification arriving mid-fire parks in the
// one-slot channel and produces a single follow-up fire after the next
// quiet window.
type debouncer struct {
	window time.Duration
	notify chan struct{}
}

func newDebouncer(window time.Duration) *debouncer {
	if window <= 0 {
		window = 2 * time.Second
	}
	return &debouncer{
		window: window,
		notify: make(chan struct{}, 1),
	}
}

// Notify records that a change happened. Never blocks.
func (d *debouncer) Notify() {
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

// Run loops until ctx is done, firing once per quiet window.
func (d *debouncer) Run(ctx context.Context, fire func(context.Context)) error {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.notify:
			if timer != nil && !timer.Stop() {
				<-timerC
			}
			timer = time.NewTimer(d.window)
			timerC = timer.C
		case <-timerC:
			timer = nil
			timerC = nil
			fire(ctx)
		}
	}
}
