package browser

import (
	"context"
	"time"
)

// Pace blocks for a randomized delay in [min, max], after clearing the
// rate-limiter floor. Every navigation and page interaction goes
// through this; uniform machine-speed request timing is the easiest
// tell there is.
func (d *Driver) Pace(ctx context.Context, min, max time.Duration) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	if max < min {
		max = min
	}
	delay := min
	if span := max - min; span > 0 {
		delay += time.Duration(d.rng.Int63n(int64(span)))
	}
	d.sleep(ctx, delay)
	return ctx.Err()
}

// sleep waits for d or until ctx is done, whichever comes first.
func (d *Driver) sleep(ctx context.Context, dur time.Duration) {
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
