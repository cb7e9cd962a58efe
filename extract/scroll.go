package extract

import (
	"context"
	"log/slog"
	"time"
)

// Scroller is the slice of the browser driver the stabilizer needs.
type Scroller interface {
	ScrollToFraction(fraction float64)
	Count(sel string) int
}

// scrollStops are the staged viewport positions that trigger lazily
// rendered items without teleporting straight to the bottom.
var scrollStops = []float64{0.2, 0.4, 0.6, 0.8, 1.0}

const (
	maxScrollRounds = 5
	stableRounds    = 2
	itemCountCap    = 40
	settleDelay     = 800 * time.Millisecond
)

// StabilizeScroll walks the page through staged scroll rounds until the
// item count under countSel stops growing for two consecutive rounds,
// exceeds the practical cap, or the round budget runs out. Returns the
// final count. Scroll time is bounded either way; a page that keeps
// rendering forever gets cut off, not waited out.
func StabilizeScroll(ctx context.Context, page Scroller, countSel string) int {
	last := -1
	stable := 0

	for round := 0; round < maxScrollRounds; round++ {
		for _, stop := range scrollStops {
			if ctx.Err() != nil {
				return page.Count(countSel)
			}
			page.ScrollToFraction(stop)
			sleepCtx(ctx, settleDelay)
		}
		page.ScrollToFraction(0)

		count := page.Count(countSel)
		slog.Debug("scroll round complete", "round", round+1, "items", count)

		if count >= itemCountCap {
			return count
		}
		if count == last {
			stable++
			if stable >= stableRounds-1 {
				return count
			}
		} else {
			stable = 0
		}
		last = count
	}
	return last
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
