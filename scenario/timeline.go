package scenario

import (
	"context"
	"log"
	"time"

	"github.com/angelini/generals/unit"
)

type Entry struct {
	// At is measured from the moment playback starts.
	At    time.Duration
	Delta unit.Delta
}

// Timeline is a list of deltas sorted by At.
type Timeline []Entry

// Play sleeps until each entry is due and sends its delta to out, the same
// channel script results arrive on. It returns when every entry is sent or
// ctx is done.
func (tl Timeline) Play(ctx context.Context, out chan<- unit.Delta) error {
	start := time.Now()
	for _, e := range tl {
		if wait := time.Until(start.Add(e.At)); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		select {
		case out <- e.Delta:
			log.Printf("timeline: %s %s", e.At, e.Delta)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
