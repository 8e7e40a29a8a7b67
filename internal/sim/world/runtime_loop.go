package world

import (
	"context"
	"time"
)

// Run drives StepOnce from a ticker until ctx is done or Stop is called. dt is
// the wall-clock time since the previous tick, clamped inside StepOnce.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case r := <-w.attach:
			w.handleAttach(r)
		case r := <-w.detach:
			w.handleDetach(r)
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			w.StepOnce(dt.Seconds())
		}
	}
}

func (w *World) Stop() { w.stopOnce.Do(func() { close(w.stop) }) }

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.TickRateHz
}
