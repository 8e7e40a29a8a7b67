package world

import (
	"time"

	"voxelsandbox.dev/internal/sim/world/pick"
	"voxelsandbox.dev/internal/sim/world/physics"
	"voxelsandbox.dev/internal/sim/world/visibility"
)

// StepOnce advances the world by one tick of dt seconds (clamped to MaxDT) and
// returns the frame handed to the renderer.
func (w *World) StepOnce(dt float64) Frame {
	start := time.Now()
	tick := w.tick.Load()
	dt = w.clampDT(dt)

	snap := w.input.PollState()
	w.player.Slot = snap.Slot

	var churn visibility.Delta
	if snap.PointerLocked {
		w.player.Body.Turn(snap.MouseDX, snap.MouseDY, w.cfg.MouseSensitivity)
		if snap.Mine {
			churn = merge(churn, w.mine(tick))
		}
		if snap.Place {
			churn = merge(churn, w.place(tick))
		}
	}

	w.phys.Step(&w.player.Body, snap.Intent(), w.store, dt)
	churn = merge(churn, w.vis.Reconcile(w.player.Body.Pos, w.store))

	f := w.buildFrame(tick, churn)
	w.emit(f)
	w.logTick(tick)

	w.metrics.proxyAdds.Add(float64(len(churn.Added)))
	w.metrics.proxyRemoves.Add(float64(len(churn.Removed)))
	w.metrics.proxies.Set(float64(w.vis.Len()))
	w.metrics.blocks.Set(float64(w.store.Len()))
	elapsed := time.Since(start)
	w.metrics.tickSeconds.Observe(elapsed.Seconds())

	w.tick.Add(1)
	w.publishStatus(float64(elapsed.Microseconds()) / 1000)
	return f
}

func (w *World) clampDT(dt float64) float64 {
	if dt < 0 {
		return 0
	}
	if limit := w.cfg.MaxDT.Seconds(); dt > limit {
		return limit
	}
	return dt
}

func (w *World) buildFrame(tick uint64, churn visibility.Delta) Frame {
	b := w.player.Body
	f := Frame{
		Tick: tick,
		Camera: Camera{
			Pos:   w.phys.Eye(b),
			Yaw:   b.Yaw,
			Pitch: b.Pitch,
		},
		Selected: w.player.Selected(),
		Added:    len(churn.Added),
		Removed:  len(churn.Removed),
		Resync:   w.resync,
	}
	if hit, ok := w.pick(); ok {
		c := hit.Cell
		f.Target = &c
	}
	return f
}

func (w *World) emit(f Frame) {
	if w.renderer == nil {
		return
	}
	if f.Resync {
		w.metrics.resyncs.Inc()
	}
	w.resync = false
	if !w.renderer.Frame(f) {
		w.vis.Reset()
		w.resync = true
	}
}

func (w *World) logTick(tick uint64) {
	if w.tickLogger == nil || w.cfg.TickLogEveryTicks <= 0 || tick%uint64(w.cfg.TickLogEveryTicks) != 0 {
		return
	}
	b := w.player.Body
	_ = w.tickLogger.WriteTick(TickLogEntry{
		Tick:     tick,
		Pos:      [3]float64(b.Pos),
		Yaw:      b.Yaw,
		Pitch:    b.Pitch,
		Grounded: b.Grounded,
		Blocks:   w.store.Len(),
		Proxies:  w.vis.Len(),
		Checksum: w.store.Checksum(),
	})
}

func (w *World) pick() (pick.Hit, bool) {
	b := w.player.Body
	return pick.Pick(w.store, w.phys.Eye(b), physics.Look(b.Yaw, b.Pitch), w.cfg.Reach)
}

func merge(a, b visibility.Delta) visibility.Delta {
	a.Added = append(a.Added, b.Added...)
	a.Removed = append(a.Removed, b.Removed...)
	return a
}
