package world

import (
	"fmt"

	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/world/terrain/store"
	"voxelsandbox.dev/internal/sim/world/visibility"
)

// Reasons an edit click changed nothing.
const (
	RejectNoTarget    = "no_target"
	RejectUnbreakable = "unbreakable"
	RejectOccupied    = "occupied"
	RejectOutOfRange  = "out_of_range"
	RejectPlayer      = "player_overlap"
)

func (w *World) mine(tick uint64) visibility.Delta {
	e, reason := w.tryMine(tick)
	if reason != "" {
		w.metrics.editsRejected.WithLabelValues(EditMine, reason).Inc()
		return visibility.Delta{}
	}
	return w.commitEdit(e)
}

func (w *World) place(tick uint64) visibility.Delta {
	e, reason := w.tryPlace(tick)
	if reason != "" {
		w.metrics.editsRejected.WithLabelValues(EditPlace, reason).Inc()
		return visibility.Delta{}
	}
	return w.commitEdit(e)
}

func (w *World) tryMine(tick uint64) (EditEntry, string) {
	hit, ok := w.pick()
	if !ok {
		return EditEntry{}, RejectNoTarget
	}
	c := hit.Cell
	if !w.store.IsBreakable(c.X, c.Y, c.Z) {
		return EditEntry{}, RejectUnbreakable
	}
	return EditEntry{
		Tick:   tick,
		Action: EditMine,
		Pos:    c.ToArray(),
		From:   uint16(hit.Block),
		To:     uint16(catalogs.Air),
	}, ""
}

func (w *World) tryPlace(tick uint64) (EditEntry, string) {
	hit, ok := w.pick()
	if !ok {
		return EditEntry{}, RejectNoTarget
	}
	t := hit.Place()
	switch {
	case t.Y < 0 || t.Y >= w.cfg.WorldHeight:
		return EditEntry{}, RejectOutOfRange
	case w.store.At(t) != catalogs.Air:
		return EditEntry{}, RejectOccupied
	case w.phys.Overlaps(w.player.Body, t):
		return EditEntry{}, RejectPlayer
	}
	return EditEntry{
		Tick:   tick,
		Action: EditPlace,
		Pos:    t.ToArray(),
		From:   uint16(catalogs.Air),
		To:     uint16(w.player.Selected()),
	}, ""
}

func (w *World) commitEdit(e EditEntry) visibility.Delta {
	p := Vec3i{X: e.Pos[0], Y: e.Pos[1], Z: e.Pos[2]}
	w.store.Set(p.X, p.Y, p.Z, catalogs.BlockID(e.To))
	d := w.vis.NotifyEdit(p, w.store)
	w.metrics.edits.WithLabelValues(e.Action).Inc()
	if w.editLogger != nil {
		_ = w.editLogger.WriteEdit(e)
	}
	return d
}

// ApplyEdit re-applies a journaled edit to a freshly generated store. The
// cell must still hold e.From.
func ApplyEdit(s *store.Store, e EditEntry) error {
	x, y, z := e.Pos[0], e.Pos[1], e.Pos[2]
	if got := s.Get(x, y, z); uint16(got) != e.From {
		return fmt.Errorf("tick %d %s at %v: cell holds %d, journal says %d", e.Tick, e.Action, e.Pos, got, e.From)
	}
	to := catalogs.BlockID(e.To)
	if !to.Valid() {
		return fmt.Errorf("tick %d %s at %v: unknown block %d", e.Tick, e.Action, e.Pos, e.To)
	}
	s.Set(x, y, z, to)
	return nil
}
