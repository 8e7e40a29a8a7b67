package world

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/input"
	"voxelsandbox.dev/internal/sim/world/physics"
	"voxelsandbox.dev/internal/sim/world/terrain/gen"
	"voxelsandbox.dev/internal/sim/world/terrain/store"
	"voxelsandbox.dev/internal/sim/world/visibility"
)

// World is the whole simulation state. Everything except the channels and the
// atomics is owned by the goroutine running Run (or calling StepOnce).
type World struct {
	cfg      WorldConfig
	catalog  *catalogs.BlockCatalog
	genStats gen.Stats

	tick atomic.Uint64

	store  *store.Store
	phys   *physics.Resolver
	vis    *visibility.Manager
	input  input.Source
	player Player

	renderer Renderer
	resync   bool

	attach   chan Renderer
	detach   chan Renderer
	stop     chan struct{}
	stopOnce sync.Once

	// Optional loggers (may be nil). Implemented in internal/persistence/log.
	tickLogger TickLogger
	editLogger EditLogger

	metrics *Metrics
	status  atomic.Value
}

// New generates the world for cfg.Seed and places the player at the spawn point.
func New(cfg WorldConfig, cat *catalogs.BlockCatalog, src input.Source) (*World, error) {
	cfg.applyDefaults()
	if cat == nil {
		cat = catalogs.Default()
	}
	if src == nil {
		src = input.NewScript()
	}

	s := store.New()
	stats, err := gen.Generate(s, cfg.Gen)
	if err != nil {
		return nil, fmt.Errorf("generate world: %w", err)
	}

	w := &World{
		cfg:      cfg,
		catalog:  cat,
		genStats: stats,
		store:    s,
		phys:     physics.New(cfg.Body),
		vis:      visibility.New(cfg.Visibility, nil),
		input:    src,
		attach:   make(chan Renderer, 1),
		detach:   make(chan Renderer, 1),
		stop:     make(chan struct{}),
		metrics:  newMetrics(),
	}
	w.player.Body.Pos = cfg.Spawn
	w.metrics.blocks.Set(float64(s.Len()))
	w.publishStatus(0)
	return w, nil
}

func (w *World) SetTickLogger(l TickLogger) { w.tickLogger = l }
func (w *World) SetEditLogger(l EditLogger) { w.editLogger = l }

func (w *World) Config() WorldConfig             { return w.cfg }
func (w *World) Catalog() *catalogs.BlockCatalog { return w.catalog }
func (w *World) GenStats() gen.Stats             { return w.genStats }
func (w *World) CurrentTick() uint64             { return w.tick.Load() }

// The accessors below are not synchronized; use them from the simulation
// goroutine or after Run has returned.

func (w *World) Store() *store.Store { return w.store }
func (w *World) Player() Player      { return w.player }

// Attach hands the renderer to the simulation goroutine. The next frame is a
// full resync.
func (w *World) Attach(ctx context.Context, r Renderer) error {
	select {
	case w.attach <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-w.stop:
		return fmt.Errorf("world stopped")
	}
}

// Detach is a no-op when r is no longer the attached renderer.
func (w *World) Detach(ctx context.Context, r Renderer) error {
	select {
	case w.detach <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-w.stop:
		return nil
	}
}

func (w *World) handleAttach(r Renderer) {
	w.renderer = r
	w.vis.Rebind(r)
	w.resync = true
}

func (w *World) handleDetach(r Renderer) {
	if w.renderer != r {
		return
	}
	w.renderer = nil
	w.vis.Rebind(nil)
	if l, ok := w.input.(*input.Latch); ok {
		l.Release()
	}
}
