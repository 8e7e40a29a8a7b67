package visibility

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/world/kernel/model"
	"voxelsandbox.dev/internal/sim/world/logic/mathx"
)

type Vec3i = model.Vec3i

// Handle is an opaque render proxy id owned by the renderer.
type Handle uint64

// ProxyRenderer owns the visual cube objects.
type ProxyRenderer interface {
	CreateCubeProxy(p Vec3i, b catalogs.BlockID) Handle
	DestroyProxy(h Handle)
}

// BlockSource is the read side of the voxel store.
type BlockSource interface {
	At(p Vec3i) catalogs.BlockID
	ColumnBounds(x, z int) (lo, hi int, ok bool)
}

type Vertical int

const (
	// Bounded limits the window to MinY <= y < MaxY.
	Bounded Vertical = iota
	// Column has no vertical bound; each column's occupied extent is scanned.
	Column
)

func ParseVertical(s string) (Vertical, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bounded":
		return Bounded, nil
	case "column":
		return Column, nil
	default:
		return Bounded, fmt.Errorf("unknown vertical mode %q", s)
	}
}

type Window struct {
	Radius   int
	Vertical Vertical
	MinY     int
	MaxY     int // exclusive
}

type Delta struct {
	Added   []Vec3i
	Removed []Vec3i
}

func (d Delta) Empty() bool { return len(d.Added) == 0 && len(d.Removed) == 0 }

type proxy struct {
	handle Handle
	block  catalogs.BlockID
}

// Manager keeps the proxy set equal to the non-air cells inside the window
// around the last reconciled player cell.
type Manager struct {
	win      Window
	renderer ProxyRenderer

	proxies map[Vec3i]proxy
	cx, cz  int
	placed  bool
}

func New(win Window, r ProxyRenderer) *Manager {
	if r == nil {
		r = &NopRenderer{}
	}
	return &Manager{
		win:      win,
		renderer: r,
		proxies:  map[Vec3i]proxy{},
	}
}

func (m *Manager) Window() Window { return m.win }
func (m *Manager) Len() int       { return len(m.proxies) }

func (m *Manager) Has(p Vec3i) bool {
	_, ok := m.proxies[p]
	return ok
}

// Rebind forgets every proxy without destroying it and switches to r. The next
// Reconcile recreates the full window on r.
func (m *Manager) Rebind(r ProxyRenderer) {
	if r == nil {
		r = &NopRenderer{}
	}
	m.renderer = r
	m.proxies = map[Vec3i]proxy{}
}

// Reset forgets every proxy on the current renderer, forcing a full resync.
func (m *Manager) Reset() { m.Rebind(m.renderer) }

func (m *Manager) inWindow(p Vec3i) bool {
	if !m.placed {
		return false
	}
	if mathx.AbsInt(p.X-m.cx) > m.win.Radius || mathx.AbsInt(p.Z-m.cz) > m.win.Radius {
		return false
	}
	if m.win.Vertical == Bounded && (p.Y < m.win.MinY || p.Y >= m.win.MaxY) {
		return false
	}
	return true
}

// Reconcile recenters the window on pos and returns the proxies it created and
// destroyed. A proxy whose block type changed shows up in both lists.
func (m *Manager) Reconcile(pos mgl64.Vec3, src BlockSource) Delta {
	m.cx, m.cz = mathx.FloorInt(pos.X()), mathx.FloorInt(pos.Z())
	m.placed = true

	var d Delta
	for p, pr := range m.proxies {
		if m.inWindow(p) && src.At(p) == pr.block {
			continue
		}
		m.renderer.DestroyProxy(pr.handle)
		delete(m.proxies, p)
		d.Removed = append(d.Removed, p)
	}

	r := m.win.Radius
	for x := m.cx - r; x <= m.cx+r; x++ {
		for z := m.cz - r; z <= m.cz+r; z++ {
			lo, hi, ok := m.columnRange(src, x, z)
			if !ok {
				continue
			}
			for y := lo; y <= hi; y++ {
				p := Vec3i{X: x, Y: y, Z: z}
				if _, ok := m.proxies[p]; ok {
					continue
				}
				b := src.At(p)
				if b == catalogs.Air {
					continue
				}
				m.proxies[p] = proxy{handle: m.renderer.CreateCubeProxy(p, b), block: b}
				d.Added = append(d.Added, p)
			}
		}
	}

	sortCells(d.Removed)
	sortCells(d.Added)
	return d
}

func (m *Manager) columnRange(src BlockSource, x, z int) (lo, hi int, ok bool) {
	lo, hi, ok = src.ColumnBounds(x, z)
	if !ok || m.win.Vertical == Column {
		return lo, hi, ok
	}
	if lo < m.win.MinY {
		lo = m.win.MinY
	}
	if hi > m.win.MaxY-1 {
		hi = m.win.MaxY - 1
	}
	return lo, hi, lo <= hi
}

// NotifyEdit refreshes a single cell outside the per-frame sweep.
func (m *Manager) NotifyEdit(p Vec3i, src BlockSource) Delta {
	var d Delta
	b := src.At(p)
	if pr, ok := m.proxies[p]; ok {
		if b == pr.block && m.inWindow(p) {
			return d
		}
		m.renderer.DestroyProxy(pr.handle)
		delete(m.proxies, p)
		d.Removed = append(d.Removed, p)
	}
	if b != catalogs.Air && m.inWindow(p) {
		m.proxies[p] = proxy{handle: m.renderer.CreateCubeProxy(p, b), block: b}
		d.Added = append(d.Added, p)
	}
	return d
}

// CheckConsistency verifies that a proxy exists for a cell exactly when the cell
// is non-air and inside the current window.
func (m *Manager) CheckConsistency(src BlockSource) error {
	var bad []string
	for p, pr := range m.proxies {
		switch {
		case !m.inWindow(p):
			bad = append(bad, fmt.Sprintf("%v: proxy outside window", p))
		case src.At(p) != pr.block:
			bad = append(bad, fmt.Sprintf("%v: proxy block %d, store %d", p, pr.block, src.At(p)))
		}
	}
	if m.placed {
		r := m.win.Radius
		for x := m.cx - r; x <= m.cx+r; x++ {
			for z := m.cz - r; z <= m.cz+r; z++ {
				lo, hi, ok := m.columnRange(src, x, z)
				if !ok {
					continue
				}
				for y := lo; y <= hi; y++ {
					p := Vec3i{X: x, Y: y, Z: z}
					if src.At(p) != catalogs.Air && !m.Has(p) {
						bad = append(bad, fmt.Sprintf("%v: missing proxy", p))
					}
				}
			}
		}
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	if len(bad) > 8 {
		bad = append(bad[:8], fmt.Sprintf("... and %d more", len(bad)-8))
	}
	return fmt.Errorf("proxy set inconsistent: %s", strings.Join(bad, "; "))
}

func sortCells(cells []Vec3i) {
	sort.Slice(cells, func(i, j int) bool { return model.Less(cells[i], cells[j]) })
}

// NopRenderer hands out handles without drawing anything.
type NopRenderer struct {
	next Handle
}

func (r *NopRenderer) CreateCubeProxy(Vec3i, catalogs.BlockID) Handle {
	r.next++
	return r.next
}

func (r *NopRenderer) DestroyProxy(Handle) {}
