package world

import (
	"github.com/go-gl/mathgl/mgl64"

	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/world/kernel/model"
	"voxelsandbox.dev/internal/sim/world/physics"
	"voxelsandbox.dev/internal/sim/world/visibility"
)

type Vec3i = model.Vec3i

// Renderer is the attached view. Proxy commands arrive during the tick and
// Frame closes it.
type Renderer interface {
	visibility.ProxyRenderer
	// Frame reports false when the frame could not be delivered; the world then
	// drops its proxy cache and resends the whole window.
	Frame(f Frame) bool
}

type Camera struct {
	Pos   mgl64.Vec3
	Yaw   float64
	Pitch float64
}

type Frame struct {
	Tick     uint64
	Camera   Camera
	Target   *Vec3i
	Selected catalogs.BlockID
	Added    int
	Removed  int
	// Resync tells the renderer to drop every proxy it holds before applying this frame.
	Resync bool
}

type Player struct {
	Body physics.Body
	Slot int
}

func (p Player) Selected() catalogs.BlockID {
	if p.Slot < 0 || p.Slot >= len(catalogs.Placeable) {
		return catalogs.Placeable[0]
	}
	return catalogs.Placeable[p.Slot]
}

// Optional loggers (may be nil). Implemented in internal/persistence/log.
type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type EditLogger interface {
	WriteEdit(entry EditEntry) error
}

type TickLogEntry struct {
	Tick     uint64     `json:"tick"`
	Pos      [3]float64 `json:"pos"`
	Yaw      float64    `json:"yaw"`
	Pitch    float64    `json:"pitch"`
	Grounded bool       `json:"grounded"`
	Blocks   int        `json:"blocks"`
	Proxies  int        `json:"proxies"`
	Checksum string     `json:"checksum"`
}

const (
	EditMine  = "MINE"
	EditPlace = "PLACE"
)

type EditEntry struct {
	Tick   uint64 `json:"tick"`
	Action string `json:"action"`
	Pos    [3]int `json:"pos"`
	From   uint16 `json:"from"`
	To     uint16 `json:"to"`
}
