// Package pick finds the voxel under the crosshair.
package pick

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/world/kernel/model"
	"voxelsandbox.dev/internal/sim/world/logic/mathx"
)

type Source interface {
	Get(x, y, z int) catalogs.BlockID
}

type Hit struct {
	Cell   model.Vec3i
	Normal model.Vec3i // face the ray entered through; zero when origin is inside Cell
	Dist   float64     // along the ray to the entry point
	Block  catalogs.BlockID
}

// Place is the cell a new block would occupy against this hit.
func (h Hit) Place() model.Vec3i { return h.Cell.Add(h.Normal) }

// Pick walks the voxel grid along dir (Amanatides-Woo) and returns the first
// non-air cell entered within reach.
func Pick(src Source, origin, dir mgl64.Vec3, reach float64) (Hit, bool) {
	if dir.Len() == 0 || reach < 0 {
		return Hit{}, false
	}
	dir = dir.Normalize()

	cell := [3]int{mathx.FloorInt(origin[0]), mathx.FloorInt(origin[1]), mathx.FloorInt(origin[2])}
	var step [3]int
	var tMax, tDelta [3]float64
	for i := 0; i < 3; i++ {
		switch {
		case dir[i] > 0:
			step[i] = 1
			tDelta[i] = 1 / dir[i]
			tMax[i] = (float64(cell[i]+1) - origin[i]) / dir[i]
		case dir[i] < 0:
			step[i] = -1
			tDelta[i] = -1 / dir[i]
			tMax[i] = (float64(cell[i]) - origin[i]) / dir[i]
		default:
			tDelta[i] = math.Inf(1)
			tMax[i] = math.Inf(1)
		}
	}

	var normal [3]int
	t := 0.0
	for t <= reach {
		if b := src.Get(cell[0], cell[1], cell[2]); b != catalogs.Air {
			return Hit{
				Cell:   model.FromArray(cell),
				Normal: model.FromArray(normal),
				Dist:   t,
				Block:  b,
			}, true
		}
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		t = tMax[axis]
		cell[axis] += step[axis]
		tMax[axis] += tDelta[axis]
		normal = [3]int{}
		normal[axis] = -step[axis]
	}
	return Hit{}, false
}
