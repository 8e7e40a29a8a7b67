package gen

import (
	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/world/logic/mathx"
	"voxelsandbox.dev/internal/sim/world/terrain/store"
)

// growTree writes a wood trunk rooted at (x,y,z) and a diamond leaf canopy above it.
// Trunk cells overwrite; canopy cells are insert-only, so the first writer of a cell
// keeps it.
func growTree(s *store.Store, p Params, x, y, z int) {
	h := trunkHeight(p, x, z)
	for i := 0; i < h; i++ {
		s.Set(x, y+i, z, catalogs.Wood)
	}
	topY := y + h
	r := p.CanopyRadius
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			for dy := 0; dy <= p.CanopyHeight; dy++ {
				if !inCanopy(p, dx, dy, dz) {
					continue
				}
				s.Insert(x+dx, topY+dy, z+dz, catalogs.Leaves)
			}
		}
	}
}

// inCanopy is the octahedral falloff |dx|+|dz|+dy < 2r+1.
func inCanopy(p Params, dx, dy, dz int) bool {
	return mathx.AbsInt(dx)+mathx.AbsInt(dz)+dy < 2*p.CanopyRadius+1
}
