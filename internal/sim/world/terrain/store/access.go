package store

import "voxelsandbox.dev/internal/sim/catalogs"

func (s *Store) Get(x, y, z int) catalogs.BlockID {
	return s.blocks[Vec3i{X: x, Y: y, Z: z}]
}

func (s *Store) At(p Vec3i) catalogs.BlockID { return s.blocks[p] }

// Set inserts or overwrites. Setting Air removes the entry.
func (s *Store) Set(x, y, z int, b catalogs.BlockID) {
	if b == catalogs.Air {
		s.Remove(x, y, z)
		return
	}
	k := Vec3i{X: x, Y: y, Z: z}
	if old, ok := s.blocks[k]; ok {
		s.sum -= entryHash(k, old)
	} else {
		s.growColumn(x, y, z)
	}
	s.blocks[k] = b
	s.sum += entryHash(k, b)
}

// Insert writes b only if the cell is air and reports whether it did.
func (s *Store) Insert(x, y, z int, b catalogs.BlockID) bool {
	if b == catalogs.Air {
		return false
	}
	k := Vec3i{X: x, Y: y, Z: z}
	if _, ok := s.blocks[k]; ok {
		return false
	}
	s.growColumn(x, y, z)
	s.blocks[k] = b
	s.sum += entryHash(k, b)
	return true
}

func (s *Store) Remove(x, y, z int) {
	k := Vec3i{X: x, Y: y, Z: z}
	old, ok := s.blocks[k]
	if !ok {
		return
	}
	delete(s.blocks, k)
	s.sum -= entryHash(k, old)
	ck := ColumnKey{X: x, Z: z}
	if c := s.columns[ck]; c != nil {
		c.count--
		if c.count <= 0 {
			delete(s.columns, ck)
		}
	}
}

func (s *Store) IsSolid(x, y, z int) bool {
	return s.Get(x, y, z).Solid()
}

func (s *Store) IsBreakable(x, y, z int) bool {
	return s.Get(x, y, z).Breakable()
}

// ColumnBounds returns an inclusive y range covering every block of column (x,z).
func (s *Store) ColumnBounds(x, z int) (lo, hi int, ok bool) {
	c := s.columns[ColumnKey{X: x, Z: z}]
	if c == nil {
		return 0, 0, false
	}
	return c.lo, c.hi, true
}

func (s *Store) growColumn(x, y, z int) {
	ck := ColumnKey{X: x, Z: z}
	c := s.columns[ck]
	if c == nil {
		s.columns[ck] = &column{count: 1, lo: y, hi: y}
		return
	}
	c.count++
	if y < c.lo {
		c.lo = y
	}
	if y > c.hi {
		c.hi = y
	}
}
