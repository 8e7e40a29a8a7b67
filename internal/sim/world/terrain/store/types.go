package store

import (
	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/world/kernel/model"
)

type Vec3i = model.Vec3i

type ColumnKey struct {
	X int
	Z int
}

// column tracks the vertical extent ever occupied in one (x,z) column. Bounds only
// grow while the column is non-empty; they are dropped with its last block.
type column struct {
	count  int
	lo, hi int
}

// Store is the authoritative sparse voxel map. Absent keys are air.
// Accessed only from the simulation goroutine.
type Store struct {
	blocks  map[Vec3i]catalogs.BlockID
	columns map[ColumnKey]*column
	// sum is the wrapping sum of entryHash over all entries.
	sum uint64
}

func New() *Store {
	return &Store{
		blocks:  map[Vec3i]catalogs.BlockID{},
		columns: map[ColumnKey]*column{},
	}
}

func (s *Store) Len() int { return len(s.blocks) }
