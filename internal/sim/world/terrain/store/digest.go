package store

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"

	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/world/kernel/model"
	"voxelsandbox.dev/internal/sim/world/logic/mathx"
)

// Keys returns every occupied coordinate in model.Less order. Full scans are for
// digests and tooling only.
func (s *Store) Keys() []Vec3i {
	keys := make([]Vec3i, 0, len(s.blocks))
	for k := range s.blocks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return model.Less(keys[i], keys[j]) })
	return keys
}

func (s *Store) ForEach(fn func(p Vec3i, b catalogs.BlockID)) {
	for _, k := range s.Keys() {
		fn(k, s.blocks[k])
	}
}

// Digest hashes the sorted (coord, block) list; equal contents give equal digests.
func (s *Store) Digest() string {
	h := sha256.New()
	var tmp [14]byte
	s.ForEach(func(p Vec3i, b catalogs.BlockID) {
		binary.LittleEndian.PutUint32(tmp[0:4], uint32(int32(p.X)))
		binary.LittleEndian.PutUint32(tmp[4:8], uint32(int32(p.Y)))
		binary.LittleEndian.PutUint32(tmp[8:12], uint32(int32(p.Z)))
		binary.LittleEndian.PutUint16(tmp[12:14], uint16(b))
		h.Write(tmp[:])
	})
	return hex.EncodeToString(h.Sum(nil))
}

// Checksum is an order-independent content hash maintained by every write.
// Digest stays the canonical hash for run manifests.
func (s *Store) Checksum() string {
	return fmt.Sprintf("%016x", s.sum)
}

func entryHash(p Vec3i, b catalogs.BlockID) uint64 {
	return mathx.HashCell(p.X, p.Y, p.Z, uint64(b))
}
