package mathx

import "math"

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// FloorInt truncates toward negative infinity, so -0.5 maps to -1.
func FloorInt(v float64) int {
	return int(math.Floor(v))
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func Hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// Unit maps a hash onto [0, 1) using its top 53 bits.
func Unit(h uint64) float64 {
	return float64(h>>11) / (1 << 53)
}

// HashCell chains mix64 over a cell coordinate and a value.
func HashCell(x, y, z int, v uint64) uint64 {
	h := mix64(uint64(uint32(int32(x))))
	h = mix64(h ^ uint64(uint32(int32(y))))
	h = mix64(h ^ uint64(uint32(int32(z))))
	return mix64(h ^ v)
}
