package gen

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"

	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/world/logic/mathx"
	"voxelsandbox.dev/internal/sim/world/terrain/store"
)

type Params struct {
	Seed    int64
	Profile string // "sine" (default), "simplex", "perlin"

	// Columns cover x, z in [-HalfWidth, HalfWidth).
	HalfWidth int
	Base      int
	AmpX      float64
	AmpZ      float64
	Frequency float64

	BedrockDepth int
	DirtDepth    int

	TreeChance   float64
	TrunkMin     int // inclusive
	TrunkMax     int // exclusive
	CanopyRadius int
	CanopyHeight int
}

// Stats summarizes one Generate call.
type Stats struct {
	Columns int
	Trees   int
	Blocks  int
}

// HeightField maps a column to its terrain height: the grass block sits at height-1.
type HeightField func(x, z int) int

func NewHeightField(p Params) (HeightField, error) {
	switch p.Profile {
	case "", "sine":
		return func(x, z int) int {
			return SineHeight(p, x, z)
		}, nil
	case "simplex":
		noise := opensimplex.New(p.Seed)
		return func(x, z int) int {
			n := noise.Eval2(float64(x)*p.Frequency, float64(z)*p.Frequency)
			return p.Base + int(math.Floor(n*(p.AmpX+p.AmpZ)))
		}, nil
	case "perlin":
		noise := perlin.NewPerlin(2, 2, 3, p.Seed)
		return func(x, z int) int {
			n := noise.Noise2D(float64(x)*p.Frequency, float64(z)*p.Frequency)
			return p.Base + int(math.Floor(n*(p.AmpX+p.AmpZ)))
		}, nil
	default:
		return nil, fmt.Errorf("unknown terrain profile %q", p.Profile)
	}
}

// SineHeight is the closed-form terrain profile:
// base + floor(sin(x*f)*ampX + cos(z*f)*ampZ).
func SineHeight(p Params, x, z int) int {
	v := math.Sin(float64(x)*p.Frequency)*p.AmpX + math.Cos(float64(z)*p.Frequency)*p.AmpZ
	return p.Base + int(math.Floor(v))
}

// Generate fills s with terrain and trees. Output depends only on p.
func Generate(s *store.Store, p Params) (Stats, error) {
	height, err := NewHeightField(p)
	if err != nil {
		return Stats{}, err
	}
	var st Stats
	for x := -p.HalfWidth; x < p.HalfWidth; x++ {
		for z := -p.HalfWidth; z < p.HalfWidth; z++ {
			h := height(x, z)
			fillColumn(s, p, x, z, h)
			st.Columns++

			if treeRoll(p, x, z) {
				root := h
				if root < p.BedrockDepth {
					root = p.BedrockDepth
				}
				growTree(s, p, x, root, z)
				st.Trees++
			}
		}
	}
	st.Blocks = s.Len()
	return st, nil
}

func fillColumn(s *store.Store, p Params, x, z, height int) {
	top := height
	if top < p.BedrockDepth {
		top = p.BedrockDepth
	}
	for y := 0; y < top; y++ {
		s.Set(x, y, z, layerAt(p, y, height))
	}
}

func layerAt(p Params, y, height int) catalogs.BlockID {
	switch {
	case y < p.BedrockDepth:
		return catalogs.Bedrock
	case y == height-1:
		return catalogs.Grass
	case y >= height-1-p.DirtDepth:
		return catalogs.Dirt
	default:
		return catalogs.Stone
	}
}

const (
	treeSalt  int64 = 0x7472656573
	trunkSalt int64 = 0x7472756e6b
)

func treeRoll(p Params, x, z int) bool {
	if p.TreeChance <= 0 {
		return false
	}
	return mathx.Unit(mathx.Hash2(p.Seed^treeSalt, x, z)) < p.TreeChance
}

func trunkHeight(p Params, x, z int) int {
	span := p.TrunkMax - p.TrunkMin
	if span <= 1 {
		return p.TrunkMin
	}
	return p.TrunkMin + int(mathx.Hash2(p.Seed^trunkSalt, x, z)%uint64(span))
}
