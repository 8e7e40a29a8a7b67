package gen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/world/terrain/store"
)

func testParams(seed int64) Params {
	return Params{
		Seed:         seed,
		Profile:      "sine",
		HalfWidth:    16,
		Base:         8,
		AmpX:         2,
		AmpZ:         2,
		Frequency:    0.1,
		BedrockDepth: 3,
		DirtDepth:    2,
		TreeChance:   0.02,
		TrunkMin:     4,
		TrunkMax:     6,
		CanopyRadius: 2,
		CanopyHeight: 2,
	}
}

func TestGenerate_DeterministicPerSeed(t *testing.T) {
	a := store.New()
	b := store.New()
	stA, err := Generate(a, testParams(1337))
	require.NoError(t, err)
	stB, err := Generate(b, testParams(1337))
	require.NoError(t, err)

	assert.Equal(t, stA, stB)
	assert.Equal(t, a.Digest(), b.Digest())
	assert.Equal(t, a.Keys(), b.Keys())

	c := store.New()
	_, err = Generate(c, testParams(7))
	require.NoError(t, err)
	assert.NotEqual(t, a.Digest(), c.Digest(), "tree placement depends on the seed")
}

func TestGenerate_DeterministicForNoiseProfiles(t *testing.T) {
	for _, profile := range []string{"simplex", "perlin"} {
		t.Run(profile, func(t *testing.T) {
			p := testParams(99)
			p.Profile = profile
			a, b := store.New(), store.New()
			_, err := Generate(a, p)
			require.NoError(t, err)
			_, err = Generate(b, p)
			require.NoError(t, err)
			assert.Equal(t, a.Digest(), b.Digest())
		})
	}
}

func TestGenerate_UnknownProfile(t *testing.T) {
	p := testParams(1)
	p.Profile = "voronoi"
	_, err := Generate(store.New(), p)
	assert.Error(t, err)
}

func TestSineHeight_MatchesClosedForm(t *testing.T) {
	p := testParams(0)
	for x := -16; x < 16; x++ {
		for z := -16; z < 16; z++ {
			want := 8 + int(math.Floor(math.Sin(float64(x)*0.1)*2+math.Cos(float64(z)*0.1)*2))
			assert.Equal(t, want, SineHeight(p, x, z))
		}
	}
}

func TestGenerate_ColumnLayering(t *testing.T) {
	p := testParams(5)
	p.TreeChance = 0
	p.Base = 10
	s := store.New()
	_, err := Generate(s, p)
	require.NoError(t, err)

	for x := -16; x < 16; x++ {
		for z := -16; z < 16; z++ {
			h := SineHeight(p, x, z)
			require.Greater(t, h, p.BedrockDepth+p.DirtDepth)
			for y := 0; y < p.BedrockDepth; y++ {
				assert.Equal(t, catalogs.Bedrock, s.Get(x, y, z))
				assert.False(t, s.IsBreakable(x, y, z))
			}
			assert.Equal(t, catalogs.Grass, s.Get(x, h-1, z))
			assert.Equal(t, catalogs.Dirt, s.Get(x, h-2, z))
			assert.Equal(t, catalogs.Dirt, s.Get(x, h-3, z))
			for y := p.BedrockDepth; y < h-3; y++ {
				assert.Equal(t, catalogs.Stone, s.Get(x, y, z))
			}
			assert.Equal(t, catalogs.Air, s.Get(x, h, z))
		}
	}
	assert.Equal(t, catalogs.Air, s.Get(16, 0, 0), "outside the generated area is air")
}

func TestGenerate_ShallowColumnsStillGetFullBedrock(t *testing.T) {
	p := testParams(5)
	p.TreeChance = 0
	p.Base = 1
	s := store.New()
	_, err := Generate(s, p)
	require.NoError(t, err)
	for x := -16; x < 16; x++ {
		for y := 0; y < p.BedrockDepth; y++ {
			assert.Equal(t, catalogs.Bedrock, s.Get(x, y, 0))
		}
	}
}

func TestGrowTree_TrunkAndCanopy(t *testing.T) {
	p := testParams(3)
	s := store.New()
	growTree(s, p, 0, 10, 0)

	h := trunkHeight(p, 0, 0)
	require.GreaterOrEqual(t, h, 4)
	require.Less(t, h, 6)
	for i := 0; i < h; i++ {
		assert.Equal(t, catalogs.Wood, s.Get(0, 10+i, 0))
	}
	top := 10 + h
	assert.Equal(t, catalogs.Leaves, s.Get(0, top, 0))
	assert.Equal(t, catalogs.Leaves, s.Get(2, top, 2), "|2|+|2|+0 < 5")
	assert.Equal(t, catalogs.Leaves, s.Get(2, top+2, 0), "|2|+0+2 < 5")
	assert.Equal(t, catalogs.Air, s.Get(2, top+1, 2), "|2|+|2|+1 is not < 5")
	assert.Equal(t, catalogs.Air, s.Get(0, top+3, 0))
}

func TestGrowTree_CanopyNeverOverwrites(t *testing.T) {
	p := testParams(3)
	s := store.New()
	h := trunkHeight(p, 0, 0)
	s.Set(1, 10+h, 0, catalogs.Stone)
	growTree(s, p, 0, 10, 0)
	assert.Equal(t, catalogs.Stone, s.Get(1, 10+h, 0))
}

func TestTreeChance_RoughlyMatchesProbability(t *testing.T) {
	p := testParams(11)
	p.TreeChance = 0.25
	hits := 0
	const n = 100
	for x := 0; x < n; x++ {
		for z := 0; z < n; z++ {
			if treeRoll(p, x, z) {
				hits++
			}
		}
	}
	assert.InDelta(t, 0.25, float64(hits)/(n*n), 0.03)
}
