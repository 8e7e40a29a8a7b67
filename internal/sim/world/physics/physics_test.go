package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/world/kernel/model"
	"voxelsandbox.dev/internal/sim/world/terrain/store"
)

func testParams() Params {
	return Params{
		HalfWidth:        0.3,
		HalfHeight:       0.9,
		EyeOffset:        0.7,
		WalkSpeed:        5,
		Gravity:          -20,
		JumpSpeed:        8,
		TerminalVelocity: 50,
		SampleStride:     0.5,
		MinY:             -64,
		WorldHeight:      32,
	}
}

// platform fills y=0 for x,z in [lo, hi].
func platform(s *store.Store, lo, hi int) {
	for x := lo; x <= hi; x++ {
		for z := lo; z <= hi; z++ {
			s.Set(x, 0, z, catalogs.Stone)
		}
	}
}

const maxDT = 0.05

func TestStep_FallSettlesExactlyOnGround(t *testing.T) {
	s := store.New()
	platform(s, -3, 3)
	r := New(testParams())
	b := Body{Pos: mgl64.Vec3{0.5, 5, 0.5}}

	rest := 1 + r.p.HalfHeight
	for i := 0; i < 200; i++ {
		r.Step(&b, Intent{}, s, maxDT)
		require.GreaterOrEqual(t, b.Pos.Y(), rest-1e-9, "tick %d sank into the ground", i)
		require.False(t, r.IsColliding(b.Pos, s), "tick %d overlaps a solid voxel", i)
	}
	assert.InDelta(t, rest, b.Pos.Y(), 1e-9)
	assert.True(t, b.Grounded)
	assert.Zero(t, b.VelY)
}

func TestStep_TerminalVelocityDoesNotTunnel(t *testing.T) {
	s := store.New()
	platform(s, -1, 1)
	p := testParams()
	p.WorldHeight = 256
	r := New(p)
	b := Body{Pos: mgl64.Vec3{0.5, 200, 0.5}}

	for i := 0; i < 400; i++ {
		r.Step(&b, Intent{}, s, maxDT)
		require.GreaterOrEqual(t, b.Pos.Y()-p.HalfHeight, 1-1e-9)
	}
	assert.True(t, b.Grounded)
}

func TestStep_SlidesAlongWall(t *testing.T) {
	s := store.New()
	for x := -5; x <= 1; x++ {
		for z := -10; z <= 30; z++ {
			s.Set(x, 0, z, catalogs.Stone)
		}
	}
	for z := -10; z <= 30; z++ {
		for y := 1; y <= 3; y++ {
			s.Set(2, y, z, catalogs.Stone)
		}
	}
	r := New(testParams())
	b := Body{Pos: mgl64.Vec3{2 - 0.3, 1.9, 0}, Grounded: true}
	start := b.Pos

	// yaw 0: S walks +Z, D walks +X into the wall.
	in := Intent{Forward: -1, Strafe: 1}
	var blockedX bool
	for i := 0; i < 20; i++ {
		res := r.Step(&b, in, s, maxDT)
		blockedX = blockedX || res.BlockedX
		require.False(t, r.IsColliding(b.Pos, s))
	}
	assert.True(t, blockedX)
	assert.InDelta(t, start.X(), b.Pos.X(), 1e-9)
	assert.Greater(t, b.Pos.Z()-start.Z(), 3.0)
	assert.InDelta(t, 1.9, b.Pos.Y(), 1e-9)
}

func TestStep_WalkClosesGapToWall(t *testing.T) {
	s := store.New()
	platform(s, -5, 5)
	for y := 1; y <= 3; y++ {
		for z := -5; z <= 5; z++ {
			s.Set(3, y, z, catalogs.Stone)
		}
	}
	r := New(testParams())
	b := Body{Pos: mgl64.Vec3{0.5, 1.9, 0.5}, Grounded: true}
	for i := 0; i < 40; i++ {
		r.Step(&b, Intent{Strafe: 1}, s, maxDT)
	}
	assert.InDelta(t, 3-0.3, b.Pos.X(), 1e-3)
	assert.False(t, r.IsColliding(b.Pos, s))
}

// ledge builds a floor at y=0 with `layers` extra layers for x >= 2.
func ledge(s *store.Store, layers int) {
	platform(s, -5, 8)
	for x := 2; x <= 8; x++ {
		for z := -5; z <= 8; z++ {
			for y := 1; y <= layers; y++ {
				s.Set(x, y, z, catalogs.Stone)
			}
		}
	}
}

func TestStep_ClimbsOneBlockStep(t *testing.T) {
	s := store.New()
	ledge(s, 1)
	p := testParams()
	p.StepHeight = 1
	r := New(p)
	b := Body{Pos: mgl64.Vec3{0.5, 1.9, 0.5}, Yaw: -math.Pi / 2, Grounded: true}

	for i := 0; i < 30; i++ {
		r.Step(&b, Intent{Forward: 1}, s, 1.0/60)
		require.False(t, r.IsColliding(b.Pos, s), "tick %d overlaps a solid voxel", i)
	}
	assert.Greater(t, b.Pos.X(), 2.5)
	assert.InDelta(t, 2.9, b.Pos.Y(), 1e-9)
	assert.True(t, b.Grounded)
	assert.InDelta(t, 0.5, b.Pos.Z(), 1e-9)
}

func TestStep_DoesNotClimbTwoBlocks(t *testing.T) {
	s := store.New()
	ledge(s, 2)
	p := testParams()
	p.StepHeight = 1
	r := New(p)
	b := Body{Pos: mgl64.Vec3{0.5, 1.9, 0.5}, Yaw: -math.Pi / 2, Grounded: true}

	for i := 0; i < 30; i++ {
		r.Step(&b, Intent{Forward: 1}, s, 1.0/60)
	}
	assert.InDelta(t, 2-0.3, b.Pos.X(), 1e-3)
	assert.InDelta(t, 1.9, b.Pos.Y(), 1e-9)
	assert.False(t, r.IsColliding(b.Pos, s))
}

func TestStep_NoClimbWhileAirborne(t *testing.T) {
	s := store.New()
	ledge(s, 1)
	p := testParams()
	p.StepHeight = 1
	r := New(p)
	// Feet just above the floor and falling: the rise stops the walk.
	b := Body{Pos: mgl64.Vec3{1.65, 1.95, 0.5}, Yaw: -math.Pi / 2}

	res := r.Step(&b, Intent{Forward: 1}, s, 1.0/60)
	assert.True(t, res.BlockedX)
	assert.Less(t, b.Pos.X(), 2-0.3+1e-6)
	assert.Less(t, b.Pos.Y(), 2.0)
}

func TestStep_ForwardFollowsCameraLook(t *testing.T) {
	s := store.New()
	platform(s, -10, 10)
	r := New(testParams())
	b := Body{Pos: mgl64.Vec3{0.5, 1.9, 0.5}, Grounded: true}
	r.Step(&b, Intent{Forward: 1}, s, maxDT)
	look := Look(b.Yaw, 0)
	moved := b.Pos.Sub(mgl64.Vec3{0.5, 1.9, 0.5})
	assert.InDelta(t, 5*maxDT, moved.Dot(look), 1e-9)
}

func TestStep_JumpOnlyWhenGrounded(t *testing.T) {
	s := store.New()
	platform(s, -2, 2)
	r := New(testParams())
	b := Body{Pos: mgl64.Vec3{0.5, 1.9, 0.5}, Grounded: true}

	r.Step(&b, Intent{Jump: true}, s, maxDT)
	assert.False(t, b.Grounded)
	assert.Greater(t, b.Pos.Y(), 1.9)
	vel := b.VelY

	r.Step(&b, Intent{Jump: true}, s, maxDT)
	assert.InDelta(t, vel+r.p.Gravity*maxDT, b.VelY, 1e-9, "mid-air jump ignored")

	peak := b.Pos.Y()
	for i := 0; i < 60; i++ {
		r.Step(&b, Intent{}, s, maxDT)
		peak = math.Max(peak, b.Pos.Y())
	}
	assert.Greater(t, peak, 1.9+1.0)
	assert.True(t, b.Grounded)
	assert.InDelta(t, 1.9, b.Pos.Y(), 1e-9)
}

func TestStep_CeilingStopsJump(t *testing.T) {
	s := store.New()
	platform(s, -2, 2)
	s.Set(0, 3, 0, catalogs.Stone)
	r := New(testParams())
	b := Body{Pos: mgl64.Vec3{0.5, 1.9, 0.5}, Grounded: true}

	res := r.Step(&b, Intent{Jump: true}, s, maxDT)
	for i := 0; i < 5 && !res.BlockedY; i++ {
		res = r.Step(&b, Intent{}, s, maxDT)
	}
	require.True(t, res.BlockedY)
	assert.Zero(t, b.VelY)
	assert.False(t, b.Grounded)
	assert.LessOrEqual(t, b.Pos.Y()+r.p.HalfHeight, 3.0+1e-6)
	assert.InDelta(t, 3.0, b.Pos.Y()+r.p.HalfHeight, 1e-3)
}

func TestStep_HardFloor(t *testing.T) {
	s := store.New()
	p := testParams()
	p.MinY = 0
	r := New(p)
	b := Body{Pos: mgl64.Vec3{0, 3, 0}}
	for i := 0; i < 100; i++ {
		r.Step(&b, Intent{}, s, maxDT)
	}
	assert.InDelta(t, p.HalfHeight, b.Pos.Y(), 1e-9)
	assert.True(t, b.Grounded)
	assert.Zero(t, b.VelY)
}

func TestIsColliding_LeavesAreNotSolid(t *testing.T) {
	s := store.New()
	s.Set(0, 1, 0, catalogs.Leaves)
	r := New(testParams())
	assert.False(t, r.IsColliding(mgl64.Vec3{0.5, 1.9, 0.5}, s))
	s.Set(0, 1, 0, catalogs.Wood)
	assert.True(t, r.IsColliding(mgl64.Vec3{0.5, 1.9, 0.5}, s))
}

func TestIsColliding_TouchingIsNotOverlapping(t *testing.T) {
	s := store.New()
	s.Set(0, 0, 0, catalogs.Stone)
	r := New(testParams())
	assert.False(t, r.IsColliding(mgl64.Vec3{0.5, 1.9, 0.5}, s), "resting on top face")
	assert.False(t, r.IsColliding(mgl64.Vec3{-0.3, 0.5, 0.5}, s), "touching the -X face")
	assert.True(t, r.IsColliding(mgl64.Vec3{0.5, 1.899, 0.5}, s))
}

func TestIsColliding_ThinPillarInsideFootprint(t *testing.T) {
	// A coarse stride must still see a single voxel anywhere under the body.
	s := store.New()
	s.Set(5, 10, 5, catalogs.Stone)
	p := testParams()
	p.SampleStride = 1
	r := New(p)
	for _, off := range []float64{-0.29, 0, 0.29} {
		pos := mgl64.Vec3{5.5 + off, 10.5, 5.5 + off}
		assert.True(t, r.IsColliding(pos, s), "offset %v", off)
	}
}

func TestGroundHeight(t *testing.T) {
	s := store.New()
	s.Set(2, 0, 2, catalogs.Bedrock)
	s.Set(2, 7, 2, catalogs.Grass)
	r := New(testParams())
	assert.Equal(t, 8.0, r.GroundHeight(2.9, 2.1, s))
	assert.Equal(t, 0.0, r.GroundHeight(-4, -4, s))
	s.Set(2, 7, 2, catalogs.Leaves)
	assert.Equal(t, 1.0, r.GroundHeight(2.5, 2.5, s))
}

func TestTurn_ClampsPitch(t *testing.T) {
	var b Body
	b.Turn(100, 0, 0.002)
	assert.InDelta(t, -0.2, b.Yaw, 1e-12)
	b.Turn(0, -5000, 0.002)
	assert.Equal(t, math.Pi/2, b.Pitch)
	b.Turn(0, 5000, 0.002)
	assert.Equal(t, -math.Pi/2, b.Pitch)
}

func TestOverlaps(t *testing.T) {
	r := New(testParams())
	b := Body{Pos: mgl64.Vec3{0.5, 1.9, 0.5}}
	assert.True(t, r.Overlaps(b, model.Vec3i{X: 0, Y: 1, Z: 0}))
	assert.True(t, r.Overlaps(b, model.Vec3i{X: 0, Y: 2, Z: 0}))
	assert.False(t, r.Overlaps(b, model.Vec3i{X: 0, Y: 0, Z: 0}), "block under the feet")
	assert.False(t, r.Overlaps(b, model.Vec3i{X: 0, Y: 3, Z: 0}), "block touching the head")
	assert.False(t, r.Overlaps(b, model.Vec3i{X: 1, Y: 1, Z: 0}))
	assert.InDelta(t, 2.6, r.Eye(b).Y(), 1e-12)
}
