package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"voxelsandbox.dev/internal/sim/world/kernel/model"
	"voxelsandbox.dev/internal/sim/world/logic/mathx"
)

// Body is the player state owned by the simulation. Pos is the AABB center.
type Body struct {
	Pos      mgl64.Vec3
	VelY     float64
	Yaw      float64
	Pitch    float64
	Grounded bool
}

// Intent is the per-tick movement request. Forward and Strafe are in [-1, 1]:
// Forward > 0 walks where the camera looks, Strafe > 0 walks right.
type Intent struct {
	Forward float64
	Strafe  float64
	Jump    bool
}

// Turn applies mouse deltas. Pitch is clamped to straight up/down.
func (b *Body) Turn(dx, dy, sensitivity float64) {
	b.Yaw -= dx * sensitivity
	b.Pitch -= dy * sensitivity
	b.Pitch = mathx.Clamp(b.Pitch, -math.Pi/2, math.Pi/2)
}

// Look is the camera forward vector. At yaw=0, pitch=0 the camera faces -Z.
func Look(yaw, pitch float64) mgl64.Vec3 {
	cp := math.Cos(pitch)
	return mgl64.Vec3{-math.Sin(yaw) * cp, math.Sin(pitch), -math.Cos(yaw) * cp}
}

// basis returns the yaw-rotated forward and right axes. The camera looks along -forward.
func basis(yaw float64) (forward, right mgl64.Vec3) {
	s, c := math.Sin(yaw), math.Cos(yaw)
	return mgl64.Vec3{s, 0, c}, mgl64.Vec3{c, 0, -s}
}

// Eye is the camera position for b.
func (r *Resolver) Eye(b Body) mgl64.Vec3 {
	return b.Pos.Add(mgl64.Vec3{0, r.p.EyeOffset, 0})
}

// Overlaps reports whether the body's box intersects the voxel cell.
func (r *Resolver) Overlaps(b Body, cell model.Vec3i) bool {
	hw, hh := r.p.HalfWidth-faceInset, r.p.HalfHeight-faceInset
	return b.Pos.X()-hw < float64(cell.X+1) && b.Pos.X()+hw > float64(cell.X) &&
		b.Pos.Y()-hh < float64(cell.Y+1) && b.Pos.Y()+hh > float64(cell.Y) &&
		b.Pos.Z()-hw < float64(cell.Z+1) && b.Pos.Z()+hw > float64(cell.Z)
}
