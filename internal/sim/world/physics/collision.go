package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"voxelsandbox.dev/internal/sim/world/logic/mathx"
)

// Solids answers point occupancy queries. Unknown cells are empty.
type Solids interface {
	IsSolid(x, y, z int) bool
}

type Params struct {
	HalfWidth  float64
	HalfHeight float64
	EyeOffset  float64

	WalkSpeed        float64
	Gravity          float64 // negative
	JumpSpeed        float64
	TerminalVelocity float64 // positive magnitude

	// SampleStride is the spacing of collision samples and the longest sub-step of
	// a swept move. Must be in (0, 1].
	SampleStride float64

	// StepHeight is the tallest rise a grounded walk climbs without jumping.
	StepHeight float64

	// MinY is the lowest the feet may go.
	MinY float64
	// WorldHeight is where GroundHeight starts scanning down.
	WorldHeight int
}

// faceInset shrinks the body on every face so touching a voxel is not overlapping it.
const faceInset = 1e-9

const bisectSteps = 16

type Resolver struct {
	p Params
}

func New(p Params) *Resolver {
	if p.SampleStride <= 0 || p.SampleStride > 1 {
		p.SampleStride = 0.5
	}
	return &Resolver{p: p}
}

func (r *Resolver) Params() Params { return r.p }

// StepResult reports which axes were stopped this tick.
type StepResult struct {
	BlockedX bool
	BlockedY bool
	BlockedZ bool
}

// Step integrates one tick: walk intent, jump, gravity, then X, Z and Y moves
// resolved independently so a blocked axis slides along the obstacle.
func (r *Resolver) Step(b *Body, in Intent, src Solids, dt float64) StepResult {
	fwd, right := basis(b.Yaw)
	dir := fwd.Mul(-in.Forward).Add(right.Mul(in.Strafe))
	if dir.Len() > 0 {
		dir = dir.Normalize().Mul(r.p.WalkSpeed * dt)
	}

	if in.Jump && b.Grounded {
		b.VelY = r.p.JumpSpeed
		b.Grounded = false
	}
	b.VelY += r.p.Gravity * dt
	if b.VelY < -r.p.TerminalVelocity {
		b.VelY = -r.p.TerminalVelocity
	}

	var res StepResult
	res.BlockedX = !r.walkAxis(b, 0, dir.X(), src)
	res.BlockedZ = !r.walkAxis(b, 2, dir.Z(), src)

	dy := b.VelY * dt
	if r.moveAxis(b, 1, dy, src) {
		if dy != 0 {
			b.Grounded = false
		}
	} else {
		res.BlockedY = true
		b.VelY = 0
		if dy < 0 {
			b.Grounded = true
		}
	}

	if feet := b.Pos.Y() - r.p.HalfHeight; feet < r.p.MinY {
		b.Pos[1] = r.p.MinY + r.p.HalfHeight
		b.VelY = 0
		b.Grounded = true
	}
	return res
}

// walkAxis is a horizontal moveAxis that, when grounded and blocked, retries
// the move from the start raised onto the next whole block up to StepHeight.
func (r *Resolver) walkAxis(b *Body, axis int, delta float64, src Solids) bool {
	start := b.Pos
	if r.moveAxis(b, axis, delta, src) {
		return true
	}
	if !b.Grounded || r.p.StepHeight <= 0 {
		return false
	}
	feet := start.Y() - r.p.HalfHeight
	base := math.Floor(feet + stepSlack)
	for k := 1.0; ; k++ {
		lift := base + k - feet
		if lift > r.p.StepHeight+stepSlack {
			return false
		}
		raised := *b
		raised.Pos = start
		raised.Pos[1] = base + k + r.p.HalfHeight
		if r.IsColliding(raised.Pos, src) {
			return false
		}
		if r.moveAxis(&raised, axis, delta, src) {
			b.Pos = raised.Pos
			return true
		}
	}
}

// stepSlack absorbs rounding in feet heights that sit on a block top.
const stepSlack = 1e-6

// moveAxis sweeps b along one axis in sub-steps no longer than the sample stride
// and reports whether the whole distance was covered.
func (r *Resolver) moveAxis(b *Body, axis int, delta float64, src Solids) bool {
	if delta == 0 {
		return true
	}
	steps := int(math.Ceil(math.Abs(delta) / r.p.SampleStride))
	step := delta / float64(steps)
	for i := 0; i < steps; i++ {
		cand := b.Pos
		cand[axis] += step
		if !r.IsColliding(cand, src) {
			b.Pos = cand
			continue
		}
		r.settle(b, axis, cand, src)
		return false
	}
	return true
}

// settle moves b from its free position toward the blocked candidate as far as
// possible. Landing snaps the feet onto the top face of the voxel below.
func (r *Resolver) settle(b *Body, axis int, blocked mgl64.Vec3, src Solids) {
	if axis == 1 && blocked.Y() < b.Pos.Y() {
		feet := blocked.Y() - r.p.HalfHeight
		snap := b.Pos
		snap[1] = math.Floor(feet) + 1 + r.p.HalfHeight
		if snap.Y() <= b.Pos.Y() && !r.IsColliding(snap, src) {
			b.Pos = snap
		}
		return
	}
	free, hit := b.Pos[axis], blocked[axis]
	for i := 0; i < bisectSteps; i++ {
		mid := b.Pos
		mid[axis] = (free + hit) / 2
		if r.IsColliding(mid, src) {
			hit = mid[axis]
		} else {
			free = mid[axis]
		}
	}
	b.Pos[axis] = free
}

// IsColliding samples the body's footprint times its height at pos.
func (r *Resolver) IsColliding(pos mgl64.Vec3, src Solids) bool {
	hw, hh, s := r.p.HalfWidth, r.p.HalfHeight, r.p.SampleStride
	xs := samples(pos.X()-hw, pos.X()+hw, s)
	ys := samples(pos.Y()-hh, pos.Y()+hh, s)
	zs := samples(pos.Z()-hw, pos.Z()+hw, s)
	for _, y := range ys {
		iy := mathx.FloorInt(y)
		for _, z := range zs {
			iz := mathx.FloorInt(z)
			for _, x := range xs {
				if src.IsSolid(mathx.FloorInt(x), iy, iz) {
					return true
				}
			}
		}
	}
	return false
}

// samples covers (lo, hi) with points no more than stride apart, including both
// inset ends, so no unit cell overlapping the span is skipped.
func samples(lo, hi, stride float64) []float64 {
	top := hi - faceInset
	out := make([]float64, 0, int((hi-lo)/stride)+2)
	for v := lo + faceInset; v < top; v += stride {
		out = append(out, v)
	}
	return append(out, top)
}

// GroundHeight is the top face of the highest solid voxel in the column under
// (x, z), scanning down from WorldHeight; 0 when the column is empty.
func (r *Resolver) GroundHeight(x, z float64, src Solids) float64 {
	ix, iz := mathx.FloorInt(x), mathx.FloorInt(z)
	for y := r.p.WorldHeight; y >= 0; y-- {
		if src.IsSolid(ix, y, iz) {
			return float64(y + 1)
		}
	}
	return 0
}
