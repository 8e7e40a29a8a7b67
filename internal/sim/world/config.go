package world

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"voxelsandbox.dev/internal/sim/tuning"
	"voxelsandbox.dev/internal/sim/world/physics"
	"voxelsandbox.dev/internal/sim/world/terrain/gen"
	"voxelsandbox.dev/internal/sim/world/visibility"
)

type WorldConfig struct {
	Seed        int64
	TickRateHz  int
	MaxDT       time.Duration
	WorldHeight int

	Gen   gen.Params
	Body  physics.Params
	Spawn mgl64.Vec3

	MouseSensitivity float64
	Reach            float64

	Visibility visibility.Window

	// Sample the tick journal every N ticks; 0 disables it.
	TickLogEveryTicks int
}

// ConfigFromTuning maps the tuning file onto a world config for one seed.
func ConfigFromTuning(t tuning.Tuning, seed int64) (WorldConfig, error) {
	vert, err := visibility.ParseVertical(t.Visibility.Vertical)
	if err != nil {
		return WorldConfig{}, err
	}
	g, p := t.WorldGen, t.Player
	cfg := WorldConfig{
		Seed:        seed,
		TickRateHz:  t.TickRateHz,
		MaxDT:       time.Duration(t.MaxDTMs) * time.Millisecond,
		WorldHeight: t.WorldHeight,
		Gen: gen.Params{
			Seed:         seed,
			Profile:      g.Profile,
			HalfWidth:    g.HalfWidth,
			Base:         g.Base,
			AmpX:         g.AmpX,
			AmpZ:         g.AmpZ,
			Frequency:    g.Frequency,
			BedrockDepth: g.BedrockDepth,
			DirtDepth:    g.DirtDepth,
			TreeChance:   g.TreeChance,
			TrunkMin:     g.TrunkMin,
			TrunkMax:     g.TrunkMax,
			CanopyRadius: g.CanopyRadius,
			CanopyHeight: g.CanopyHeight,
		},
		Body: physics.Params{
			HalfWidth:        p.HalfWidth,
			HalfHeight:       p.HalfHeight,
			EyeOffset:        p.EyeOffset,
			WalkSpeed:        p.WalkSpeed,
			Gravity:          p.Gravity,
			JumpSpeed:        p.JumpSpeed,
			TerminalVelocity: p.TerminalVelocity,
			SampleStride:     p.SampleStride,
			StepHeight:       p.StepHeight,
		},
		Spawn:            mgl64.Vec3(p.Spawn),
		MouseSensitivity: p.MouseSensitivity,
		Reach:            p.Reach,
		Visibility: visibility.Window{
			Radius:   t.Visibility.Radius,
			Vertical: vert,
		},
		TickLogEveryTicks: t.Journal.TickEveryTicks,
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *WorldConfig) applyDefaults() {
	if c.TickRateHz <= 0 {
		c.TickRateHz = 60
	}
	if c.MaxDT <= 0 {
		c.MaxDT = 50 * time.Millisecond
	}
	if c.WorldHeight <= 0 {
		c.WorldHeight = 32
	}
	if c.Reach <= 0 {
		c.Reach = 6
	}
	if c.MouseSensitivity <= 0 {
		c.MouseSensitivity = 0.002
	}
	if c.Gen.Seed == 0 {
		c.Gen.Seed = c.Seed
	}
	if c.Visibility.Radius <= 0 {
		c.Visibility.Radius = 16
	}
	c.Body.MinY = 0
	c.Body.WorldHeight = c.WorldHeight
	if c.Visibility.Vertical == visibility.Bounded {
		c.Visibility.MinY = 0
		c.Visibility.MaxY = c.WorldHeight
	}
}
