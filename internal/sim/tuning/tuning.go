package tuning

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TickRateHz  int `yaml:"tick_rate_hz"`
	MaxDTMs     int `yaml:"max_dt_ms"`
	WorldHeight int `yaml:"world_height"`

	WorldGen   WorldGen   `yaml:"worldgen"`
	Player     Player     `yaml:"player"`
	Visibility Visibility `yaml:"visibility"`
	Journal    Journal    `yaml:"journal"`
}

type WorldGen struct {
	Profile      string  `yaml:"profile"`
	HalfWidth    int     `yaml:"half_width"`
	Base         int     `yaml:"base"`
	AmpX         float64 `yaml:"amp_x"`
	AmpZ         float64 `yaml:"amp_z"`
	Frequency    float64 `yaml:"frequency"`
	BedrockDepth int     `yaml:"bedrock_depth"`
	DirtDepth    int     `yaml:"dirt_depth"`
	TreeChance   float64 `yaml:"tree_chance"`
	TrunkMin     int     `yaml:"trunk_min"`
	TrunkMax     int     `yaml:"trunk_max"`
	CanopyRadius int     `yaml:"canopy_radius"`
	CanopyHeight int     `yaml:"canopy_height"`
}

type Player struct {
	Spawn            [3]float64 `yaml:"spawn"`
	HalfWidth        float64    `yaml:"half_width"`
	HalfHeight       float64    `yaml:"half_height"`
	EyeOffset        float64    `yaml:"eye_offset"`
	WalkSpeed        float64    `yaml:"walk_speed"`
	Gravity          float64    `yaml:"gravity"`
	JumpSpeed        float64    `yaml:"jump_speed"`
	TerminalVelocity float64    `yaml:"terminal_velocity"`
	SampleStride     float64    `yaml:"sample_stride"`
	StepHeight       float64    `yaml:"step_height"`
	MouseSensitivity float64    `yaml:"mouse_sensitivity"`
	Reach            float64    `yaml:"reach"`
}

type Visibility struct {
	Radius int `yaml:"radius"`
	// Vertical is "bounded" (0 <= y < world_height) or "column" (no vertical bound).
	Vertical string `yaml:"vertical"`
}

type Journal struct {
	TickEveryTicks int `yaml:"tick_every_ticks"`
}

func Defaults() Tuning {
	return Tuning{
		TickRateHz:  60,
		MaxDTMs:     50,
		WorldHeight: 32,
		WorldGen: WorldGen{
			Profile:      "sine",
			HalfWidth:    32,
			Base:         8,
			AmpX:         2,
			AmpZ:         2,
			Frequency:    0.1,
			BedrockDepth: 3,
			DirtDepth:    2,
			TreeChance:   0.015,
			TrunkMin:     4,
			TrunkMax:     6,
			CanopyRadius: 2,
			CanopyHeight: 2,
		},
		Player: Player{
			Spawn:            [3]float64{0.5, 30, 0.5},
			HalfWidth:        0.3,
			HalfHeight:       0.9,
			EyeOffset:        0.7,
			WalkSpeed:        5,
			Gravity:          -20,
			JumpSpeed:        8,
			TerminalVelocity: 50,
			SampleStride:     0.5,
			StepHeight:       1,
			MouseSensitivity: 0.002,
			Reach:            6,
		},
		Visibility: Visibility{
			Radius:   16,
			Vertical: "bounded",
		},
		Journal: Journal{
			TickEveryTicks: 60,
		},
	}
}

// Load reads a tuning file on top of Defaults, so a partial file only overrides
// the keys it names.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	var errs []error
	if t.TickRateHz <= 0 || t.TickRateHz > 240 {
		errs = append(errs, fmt.Errorf("tick_rate_hz out of range: %d", t.TickRateHz))
	}
	if t.MaxDTMs <= 0 || t.MaxDTMs > 250 {
		errs = append(errs, fmt.Errorf("max_dt_ms out of range: %d", t.MaxDTMs))
	}
	if t.WorldHeight <= 0 {
		errs = append(errs, fmt.Errorf("world_height must be positive: %d", t.WorldHeight))
	}

	g := t.WorldGen
	switch g.Profile {
	case "sine", "simplex", "perlin":
	default:
		errs = append(errs, fmt.Errorf("worldgen.profile: unknown %q", g.Profile))
	}
	if g.HalfWidth <= 0 {
		errs = append(errs, fmt.Errorf("worldgen.half_width must be positive: %d", g.HalfWidth))
	}
	if g.BedrockDepth < 0 || g.DirtDepth < 0 {
		errs = append(errs, errors.New("worldgen: negative layer depth"))
	}
	if g.TreeChance < 0 || g.TreeChance > 1 {
		errs = append(errs, fmt.Errorf("worldgen.tree_chance out of range: %v", g.TreeChance))
	}
	if g.TrunkMin <= 0 || g.TrunkMax <= g.TrunkMin {
		errs = append(errs, fmt.Errorf("worldgen: trunk range [%d,%d) is empty", g.TrunkMin, g.TrunkMax))
	}
	if g.CanopyRadius < 0 || g.CanopyHeight < 0 {
		errs = append(errs, errors.New("worldgen: negative canopy size"))
	}
	if top := g.Base + int(g.AmpX+g.AmpZ) + g.TrunkMax + g.CanopyHeight; top >= t.WorldHeight {
		errs = append(errs, fmt.Errorf("worldgen: trees can reach y=%d, above world_height %d", top, t.WorldHeight))
	}

	p := t.Player
	if p.HalfWidth <= 0 || p.HalfWidth >= 0.5 {
		errs = append(errs, fmt.Errorf("player.half_width must be in (0, 0.5): %v", p.HalfWidth))
	}
	if p.HalfHeight <= 0 {
		errs = append(errs, fmt.Errorf("player.half_height must be positive: %v", p.HalfHeight))
	}
	if p.SampleStride <= 0 || p.SampleStride > 1 {
		errs = append(errs, fmt.Errorf("player.sample_stride must be in (0, 1]: %v", p.SampleStride))
	}
	if p.StepHeight < 0 || p.StepHeight >= 2*p.HalfHeight {
		errs = append(errs, fmt.Errorf("player.step_height must be in [0, body height): %v", p.StepHeight))
	}
	if p.Gravity >= 0 {
		errs = append(errs, fmt.Errorf("player.gravity must be negative: %v", p.Gravity))
	}
	if p.TerminalVelocity <= 0 {
		errs = append(errs, fmt.Errorf("player.terminal_velocity must be positive: %v", p.TerminalVelocity))
	}
	if p.Reach <= 0 {
		errs = append(errs, fmt.Errorf("player.reach must be positive: %v", p.Reach))
	}

	if t.Visibility.Radius <= 0 {
		errs = append(errs, fmt.Errorf("visibility.radius must be positive: %d", t.Visibility.Radius))
	}
	switch t.Visibility.Vertical {
	case "bounded", "column":
	default:
		errs = append(errs, fmt.Errorf("visibility.vertical: unknown %q", t.Visibility.Vertical))
	}
	if t.Journal.TickEveryTicks < 0 {
		errs = append(errs, fmt.Errorf("journal.tick_every_ticks must not be negative: %d", t.Journal.TickEveryTicks))
	}
	return errors.Join(errs...)
}
