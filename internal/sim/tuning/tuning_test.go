package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoad_ConfigsTuningYAML(t *testing.T) {
	tune, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.MaxDTMs != 50 || tune.WorldGen.Profile != "sine" {
		t.Fatalf("unexpected tuning: max_dt_ms=%d profile=%q", tune.MaxDTMs, tune.WorldGen.Profile)
	}
	if tune.Player.Reach != 6 || tune.Player.StepHeight != 1 {
		t.Fatalf("unexpected player: reach=%v step_height=%v", tune.Player.Reach, tune.Player.StepHeight)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("visibility:\n  radius: 8\n  vertical: column\nworldgen:\n  profile: simplex\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tune, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.Visibility.Radius != 8 || tune.Visibility.Vertical != "column" {
		t.Fatalf("visibility=%+v", tune.Visibility)
	}
	if tune.WorldGen.Profile != "simplex" {
		t.Fatalf("profile=%q want simplex", tune.WorldGen.Profile)
	}
	if tune.Player != Defaults().Player {
		t.Fatalf("player lost defaults: %+v", tune.Player)
	}
	if tune.WorldGen.HalfWidth != Defaults().WorldGen.HalfWidth {
		t.Fatalf("half_width=%d want default", tune.WorldGen.HalfWidth)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := map[string]func(*Tuning){
		"stride above voxel":  func(t *Tuning) { t.Player.SampleStride = 1.5 },
		"positive gravity":    func(t *Tuning) { t.Player.Gravity = 3 },
		"unknown profile":     func(t *Tuning) { t.WorldGen.Profile = "fractal" },
		"unknown vertical":    func(t *Tuning) { t.Visibility.Vertical = "sphere" },
		"empty trunk range":   func(t *Tuning) { t.WorldGen.TrunkMax = t.WorldGen.TrunkMin },
		"trees above world":   func(t *Tuning) { t.WorldHeight = 12 },
		"wide player":         func(t *Tuning) { t.Player.HalfWidth = 0.5 },
		"negative step":       func(t *Tuning) { t.Player.StepHeight = -1 },
		"step taller than me": func(t *Tuning) { t.Player.StepHeight = 2 * t.Player.HalfHeight },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			tune := Defaults()
			mutate(&tune)
			if err := tune.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
