package log

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"voxelsandbox.dev/internal/sim/tuning"
)

const manifestName = "run.yaml"

// RunManifest records what a run's world was generated from, so the edit
// journal can be replayed onto the same terrain.
type RunManifest struct {
	RunID     string        `yaml:"run_id"`
	Seed      int64         `yaml:"seed"`
	StartedAt time.Time     `yaml:"started_at"`
	Digest    string        `yaml:"initial_digest"`
	Tuning    tuning.Tuning `yaml:"tuning"`
}

func WriteManifest(runDir string, m RunManifest) error {
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(runDir, manifestName), b, 0o644)
}

func ReadManifest(runDir string) (RunManifest, error) {
	var m RunManifest
	b, err := os.ReadFile(filepath.Join(runDir, manifestName))
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("decode %s: %w", manifestName, err)
	}
	return m, nil
}
