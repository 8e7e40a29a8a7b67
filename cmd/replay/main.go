package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	persistlog "voxelsandbox.dev/internal/persistence/log"
	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/world"
)

func main() {
	var (
		runDir    = flag.String("run", "", "run directory containing run.yaml, edits/ and ticks/")
		configDir = flag.String("configs", "./configs", "config directory")
		verify    = flag.Bool("verify", true, "check checksums recorded in the tick journal")
		toTick    = flag.Uint64("to_tick", 0, "stop after edits of this tick (inclusive, optional)")
	)
	flag.Parse()

	if *runDir == "" {
		fmt.Fprintln(os.Stderr, "missing -run")
		os.Exit(2)
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}

	res, err := replayRun(*runDir, cats, *verify, *toTick)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: run=%s seed=%d edits=%d checked=%d ticks blocks=%d digest=%s\n",
		res.RunID, res.Seed, res.Edits, res.Checked, res.Blocks, res.Digest)
}

type replayResult struct {
	RunID   string
	Seed    int64
	Edits   int
	Checked int
	Blocks  int
	Digest  string
}

// replayRun regenerates the run's terrain and re-applies its edit journal.
// With verify set, every journaled tick checksum must match the store after the
// edits of that tick.
func replayRun(runDir string, cats *catalogs.BlockCatalog, verify bool, toTick uint64) (replayResult, error) {
	var res replayResult

	m, err := persistlog.ReadManifest(runDir)
	if err != nil {
		return res, fmt.Errorf("read manifest: %w", err)
	}
	res.RunID, res.Seed = m.RunID, m.Seed

	cfg, err := world.ConfigFromTuning(m.Tuning, m.Seed)
	if err != nil {
		return res, fmt.Errorf("world config: %w", err)
	}
	w, err := world.New(cfg, cats, nil)
	if err != nil {
		return res, fmt.Errorf("world: %w", err)
	}
	s := w.Store()
	if m.Digest != "" && s.Digest() != m.Digest {
		return res, fmt.Errorf("initial digest mismatch: got=%s want=%s", s.Digest(), m.Digest)
	}

	edits, err := persistlog.ReadEdits(runDir)
	if err != nil {
		return res, fmt.Errorf("read edits: %w", err)
	}
	var ticks []world.TickLogEntry
	if verify {
		ticks, err = persistlog.ReadTicks(runDir)
		if err != nil {
			return res, fmt.Errorf("read ticks: %w", err)
		}
		sort.SliceStable(ticks, func(i, j int) bool { return ticks[i].Tick < ticks[j].Tick })
	}

	next := 0
	check := func(upTo uint64) error {
		for ; next < len(ticks) && ticks[next].Tick < upTo; next++ {
			t := ticks[next]
			if toTick != 0 && t.Tick > toTick {
				return nil
			}
			if got := s.Checksum(); got != t.Checksum {
				return fmt.Errorf("checksum mismatch at tick %d: got=%s want=%s", t.Tick, got, t.Checksum)
			}
			res.Checked++
		}
		return nil
	}

	for _, e := range edits {
		if toTick != 0 && e.Tick > toTick {
			break
		}
		// Ticks strictly before this edit's tick see the store as it is now.
		if err := check(e.Tick); err != nil {
			return res, err
		}
		if err := world.ApplyEdit(s, e); err != nil {
			return res, err
		}
		res.Edits++
	}
	limit := ^uint64(0)
	if toTick != 0 {
		limit = toTick + 1
	}
	if err := check(limit); err != nil {
		return res, err
	}

	res.Blocks = s.Len()
	res.Digest = s.Digest()
	return res, nil
}
