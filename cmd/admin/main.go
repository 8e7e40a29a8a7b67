package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"voxelsandbox.dev/internal/persistence/indexdb"
	persistlog "voxelsandbox.dev/internal/persistence/log"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "edits":
			editsCmd(os.Args[2:])
			return
		case "sessions":
			sessionsCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	if err := listRuns(os.Stdout, filepath.Join(*dataDir, "runs")); err != nil {
		fmt.Fprintln(os.Stderr, "list:", err)
		os.Exit(1)
	}
}

// listRuns prints one line per run directory, newest last.
func listRuns(out io.Writer, runsDir string) error {
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		m, err := persistlog.ReadManifest(filepath.Join(runsDir, name))
		if err != nil {
			fmt.Fprintf(out, "%s\t(no manifest: %v)\n", name, err)
			continue
		}
		fmt.Fprintf(out, "%s\tseed=%d\tstarted=%s\tprofile=%s\tdigest=%s\n",
			name, m.Seed, m.StartedAt.Format("2006-01-02T15:04:05Z07:00"), m.Tuning.WorldGen.Profile, shortDigest(m.Digest))
	}
	return nil
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

func openRunIndex(fs *flag.FlagSet, args []string) *indexdb.SQLiteIndex {
	dataDir := fs.String("data", "./data", "runtime data directory")
	runID := fs.String("run", "", "run id (required)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*runID) == "" {
		fmt.Fprintln(os.Stderr, "missing -run")
		os.Exit(2)
	}
	path := filepath.Join(*dataDir, "runs", *runID, "index", "run.sqlite")
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "index:", err)
		os.Exit(1)
	}
	idx, err := indexdb.OpenSQLite(path, *runID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	return idx
}

func editsCmd(args []string) {
	fs := flag.NewFlagSet("edits", flag.ExitOnError)
	x := fs.Int("x", 0, "cell x")
	y := fs.Int("y", 0, "cell y")
	z := fs.Int("z", 0, "cell z")
	idx := openRunIndex(fs, args)
	defer idx.Close()

	if err := printEdits(os.Stdout, idx, *x, *y, *z); err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
}

func printEdits(out io.Writer, idx *indexdb.SQLiteIndex, x, y, z int) error {
	ctx := context.Background()
	total, err := idx.CountEdits(ctx)
	if err != nil {
		return err
	}
	rows, err := idx.EditsAt(ctx, x, y, z)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "cell=%d,%d,%d edits=%d (run total %d)\n", x, y, z, len(rows), total)
	for _, r := range rows {
		fmt.Fprintf(out, "tick=%d\t%s\t%d -> %d\n", r.Tick, r.Action, r.From, r.To)
	}
	return nil
}

func sessionsCmd(args []string) {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	idx := openRunIndex(fs, args)
	defer idx.Close()

	rows, err := idx.Sessions(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	for _, r := range rows {
		state := "open"
		if r.Ended {
			state = "ended"
		}
		fmt.Printf("%s\t%s\t%s\tframes=%d\tresyncs=%d\n", r.ID, r.ClientName, state, r.Frames, r.Resyncs)
	}
}
