package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"voxelsandbox.dev/internal/sim/world"
)

// ReadJSONL decodes every line of <dir>/<prefix>-*.jsonl.zst in file name
// (hour) order and calls fn for each.
func ReadJSONL[T any](dir, prefix string, fn func(T) error) error {
	files, err := filepath.Glob(filepath.Join(dir, prefix+"-*.jsonl.zst"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return err
	}
	defer dec.Close()

	for _, path := range files {
		if err := readFile(dec, path, fn); err != nil {
			return err
		}
	}
	return nil
}

func readFile[T any](dec *zstd.Decoder, path string, fn func(T) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := dec.Reset(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(sc.Bytes(), &v); err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func ReadEdits(runDir string) ([]world.EditEntry, error) {
	var out []world.EditEntry
	err := ReadJSONL(filepath.Join(runDir, "edits"), "edits", func(e world.EditEntry) error {
		out = append(out, e)
		return nil
	})
	return out, err
}

func ReadTicks(runDir string) ([]world.TickLogEntry, error) {
	var out []world.TickLogEntry
	err := ReadJSONL(filepath.Join(runDir, "ticks"), "ticks", func(e world.TickLogEntry) error {
		out = append(out, e)
		return nil
	})
	return out, err
}
