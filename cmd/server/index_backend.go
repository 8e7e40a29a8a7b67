package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voxelsandbox.dev/internal/persistence/indexdb"
	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/world"
)

type runtimeIndex interface {
	world.TickLogger
	world.EditLogger
	SessionStarted(id, clientName string)
	SessionEnded(id string, frames, resyncs uint64)
	RecordRun(seed int64, startedAt time.Time, initialDigest string, cat *catalogs.BlockCatalog) error
	Stats() indexdb.Stats
	Close() error
}

func openRuntimeIndex(runDir, runID string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("VS_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		return indexdb.OpenSQLite(filepath.Join(runDir, "index", "run.sqlite"), runID)
	default:
		return nil, fmt.Errorf("unsupported VS_INDEX_BACKEND: %s", backend)
	}
}
