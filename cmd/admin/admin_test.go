package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelsandbox.dev/internal/persistence/indexdb"
	persistlog "voxelsandbox.dev/internal/persistence/log"
	"voxelsandbox.dev/internal/sim/tuning"
	"voxelsandbox.dev/internal/sim/world"
)

func TestListRuns(t *testing.T) {
	runs := t.TempDir()
	require.NoError(t, persistlog.WriteManifest(filepath.Join(runs, "20260101T000000Z"), persistlog.RunManifest{
		RunID:     "20260101T000000Z",
		Seed:      5,
		StartedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Digest:    "0123456789abcdef",
		Tuning:    tuning.Defaults(),
	}))
	require.NoError(t, os.MkdirAll(filepath.Join(runs, "broken"), 0o755))

	var out bytes.Buffer
	require.NoError(t, listRuns(&out, runs))
	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "seed=5")
	assert.Contains(t, string(lines[0]), "digest=0123456789ab")
	assert.Contains(t, string(lines[1]), "broken\t(no manifest")
}

func TestListRuns_MissingDir(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, listRuns(&out, filepath.Join(t.TempDir(), "nope")))
}

func TestPrintEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.sqlite")
	idx, err := indexdb.OpenSQLite(path, "r")
	require.NoError(t, err)
	require.NoError(t, idx.WriteEdit(world.EditEntry{Tick: 4, Action: world.EditMine, Pos: [3]int{2, 6, 2}, From: 2}))
	require.NoError(t, idx.WriteEdit(world.EditEntry{Tick: 8, Action: world.EditPlace, Pos: [3]int{2, 6, 2}, To: 4}))
	require.NoError(t, idx.WriteEdit(world.EditEntry{Tick: 9, Action: world.EditMine, Pos: [3]int{0, 0, 0}, From: 3}))
	require.NoError(t, idx.Close())

	idx, err = indexdb.OpenSQLite(path, "r")
	require.NoError(t, err)
	defer idx.Close()

	var out bytes.Buffer
	require.NoError(t, printEdits(&out, idx, 2, 6, 2))
	s := out.String()
	assert.Contains(t, s, "edits=2 (run total 3)")
	assert.Contains(t, s, "tick=4\tMINE\t2 -> 0")
	assert.Contains(t, s, "tick=8\tPLACE\t0 -> 4")
}

func TestFetchState_PrintsSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/v1/state", r.URL.Path)
		rw.Header().Set("Content-Type", "application/json")
		_, _ = rw.Write([]byte(`{"seed":-7,"palette_digest":"abcdef0123456789","gen_trees":12,
			"status":{"tick":120,"blocks":4096,"proxies":900,"renderer":true,
			"player":[0.5,9.9,-1.25],"grounded":true,"step_ms":0.25}}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	require.NoError(t, fetchState(&out, srv.Client(), srv.URL+"/", false))
	s := out.String()
	assert.Contains(t, s, "seed=-7 palette=abcdef012345 trees=12")
	assert.Contains(t, s, "tick=120 blocks=4096 proxies=900 renderer=true")
	assert.Contains(t, s, "player=(0.50, 9.90, -1.25) grounded=true")

	out.Reset()
	require.NoError(t, fetchState(&out, srv.Client(), srv.URL, true))
	assert.Contains(t, out.String(), `"gen_trees":12`)
}

func TestFetchState_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		http.Error(rw, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := fetchState(&out, srv.Client(), srv.URL, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "forbidden")
	assert.Empty(t, out.String())
}

func TestPrintState_BadJSON(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, printState(&out, bytes.NewReader([]byte("not json"))))
}
