package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/world"
)

// SQLiteIndex is a queryable secondary index of one server run. A single
// writer goroutine owns every insert; producers never block.
type SQLiteIndex struct {
	db    *sql.DB
	runID string

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool

	dropTick    atomic.Uint64
	dropEdit    atomic.Uint64
	dropSession atomic.Uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqEdit
	reqSessionStart
	reqSessionEnd
)

type req struct {
	kind reqKind

	tick    world.TickLogEntry
	edit    world.EditEntry
	session sessionRow
}

type sessionRow struct {
	ID         string
	ClientName string
	At         string
	Frames     uint64
	Resyncs    uint64
}

func OpenSQLite(path, runID string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if runID == "" {
		return nil, fmt.Errorf("empty run id")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db:    db,
		runID: runID,
		ch:    make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	// NORMAL is a decent durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			initial_digest TEXT NOT NULL,
			palette_digest TEXT NOT NULL,
			palette_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			client_name TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			frames INTEGER NOT NULL DEFAULT 0,
			resyncs INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			checksum TEXT NOT NULL,
			blocks INTEGER NOT NULL,
			proxies INTEGER NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (run_id, tick)
		);`,
		`CREATE TABLE IF NOT EXISTS edits (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			action TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			from_block INTEGER NOT NULL,
			to_block INTEGER NOT NULL,
			PRIMARY KEY (run_id, tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_edits_pos ON edits(x, z, y, tick);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun writes the run row synchronously; call it once before the world starts.
func (s *SQLiteIndex) RecordRun(seed int64, startedAt time.Time, initialDigest string, cat *catalogs.BlockCatalog) error {
	if s == nil {
		return nil
	}
	palette, err := json.Marshal(cat.Defs)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO runs(run_id,seed,started_at,initial_digest,palette_digest,palette_json) VALUES(?,?,?,?,?,?)`,
		s.runID, seed, startedAt.UTC().Format(time.RFC3339Nano), initialDigest, cat.PaletteDigest, string(palette),
	)
	return err
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) enqueue(r req, drops *atomic.Uint64) {
	if s == nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- r:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
		drops.Add(1)
	}
}

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil {
		return nil
	}
	s.enqueue(req{kind: reqTick, tick: entry}, &s.dropTick)
	return nil
}

func (s *SQLiteIndex) WriteEdit(entry world.EditEntry) error {
	if s == nil {
		return nil
	}
	s.enqueue(req{kind: reqEdit, edit: entry}, &s.dropEdit)
	return nil
}

func (s *SQLiteIndex) SessionStarted(id, clientName string) {
	if s == nil {
		return
	}
	s.enqueue(req{kind: reqSessionStart, session: sessionRow{
		ID:         id,
		ClientName: clientName,
		At:         time.Now().UTC().Format(time.RFC3339Nano),
	}}, &s.dropSession)
}

func (s *SQLiteIndex) SessionEnded(id string, frames, resyncs uint64) {
	if s == nil {
		return
	}
	s.enqueue(req{kind: reqSessionEnd, session: sessionRow{
		ID:      id,
		At:      time.Now().UTC().Format(time.RFC3339Nano),
		Frames:  frames,
		Resyncs: resyncs,
	}}, &s.dropSession)
}

type Stats struct {
	QueueDepth       int    `json:"queue_depth"`
	QueueCapacity    int    `json:"queue_capacity"`
	DropTickTotal    uint64 `json:"drop_tick_total"`
	DropEditTotal    uint64 `json:"drop_edit_total"`
	DropSessionTotal uint64 `json:"drop_session_total"`
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:       len(s.ch),
		QueueCapacity:    cap(s.ch),
		DropTickTotal:    s.dropTick.Load(),
		DropEditTotal:    s.dropEdit.Load(),
		DropSessionTotal: s.dropSession.Load(),
	}
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(run_id,tick,checksum,blocks,proxies,raw_json) VALUES(?,?,?,?,?,?)`)
	insertEdit, _ := s.db.Prepare(`INSERT OR REPLACE INTO edits(run_id,tick,seq,action,x,y,z,from_block,to_block) VALUES(?,?,?,?,?,?,?,?,?)`)
	startSession, _ := s.db.Prepare(`INSERT OR REPLACE INTO sessions(session_id,run_id,client_name,started_at) VALUES(?,?,?,?)`)
	endSession, _ := s.db.Prepare(`UPDATE sessions SET ended_at=?, frames=?, resyncs=? WHERE session_id=?`)
	defer func() {
		for _, st := range []*sql.Stmt{insertTick, insertEdit, startSession, endSession} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = time.Second

		lastEditTick uint64
		editSeq      int
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			// If we can't start a tx, we can't do much; sleep a bit.
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) {
		if st == nil || tx == nil {
			return
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return
		}
		opCount++
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			raw, _ := json.Marshal(r.tick)
			exec(insertTick, s.runID, int64(r.tick.Tick), r.tick.Checksum, r.tick.Blocks, r.tick.Proxies, string(raw))

		case reqEdit:
			e := r.edit
			if e.Tick != lastEditTick {
				lastEditTick = e.Tick
				editSeq = 0
			}
			exec(insertEdit, s.runID, int64(e.Tick), editSeq, e.Action, e.Pos[0], e.Pos[1], e.Pos[2], int64(e.From), int64(e.To))
			editSeq++

		case reqSessionStart:
			se := r.session
			exec(startSession, se.ID, s.runID, se.ClientName, se.At)

		case reqSessionEnd:
			se := r.session
			exec(endSession, se.At, int64(se.Frames), int64(se.Resyncs), se.ID)
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}
