package indexdb

import (
	"context"
	"database/sql"
)

// EditRow is one indexed edit.
type EditRow struct {
	Tick   uint64
	Action string
	Pos    [3]int
	From   uint16
	To     uint16
}

// EditsAt lists the edits of this run at one cell, oldest first.
func (s *SQLiteIndex) EditsAt(ctx context.Context, x, y, z int) ([]EditRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tick, action, x, y, z, from_block, to_block FROM edits
		 WHERE run_id=? AND x=? AND y=? AND z=? ORDER BY tick, seq`,
		s.runID, x, y, z)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EditRow
	for rows.Next() {
		var r EditRow
		var tick int64
		if err := rows.Scan(&tick, &r.Action, &r.Pos[0], &r.Pos[1], &r.Pos[2], &r.From, &r.To); err != nil {
			return nil, err
		}
		r.Tick = uint64(tick)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) CountEdits(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM edits WHERE run_id=?`, s.runID).Scan(&n)
	return n, err
}

type SessionRow struct {
	ID         string
	ClientName string
	Ended      bool
	Frames     uint64
	Resyncs    uint64
}

func (s *SQLiteIndex) Sessions(ctx context.Context) ([]SessionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, client_name, ended_at, frames, resyncs FROM sessions WHERE run_id=? ORDER BY started_at`,
		s.runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		var ended sql.NullString
		var frames, resyncs int64
		if err := rows.Scan(&r.ID, &r.ClientName, &ended, &frames, &resyncs); err != nil {
			return nil, err
		}
		r.Ended = ended.Valid
		r.Frames, r.Resyncs = uint64(frames), uint64(resyncs)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunSeed returns the seed recorded for this run.
func (s *SQLiteIndex) RunSeed(ctx context.Context) (int64, error) {
	var seed int64
	err := s.db.QueryRowContext(ctx, `SELECT seed FROM runs WHERE run_id=?`, s.runID).Scan(&seed)
	return seed, err
}
