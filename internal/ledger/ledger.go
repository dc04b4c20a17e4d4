// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records conversions in a SQLite database so unchanged
// documents can be skipped on later runs.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/lyxtab/pkg/types"
)

// Ledger is the conversion history database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path, creating the parent
// directory and schema as needed.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	_, err := l.db.Exec(`CREATE TABLE IF NOT EXISTS conversions (
		lyx_path TEXT PRIMARY KEY,
		tex_path TEXT,
		status TEXT NOT NULL,
		environment TEXT,
		lines INTEGER,
		error TEXT,
		source_mod_time TEXT,
		converted_at TEXT
	)`)
	return err
}

// key normalises a document path so relative and absolute invocations
// share one row.
func key(lyxPath string) string {
	if abs, err := filepath.Abs(lyxPath); err == nil {
		return abs
	}
	return lyxPath
}

// Record inserts or replaces the row for rec.LyXPath.
func (l *Ledger) Record(ctx context.Context, rec types.ConversionRecord) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO conversions
			(lyx_path, tex_path, status, environment, lines, error, source_mod_time, converted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		key(rec.LyXPath), rec.TexPath, string(rec.Status), rec.Environment, rec.Lines, rec.Error,
		formatTime(rec.SourceModTime), formatTime(rec.ConvertedAt),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", rec.LyXPath, err)
	}
	return nil
}

// Lookup returns the recorded conversion for lyxPath. The boolean is false
// when the document has never been recorded.
func (l *Ledger) Lookup(ctx context.Context, lyxPath string) (types.ConversionRecord, bool, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT lyx_path, tex_path, status, environment, lines, error, source_mod_time, converted_at
		FROM conversions WHERE lyx_path = ?`, key(lyxPath))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ConversionRecord{}, false, nil
	}
	if err != nil {
		return types.ConversionRecord{}, false, fmt.Errorf("looking up %s: %w", lyxPath, err)
	}
	return rec, true, nil
}

// Unchanged reports whether lyxPath was last converted successfully from a
// source with the same modification time.
func (l *Ledger) Unchanged(ctx context.Context, lyxPath string, modTime time.Time) (bool, error) {
	rec, ok, err := l.Lookup(ctx, lyxPath)
	if err != nil || !ok {
		return false, err
	}
	if rec.Status != types.ConversionDone && rec.Status != types.ConversionEmpty {
		return false, nil
	}
	return rec.SourceModTime.Equal(modTime.UTC()), nil
}

// List returns all records ordered by path.
func (l *Ledger) List(ctx context.Context) ([]types.ConversionRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT lyx_path, tex_path, status, environment, lines, error, source_mod_time, converted_at
		FROM conversions ORDER BY lyx_path`)
	if err != nil {
		return nil, fmt.Errorf("listing conversions: %w", err)
	}
	defer rows.Close()

	var recs []types.ConversionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning conversion: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (types.ConversionRecord, error) {
	var (
		rec                   types.ConversionRecord
		status                string
		texPath, env, errText sql.NullString
		lines                 sql.NullInt64
		modTime, convertedAt  sql.NullString
	)
	if err := s.Scan(&rec.LyXPath, &texPath, &status, &env, &lines, &errText, &modTime, &convertedAt); err != nil {
		return rec, err
	}
	rec.TexPath = texPath.String
	rec.Status = types.ConversionStatus(status)
	rec.Environment = env.String
	rec.Lines = int(lines.Int64)
	rec.Error = errText.String
	rec.SourceModTime = parseTime(modTime.String)
	rec.ConvertedAt = parseTime(convertedAt.String)
	return rec, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
