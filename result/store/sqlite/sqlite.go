// Package sqlite implements result.Store on an SQLite database file using
// the go-sqlite3 driver.
package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"time"

	"github.com/brandonshearin/parsssp/result"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/xerrors"
)

var _ result.Store = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	vertices   INTEGER NOT NULL,
	workers    INTEGER NOT NULL,
	source     INTEGER NOT NULL,
	seed       INTEGER NOT NULL,
	strategy   TEXT NOT NULL,
	elapsed_ns INTEGER NOT NULL,
	distances  BLOB NOT NULL,
	verified   INTEGER NOT NULL,
	mismatches INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at);
`

const (
	upsertRunQuery = `INSERT OR REPLACE INTO runs
	(id, vertices, workers, source, seed, strategy, elapsed_ns, distances, verified, mismatches, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectColumns = `SELECT id, vertices, workers, source, seed, strategy, elapsed_ns, distances, verified, mismatches, created_at FROM runs`

	findRunQuery = selectColumns + ` WHERE id = ?`
	runsQuery    = selectColumns + ` WHERE created_at > ? ORDER BY created_at, id`
)

// SQLiteStore implements result.Store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, xerrors.Errorf("open %s: %w", path, err)
	}
	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, xerrors.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(run *result.Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(run.Distances); err != nil {
		return xerrors.Errorf("save run: encode distances: %w", err)
	}

	_, err := s.db.Exec(upsertRunQuery,
		run.ID.String(),
		run.Vertices,
		run.Workers,
		run.Source,
		run.Seed,
		run.Partition,
		int64(run.Elapsed),
		buf.Bytes(),
		run.Verified,
		run.Mismatches,
		run.CreatedAt.UnixNano(),
	)
	if err != nil {
		return xerrors.Errorf("save run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindRun(id uuid.UUID) (*result.Run, error) {
	run, err := scanRun(s.db.QueryRow(findRunQuery, id.String()))
	if err == sql.ErrNoRows {
		return nil, xerrors.Errorf("find run %s: %w", id, result.ErrNotFound)
	} else if err != nil {
		return nil, xerrors.Errorf("find run %s: %w", id, err)
	}
	return run, nil
}

func (s *SQLiteStore) Runs(createdAfter time.Time) (result.RunIterator, error) {
	rows, err := s.db.Query(runsQuery, createdAfter.UnixNano())
	if err != nil {
		return nil, xerrors.Errorf("runs: %w", err)
	}
	return &runIterator{rows: rows}, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*result.Run, error) {
	var (
		run       result.Run
		id        string
		elapsed   int64
		distances []byte
		createdAt int64
	)
	err := row.Scan(
		&id,
		&run.Vertices,
		&run.Workers,
		&run.Source,
		&run.Seed,
		&run.Partition,
		&elapsed,
		&distances,
		&run.Verified,
		&run.Mismatches,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, xerrors.Errorf("parse run id: %w", err)
	}
	if err = gob.NewDecoder(bytes.NewReader(distances)).Decode(&run.Distances); err != nil {
		return nil, xerrors.Errorf("decode distances: %w", err)
	}
	run.Elapsed = time.Duration(elapsed)
	run.CreatedAt = time.Unix(0, createdAt).UTC()
	return &run, nil
}
