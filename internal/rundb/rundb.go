// Package rundb records one row per scheduler.Run call into a SQLite
// file, so repeated CLI invocations against the same project accumulate
// a queryable run history. It is optional: a nil *DB is a valid
// dependency everywhere in this package and simply skips recording.
package rundb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps the run-history SQLite file.
type DB struct {
	sql *sql.DB
}

// Open creates (if needed) and opens the run-history database at path,
// ensuring its single "runs" table exists.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening run history %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	project_path TEXT NOT NULL,
	started_at TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	thread_count INTEGER NOT NULL,
	error_count INTEGER NOT NULL,
	errored INTEGER NOT NULL
)`
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing run history schema: %w", err)
	}
	return &DB{sql: conn}, nil
}

// Close closes the underlying SQLite connection.
func (d *DB) Close() error {
	if d == nil {
		return nil
	}
	return d.sql.Close()
}

// Run tracks one in-progress scheduler.Run call's correlation id and
// start time between StartRun and Finish.
type Run struct {
	db          *DB
	id          string
	projectPath string
	startedAt   time.Time
}

// StartRun begins tracking a run. db may be nil (history disabled), in
// which case Finish is a no-op.
func StartRun(db *DB, projectPath string) *Run {
	return &Run{db: db, id: uuid.New().String(), projectPath: projectPath, startedAt: time.Now()}
}

// Finish records the completed run's outcome. A nil receiver's db (no
// history configured) makes this a no-op.
func (r *Run) Finish(threadCount, errorCount int, errored bool) {
	if r == nil || r.db == nil {
		return
	}
	erroredInt := 0
	if errored {
		erroredInt = 1
	}
	_, err := r.db.sql.Exec(
		`INSERT INTO runs (id, project_path, started_at, duration_ms, thread_count, error_count, errored) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.id, r.projectPath, r.startedAt.Format(time.RFC3339Nano), time.Since(r.startedAt).Milliseconds(), threadCount, errorCount, erroredInt,
	)
	if err != nil {
		// Run history is a convenience, not a correctness requirement;
		// a write failure here never fails the run itself.
		return
	}
}
