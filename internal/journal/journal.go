// Package journal persists gate decisions in a local sqlite database
// so `pmguard history` can answer what was scanned, what was blocked
// and why. Journal failures never influence the gate: recording is
// best-effort by design.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const busyTimeout = 5 * time.Second

// Decision reasons recorded per invocation. skipped and clean both
// allow silently at the CLI surface; keeping them distinct here lets
// telemetry split them later without a behaviour change.
const (
	ReasonSkipped  = "skipped"  // scanning did not apply or found nothing to scan
	ReasonClean    = "clean"    // scanned, zero blocking alerts
	ReasonBlocked  = "blocked"  // scanned, execution stopped
	ReasonBypassed = "bypassed" // display-only policy saw alerts but let it run
)

const schema = `
CREATE TABLE IF NOT EXISTS gate_decisions (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	scan_id    TEXT NOT NULL,
	ts         TEXT NOT NULL,
	manager    TEXT NOT NULL,
	command    TEXT NOT NULL,
	purls      INTEGER NOT NULL,
	alerts     INTEGER NOT NULL,
	reason     TEXT NOT NULL
);
`

// Entry is one recorded gate decision.
type Entry struct {
	ScanID    string
	Timestamp time.Time
	Manager   string
	Command   string
	Purls     int
	Alerts    int
	Reason    string
}

// Journal wraps the sqlite connection holding gate history.
type Journal struct {
	db *sql.DB
}

// Open initialises the journal database, creating the directory and
// schema as needed. An empty dir resolves to ~/.pmguard.
func Open(ctx context.Context, dir string) (*Journal, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("journal: resolve home: %w", err)
		}
		dir = filepath.Join(home, ".pmguard")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("journal: ensure dir: %w", err)
	}

	dbPath := filepath.Join(dir, "pmguard.db")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", filepath.ToSlash(dbPath), int(busyTimeout/time.Millisecond))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record appends one decision, allocating the scan ID and timestamp
// when the caller left them empty.
func (j *Journal) Record(ctx context.Context, e Entry) (Entry, error) {
	if j == nil {
		return e, nil
	}
	if e.ScanID == "" {
		e.ScanID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO gate_decisions (scan_id, ts, manager, command, purls, alerts, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ScanID, e.Timestamp.Format(time.RFC3339Nano), e.Manager, e.Command, e.Purls, e.Alerts, e.Reason,
	)
	if err != nil {
		return e, fmt.Errorf("journal: record: %w", err)
	}
	return e, nil
}

// Recent returns up to n decisions, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT scan_id, ts, manager, command, purls, alerts, reason
		 FROM gate_decisions ORDER BY seq DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.ScanID, &ts, &e.Manager, &e.Command, &e.Purls, &e.Alerts, &e.Reason); err != nil {
			return nil, fmt.Errorf("journal: scan row: %w", err)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.db.Close()
}
