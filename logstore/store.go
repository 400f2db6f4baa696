// Package logstore persists per-generation log lines in SQLite, keyed by simulation id
// and region tag, so runs can be listed and compared later.
package logstore

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrBadRow is returned for log lines that do not start with a generation number.
var ErrBadRow = errors.New("malformed log line")

// Record is one stored log line.
type Record struct {
	ID         int64  `db:"id"`
	CreatedAt  int64  `db:"created_at"` // Unix nanoseconds
	SimID      string `db:"sim_id"`
	RegionTag  string `db:"region_tag"`
	Generation int    `db:"generation"`
	Data       string `db:"data"` // Comma-separated generation and species counts
}

// Time returns when the record was stored.
func (r Record) Time() time.Time { return time.Unix(0, r.CreatedAt) }

// Counts parses the species counts out of Data.
func (r Record) Counts() ([]int, error) {
	fields := strings.Split(r.Data, ",")
	counts := make([]int, 0, len(fields)-1)
	for _, f := range fields[1:] {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadRow, r.Data)
		}
		counts = append(counts, n)
	}
	return counts, nil
}

// Store writes log records for one simulation and region at a time.
// It implements telemetry.LogSink.
type Store struct {
	conn      *sqlx.DB
	simID     string
	regionTag string
}

// Open opens or creates a SQLite database at the given path.
func Open(path, simID, regionTag string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn, simID: simID, regionTag: regionTag}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS log_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at INTEGER NOT NULL,
		sim_id TEXT NOT NULL,
		region_tag TEXT NOT NULL,
		generation INTEGER NOT NULL,
		data TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at INTEGER NOT NULL,
		sim_id TEXT NOT NULL,
		region_tag TEXT NOT NULL,
		text TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_log_records_sim ON log_records(sim_id, region_tag);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SetSimulation switches the simulation id subsequent records are stored under.
func (s *Store) SetSimulation(simID string) {
	s.simID = simID
}

// SimID returns the current simulation id.
func (s *Store) SimID() string { return s.simID }

// AppendLogLine stores one log line; row[0] is the generation.
func (s *Store) AppendLogLine(row []string) error {
	if len(row) == 0 {
		return fmt.Errorf("%w: empty row", ErrBadRow)
	}
	gen, err := strconv.Atoi(row[0])
	if err != nil {
		return fmt.Errorf("%w: generation %q", ErrBadRow, row[0])
	}
	_, err = s.conn.Exec(
		`INSERT INTO log_records (created_at, sim_id, region_tag, generation, data) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UnixNano(), s.simID, s.regionTag, gen, strings.Join(row, ","))
	if err != nil {
		return fmt.Errorf("insert log record: %w", err)
	}
	return nil
}

// Log stores a free-text message.
func (s *Store) Log(text string) {
	if _, err := s.conn.Exec(`INSERT INTO messages (created_at, sim_id, region_tag, text) VALUES (?, ?, ?, ?)`,
		time.Now().UnixNano(), s.simID, s.regionTag, text); err != nil {
		slog.Warn("storing message failed", "sim_id", s.simID, "error", err)
	}
}

// ClearLog deletes the current simulation's records and messages.
func (s *Store) ClearLog() error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"log_records", "messages"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE sim_id = ? AND region_tag = ?`, s.simID, s.regionTag); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// Records returns the stored lines of a simulation and region in insertion order.
func (s *Store) Records(simID, regionTag string) ([]Record, error) {
	var recs []Record
	err := s.conn.Select(&recs,
		`SELECT id, created_at, sim_id, region_tag, generation, data FROM log_records
		 WHERE sim_id = ? AND region_tag = ? ORDER BY id`, simID, regionTag)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	return recs, nil
}

// Messages returns the stored messages of a simulation and region in insertion order.
func (s *Store) Messages(simID, regionTag string) ([]string, error) {
	var texts []string
	err := s.conn.Select(&texts,
		`SELECT text FROM messages WHERE sim_id = ? AND region_tag = ? ORDER BY id`, simID, regionTag)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	return texts, nil
}

// Simulations lists the simulation ids stored for a region, most recent first.
func (s *Store) Simulations(regionTag string) ([]string, error) {
	var ids []string
	err := s.conn.Select(&ids,
		`SELECT sim_id FROM log_records WHERE region_tag = ?
		 GROUP BY sim_id ORDER BY MAX(id) DESC`, regionTag)
	if err != nil {
		return nil, fmt.Errorf("select simulations: %w", err)
	}
	return ids, nil
}
