package report

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	trafficcount "github.com/swdee/go-trafficcount"
	_ "modernc.org/sqlite"
)

// SQLiteStore records each window of a counting session as a row of the
// windows table
type SQLiteStore struct {
	db *sql.DB
	// session is the ID every row written by this store is tagged with
	session string
}

// OpenSQLite opens or creates the database at path and starts a new session
func OpenSQLite(path string) (*SQLiteStore, error) {

	db, err := sql.Open("sqlite", path)

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:      db,
		session: uuid.NewString(),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate creates the windows table if it doesn't exist
func (s *SQLiteStore) migrate() error {

	schema := `
	CREATE TABLE IF NOT EXISTS windows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		per_type TEXT NOT NULL,
		total INTEGER NOT NULL,
		hour INTEGER NOT NULL,
		bayes TEXT NOT NULL,
		markov TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_windows_session ON windows(session);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Session returns the ID of this store's session
func (s *SQLiteStore) Session() string {
	return s.session
}

// Record writes a window to the database
func (s *SQLiteStore) Record(r trafficcount.WindowReport) error {

	perType, err := json.Marshal(r.PerType)

	if err != nil {
		return fmt.Errorf("failed to encode counts: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO windows
		(session, start_time, end_time, per_type, total, hour, bayes, markov)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.session,
		r.Start.UTC().Format(time.RFC3339Nano),
		r.End.UTC().Format(time.RFC3339Nano),
		string(perType),
		r.Total,
		r.Hour,
		r.Bayes.String(),
		r.Markov.String(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert window: %w", err)
	}

	return nil
}

// OnWindow records the report, logging any failure so the frame loop is
// never interrupted by the database
func (s *SQLiteStore) OnWindow(r trafficcount.WindowReport) {
	if err := s.Record(r); err != nil {
		trafficcount.Logf("sqlite: %v", err)
	}
}

// Windows returns the windows recorded for a session in the order written
func (s *SQLiteStore) Windows(session string) ([]trafficcount.WindowReport, error) {

	rows, err := s.db.Query(`SELECT start_time, end_time, per_type, total, hour,
		bayes, markov FROM windows WHERE session = ? ORDER BY id`, session)

	if err != nil {
		return nil, fmt.Errorf("failed to query windows: %w", err)
	}

	defer rows.Close()

	var out []trafficcount.WindowReport

	for rows.Next() {

		var (
			r             trafficcount.WindowReport
			start, end    string
			perType       string
			bayes, markov string
		)

		if err := rows.Scan(&start, &end, &perType, &r.Total, &r.Hour,
			&bayes, &markov); err != nil {
			return nil, fmt.Errorf("failed to scan window: %w", err)
		}

		if r.Start, err = time.Parse(time.RFC3339Nano, start); err != nil {
			return nil, fmt.Errorf("invalid start time %q: %w", start, err)
		}

		if r.End, err = time.Parse(time.RFC3339Nano, end); err != nil {
			return nil, fmt.Errorf("invalid end time %q: %w", end, err)
		}

		if err := json.Unmarshal([]byte(perType), &r.PerType); err != nil {
			return nil, fmt.Errorf("invalid counts %q: %w", perType, err)
		}

		if err := r.Bayes.UnmarshalText([]byte(bayes)); err != nil {
			return nil, err
		}

		if err := r.Markov.UnmarshalText([]byte(markov)); err != nil {
			return nil, err
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read windows: %w", err)
	}

	return out, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
