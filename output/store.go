package output

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"netsweep/port"
	"netsweep/scanner"
)

const schema = `
CREATE TABLE IF NOT EXISTS scans (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    kind TEXT NOT NULL,
    target TEXT,
    started_at TEXT,
    duration_ms INTEGER,
    scanned INTEGER
);
CREATE TABLE IF NOT EXISTS hosts (
    scan_id INTEGER NOT NULL REFERENCES scans(id),
    host TEXT NOT NULL,
    status TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS ports (
    scan_id INTEGER NOT NULL REFERENCES scans(id),
    host TEXT NOT NULL,
    port INTEGER NOT NULL,
    state TEXT NOT NULL,
    service TEXT,
    banner TEXT
);
CREATE INDEX IF NOT EXISTS idx_ports_scan ON ports(scan_id);
CREATE INDEX IF NOT EXISTS idx_hosts_scan ON hosts(scan_id);
`

// Store keeps a history of sweep reports in a SQLite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the database at path.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA encoding = 'UTF-8'"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records r and returns its scan id.
func (s *Store) Save(r Report) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(
		"INSERT INTO scans (kind, target, started_at, duration_ms, scanned) VALUES (?, ?, ?, ?, ?)",
		string(r.Kind), r.Target, r.StartedAt.UTC().Format(time.RFC3339Nano), r.DurationMS, r.Scanned)
	if err != nil {
		return 0, fmt.Errorf("insert scan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(r.Hosts) > 0 {
		stmt, err := tx.Prepare("INSERT INTO hosts (scan_id, host, status) VALUES (?, ?, ?)")
		if err != nil {
			return 0, err
		}
		defer stmt.Close()
		for _, h := range r.Hosts {
			if _, err := stmt.Exec(id, h.Host, string(h.Status)); err != nil {
				return 0, fmt.Errorf("insert host %s: %w", h.Host, err)
			}
		}
	}

	if len(r.Ports) > 0 {
		stmt, err := tx.Prepare("INSERT INTO ports (scan_id, host, port, state, service, banner) VALUES (?, ?, ?, ?, ?, ?)")
		if err != nil {
			return 0, err
		}
		defer stmt.Close()
		for _, p := range r.Ports {
			if _, err := stmt.Exec(id, p.Host, int(p.Port), string(p.State), p.Service, p.Banner); err != nil {
				return 0, fmt.Errorf("insert port %d: %w", p.Port, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Hosts returns the hosts recorded for scan id, ordered as inserted.
func (s *Store) Hosts(id int64) ([]scanner.HostResult, error) {
	rows, err := s.db.Query("SELECT host, status FROM hosts WHERE scan_id = ? ORDER BY rowid", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scanner.HostResult
	for rows.Next() {
		var h scanner.HostResult
		var status string
		if err := rows.Scan(&h.Host, &status); err != nil {
			return nil, err
		}
		h.Status = scanner.HostStatus(status)
		h.Reachable = h.Status == scanner.StatusUp
		out = append(out, h)
	}
	return out, rows.Err()
}

// Ports returns the ports recorded for scan id, ordered by port.
func (s *Store) Ports(id int64) ([]port.PortResult, error) {
	rows, err := s.db.Query("SELECT host, port, state, service, banner FROM ports WHERE scan_id = ? ORDER BY port", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []port.PortResult
	for rows.Next() {
		var p port.PortResult
		var num int
		var state string
		if err := rows.Scan(&p.Host, &num, &state, &p.Service, &p.Banner); err != nil {
			return nil, err
		}
		p.Port = uint16(num)
		p.State = port.State(state)
		out = append(out, p)
	}
	return out, rows.Err()
}
