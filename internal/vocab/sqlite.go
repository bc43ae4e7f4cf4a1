package vocab

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore mirrors a MemoryStore into a local SQLite file so learned
// annex codes survive restarts. Reads are served from memory; writes go
// to both. A failed mirror write is logged, not fatal: the in-process
// contract (read-before-match, write-after-match) holds regardless.
type SQLiteStore struct {
	mem    *MemoryStore
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLiteStore opens (creating if needed) the vocabulary database at
// path, seeds it with BaseAnnexes, and loads previously learned codes.
func OpenSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("vocab dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open vocab db: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS anexos (code TEXT PRIMARY KEY)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init vocab db: %w", err)
	}

	s := &SQLiteStore{mem: NewMemoryStore(), db: db, logger: logger}

	rows, err := db.Query(`SELECT code FROM anexos`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load vocab: %w", err)
	}
	defer rows.Close()
	loaded := 0
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("scan vocab row: %w", err)
		}
		s.mem.Add(code)
		loaded++
	}
	if err := rows.Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("iterate vocab rows: %w", err)
	}

	// make sure the seed list is on disk too
	s.persist(BaseAnnexes...)

	logger.Info("vocab store opened", "path", path, "loaded", loaded, "total", len(s.mem.Snapshot()))
	return s, nil
}

func (s *SQLiteStore) Contains(code string) bool { return s.mem.Contains(code) }

func (s *SQLiteStore) Add(codes ...string) int {
	added := s.mem.Add(codes...)
	if added > 0 {
		s.persist(codes...)
	}
	return added
}

func (s *SQLiteStore) Snapshot() []string { return s.mem.Snapshot() }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) persist(codes ...string) {
	for _, c := range codes {
		if _, err := s.db.Exec(`INSERT OR IGNORE INTO anexos (code) VALUES (?)`, normalizeCode(c)); err != nil {
			s.logger.Warn("vocab mirror write failed", "code", c, "error", err)
		}
	}
}
