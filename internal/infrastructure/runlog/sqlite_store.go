package runlog

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/rai-go/internal/domain"
	"github.com/doeshing/rai-go/internal/ports"
)

// SQLiteStore persists run records in a SQLite database. It is an alternative
// backend for installations that want queryable history; the record schema is
// the same as the jsonl store's.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the database at path, defaulting to
// ~/.rai/runs/runs.db. On open failure it degrades to a jsonl file store
// beside the intended database.
func NewSQLiteStore(path string) ports.RunStore {
	if path == "" {
		path = filepath.Join(userHome(), ".rai", "runs", "runs.db")
	}
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return NewFileStore(fallbackPath(path))
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		return NewFileStore(fallbackPath(path))
	}
	return store
}

func fallbackPath(dbPath string) string {
	return dbPath + ".jsonl"
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		timestamp TEXT,
		mode TEXT,
		deployment TEXT,
		prompt_path TEXT,
		target_path TEXT,
		output_path TEXT,
		duration_seconds REAL,
		success INTEGER,
		attempts INTEGER,
		dropped_max_tokens INTEGER,
		dropped_temperature INTEGER,
		error_kind TEXT,
		error_message TEXT
	);`)
	return err
}

// Append inserts a new record.
func (s *SQLiteStore) Append(record domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var attempts, droppedMax, droppedTemp int
	if record.Retry != nil {
		attempts = record.Retry.Attempts
		droppedMax = boolToInt(record.Retry.DroppedMaxTokens)
		droppedTemp = boolToInt(record.Retry.DroppedTemperature)
	}
	var errorKind, errorMessage string
	if record.Error != nil {
		errorKind = record.Error.Kind
		errorMessage = record.Error.Message
	}

	_, err := s.db.Exec(`INSERT INTO runs
		(run_id, timestamp, mode, deployment, prompt_path, target_path, output_path,
		 duration_seconds, success, attempts, dropped_max_tokens, dropped_temperature,
		 error_kind, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.RunID,
		record.Timestamp.Format(time.RFC3339),
		string(record.Mode),
		record.Deployment,
		record.PromptPath,
		record.TargetPath,
		record.OutputPath,
		record.DurationSeconds,
		boolToInt(record.Success),
		attempts,
		droppedMax,
		droppedTemp,
		errorKind,
		errorMessage,
	)
	return err
}

// Records returns all run records in append order, oldest first, matching
// what the jsonl store yields when the file is read top to bottom.
func (s *SQLiteStore) Records() ([]domain.RunRecord, error) {
	rows, err := s.db.Query(`SELECT run_id, timestamp, mode, deployment, prompt_path,
		target_path, output_path, duration_seconds, success, attempts,
		dropped_max_tokens, dropped_temperature, error_kind, error_message
		FROM runs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		var ts, mode, errorKind, errorMessage string
		var success, attempts, droppedMax, droppedTemp int
		if err := rows.Scan(&rec.RunID, &ts, &mode, &rec.Deployment, &rec.PromptPath,
			&rec.TargetPath, &rec.OutputPath, &rec.DurationSeconds, &success, &attempts,
			&droppedMax, &droppedTemp, &errorKind, &errorMessage); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Mode = domain.RunMode(mode)
		rec.Success = success == 1
		if rec.Success {
			rec.Retry = &domain.RetryStats{
				Attempts:           attempts,
				DroppedMaxTokens:   droppedMax == 1,
				DroppedTemperature: droppedTemp == 1,
			}
		} else if errorKind != "" || errorMessage != "" {
			rec.Error = &domain.RunError{Kind: errorKind, Message: errorMessage}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Path returns the database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Clear drops all rows.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM runs`)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.RunStore = (*SQLiteStore)(nil)
