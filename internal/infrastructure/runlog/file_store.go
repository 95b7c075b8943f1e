// Package runlog persists one structured outcome record per invocation.
package runlog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/doeshing/rai-go/internal/domain"
	"github.com/doeshing/rai-go/internal/ports"
)

// FileStore appends run records to a jsonl file. Each record is written as a
// single Write call so concurrent processes appending to the same log cannot
// interleave partial lines.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store at path, defaulting to
// ~/.rai/runs/runs.jsonl when path is empty.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = filepath.Join(userHome(), ".rai", "runs", "runs.jsonl")
	}
	return &FileStore{path: path}
}

// Append implements ports.RunStore. It creates parent directories as needed
// and never rewrites or truncates existing content.
func (s *FileStore) Append(record domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = file.Write(data)
	return err
}

// Records parses the log line by line. A line that fails to parse is silently
// skipped so log corruption never aborts aggregation.
func (s *FileStore) Records() ([]domain.RunRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	var records []domain.RunRecord
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		var rec domain.RunRecord
		if err := json.Unmarshal(line, &rec); err == nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Clear removes the log file.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func userHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.RunStore = (*FileStore)(nil)
