package runlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/doeshing/rai-go/internal/domain"
)

func successRecord(id string) domain.RunRecord {
	return domain.RunRecord{
		RunID:           id,
		Timestamp:       time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		Mode:            domain.ModeRefactor,
		Deployment:      "gpt-test",
		TargetPath:      "/src/app.php",
		OutputPath:      "/out/app.patch",
		DurationSeconds: 4.321,
		Success:         true,
		Retry:           &domain.RetryStats{Attempts: 2, DroppedMaxTokens: true},
	}
}

func failureRecord(id string) domain.RunRecord {
	return domain.RunRecord{
		RunID:           id,
		Timestamp:       time.Date(2026, 8, 20, 11, 0, 0, 0, time.UTC),
		Mode:            domain.ModeGenerate,
		PromptPath:      "/prompts/p.txt",
		DurationSeconds: 0.5,
		Success:         false,
		Error:           &domain.RunError{Kind: domain.ErrorKindGeneration, Message: "boom"},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "runs.jsonl"))

	if err := store.Append(successRecord("run-1")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(failureRecord("run-2")); err != nil {
		t.Fatalf("append: %v", err)
	}

	records, err := store.Records()
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	first := records[0]
	if first.RunID != "run-1" || !first.Success {
		t.Errorf("first record wrong: %+v", first)
	}
	if first.Retry == nil || first.Retry.Attempts != 2 || !first.Retry.DroppedMaxTokens {
		t.Errorf("retry stats lost: %+v", first.Retry)
	}

	second := records[1]
	if second.Error == nil || second.Error.Kind != domain.ErrorKindGeneration {
		t.Errorf("error lost: %+v", second.Error)
	}
}

func TestFileStoreSkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	store := NewFileStore(path)
	if err := store.Append(successRecord("run-1")); err != nil {
		t.Fatalf("append: %v", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := file.WriteString("{truncated jso\n"); err != nil {
		t.Fatal(err)
	}
	file.Close()

	records, err := store.Records()
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1 (corrupt line skipped)", len(records))
	}
	if records[0].RunID != "run-1" {
		t.Errorf("wrong survivor: %+v", records[0])
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "never-written.jsonl"))
	records, err := store.Records()
	if err != nil {
		t.Fatalf("records on missing file: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
}

func TestFileStoreClear(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	if err := store.Append(successRecord("run-1")); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	records, err := store.Records()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("records after clear = %d, want 0", len(records))
	}
	// Clearing an already-missing log is not an error.
	if err := store.Clear(); err != nil {
		t.Errorf("second clear: %v", err)
	}
}
