package runlog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/doeshing/rai-go/internal/domain"
)

// ReadLogs reads several jsonl run logs concurrently and merges their records
// in the order the paths were given. Corrupt lines inside each log are
// skipped; a log that cannot be read at all is an error.
func ReadLogs(ctx context.Context, paths []string) ([]domain.RunRecord, error) {
	group, _ := errgroup.WithContext(ctx)
	results := make([][]domain.RunRecord, len(paths))
	for i, path := range paths {
		i, path := i, path
		group.Go(func() error {
			records, err := NewFileStore(path).Records()
			if err != nil {
				return fmt.Errorf("read run log %s: %w", path, err)
			}
			results[i] = records
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	var merged []domain.RunRecord
	for _, records := range results {
		merged = append(merged, records...)
	}
	return merged, nil
}
