package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/doeshing/rai-go/internal/app"
	"github.com/doeshing/rai-go/internal/domain"
	"github.com/doeshing/rai-go/internal/infrastructure/runlog"
	"github.com/doeshing/rai-go/internal/services"
)

const timestampFormat = "2006-01-02 15:04:05"

func newRunsCommand(container *app.Container) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run log",
	}

	runsCmd.AddCommand(
		newRunsListCommand(container),
		newRunsSummarizeCommand(container),
		newRunsClearCommand(container),
	)
	return runsCmd
}

func newRunsListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := container.RunStore.Records()
			if err != nil {
				return fmt.Errorf("read run log: %w", err)
			}
			// Both stores return append order, so the tail holds the
			// most recent runs.
			if limit > 0 && len(records) > limit {
				records = records[len(records)-limit:]
			}
			out := cmd.OutOrStdout()
			for _, rec := range records {
				fmt.Fprintf(out, "%s | %-8s | %-7s | %6.2fs | %s\n",
					rec.Timestamp.Format(timestampFormat),
					rec.Mode,
					outcome(rec),
					rec.DurationSeconds,
					runTarget(rec))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Max runs to show")
	return cmd
}

func newRunsSummarizeCommand(container *app.Container) *cobra.Command {
	var logs []string

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Aggregate statistics over one or more run logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []domain.RunRecord
			var err error
			if len(logs) > 0 {
				records, err = runlog.ReadLogs(cmd.Context(), logs)
			} else {
				records, err = container.RunStore.Records()
			}
			if err != nil {
				return err
			}
			renderSummary(cmd.OutOrStdout(), services.Summarize(records))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&logs, "log", nil, "JSONL run log to summarize (repeatable; default: configured store)")
	return cmd
}

func newRunsClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the run log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.RunStore.Clear(); err != nil {
				return fmt.Errorf("clear run log: %w", err)
			}
			return nil
		},
	}
}

func renderSummary(out io.Writer, summary domain.RunSummary) {
	fmt.Fprintf(out, "Runs: %d\n", summary.Total)
	if summary.Total == 0 {
		return
	}
	fmt.Fprintf(out, "Success: %d | Failure: %d\n", summary.Success, summary.Failure)

	modes := make([]domain.RunMode, 0, len(summary.ByMode))
	for mode := range summary.ByMode {
		modes = append(modes, mode)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	for _, mode := range modes {
		stats := summary.ByMode[mode]
		fmt.Fprintf(out, "- %s: runs=%d avg_duration=%.2fs\n", mode, stats.Runs, stats.AvgDurationSeconds)
	}

	fmt.Fprintf(out, "Avg duration: %.2fs\n", summary.AvgDurationSeconds)
	fmt.Fprintf(out, "Avg attempts: %.2f | dropped_max_tokens: %d | dropped_temperature: %d\n",
		summary.AvgAttempts, summary.DroppedMaxTokens, summary.DroppedTemperature)
}

func outcome(rec domain.RunRecord) string {
	if rec.Success {
		return "ok"
	}
	if rec.Error != nil {
		return rec.Error.Kind
	}
	return "failed"
}

func runTarget(rec domain.RunRecord) string {
	if rec.TargetPath != "" {
		return rec.TargetPath
	}
	return rec.PromptPath
}
