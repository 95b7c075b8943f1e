package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/rai-go/internal/app"
	"github.com/doeshing/rai-go/internal/services"
)

func newRefactorCommand(container *app.Container) *cobra.Command {
	var (
		targetPath  string
		promptPath  string
		outputPath  string
		displayPath string
		temperature float64
		maxTokens   int
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "refactor",
		Short: "Refactor one file and emit a git-apply patch",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			req := services.RefactorRequest{
				Context:     ctx,
				TargetPath:  targetPath,
				PromptPath:  promptPath,
				OutputPath:  outputPath,
				DisplayPath: displayPath,
				MaxTokens:   maxTokens,
			}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &temperature
			}

			result, err := container.RefactorSvc.Run(req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Patch written to %s\n", result.PatchPath)
			fmt.Fprintf(out, "Patch target: %s\n", result.DisplayPath)
			fmt.Fprintf(out, "run_id: %s\n", result.RunID)
			renderRetry(out, result.Retry)
			fmt.Fprintf(out, "Execution time: %.2fs\n", result.Duration.Seconds())
			return nil
		},
	}

	cmd.Flags().StringVar(&targetPath, "target", "", "Path to the file to refactor")
	cmd.Flags().StringVar(&promptPath, "prompt", "", "Path to a prompt text file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Where to write the unified diff patch")
	cmd.Flags().StringVar(&displayPath, "display-path", "", "Repo-relative path to use in diff headers")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Override sampling temperature")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Override maximum output tokens")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Override request timeout")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("prompt")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
