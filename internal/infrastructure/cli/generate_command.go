package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/rai-go/internal/app"
	"github.com/doeshing/rai-go/internal/services"
)

func newGenerateCommand(container *app.Container) *cobra.Command {
	var (
		promptPath  string
		outputPath  string
		temperature float64
		maxTokens   int
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate source text from a prompt file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			req := services.GenerateRequest{
				Context:    ctx,
				PromptPath: promptPath,
				OutputPath: outputPath,
				MaxTokens:  maxTokens,
			}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &temperature
			}

			result, err := container.GenerateSvc.Run(req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Output written to %s\n", outputPath)
			fmt.Fprintf(out, "run_id: %s\n", result.RunID)
			renderRetry(out, result.Retry)
			fmt.Fprintf(out, "Execution time: %.2fs\n", result.Duration.Seconds())
			return nil
		},
	}

	cmd.Flags().StringVar(&promptPath, "prompt", "", "Path to a prompt text file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Where to write the generated text")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Override sampling temperature")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Override maximum output tokens")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Override request timeout")
	_ = cmd.MarkFlagRequired("prompt")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
