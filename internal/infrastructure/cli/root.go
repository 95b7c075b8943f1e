// Package cli wires the cobra command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/rai-go/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:           "rai",
		Short:         "RAI - refactor AI assistant",
		Long:          "RAI drives a chat-completion deployment to generate source text or to refactor a file into a git-apply patch.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newGenerateCommand(container))
	root.AddCommand(newRefactorCommand(container))
	root.AddCommand(newRunsCommand(container))
	root.AddCommand(newConfigCommand(container))
	root.AddCommand(newDoctorCommand(container))
	root.AddCommand(newVersionCommand())
	return root, nil
}
