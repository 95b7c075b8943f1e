package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/rai-go/internal/app"
)

func newConfigCommand(container *app.Container) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect RAI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd, container)
		},
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd, container)
		},
	})
	return configCmd
}

func showConfiguration(cmd *cobra.Command, container *app.Container) error {
	cfg, err := container.ConfigProvider.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(raw))
	return nil
}
