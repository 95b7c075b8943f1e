package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/rai-go/internal/app"
	"github.com/doeshing/rai-go/internal/domain"
)

func newDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the local environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := container.DoctorSvc.Run(cmd.Context())
			out := cmd.OutOrStdout()
			for _, c := range report.Checks {
				fmt.Fprintf(out, "[%s] %-16s %s\n", statusBadge(c.Status), c.Name, c.Details)
			}
			return err
		},
	}
}

func statusBadge(status domain.HealthStatus) string {
	switch status {
	case domain.HealthOK:
		return "ok"
	case domain.HealthWarn:
		return "warn"
	default:
		return "fail"
	}
}
