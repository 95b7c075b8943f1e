package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/doeshing/rai-go/internal/domain"
	"github.com/doeshing/rai-go/internal/ports"
)

// DoctorService runs environment diagnostics.
type DoctorService struct {
	ConfigProvider ports.ConfigProvider
	Runs           ports.RunStore

	// GitAvailable reports whether the external diff tool can be found.
	GitAvailable func() bool
}

// Run executes checks and returns a report.
func (s *DoctorService) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, check("Config file", domain.HealthError, fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, check("Config file", domain.HealthOK, fmt.Sprintf("format version %s", cfg.ConfigFormatVersion)))

	if cfg.Azure.Endpoint == "" || cfg.Azure.Deployment == "" {
		checks = append(checks, check("Azure deployment", domain.HealthWarn,
			"endpoint or deployment not configured (config file or AZURE_OPENAI_ENDPOINT / AZURE_OPENAI_DEPLOYMENT)"))
	} else {
		checks = append(checks, check("Azure deployment", domain.HealthOK,
			fmt.Sprintf("%s @ %s", cfg.Azure.Deployment, cfg.Azure.Endpoint)))
	}

	if cfg.Azure.APIKey == "" {
		checks = append(checks, check("API key", domain.HealthWarn,
			"AZURE_OPENAI_KEY / AZURE_OPENAI_API_KEY not set"))
	} else {
		checks = append(checks, check("API key", domain.HealthOK, "resolved from environment"))
	}

	if s.GitAvailable != nil {
		if s.GitAvailable() {
			checks = append(checks, check("Diff tool", domain.HealthOK, "git found on PATH"))
		} else {
			checks = append(checks, check("Diff tool", domain.HealthError, "git not found on PATH"))
		}
	}

	if s.Runs != nil {
		if err := os.MkdirAll(filepath.Dir(s.Runs.Path()), 0o755); err != nil {
			checks = append(checks, check("Run log", domain.HealthWarn, err.Error()))
		} else {
			checks = append(checks, check("Run log", domain.HealthOK, s.Runs.Path()))
		}
	}

	return domain.HealthReport{Checks: checks}, nil
}

func check(name string, status domain.HealthStatus, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: status, Details: details}
}
