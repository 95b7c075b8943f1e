package services

import (
	"context"
	"errors"
	"testing"

	"github.com/doeshing/rai-go/internal/domain"
)

func checkByName(t *testing.T, report domain.HealthReport, name string) domain.HealthCheck {
	t.Helper()
	for _, c := range report.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q missing from report: %+v", name, report.Checks)
	return domain.HealthCheck{}
}

func TestDoctorRunHealthy(t *testing.T) {
	cfg := testConfig()
	cfg.Azure.Endpoint = "https://x.openai.azure.com/"
	cfg.Azure.APIKey = "secret"

	svc := &DoctorService{
		ConfigProvider: stubConfigProvider{cfg: cfg},
		Runs:           &memoryRunStore{},
		GitAvailable:   func() bool { return true },
	}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range []string{"Azure deployment", "API key", "Diff tool"} {
		if c := checkByName(t, report, name); c.Status != domain.HealthOK {
			t.Errorf("%s status = %q, want ok (%s)", name, c.Status, c.Details)
		}
	}
}

func TestDoctorRunReportsProblems(t *testing.T) {
	cfg := testConfig()
	cfg.Azure.Deployment = ""

	svc := &DoctorService{
		ConfigProvider: stubConfigProvider{cfg: cfg},
		GitAvailable:   func() bool { return false },
	}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if c := checkByName(t, report, "Azure deployment"); c.Status != domain.HealthWarn {
		t.Errorf("deployment status = %q, want warn", c.Status)
	}
	if c := checkByName(t, report, "API key"); c.Status != domain.HealthWarn {
		t.Errorf("api key status = %q, want warn", c.Status)
	}
	if c := checkByName(t, report, "Diff tool"); c.Status != domain.HealthError {
		t.Errorf("diff tool status = %q, want error", c.Status)
	}
}

func TestDoctorRunConfigLoadFailure(t *testing.T) {
	svc := &DoctorService{
		ConfigProvider: stubConfigProvider{err: errors.New("yaml: bad file")},
	}
	report, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if c := checkByName(t, report, "Config file"); c.Status != domain.HealthError {
		t.Errorf("config status = %q, want error", c.Status)
	}
}
