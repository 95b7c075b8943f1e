// Package app wires application services with infrastructure adapters.
package app

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/doeshing/rai-go/internal/domain"
	"github.com/doeshing/rai-go/internal/infrastructure/ai"
	"github.com/doeshing/rai-go/internal/infrastructure/config"
	"github.com/doeshing/rai-go/internal/infrastructure/diff"
	"github.com/doeshing/rai-go/internal/infrastructure/runlog"
	"github.com/doeshing/rai-go/internal/pkg/logger"
	"github.com/doeshing/rai-go/internal/ports"
	"github.com/doeshing/rai-go/internal/services"
)

// Container holds the wired dependency graph.
type Container struct {
	ConfigProvider ports.ConfigProvider
	GenerateSvc    *services.GenerateService
	RefactorSvc    *services.RefactorService
	DoctorSvc      *services.DoctorService
	RunStore       ports.RunStore
	Logger         ports.Logger
}

// BuildContainer constructs the dependency graph. The configuration,
// including environment overrides, is resolved exactly once here.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	_ = godotenv.Load()

	log := logger.New(verbose)
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	gateway := ai.NewGateway(ai.NewClient(cfg.Azure), log)
	gitEngine := diff.NewGitEngine()
	runStore := newRunStore(cfg.Runs)

	generateSvc := &services.GenerateService{
		ConfigProvider: cfgLoader,
		Gateway:        gateway,
		Runs:           runStore,
		Logger:         log,
	}
	refactorSvc := &services.RefactorService{
		ConfigProvider: cfgLoader,
		Gateway:        gateway,
		Diff:           gitEngine,
		Runs:           runStore,
		Logger:         log,
	}
	doctorSvc := &services.DoctorService{
		ConfigProvider: cfgLoader,
		Runs:           runStore,
		GitAvailable:   gitEngine.Available,
	}

	return &Container{
		ConfigProvider: cfgLoader,
		GenerateSvc:    generateSvc,
		RefactorSvc:    refactorSvc,
		DoctorSvc:      doctorSvc,
		RunStore:       runStore,
		Logger:         log,
	}, nil
}

func newRunStore(settings domain.RunLogSettings) ports.RunStore {
	if settings.Storage == domain.RunStorageSQLite {
		return runlog.NewSQLiteStore(settings.Path)
	}
	return runlog.NewFileStore(settings.Path)
}
