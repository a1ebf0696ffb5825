package app

import (
	"context"
	"time"

	"github.com/sendgrid/sendgrid-go"

	"github.com/GrupoSemah/salidasform/internal/config"
	"github.com/GrupoSemah/salidasform/internal/constants"
	"github.com/GrupoSemah/salidasform/internal/refdata"
	"github.com/GrupoSemah/salidasform/internal/repositories"
	"github.com/GrupoSemah/salidasform/internal/services"
	"github.com/GrupoSemah/salidasform/internal/utils"
)

// App struct holds references to config & services.
type App struct {
	Config         *config.Config
	Catalog        *refdata.Catalog
	MoveOutService services.MoveOutService

	cleanup     services.RateLimitCleanupService
	stopCleanup chan struct{}
}

// NewApp sets up the core application context (no DB needed).
func NewApp(cfg *config.Config) *App {
	utils.Logger.Info("Initializing salidas-form-service App")

	catalog := refdata.Default()
	rateLimitRepo := repositories.NewRateLimitRepository()

	moveOutSvc := services.NewMoveOutService(
		cfg,
		catalog,
		sendgrid.NewSendClient(cfg.SendgridAPIKey),
		services.NewRateLimiterService(rateLimitRepo, cfg),
		services.NewCRMService(cfg.CRMBaseURL),
	)

	a := &App{
		Config:         cfg,
		Catalog:        catalog,
		MoveOutService: moveOutSvc,
		cleanup:        services.NewRateLimitCleanupService(rateLimitRepo),
		stopCleanup:    make(chan struct{}),
	}
	go a.cleanupLoop(constants.RateLimitCleanupInterval)

	return a
}

func (a *App) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = a.cleanup.Cleanup(context.Background())
		case <-a.stopCleanup:
			return
		}
	}
}

func (a *App) Close() {
	close(a.stopCleanup)
	utils.Logger.Info("salidas-form-service app shutting down.")
}
