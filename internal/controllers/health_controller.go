package controllers

import (
	"context"
	"net/http"

	"github.com/GrupoSemah/salidasform/internal/app"
	"github.com/GrupoSemah/salidasform/internal/dtos"
	"github.com/GrupoSemah/salidasform/internal/utils"
)

type HealthController struct {
	app *app.App
}

func NewHealthController(a *app.App) *HealthController {
	return &HealthController{app: a}
}

func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	// Probe the only external dependency (SendGrid key sanity).
	if err := c.app.MoveOutService.Ping(context.Background()); err != nil {
		utils.Logger.WithError(err).Error("salidas-form-service unhealthy")
		utils.RespondErrorWithCode(
			w,
			http.StatusServiceUnavailable,
			utils.ErrCodeInternal,
			"Service unhealthy",
			nil,
			err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.HealthCheckResponse{Status: "OK"})
}
