package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	_ "time/tzdata"

	"github.com/GrupoSemah/salidasform/internal/app"
	"github.com/GrupoSemah/salidasform/internal/config"
	"github.com/GrupoSemah/salidasform/internal/controllers"
	"github.com/GrupoSemah/salidasform/internal/routes"
	"github.com/GrupoSemah/salidasform/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)

	// 1) Config
	cfg := config.LoadConfig()
	defer cfg.Close()

	// 2) Core application (services, etc.)
	application := app.NewApp(cfg)
	defer application.Close()

	// 3) Controllers
	healthCtrl := controllers.NewHealthController(application)
	moveOutCtrl := controllers.NewMoveOutController(application.MoveOutService, application.Catalog)

	// 4) Router
	router := mux.NewRouter()
	router.HandleFunc(routes.Health, healthCtrl.HealthCheckHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.MoveOut, moveOutCtrl.SubmitMoveOut).Methods(http.MethodPost)
	router.HandleFunc(routes.MoveOutRefData, moveOutCtrl.GetRefData).Methods(http.MethodGet)
	router.HandleFunc(routes.MoveOutSignature, moveOutCtrl.RenderSignature).Methods(http.MethodPost)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Resource not found", nil)
	})

	// 5) CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AppUrl},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on :%s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, c.Handler(router)); err != nil {
		utils.Logger.Fatal("Server error:", err)
	}
}
