package main

import (
	"context"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"estimateboard/collections"
	"estimateboard/config"
	"estimateboard/handlers"
	"estimateboard/loader"
	"estimateboard/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	app := pocketbase.New()
	sessions := handlers.NewSessions(app, cfg.UndoDepth, logger)

	// Create collections and seed the configured estimate on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		if err := collections.Setup(app, logger); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchMaxElapsed+cfg.FetchTimeout)
		defer cancel()
		if _, err := collections.Seed(ctx, app, seedSource(cfg, logger), logger); err != nil {
			logger.Warn("seed data failed", zap.Error(err))
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.BindFunc(handlers.RequestLogger(logger))

		// ── Estimate editing ─────────────────────────────────────
		se.Router.PATCH("/estimates/{id}/sections/{sectionId}/items/{itemId}", handlers.HandleItemPatch(sessions))
		se.Router.POST("/estimates/{id}/sections/{sectionId}/toggle", handlers.HandleSectionToggle(sessions))
		se.Router.POST("/estimates/{id}/undo", handlers.HandleUndo(sessions))
		se.Router.POST("/estimates/{id}/reload", handlers.HandleReload(sessions))

		// ── Estimate data ────────────────────────────────────────
		se.Router.GET("/estimates/{id}/totals", handlers.HandleTotals(sessions))
		se.Router.GET("/estimates/{id}/document", handlers.HandleDocument(sessions))

		// ── Export ───────────────────────────────────────────────
		se.Router.GET("/estimates/{id}/export/excel", handlers.HandleExportExcel(sessions))
		se.Router.GET("/estimates/{id}/export/pdf", handlers.HandleExportPDF(sessions))

		// Estimate page (after specific /estimates/{id}/* routes)
		se.Router.GET("/estimates/{id}", handlers.HandleEstimateView(sessions))

		se.Router.GET("/", handlers.HandleHome(app, logger))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		logger.Fatal("app stopped", zap.Error(err))
	}
}

// seedSource prefers a configured URL over the local seed file.
func seedSource(cfg *config.Config, logger *zap.Logger) loader.Source {
	if cfg.SeedURL != "" {
		return loader.HTTPSource{
			URL:        cfg.SeedURL,
			Client:     &http.Client{Timeout: cfg.FetchTimeout},
			MaxElapsed: cfg.FetchMaxElapsed,
			Logger:     logger,
		}
	}
	return loader.FileSource{Path: cfg.SeedFile}
}
