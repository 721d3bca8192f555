package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmorenog/bancalocal/app"
	"github.com/dmorenog/bancalocal/config"
	"github.com/dmorenog/bancalocal/draft"
	"github.com/dmorenog/bancalocal/entity"
	"github.com/dmorenog/bancalocal/log"
	"github.com/dmorenog/bancalocal/routes"
	"github.com/dmorenog/bancalocal/store"
	"github.com/dmorenog/bancalocal/survey"
)

// schemaVersion bumps when a collection is added to the declared schema.
const schemaVersion = 1

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	gateway, err := store.Open(cfg.DBPath, store.Schema{
		Version:     schemaVersion,
		Collections: append(entity.Collections(), survey.Collections()...),
	})
	if err != nil {
		log.Fatal("main.store.open:", err)
	}
	defer gateway.Close()

	drafts, err := draft.Open(cfg.DraftPath)
	if err != nil {
		log.Fatal("main.drafts.open:", err)
	}

	registry := entity.NewRegistry(gateway)
	if cfg.Seed {
		if err = registry.SeedDemo(context.Background()); err != nil {
			log.Fatal("main.seed:", err)
		}
	}

	surveys := survey.NewService(gateway)

	app := app.App{
		Store:    gateway,
		Drafts:   drafts,
		Registry: registry,
		Surveys:  surveys,
		Attempts: survey.NewAttemptManager(surveys, drafts, cfg.QuizTimeLimit),
		Config:   cfg,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
