package main

import (
	"context"
	"fmt"

	"github.com/mkarpushin/store-identity/internal/config"
	httphandler "github.com/mkarpushin/store-identity/internal/handler/http"
	"github.com/mkarpushin/store-identity/internal/logger"
	"github.com/mkarpushin/store-identity/internal/mailer"
	"github.com/mkarpushin/store-identity/internal/server"
	"github.com/mkarpushin/store-identity/internal/service"
	"github.com/mkarpushin/store-identity/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("identity-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	db, err := store.NewConnectPostgres(context.Background(), cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	storages := store.NewStorages(db, log)

	mail := mailer.NewMailer(cfg.Mail, log)

	services := service.NewServices(*storages, mail, *cfg, log)

	handler := httphandler.NewHandler(services, *cfg, log)

	srv, err := server.NewServer(handler, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
