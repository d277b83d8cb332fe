// migrate aplica las migraciones embebidas sobre la base configurada.
//
// Uso: go run ./cmd/migrate [up|down|status|reset]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/Suministros-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Suministros-api/pkg/config"
	"github.com/jhoicas/Suministros-api/pkg/logger"
)

func main() {
	command := postgres.MigrateUp
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	if cfg.DB.Driver != config.DriverPostgres {
		log.Fatal().Str("driver", cfg.DB.Driver).Msg("las migraciones solo aplican a postgres")
	}
	if err := postgres.Migrate(context.Background(), cfg.DB.ConnectionString(), command); err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("migración fallida")
	}
	log.Info().Str("command", command).Msg("migración completada")
}
