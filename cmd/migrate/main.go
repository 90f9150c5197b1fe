package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jhoicas/lumberyard-api/internal/infrastructure/postgres"
	"github.com/jhoicas/lumberyard-api/pkg/config"
	"github.com/jhoicas/lumberyard-api/pkg/logger"
	"github.com/pressly/goose/v3"
)

// Uso: migrate [up|down|status|version|redo|reset] [args]. Sin comando = up.
func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	db, err := sql.Open("pgx", cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("abrir conexión")
	}
	defer db.Close()

	goose.SetBaseFS(postgres.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("dialecto goose")
	}

	args := flag.Args()
	command := "up"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	if err := goose.RunContext(context.Background(), command, db, "migrations", args...); err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("goose")
	}
	log.Info().Str("command", command).Msg("migraciones aplicadas")
}
