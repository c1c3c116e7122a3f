package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"soup_menu_bot/internal/app"
	"soup_menu_bot/internal/infra/config"
	idb "soup_menu_bot/internal/infra/database"
	"soup_menu_bot/internal/infra/logger"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

// Usage: migrate [up|down|status|version|redo|reset|seed] [args...]
func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Component("migrate")

	if err := run(cfg, log, flag.Args()); err != nil {
		log.WithError(err).Fatal("Migration failed")
	}
}

// run owns the database handle so it is closed before main exits, also on failure.
func run(cfg *config.AppConfig, log *logrus.Entry, arguments []string) error {
	if len(arguments) == 0 {
		arguments = []string{"up"} // Default to 'up' if no command is provided
	}
	command, args := arguments[0], arguments[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL, idb.PoolOptions{PingTimeout: cfg.DBTimeout})
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Error("Failed to close database")
		}
	}()

	if command == "seed" {
		admin := app.NewAdminService(idb.NewPostgresSoupRepository(db, cfg.DBTimeout), cfg.AdminTelegramID, cfg.Timezone, log, nil)
		if err := app.Seed(ctx, admin, time.Now().In(cfg.Timezone)); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
		log.Info("Seed data created")
		return nil
	}

	goose.SetBaseFS(idb.Migrations)
	goose.SetLogger(logger.Log)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("could not set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, idb.MigrationsDir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	log.Infof("goose %s success", command)
	return nil
}
