package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/pal-tracker-api/migrations"
	"github.com/noah-isme/pal-tracker-api/pkg/config"
	"github.com/noah-isme/pal-tracker-api/pkg/database"
	"github.com/noah-isme/pal-tracker-api/pkg/logger"
)

// Usage: migrate [up|down|status|version|redo|reset|up-to N|down-to N]
func main() {
	flag.Parse()
	command, args := "up", []string(nil)
	if flag.NArg() > 0 {
		command, args = flag.Arg(0), flag.Args()[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := database.NewMigrator(db, migrations.FS, logr).Run(ctx, command, args...); err != nil {
		logr.Fatal("migration failed", zap.String("command", command), zap.Error(err))
	}
	logr.Info("migration command complete", zap.String("command", command))
}
