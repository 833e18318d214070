// Command migrate applies or rolls back the database schema.
//
//	migrate up
//	migrate down -steps 1
package main

import (
	"flag"
	"fmt"
	"os"

	"fitcoach/internal/config"
	"fitcoach/internal/db"
	"fitcoach/internal/logger"
)

func main() {
	steps := flag.Int("steps", 1, "migrations to roll back with down; 0 rolls back everything")
	path := flag.String("path", "", "migrations directory (defaults to MIGRATIONS_PATH)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [flags] up|down\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *path == "" {
		*path = cfg.MigrationsPath
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	switch flag.Arg(0) {
	case "up":
		err = db.RunMigrations(database, *path)
	case "down":
		err = db.RollbackMigrations(database, *path, *steps)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatalf("Migration failed: %v", err)
	}
	logger.Info("Migrations applied", "direction", flag.Arg(0), "path", *path)
}
