package main

import (
	"flag"
	"log"

	"quizcraft/internal/config"
	"quizcraft/internal/database"
	"quizcraft/internal/logger"
)

func main() {
	migrationsPath := flag.String("path", "migrations", "path to migration files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Logger)
	l := logger.Get()
	defer l.Sync()

	db, err := database.NewSQLXPostgresDB(cfg.DB.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db, *migrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	l.Info("Migrations applied")
}
