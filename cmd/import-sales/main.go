// Command import-sales loads a CSV export of past sales into the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"backoffice/internal/app"
	"backoffice/internal/config"
	"backoffice/internal/database"
	"backoffice/internal/logger"

	"go.uber.org/zap"
)

func main() {
	var (
		path     string
		logLevel string
	)
	flag.StringVar(&path, "file", "", "CSV file to import")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	if path == "" {
		fmt.Fprintln(os.Stderr, "Usage: import-sales -file sales.csv [-log-level info]")
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout", TimeFormat: "2006-01-02 15:04:05"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := database.NewConnection(cfg.Database, log)
	if err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Database migration failed", zap.Error(err))
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatal("Cannot open file", zap.String("file", path), zap.Error(err))
	}
	defer f.Close()

	services := app.NewServices(db, cfg, nil, nil, log)
	result, err := services.Imports.ImportSales(context.Background(), "", f)
	if err != nil {
		log.Fatal("Import failed", zap.Error(err))
	}

	for _, problem := range result.Errors {
		fmt.Println(problem)
	}
	log.Info("Import finished",
		zap.Int("rows", result.Imported),
		zap.Int("invoices", len(result.Invoices)),
		zap.Int("problems", len(result.Errors)),
	)
}
