// Command create-user registers a back-office operator.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"backoffice/internal/app"
	"backoffice/internal/config"
	"backoffice/internal/database"
	"backoffice/internal/logger"
	"backoffice/internal/model"
	"backoffice/internal/service"

	"go.uber.org/zap"
)

func main() {
	var username, password, role string
	flag.StringVar(&username, "username", "", "Login name")
	flag.StringVar(&password, "password", os.Getenv("BACKOFFICE_NEW_USER_PASSWORD"), "Password (default $BACKOFFICE_NEW_USER_PASSWORD)")
	flag.StringVar(&role, "role", model.RoleStaff, "manager or staff")
	flag.Parse()

	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "Usage: create-user -username NAME -password SECRET [-role manager|staff]")
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: "info", Format: "console", Output: "stdout", TimeFormat: "2006-01-02 15:04:05"})
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

	services := app.NewServices(db, cfg, nil, nil, log)
	user, err := services.Users.CreateUser(context.Background(), service.CreateUserRequest{
		Username: username,
		Password: password,
		Role:     role,
	})
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		for _, p := range ve.Problems {
			fmt.Fprintln(os.Stderr, p)
		}
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("Failed to create user", zap.Error(err))
	}

	log.Info("User created", zap.String("id", user.ID.String()), zap.String("username", user.Username), zap.String("role", user.Role))
}
