// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/database"
	"github.com/urfave/cli/v3"
)

// CreateAdmin creates the admin account given by --email and --password,
// or promotes and activates an existing account with that email.
func CreateAdmin(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)
	if cfg.Security.Secret == "" {
		return errors.New("security secret is required")
	}

	email := cmd.String("email")
	password := cmd.String("password")
	if email == "" || password == "" {
		return errors.New("--email and --password are required")
	}

	store, closeStore, err := OpenStore(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()

	// no mail for admin bootstrap
	app, err := NewApp(cfg, store, nil)
	if err != nil {
		return err
	}

	created, err := app.Accounts.EnsureAdmin(ctx, email, password)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	if created {
		slog.Info("admin_created", "email", email)
	} else {
		slog.Info("admin_promoted", "email", email)
	}
	return nil
}

// Migrate applies a schema migration to the SQLite store. direction is
// one of up, down or reset.
func Migrate(direction string) cli.ActionFunc {
	return func(_ context.Context, cmd *cli.Command) error {
		cfg := config.NewFromCLI(cmd)
		setupLogger(cfg.Log.Level, cfg.Log.Format)

		if cfg.Database.Driver != "sqlite" {
			slog.Info("nothing to migrate", "driver", cfg.Database.Driver)
			return nil
		}

		db, err := database.Connect(cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = database.Close(db) }()

		switch direction {
		case "up":
			err = database.RunMigrations(db.DB)
		case "down":
			err = database.MigrateDown(db.DB)
		case "reset":
			err = database.MigrateReset(db.DB)
		default:
			return fmt.Errorf("unknown migration direction %q", direction)
		}
		if err != nil {
			return fmt.Errorf("migrate %s: %w", direction, err)
		}
		slog.Info("migration finished", "direction", direction)
		return nil
	}
}
