// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/server"
	"github.com/urfave/cli/v3"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "accountd",
		Usage:   "User account and authentication service",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags:   config.Flags(),
		Action:  server.Run,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API (default)",
				Action: server.Run,
			},
			{
				Name:  "create-admin",
				Usage: "Create or promote an admin account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Admin email address", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Admin password", Required: true},
				},
				Action: server.CreateAdmin,
			},
			{
				Name:  "migrate",
				Usage: "Manage the SQLite schema",
				Commands: []*cli.Command{
					{Name: "up", Usage: "Apply pending migrations", Action: server.Migrate("up")},
					{Name: "down", Usage: "Roll back the last migration", Action: server.Migrate("down")},
					{Name: "reset", Usage: "Roll back all migrations", Action: server.Migrate("reset")},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
