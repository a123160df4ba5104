// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/database"
	"github.com/accountd/accountd/internal/repository"
	"github.com/accountd/accountd/internal/repository/mongostore"
	"github.com/accountd/accountd/internal/services/account"
	"github.com/accountd/accountd/internal/services/bearer"
	"github.com/accountd/accountd/internal/services/email"
	"github.com/accountd/accountd/internal/services/password"
	"github.com/accountd/accountd/internal/services/session"
	"github.com/accountd/accountd/internal/services/token"
	"github.com/accountd/accountd/internal/validate"
)

// App holds the constructed services of one process.
type App struct {
	Store    repository.AccountStore
	Accounts *account.Service
	Sessions *session.Manager
}

// OpenStore opens the account store selected by cfg. The returned func
// closes it.
func OpenStore(ctx context.Context, cfg *config.DatabaseConfig) (repository.AccountStore, func(), error) {
	switch cfg.Driver {
	case "mongo":
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				slog.Error("failed to disconnect mongo", "error", err)
			}
		}
		store, err := mongostore.New(ctx, client.Database(cfg.MongoDatabase))
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		return store, closeFn, nil
	default:
		db, err := database.Open(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		closeFn := func() {
			if err := database.Close(db); err != nil {
				slog.Error("failed to close database", "error", err)
			}
		}
		return repository.New(db), closeFn, nil
	}
}

// NewApp wires the services around store. mailer may be nil to disable
// outgoing mail.
func NewApp(cfg *config.Config, store repository.AccountStore, mailer account.Mailer) (*App, error) {
	tokens := token.NewManager(store, cfg.Security.Secret)
	codec := bearer.NewCodec(cfg.Security.Secret, store, tokens)

	sessions, err := session.NewManager(&cfg.Session, cfg.SecureCookies())
	if err != nil {
		return nil, err
	}

	accounts := account.NewService(account.Deps{
		Store:       store,
		Hasher:      password.NewHasher(cfg.Security.BcryptCost, cfg.Security.HashConcurrency),
		Tokens:      tokens,
		Codec:       codec,
		Mailer:      mailer,
		Validator:   validate.New(),
		MailTimeout: cfg.Mail.Timeout,
	})

	return &App{
		Store:    store,
		Accounts: accounts,
		Sessions: sessions,
	}, nil
}

// NewMailer builds the configured mail service.
func NewMailer(ctx context.Context, cfg *config.MailConfig) (account.Mailer, error) {
	svc, err := email.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure mail: %w", err)
	}
	return svc, nil
}
