// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package account orchestrates registration, activation, login, password
// recovery, self-service profile edits and admin account management.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/accountd/accountd/internal/models"
	"github.com/accountd/accountd/internal/repository"
	"github.com/accountd/accountd/internal/services/bearer"
	"github.com/accountd/accountd/internal/services/password"
	"github.com/accountd/accountd/internal/services/token"
	"github.com/accountd/accountd/internal/validate"
)

var (
	ErrDuplicateAccount         = errors.New("a user with that email already exists")
	ErrAccountNotFound          = errors.New("account not found")
	ErrMissingToken             = errors.New("no token has been passed")
	ErrBadCredentials           = errors.New("the details you entered are incorrect")
	ErrAccountInactive          = errors.New("account is not active, the activation email has been sent again")
	ErrForbidden                = errors.New("you are not allowed to access this resource")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrPasswordPolicy           = errors.New("password policy violation")
)

// ValidationError reports malformed input.
type ValidationError = validate.Error

// DefaultMailTimeout bounds a single background mail delivery.
const DefaultMailTimeout = 30 * time.Second

// Mailer delivers account notifications. Failures are logged by the
// service and never reach its callers.
type Mailer interface {
	SendActivationEmail(ctx context.Context, acc *models.Account, bearerToken string) error
	SendResetEmail(ctx context.Context, acc *models.Account, bearerToken string) error
}

// Service implements the account operations.
type Service struct {
	store       repository.AccountStore
	hasher      *password.Hasher
	tokens      *token.Manager
	codec       *bearer.Codec
	mailer      Mailer
	validator   *validate.Validator
	mailTimeout time.Duration
	wg          sync.WaitGroup
}

// Deps groups the collaborators of a Service.
type Deps struct {
	Store       repository.AccountStore
	Hasher      *password.Hasher
	Tokens      *token.Manager
	Codec       *bearer.Codec
	Mailer      Mailer
	Validator   *validate.Validator
	MailTimeout time.Duration
}

// NewService creates a Service.
func NewService(d Deps) *Service {
	if d.Validator == nil {
		d.Validator = validate.New()
	}
	if d.MailTimeout <= 0 {
		d.MailTimeout = DefaultMailTimeout
	}
	return &Service{
		store:       d.Store,
		hasher:      d.Hasher,
		tokens:      d.Tokens,
		codec:       d.Codec,
		mailer:      d.Mailer,
		validator:   d.Validator,
		mailTimeout: d.MailTimeout,
	}
}

// Wait blocks until all background mail deliveries have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Codec returns the bearer codec used by the service.
func (s *Service) Codec() *bearer.Codec {
	return s.codec
}

func (s *Service) load(ctx context.Context, id string) (*models.Account, error) {
	acc, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return acc, nil
}

func (s *Service) save(ctx context.Context, acc *models.Account) error {
	if err := s.store.Save(ctx, acc); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrDuplicateAccount
		}
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// hashPassword hashes plaintext and reports an over-long password as a
// policy violation on field.
func (s *Service) hashPassword(ctx context.Context, field, plaintext string) (string, error) {
	hash, err := s.hasher.Hash(ctx, plaintext)
	if errors.Is(err, password.ErrTooLong) {
		return "", &ValidationError{Field: field, Message: password.ErrTooLong.Error(), Err: ErrPasswordPolicy}
	}
	return hash, err
}

const (
	mailActivation = "activation"
	mailReset      = "reset"
)

// notify encodes a bearer token for securityToken and delivers it in the
// background. The request context's values (locale) are kept, its
// cancellation is not.
func (s *Service) notify(ctx context.Context, kind string, acc *models.Account, securityToken string) {
	if s.mailer == nil {
		return
	}
	signed, err := s.codec.Encode(ctx, acc, securityToken)
	if err != nil {
		slog.Error("mail_token_failed", "kind", kind, "account_id", acc.ID, "error", err)
		return
	}

	snapshot := *acc
	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.mailTimeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		var err error
		if kind == mailReset {
			err = s.mailer.SendResetEmail(mctx, &snapshot, signed)
		} else {
			err = s.mailer.SendActivationEmail(mctx, &snapshot, signed)
		}
		if err != nil {
			slog.Error(kind+"_mail_failed", "account_id", snapshot.ID, "error", err)
			return
		}
		slog.Debug(kind+"_mail_sent", "account_id", snapshot.ID)
	}()
}
