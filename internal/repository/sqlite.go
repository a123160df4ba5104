// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/accountd/accountd/internal/models"
	"github.com/google/uuid"
	"github.com/vinovest/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const accountColumns = `id, username, email, firstname, lastname, company, password_hash,
	active, is_admin, registration_date, last_login, tokens, user_settings`

// Repository is the SQLite-backed AccountStore. Each account is one row;
// tokens and settings are JSON documents inside it.
type Repository struct {
	db *sqlx.DB
}

var _ AccountStore = (*Repository)(nil)

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying connection.
func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// wrapError converts driver errors to repository errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return ErrDuplicate
	}
	return err
}

// FindByID retrieves an account by ID.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	var acc models.Account
	err := r.db.GetContext(ctx, &acc, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &acc, nil
}

// FindOne retrieves the first account matching the filter.
func (r *Repository) FindOne(ctx context.Context, f Filter) (*models.Account, error) {
	where, args := whereClause(f)
	var acc models.Account
	err := r.db.GetContext(ctx, &acc, `SELECT `+accountColumns+` FROM accounts`+where+` LIMIT 1`, args...)
	if err != nil {
		return nil, wrapError(err)
	}
	return &acc, nil
}

// Find lists accounts matching the filter, sorted by email.
func (r *Repository) Find(ctx context.Context, f Filter, opts FindOptions) ([]models.Account, error) {
	where, args := whereClause(f)
	query := `SELECT ` + accountColumns + ` FROM accounts` + where + ` ORDER BY email ASC`
	if opts.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, opts.Skip)
	}

	accounts := []models.Account{}
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, wrapError(err)
	}
	if opts.OmitTokens {
		for i := range accounts {
			accounts[i].Tokens = nil
		}
	}
	return accounts, nil
}

// Count returns the number of accounts matching the filter.
func (r *Repository) Count(ctx context.Context, f Filter) (int64, error) {
	where, args := whereClause(f)
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM accounts`+where, args...)
	return count, wrapError(err)
}

// Save inserts the account or replaces the stored document. New accounts
// get an ID and a registration date.
func (r *Repository) Save(ctx context.Context, acc *models.Account) error {
	if acc.ID == "" {
		acc.ID = uuid.NewString()
	}
	if acc.RegistrationDate.IsZero() {
		acc.RegistrationDate = time.Now()
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (:id, :username, :email, :firstname, :lastname, :company, :password_hash,
			:active, :is_admin, :registration_date, :last_login, :tokens, :user_settings)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			email = excluded.email,
			firstname = excluded.firstname,
			lastname = excluded.lastname,
			company = excluded.company,
			password_hash = excluded.password_hash,
			active = excluded.active,
			is_admin = excluded.is_admin,
			last_login = excluded.last_login,
			tokens = excluded.tokens,
			user_settings = excluded.user_settings`, acc)
	return wrapError(err)
}

// Delete removes an account by ID. A missing account yields ErrNotFound.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return wrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func whereClause(f Filter) (string, []any) {
	var conds []string
	var args []any
	if f.Username != "" {
		conds = append(conds, "username = ?")
		args = append(args, f.Username)
	}
	if f.Email != "" {
		conds = append(conds, "email = ?")
		args = append(args, f.Email)
	}
	if f.Active != nil {
		conds = append(conds, "active = ?")
		args = append(args, *f.Active)
	}
	if f.IsAdmin != nil {
		conds = append(conds, "is_admin = ?")
		args = append(args, *f.IsAdmin)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
