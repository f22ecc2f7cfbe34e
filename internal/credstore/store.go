// Package credstore owns the durable credential record: the bearer token and
// the optional remembered login email. It is the single source of truth for
// "is there a prior login to resume".
package credstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pressly/goose/v3"
	"github.com/theeverestnews/newsdesk/internal/credstore/migrations"
	"github.com/theeverestnews/newsdesk/internal/dbx"
	"github.com/theeverestnews/newsdesk/internal/logging"
)

// The two logical keys the store ever writes.
const (
	keyToken      = "token"
	keyRememberMe = "rememberMe"
)

// Store is the facade the rest of the app talks to. When the underlying
// storage is unavailable the store degrades instead of failing: Save and
// Clear are silent no-ops (logged at warn level) and Load reports absent,
// so the app falls back to "logged out" rather than crashing.
type Store struct {
	repo Repository
	db   *sql.DB
	log  logging.Logger
}

// Open opens (or creates) the credential database at dsn, applies the schema
// migrations, and returns a ready Store. On any failure it returns a disabled
// store; the error is reported so the caller can log it.
func Open(ctx context.Context, dsn string, log logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return Disabled(log), err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return Disabled(log), err
	}
	return &Store{repo: NewSQLiteRepository(db), db: db, log: log}, nil
}

// Disabled returns a store with no backing medium: loads report absent,
// writes are dropped.
func Disabled(log logging.Logger) *Store {
	return &Store{log: log}
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Save persists the token, and the remembered email when it is non-empty.
// Both writes land in one transaction so a half-written record never exists.
func (s *Store) Save(ctx context.Context, token, rememberedEmail string) {
	if s.repo == nil {
		return
	}

	write := func(ctx context.Context, repo Repository) error {
		if err := repo.Set(ctx, keyToken, token); err != nil {
			return err
		}
		if rememberedEmail != "" {
			return repo.Set(ctx, keyRememberMe, rememberedEmail)
		}
		return nil
	}

	var err error
	if s.db != nil {
		err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return write(ctx, NewSQLiteRepository(tx))
		})
	} else {
		err = write(ctx, s.repo)
	}
	if err != nil {
		s.log.Warn(ctx, "credential save failed, continuing without persistence", "error", err)
	}
}

// Load returns the persisted token, reporting absent on any storage failure.
func (s *Store) Load(ctx context.Context) (string, bool) {
	if s.repo == nil {
		return "", false
	}
	token, err := s.repo.Get(ctx, keyToken)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn(ctx, "credential load failed", "error", err)
		}
		return "", false
	}
	return token, true
}

// RememberedEmail returns the identifier saved by a prior "remember me" login.
func (s *Store) RememberedEmail(ctx context.Context) (string, bool) {
	if s.repo == nil {
		return "", false
	}
	email, err := s.repo.Get(ctx, keyRememberMe)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn(ctx, "remembered email load failed", "error", err)
		}
		return "", false
	}
	return email, true
}

// ClearToken erases only the token, leaving the remembered email for prefill.
func (s *Store) ClearToken(ctx context.Context) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Delete(ctx, keyToken); err != nil {
		s.log.Warn(ctx, "credential clear failed", "error", err)
	}
}

// Clear erases every persisted field.
func (s *Store) Clear(ctx context.Context) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Clear(ctx); err != nil {
		s.log.Warn(ctx, "credential clear failed", "error", err)
	}
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
