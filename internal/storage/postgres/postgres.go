// Package postgres keeps the document-shaped collections in Postgres, with
// nested values (addresses, images, cart lines) in JSONB columns.
package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace/internal/store"
)

const uniqueViolation = "23505"

func New(pool *pgxpool.Pool) *store.Store {
	return &store.Store{
		Users:    &Users{db: pool},
		Shops:    &Shops{db: pool},
		Products: &Products{db: pool},
		Orders:   &Orders{db: pool},
		Close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}
}

func newID() string { return uuid.NewString() }

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrDuplicate
	}
	return err
}
