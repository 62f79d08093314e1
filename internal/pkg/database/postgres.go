// Package database keeps a history of light states in Postgres.
package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const DefaultRetention = 8 * 24 * time.Hour

type Database struct {
	pool      *pgxpool.Pool
	retention time.Duration
	now       func() time.Time
}

func WithRetention(d time.Duration) func(*Database) {
	return func(db *Database) {
		db.retention = d
	}
}

func WithClock(now func() time.Time) func(*Database) {
	return func(db *Database) {
		db.now = now
	}
}

func NewDatabase(pool *pgxpool.Pool, opts ...func(*Database)) *Database {
	db := &Database{
		pool:      pool,
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, o := range opts {
		o(db)
	}
	return db
}

// Connect opens a pool for dsn and checks it is reachable.
func Connect(ctx context.Context, dsn string, opts ...func(*Database)) (*Database, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return NewDatabase(pool, opts...), nil
}

func (db *Database) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}
