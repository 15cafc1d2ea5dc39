// Package store is the permanent record store on Postgres. The staging layer
// and the reconciler only see narrow interfaces of it; everything here is
// plain parameterized SQL through a pgx pool.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	display_name  TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'member',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tasks (
	id         UUID PRIMARY KEY,
	title      TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT 'task',
	type       TEXT NOT NULL DEFAULT 'Other',
	priority   TEXT NOT NULL DEFAULT 'medium',
	status     TEXT NOT NULL DEFAULT 'todo',
	deadline   TEXT NOT NULL DEFAULT '',
	assignee   TEXT NOT NULL DEFAULT '',
	notes      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS task_history (
	id         UUID PRIMARY KEY,
	task_id    UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	field_name TEXT NOT NULL,
	old_value  TEXT,
	new_value  TEXT,
	changed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS inventory_schedules (
	id             UUID PRIMARY KEY,
	order_no       TEXT NOT NULL,
	product        TEXT NOT NULL,
	brand          TEXT NOT NULL DEFAULT '',
	quantity       INT  NOT NULL DEFAULT 0,
	channel        TEXT NOT NULL DEFAULT 'Online',
	ship_date      TEXT NOT NULL DEFAULT '',
	eta            TEXT NOT NULL DEFAULT '',
	warehouse_date TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sku_records (
	id         UUID PRIMARY KEY,
	order_no   TEXT NOT NULL,
	sku_code   TEXT NOT NULL,
	product    TEXT NOT NULL DEFAULT '',
	brand      TEXT NOT NULL DEFAULT '',
	color      TEXT NOT NULL DEFAULT '',
	quantity   INT  NOT NULL DEFAULT 1,
	channel    TEXT NOT NULL DEFAULT 'Online',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the tables on first boot. Statements are idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SeedAdmin creates the initial admin user if it does not exist yet.
func (s *Store) SeedAdmin(ctx context.Context, username, password string) error {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO users (id, username, display_name, password_hash, role)
		VALUES ($1, $2, $3, $4, 'admin')`,
		uuid.New(), username, username, string(hash),
	)
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	return nil
}
