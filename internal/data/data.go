package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	_ "github.com/lib/pq"

	"github.com/saasgenius/saasgenius/internal/conf"
)

type Data struct {
	db *sql.DB
}

// Ping reports database reachability for the health endpoint.
func (d *Data) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	db, err := sql.Open(c.Database.Driver, c.Database.Source)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, nil, err
	}

	if err := initSchema(db); err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
		db.Close()
	}
	return &Data{db: db}, cleanup, nil
}

func initSchema(db *sql.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id SERIAL PRIMARY KEY,
				username TEXT NOT NULL UNIQUE,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				subscription_type TEXT NOT NULL DEFAULT 'free',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				last_login TIMESTAMPTZ
			)`},
		{"projects", `
			CREATE TABLE IF NOT EXISTS projects (
				id SERIAL PRIMARY KEY,
				user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				title TEXT NOT NULL,
				description TEXT NOT NULL,
				analysis_result JSONB,
				is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
				tags TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`},
		{"projects_user_idx", `
			CREATE INDEX IF NOT EXISTS projects_user_idx ON projects (user_id, created_at DESC)`},
		{"analytics", `
			CREATE TABLE IF NOT EXISTS analytics (
				id SERIAL PRIMARY KEY,
				user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
				event_type TEXT NOT NULL,
				event_data TEXT NOT NULL DEFAULT '',
				ip_address TEXT NOT NULL DEFAULT '',
				user_agent TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`},
	}
	for _, s := range stmts {
		if _, err := db.Exec(s.sql); err != nil {
			return fmt.Errorf("failed to init %s: %w", s.name, err)
		}
	}
	return nil
}
