package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DB wraps *sql.DB so every query can be written with ? placeholders and
// still run on postgres.
type DB struct {
	db      *sql.DB
	dialect Dialect
}

func Open(ctx context.Context, dialect Dialect, dsn string) (*DB, error) {
	var (
		sqlDB *sql.DB
		err   error
	)

	switch dialect {
	case DialectPostgres:
		sqlDB, err = sql.Open("postgres", dsn)
	case DialectSQLite:
		sqlDB, err = sql.Open("sqlite", dsn)
		if err == nil {
			// one connection: writes never conflict and :memory: stays a single database
			sqlDB.SetMaxOpenConns(1)
			sqlDB.SetMaxIdleConns(1)
			sqlDB.SetConnMaxLifetime(0)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("database is unreachable: %w", err)
	}

	d := &DB{db: sqlDB, dialect: dialect}

	if dialect == DialectSQLite {
		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout=5000",
			"PRAGMA synchronous=NORMAL",
		} {
			if _, err := sqlDB.ExecContext(ctx, pragma); err != nil {
				sqlDB.Close()
				return nil, fmt.Errorf("pragma failed (%s): %w", pragma, err)
			}
		}
	}

	if err := d.migrate(ctx, schemaMigrations); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return d, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Dialect() Dialect {
	return d.dialect
}

func (d *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, d.rebind(query), args...)
}

func (d *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, d.rebind(query), args...)
}

func (d *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, d.rebind(query), args...)
}

func (d *DB) rebind(query string) string {
	if d.dialect == DialectPostgres {
		return rewritePlaceholders(query)
	}
	return query
}

// rewritePlaceholders converts ? to $1, $2, ... outside single-quoted literals.
func rewritePlaceholders(query string) string {
	var buf strings.Builder
	buf.Grow(len(query) + 16)
	n := 1
	inStr := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			if inStr && i+1 < len(query) && query[i+1] == '\'' {
				buf.WriteString("''")
				i++
				continue
			}
			inStr = !inStr
			buf.WriteByte(c)
		case c == '?' && !inStr:
			buf.WriteByte('$')
			buf.WriteString(strconv.Itoa(n))
			n++
		default:
			buf.WriteByte(c)
		}
	}
	return buf.String()
}

var schemaMigrations = []string{
	`CREATE TABLE videos (
id VARCHAR(32) PRIMARY KEY,
title TEXT NOT NULL,
description TEXT NOT NULL DEFAULT '',
thumbnail_url TEXT NOT NULL DEFAULT '',
video_path TEXT NOT NULL DEFAULT '',
source_trending BOOLEAN NOT NULL DEFAULT FALSE,
source_trending_id VARCHAR(64) NOT NULL DEFAULT '',
status VARCHAR(16) NOT NULL,
scheduled_post VARCHAR(8) NOT NULL,
youtube_id VARCHAR(64) NOT NULL DEFAULT '',
tiktok_id VARCHAR(64) NOT NULL DEFAULT '',
notes TEXT NOT NULL DEFAULT '',
created_at TIMESTAMP NOT NULL,
approved_at TIMESTAMP NULL,
posted_at TIMESTAMP NULL
)`,
	`CREATE INDEX videos_status_slot_idx ON videos (status, scheduled_post)`,
	`CREATE TABLE publish_attempts (
id VARCHAR(32) PRIMARY KEY,
video_id VARCHAR(32) NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
platform VARCHAR(16) NOT NULL,
external_id VARCHAR(64) NOT NULL DEFAULT '',
error_message TEXT NOT NULL DEFAULT '',
created_at TIMESTAMP NOT NULL
)`,
	`CREATE INDEX publish_attempts_video_idx ON publish_attempts (video_id)`,
}

func (d *DB) migrate(ctx context.Context, wanted []string) error {
	ledger := `CREATE TABLE IF NOT EXISTS migration ("id" SERIAL PRIMARY KEY, "query" TEXT)`
	if d.dialect == DialectSQLite {
		ledger = `CREATE TABLE IF NOT EXISTS migration ("id" INTEGER PRIMARY KEY AUTOINCREMENT, "query" TEXT)`
	}
	if _, err := d.db.ExecContext(ctx, ledger); err != nil {
		return err
	}

	rows, err := d.db.QueryContext(ctx, `SELECT query FROM migration ORDER BY id`)
	if err != nil {
		return err
	}
	existing := []string{}
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			rows.Close()
			return err
		}
		existing = append(existing, query)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	missing, err := compareMigrations(wanted, existing)
	if err != nil {
		return err
	}

	for _, query := range missing {
		if _, err := d.db.ExecContext(ctx, query); err != nil {
			return err
		}
		if _, err := d.exec(ctx, `INSERT INTO migration (query) VALUES (?)`, query); err != nil {
			return err
		}
		slog.Debug("applied migration", "dialect", d.dialect, "query", firstLine(query))
	}

	return nil
}

func compareMigrations(wanted, existing []string) ([]string, error) {
	needed := []string{}
	if len(wanted) < len(existing) {
		return []string{}, fmt.Errorf("not enough migrations")
	}

	for i, want := range wanted {
		switch {
		case i >= len(existing):
			needed = append(needed, want)
		case want == existing[i]:
			// already applied
		default:
			return []string{}, fmt.Errorf("incompatible migration: %v", want)
		}
	}

	return needed, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
