// Package database opens the application's SQL database and initializes the
// schema of the models an application registers before it starts serving.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "modernc.org/sqlite"

	"github.com/neobeach/core/internal/config"
)

// Errors returned by Init.
var (
	ErrNilModel       = errors.New("nil model")
	ErrNoTableName    = errors.New("model has no table name")
	ErrDuplicateModel = errors.New("duplicate model table")
)

const trackingTable = "_neobeach_models"

// Model is a persisted type that owns its table definition.
type Model interface {
	TableName() string
	// Schema returns the statements creating the table and its indexes.
	// They must be idempotent.
	Schema() string
}

// DB wraps sql.DB with the engine's logger.
type DB struct {
	*sql.DB
	dsn     string
	logger  *slog.Logger
	timeNow func() time.Time
}

// Open creates and configures a database connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sqlDB, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed opening %s database: %w", cfg.Driver, err)
	}

	if strings.Contains(cfg.DSN, "mode=memory") || strings.Contains(cfg.DSN, ":memory:") {
		// Every connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(time.Duration(math.MaxInt64))
	}

	d := &DB{
		DB:      sqlDB,
		dsn:     cfg.DSN,
		logger:  logger.With(slog.String("component", "database")),
		timeNow: time.Now,
	}

	if cfg.Driver == "sqlite" {
		if _, err := d.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed enabling foreign key enforcement: %w", err)
		}
	}

	if err := d.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed connecting to database: %w", err)
	}

	d.logger.Debug("database opened", slog.String("driver", cfg.Driver))
	return d, nil
}

// Check pings the database. It lets DB serve as a readiness check.
func (d *DB) Check(ctx context.Context) error {
	return d.PingContext(ctx)
}

// Init applies the schema of every model in one transaction and records each
// table. Either every model is initialized or none is.
func (d *DB) Init(ctx context.Context, models ...Model) error {
	seen := make(map[string]struct{}, len(models))
	for i, m := range models {
		if m == nil {
			return fmt.Errorf("model %d: %w", i, ErrNilModel)
		}
		name := m.TableName()
		if name == "" {
			return fmt.Errorf("model %d (%T): %w", i, m, ErrNoTableName)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateModel, name)
		}
		seen[name] = struct{}{}
	}

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+trackingTable+` (
		name TEXT PRIMARY KEY,
		initialized_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed creating %s: %w", trackingTable, err)
	}

	now := d.timeNow().UTC()
	for _, m := range models {
		if _, err := tx.ExecContext(ctx, m.Schema()); err != nil {
			return fmt.Errorf("failed initializing model %s: %w", m.TableName(), err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+trackingTable+` (name, initialized_at) VALUES (?, ?)
			 ON CONFLICT(name) DO UPDATE SET initialized_at = excluded.initialized_at`,
			m.TableName(), now)
		if err != nil {
			return fmt.Errorf("failed recording model %s: %w", m.TableName(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed committing schema: %w", err)
	}

	d.logger.Info("database initialized", slog.Int("models", len(models)))
	return nil
}

// Models lists the tables recorded by Init, sorted by name.
func (d *DB) Models(ctx context.Context) ([]string, error) {
	rows, err := d.QueryContext(ctx, `SELECT name FROM `+trackingTable+` ORDER BY name`)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil, nil
		}
		return nil, fmt.Errorf("failed listing models: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
