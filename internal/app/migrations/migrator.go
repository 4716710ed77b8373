package migrations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/volunteerhub/internal/db"
)

// DefaultDirectory holds the numbered .sql files applied at startup
const DefaultDirectory = "migrations"

// Migrator applies numbered SQL files once each, tracking them in schema_migrations
type Migrator struct {
	db     *db.PostgresDB
	logger zerolog.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(database *db.PostgresDB, logger zerolog.Logger) *Migrator {
	return &Migrator{
		db:     database,
		logger: logger.With().Str("component", "migrator").Logger(),
	}
}

func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	_, err := m.db.Pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`)
	if err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

func isMigrationApplied(ctx context.Context, q db.Querier, version string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return exists, nil
}

// versionOf extracts the numeric prefix: "001_init.sql" => "001"
func versionOf(path string) string {
	return strings.Split(filepath.Base(path), "_")[0]
}

// MigrateFromFile applies one migration file inside a transaction. It reports
// whether the file was applied (false when it had been applied before).
func (m *Migrator) MigrateFromFile(ctx context.Context, filePath string) (bool, error) {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return false, err
	}

	version := versionOf(filePath)
	content, err := os.ReadFile(filePath)
	if err != nil {
		return false, fmt.Errorf("failed to read migration file: %w", err)
	}

	applied := false
	err = m.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		done, err := isMigrationApplied(ctx, tx, version)
		if err != nil || done {
			return err
		}
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("migration %s failed: %w", filepath.Base(filePath), err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`,
			version, time.Now()); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if applied {
		m.logger.Info().Str("file", filePath).Msg("Migration applied")
	} else {
		m.logger.Debug().Str("file", filePath).Msg("Migration already applied, skipping")
	}
	return applied, nil
}

// SQLFiles lists the .sql files of dirPath in application order
func SQLFiles(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, filepath.Join(dirPath, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// MigrateFromDirectory applies every pending migration of dirPath in order and
// returns the versions it applied.
func (m *Migrator) MigrateFromDirectory(ctx context.Context, dirPath string) ([]string, error) {
	files, err := SQLFiles(dirPath)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, file := range files {
		ok, err := m.MigrateFromFile(ctx, file)
		if err != nil {
			return applied, err
		}
		if ok {
			applied = append(applied, versionOf(file))
		}
	}
	return applied, nil
}
