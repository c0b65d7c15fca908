// Package schema applies versioned schema migrations to the store of record.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// SchemaVersion records one applied migration
type SchemaVersion struct {
	Version     int       `json:"version"`
	Description string    `json:"description"`
	AppliedAt   time.Time `json:"applied_at"`
}

// Execer runs a statement; *sql.DB and *sql.Tx satisfy it
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// MigrationFunc performs one direction of a migration
type MigrationFunc func(ctx context.Context, db Execer) error

// Migration moves the schema from FromVersion to ToVersion
type Migration struct {
	FromVersion int
	ToVersion   int
	Description string
	Up          MigrationFunc
	Down        MigrationFunc
}

// Statements returns a MigrationFunc executing stmts in order
func Statements(stmts ...string) MigrationFunc {
	return func(ctx context.Context, db Execer) error {
		for _, stmt := range stmts {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}
}

// VersionStore persists which migrations have been applied
type VersionStore interface {
	CurrentVersion(ctx context.Context) (int, error)
	Applied(ctx context.Context, v SchemaVersion) error
	Reverted(ctx context.Context, version int) error
}

// SchemaEvolution manages database schema evolution
type SchemaEvolution struct {
	db         Execer
	versions   VersionStore
	migrations []Migration
	history    []SchemaVersion
	logger     *zap.Logger
}

// NewSchemaEvolution creates a new schema evolution manager
func NewSchemaEvolution(db Execer, versions VersionStore, logger *zap.Logger) *SchemaEvolution {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchemaEvolution{db: db, versions: versions, logger: logger}
}

// RegisterMigration registers a migration of exactly one version step
func (s *SchemaEvolution) RegisterMigration(migration Migration) error {
	if migration.ToVersion != migration.FromVersion+1 {
		return fmt.Errorf("invalid migration %d->%d: must advance one version",
			migration.FromVersion, migration.ToVersion)
	}
	if migration.Up == nil {
		return fmt.Errorf("migration %d->%d has no up step", migration.FromVersion, migration.ToVersion)
	}
	if s.findMigration(migration.FromVersion, migration.ToVersion) != nil {
		return fmt.Errorf("migration from %d to %d already exists",
			migration.FromVersion, migration.ToVersion)
	}

	s.migrations = append(s.migrations, migration)
	sort.Slice(s.migrations, func(i, j int) bool {
		return s.migrations[i].FromVersion < s.migrations[j].FromVersion
	})
	return nil
}

// Latest returns the highest version reachable through registered migrations
func (s *SchemaEvolution) Latest() int {
	if len(s.migrations) == 0 {
		return 0
	}
	return s.migrations[len(s.migrations)-1].ToVersion
}

// Migrate performs migrations to reach the target version
func (s *SchemaEvolution) Migrate(ctx context.Context, targetVersion int) error {
	current, err := s.versions.CurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if targetVersion == current {
		return nil
	}
	if targetVersion < current {
		return s.rollback(ctx, current, targetVersion)
	}
	return s.upgrade(ctx, current, targetVersion)
}

func (s *SchemaEvolution) upgrade(ctx context.Context, current, targetVersion int) error {
	for current < targetVersion {
		migration := s.findMigration(current, current+1)
		if migration == nil {
			return fmt.Errorf("no migration found from version %d to %d", current, current+1)
		}

		if err := migration.Up(ctx, s.db); err != nil {
			return fmt.Errorf("migration %d->%d failed: %w",
				migration.FromVersion, migration.ToVersion, err)
		}

		applied := SchemaVersion{
			Version:     migration.ToVersion,
			Description: migration.Description,
			AppliedAt:   time.Now().UTC(),
		}
		if err := s.versions.Applied(ctx, applied); err != nil {
			return fmt.Errorf("record schema version %d: %w", applied.Version, err)
		}
		s.history = append(s.history, applied)
		s.logger.Info("Schema migrated",
			zap.Int("version", applied.Version),
			zap.String("description", applied.Description),
		)

		current = migration.ToVersion
	}
	return nil
}

func (s *SchemaEvolution) rollback(ctx context.Context, current, targetVersion int) error {
	for current > targetVersion {
		migration := s.findMigration(current-1, current)
		if migration == nil {
			return fmt.Errorf("no rollback found from version %d to %d", current, current-1)
		}
		if migration.Down == nil {
			return fmt.Errorf("migration %d->%d does not support rollback",
				migration.FromVersion, migration.ToVersion)
		}

		if err := migration.Down(ctx, s.db); err != nil {
			return fmt.Errorf("rollback %d->%d failed: %w",
				migration.ToVersion, migration.FromVersion, err)
		}
		if err := s.versions.Reverted(ctx, migration.ToVersion); err != nil {
			return fmt.Errorf("record rollback of version %d: %w", migration.ToVersion, err)
		}
		s.logger.Info("Schema rolled back", zap.Int("version", migration.FromVersion))

		current = migration.FromVersion
	}
	return nil
}

func (s *SchemaEvolution) findMigration(from, to int) *Migration {
	for i := range s.migrations {
		if s.migrations[i].FromVersion == from && s.migrations[i].ToVersion == to {
			return &s.migrations[i]
		}
	}
	return nil
}

// GetHistory returns the migrations applied by this instance
func (s *SchemaEvolution) GetHistory() []SchemaVersion {
	return s.history
}
