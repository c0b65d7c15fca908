package mysql

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"tj-backend/infrastructure/persistence/schema"
)

// Migrations returns the travel schema history
func Migrations() []schema.Migration {
	return []schema.Migration{
		{
			FromVersion: 0,
			ToVersion:   1,
			Description: "create catalogue tables",
			Up: schema.Statements(
				`CREATE TABLE IF NOT EXISTS locations (
					id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
					name VARCHAR(100) NOT NULL,
					description TEXT NULL,
					country VARCHAR(100) NULL,
					city VARCHAR(100) NOT NULL,
					category VARCHAR(100) NULL,
					latitude DOUBLE NOT NULL,
					longitude DOUBLE NOT NULL,
					tags JSON NULL,
					images JSON NULL,
					public BOOLEAN NOT NULL DEFAULT FALSE,
					visit_count BIGINT NOT NULL DEFAULT 0,
					rating_sum DOUBLE NOT NULL DEFAULT 0,
					rating_count BIGINT NOT NULL DEFAULT 0,
					created_at DATETIME(6) NOT NULL,
					updated_at DATETIME(6) NOT NULL,
					KEY idx_locations_city (city),
					KEY idx_locations_popular (public, visit_count)
				) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
				`CREATE TABLE IF NOT EXISTS routes (
					id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
					user_id BIGINT NOT NULL,
					name VARCHAR(100) NOT NULL,
					description TEXT NULL,
					start_location_id BIGINT NOT NULL,
					end_location_id BIGINT NOT NULL,
					stops JSON NULL,
					duration_ns BIGINT NOT NULL DEFAULT 0,
					public BOOLEAN NOT NULL DEFAULT FALSE,
					created_at DATETIME(6) NOT NULL,
					updated_at DATETIME(6) NOT NULL,
					KEY idx_routes_user (user_id),
					KEY idx_routes_start (start_location_id),
					KEY idx_routes_end (end_location_id)
				) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			),
			Down: schema.Statements(`DROP TABLE IF EXISTS routes`, `DROP TABLE IF EXISTS locations`),
		},
		{
			FromVersion: 1,
			ToVersion:   2,
			Description: "create diaries and favorites",
			Up: schema.Statements(
				`CREATE TABLE IF NOT EXISTS diaries (
					id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
					user_id BIGINT NOT NULL,
					location_id BIGINT NOT NULL,
					title VARCHAR(200) NOT NULL,
					content MEDIUMTEXT NULL,
					travel_date DATETIME(6) NULL,
					tags JSON NULL,
					images JSON NULL,
					likes BIGINT NOT NULL DEFAULT 0,
					public BOOLEAN NOT NULL DEFAULT FALSE,
					created_at DATETIME(6) NOT NULL,
					updated_at DATETIME(6) NOT NULL,
					KEY idx_diaries_user (user_id),
					KEY idx_diaries_location (location_id),
					KEY idx_diaries_popular (public, likes)
				) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
				`CREATE TABLE IF NOT EXISTS favorites (
					user_id BIGINT NOT NULL,
					kind VARCHAR(16) NOT NULL,
					target_id BIGINT NOT NULL,
					created_at DATETIME(6) NOT NULL,
					PRIMARY KEY (user_id, kind, target_id)
				) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			),
			Down: schema.Statements(`DROP TABLE IF EXISTS favorites`, `DROP TABLE IF EXISTS diaries`),
		},
	}
}

// versionTable keeps applied versions in schema_migrations
type versionTable struct {
	db *sql.DB
}

func (v versionTable) CurrentVersion(ctx context.Context) (int, error) {
	if _, err := v.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INT NOT NULL PRIMARY KEY,
		description VARCHAR(255) NOT NULL,
		applied_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB`); err != nil {
		return 0, err
	}
	var version sql.NullInt64
	if err := v.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}

func (v versionTable) Applied(ctx context.Context, sv schema.SchemaVersion) error {
	_, err := v.db.ExecContext(ctx, `INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
		sv.Version, sv.Description, sv.AppliedAt)
	return err
}

func (v versionTable) Reverted(ctx context.Context, version int) error {
	_, err := v.db.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = ?`, version)
	return err
}

// Bootstrap brings the schema to the latest version
func Bootstrap(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	evolution := schema.NewSchemaEvolution(db, versionTable{db: db}, logger)
	for _, m := range Migrations() {
		if err := evolution.RegisterMigration(m); err != nil {
			return err
		}
	}
	return evolution.Migrate(ctx, evolution.Latest())
}
