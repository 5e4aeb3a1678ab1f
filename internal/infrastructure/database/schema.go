package database

import (
	"context"
	"fmt"
)

// schema is the full database schema, applied idempotently on startup.
//
// The bridge keeps a single table — the command audit log — so a
// migration framework would be overkill; additive changes can use
// ALTER TABLE guarded by the schema_version row.
const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version    INTEGER PRIMARY KEY,
	applied_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS command_log (
	id         TEXT PRIMARY KEY,
	device_id  TEXT NOT NULL,
	topic      TEXT NOT NULL,
	envelope   TEXT,
	outcome    TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_command_log_device
	ON command_log (device_id, created_at);
`

// currentSchemaVersion is bumped whenever the schema above changes.
const currentSchemaVersion = 1

// Migrate applies the schema and records the schema version.
// It is safe to call on every startup.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at)
		 VALUES (?, datetime('now'))
		 ON CONFLICT (version) DO NOTHING`,
		currentSchemaVersion,
	)
	if err != nil {
		return fmt.Errorf("recording schema version: %w", err)
	}

	return nil
}

// SchemaVersion returns the highest applied schema version.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}
