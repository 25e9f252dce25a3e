package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last step, so a partially applied schema
// is detected as missing and every idempotent step runs again.
const sentinelTable = "public.user_files"

var steps = []migrationStep{
	{
		Name: "create_extension_pgcrypto",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id                UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  email             TEXT        UNIQUE,
  phone             TEXT        UNIQUE,
  login_id          TEXT        UNIQUE,
  password_hash     TEXT        NOT NULL DEFAULT '',
  role              TEXT        NOT NULL DEFAULT '',
  metadata          JSONB       NOT NULL DEFAULT '{}'::jsonb,
  email_verified_at TIMESTAMPTZ,
  phone_verified_at TIMESTAMPTZ,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_refresh_tokens",
		SQL: `CREATE TABLE IF NOT EXISTS refresh_tokens (
  id         UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  user_id    UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  token_hash TEXT        NOT NULL UNIQUE,
  expires_at TIMESTAMPTZ NOT NULL,
  revoked    BOOLEAN     NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_otp_challenges",
		SQL: `CREATE TABLE IF NOT EXISTS otp_challenges (
  id          UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  channel     TEXT        NOT NULL CHECK (channel IN ('sms', 'email')),
  contact     TEXT        NOT NULL,
  code_hash   TEXT        NOT NULL,
  create_user BOOLEAN     NOT NULL DEFAULT false,
  attempts    INT         NOT NULL DEFAULT 0,
  expires_at  TIMESTAMPTZ NOT NULL,
  consumed_at TIMESTAMPTZ,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_otp_challenges_contact",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_otp_challenges_contact ON otp_challenges (channel, contact, created_at DESC);`,
	},
	{
		Name: "create_table_drafts",
		SQL: `CREATE TABLE IF NOT EXISTS drafts (
  user_id    UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  form_key   TEXT        NOT NULL,
  values     JSONB       NOT NULL DEFAULT '{}'::jsonb,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (user_id, form_key)
);`,
	},
	{
		Name: "create_table_projects",
		SQL: `CREATE TABLE IF NOT EXISTS projects (
  id                UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
  user_id           UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  title             TEXT        NOT NULL DEFAULT '',
  status            TEXT        NOT NULL DEFAULT 'draft',
  project_info      JSONB,
  save_plot_details JSONB,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_projects_user_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_projects_user_status ON projects (user_id, status);`,
	},
	{
		Name: "create_table_user_files",
		SQL: `CREATE TABLE IF NOT EXISTS user_files (
  storage_path TEXT        PRIMARY KEY,
  user_id      UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  purpose      TEXT        NOT NULL,
  sha256       TEXT        NOT NULL,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  url          TEXT        NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_user_files_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_user_files_user_id ON user_files (user_id, created_at DESC);`,
	},
}

// EnsureMigrated checks for the sentinel table and runs migrations if it is missing.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With("component", "database", "db_host", dbHost)

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT to_regclass($1) IS NOT NULL"
	if err := db.QueryRowContext(ctx, query, sentinelTable).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"detail", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
