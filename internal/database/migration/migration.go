package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"daoapi/internal/database"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_roles",
		SQL: `CREATE TABLE IF NOT EXISTS roles (
  id   INT  PRIMARY KEY,
  name TEXT NOT NULL UNIQUE
);`,
	},
	{
		Name: "seed_roles",
		SQL: `INSERT INTO roles (id, name) VALUES
  (1, 'director'),
  (2, 'admin'),
  (3, 'project_lead'),
  (4, 'team_member'),
  (5, 'reader')
ON CONFLICT (id) DO NOTHING;`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            BIGSERIAL   PRIMARY KEY,
  name          TEXT        NOT NULL,
  email         TEXT        NOT NULL UNIQUE,
  password_hash TEXT        NOT NULL,
  role_id       INT         NOT NULL REFERENCES roles (id),
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_teams",
		SQL: `CREATE TABLE IF NOT EXISTS teams (
  id         BIGSERIAL   PRIMARY KEY,
  name       TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_team_members",
		SQL: `CREATE TABLE IF NOT EXISTS team_members (
  team_id BIGINT NOT NULL REFERENCES teams (id) ON DELETE CASCADE,
  user_id BIGINT NOT NULL REFERENCES users (id),
  role    TEXT   NOT NULL CHECK (role IN ('lead', 'member')),
  PRIMARY KEY (team_id, user_id)
);`,
	},
	{
		Name: "create_table_dossier_sequences",
		SQL: `CREATE TABLE IF NOT EXISTS dossier_sequences (
  year    INT PRIMARY KEY,
  counter INT NOT NULL CHECK (counter >= 0)
);`,
	},
	{
		Name: "create_table_dossiers",
		SQL: `CREATE TABLE IF NOT EXISTS dossiers (
  id           BIGSERIAL   PRIMARY KEY,
  number       TEXT        NOT NULL UNIQUE,
  deposit_date DATE,
  subject      TEXT        NOT NULL,
  description  TEXT        NOT NULL DEFAULT '',
  reference    TEXT        NOT NULL DEFAULT '',
  authority    TEXT        NOT NULL DEFAULT '',
  lead_user_id BIGINT      NOT NULL REFERENCES users (id),
  team_id      BIGINT      NOT NULL REFERENCES teams (id),
  completed    BOOLEAN     NOT NULL DEFAULT false,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_tasks",
		SQL: `CREATE TABLE IF NOT EXISTS tasks (
  id               BIGSERIAL   PRIMARY KEY,
  dossier_id       BIGINT      NOT NULL REFERENCES dossiers (id) ON DELETE CASCADE,
  name             TEXT        NOT NULL,
  progress         INT         NOT NULL DEFAULT 0 CHECK (progress BETWEEN 0 AND 100),
  assigned_user_id BIGINT      REFERENCES users (id),
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_comments",
		SQL: `CREATE TABLE IF NOT EXISTS comments (
  id                BIGSERIAL   PRIMARY KEY,
  task_id           BIGINT      NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
  author_id         BIGINT      NOT NULL REFERENCES users (id),
  body              TEXT        NOT NULL,
  mentioned_user_id BIGINT      REFERENCES users (id),
  is_public         BOOLEAN     NOT NULL DEFAULT true,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_dossier_attachments",
		SQL: `CREATE TABLE IF NOT EXISTS dossier_attachments (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  dossier_id   BIGINT      NOT NULL REFERENCES dossiers (id) ON DELETE CASCADE,
  filename     TEXT        NOT NULL,
  storage_path TEXT        NOT NULL UNIQUE,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_tasks_dossier_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_tasks_dossier_id ON tasks (dossier_id);`,
	},
	{
		Name: "create_index_comments_task_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_comments_task_id ON comments (task_id, created_at DESC);`,
	},
	{
		Name: "create_index_dossiers_lead_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_dossiers_lead_user_id ON dossiers (lead_user_id);`,
	},
	{
		Name: "create_index_dossier_attachments_dossier_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_dossier_attachments_dossier_id ON dossier_attachments (dossier_id, created_at);`,
	},
}

// EnsureMigrated checks if the 'dossiers' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *log.Logger, dbHost string) error {
	start := time.Now()
	logger = logger.With("component", "database", "db_host", dbHost)

	logger.Info("db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT to_regclass('public.dossiers') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		logger.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logger.Info("db_migration_skip",
			"status", "success",
			"detail", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	logger.Info("db_migration_start", "status", "in_progress")

	// All steps share one transaction so a failed run leaves no sentinel behind.
	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
		for _, step := range steps {
			stepStart := time.Now()
			if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
				logger.Error("db_migration_failed",
					"status", "error",
					"migration_step", step.Name,
					"error_message", err.Error(),
					"duration_ms", time.Since(start).Milliseconds(),
					"step_duration_ms", time.Since(stepStart).Milliseconds(),
				)
				return fmt.Errorf("migration step %s failed: %w", step.Name, err)
			}

			logger.Info("db_migration_step",
				"status", "success",
				"migration_step", step.Name,
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
		}
		return nil
	})
	if err != nil {
		logger.Error("db_migration_rolled_back",
			"status", "error",
			"error_message", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}

	logger.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}
