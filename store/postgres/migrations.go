package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the countersign store (Postgres).
var Migrations = migrate.NewGroup("countersign")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_changes",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS countersign_changes (
    id                BIGSERIAL PRIMARY KEY,
    entity            TEXT NOT NULL,
    kind              TEXT NOT NULL,
    capability        TEXT NOT NULL,
    data_before       JSONB,
    data_after        JSONB,
    status            TEXT NOT NULL DEFAULT 'pending',
    creator           TEXT NOT NULL,
    approver          TEXT NOT NULL DEFAULT '',
    comments          TEXT NOT NULL DEFAULT '',
    date_created      TIMESTAMPTZ NOT NULL DEFAULT now(),
    date_approved     TIMESTAMPTZ,
    last_modified_on  TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_countersign_changes_status ON countersign_changes (status);
CREATE INDEX IF NOT EXISTS idx_countersign_changes_kind ON countersign_changes (kind, status);
CREATE INDEX IF NOT EXISTS idx_countersign_changes_creator ON countersign_changes (creator);
CREATE INDEX IF NOT EXISTS idx_countersign_changes_entity ON countersign_changes (entity);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS countersign_changes`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_audit",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS countersign_audit (
    id            TEXT PRIMARY KEY,
    audit_type    TEXT NOT NULL,
    module        TEXT NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    comment       TEXT NOT NULL DEFAULT '',
    data_before   JSONB,
    data_after    JSONB,
    created_by    TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_countersign_audit_type ON countersign_audit (audit_type);
CREATE INDEX IF NOT EXISTS idx_countersign_audit_module ON countersign_audit (module);
CREATE INDEX IF NOT EXISTS idx_countersign_audit_created_by ON countersign_audit (created_by);
CREATE INDEX IF NOT EXISTS idx_countersign_audit_created ON countersign_audit (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS countersign_audit`)
				return err
			},
		},
	)
}
