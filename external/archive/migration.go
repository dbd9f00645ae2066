package archive

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS consultations (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		status TEXT NOT NULL,
		transcript_text TEXT NOT NULL DEFAULT '',
		anamnese TEXT NOT NULL DEFAULT '',
		exame_fisico TEXT NOT NULL DEFAULT '',
		hipotese_diagnostica TEXT NOT NULL DEFAULT '',
		conduta TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		synced_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_consultations_created ON consultations (created_at DESC)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
