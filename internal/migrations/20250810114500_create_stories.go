package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateStories, downCreateStories)
}

func upCreateStories(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE stories (
			id TEXT PRIMARY KEY,
			author_id TEXT NOT NULL,
			media_ref TEXT NOT NULL,
			media_kind TEXT NOT NULL,
			duration_ms BIGINT,
			view_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			expires_at TIMESTAMP WITH TIME ZONE NOT NULL
		);
		CREATE INDEX idx_stories_expires_at ON stories (expires_at);
		CREATE INDEX idx_stories_author_id ON stories (author_id);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downCreateStories(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DROP TABLE stories;
	`)
	if err != nil {
		return err
	}
	return nil
}
