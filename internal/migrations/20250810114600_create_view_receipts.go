package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateViewReceipts, downCreateViewReceipts)
}

func upCreateViewReceipts(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE view_receipts (
			story_id TEXT NOT NULL,
			viewer_id TEXT NOT NULL,
			viewed_at TIMESTAMP WITH TIME ZONE NOT NULL,
			PRIMARY KEY (story_id, viewer_id)
		);
		CREATE INDEX idx_view_receipts_viewer_id ON view_receipts (viewer_id);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downCreateViewReceipts(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DROP TABLE view_receipts;
	`)
	if err != nil {
		return err
	}
	return nil
}
