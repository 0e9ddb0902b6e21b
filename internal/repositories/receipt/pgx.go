package receipt

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/stories-engine/internal/domain"
	"github.com/orgball2608/stories-engine/internal/repository"
	"github.com/orgball2608/stories-engine/pkg/logger"
)

// uniqueViolation is the postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

type PgxRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPgxRepository(pool *pgxpool.Pool, logger logger.Logger) *PgxRepository {
	return &PgxRepository{
		pool:   pool,
		logger: logger,
	}
}

var _ Repository = (*PgxRepository)(nil)

func (r *PgxRepository) Create(ctx context.Context, receipt domain.ViewReceipt) error {
	viewedAt := receipt.ViewedAt
	if viewedAt.IsZero() {
		viewedAt = time.Now()
	}

	query, args, err := repository.SqBuilder.
		Insert("view_receipts").
		Columns("story_id", "viewer_id", "viewed_at").
		Values(receipt.StoryID, receipt.ViewerID, viewedAt).
		ToSql()
	if err != nil {
		return repository.ErrBadQuery
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyExists
		}
		return errors.Join(err, ErrCannotCreate)
	}

	return nil
}

func (r *PgxRepository) ListStoryIDs(ctx context.Context, viewerID string) (map[string]struct{}, error) {
	query, args, err := repository.SqBuilder.
		Select("story_id").
		From("view_receipts").
		Where(sq.Eq{"viewer_id": viewerID}).
		ToSql()
	if err != nil {
		return nil, repository.ErrBadQuery
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query view receipts: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var storyID string
		if err := rows.Scan(&storyID); err != nil {
			return nil, fmt.Errorf("failed to scan view receipt row: %w", err)
		}
		seen[storyID] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating view receipt rows: %w", err)
	}

	return seen, nil
}
