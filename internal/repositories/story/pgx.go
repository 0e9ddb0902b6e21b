package story

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/stories-engine/internal/domain"
	"github.com/orgball2608/stories-engine/internal/repository"
	"github.com/orgball2608/stories-engine/pkg/logger"
)

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

var itemColumns = []string{
	"id",
	"author_id",
	"media_ref",
	"media_kind",
	"duration_ms",
	"view_count",
	"created_at",
	"expires_at",
}

func (r *PgxRepository) ListLive(ctx context.Context, viewerID string) ([]domain.StoryItem, error) {
	// Visibility filtering (who the viewer follows) belongs to the
	// surrounding system; this repository only guarantees liveness and the
	// newest-first contract documented on the interface.
	query, args, err := repository.SqBuilder.
		Select(itemColumns...).
		From("stories").
		Where(sq.Gt{"expires_at": time.Now()}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, repository.ErrBadQuery
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query live stories: %w", err)
	}
	defer rows.Close()

	var items []domain.StoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story row: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating story rows: %w", err)
	}

	return items, nil
}

func (r *PgxRepository) GetByID(ctx context.Context, id string) (*domain.StoryItem, error) {
	query, args, err := repository.SqBuilder.
		Select(itemColumns...).
		From("stories").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, repository.ErrBadQuery
	}

	item, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get story by id: %w", err)
	}

	return item, nil
}

func (r *PgxRepository) Create(ctx context.Context, item domain.StoryItem) (*domain.StoryItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if item.ExpiresAt.IsZero() || item.ExpiresAt.After(item.CreatedAt.Add(MaxTTL)) {
		item.ExpiresAt = item.CreatedAt.Add(MaxTTL)
	}

	var durationMs *int64
	if item.Duration > 0 {
		ms := item.Duration.Milliseconds()
		durationMs = &ms
	}

	query, args, err := repository.SqBuilder.
		Insert("stories").
		Columns(itemColumns...).
		Values(
			item.ID,
			item.AuthorID,
			item.MediaRef,
			string(item.MediaKind),
			durationMs,
			item.ViewCount,
			item.CreatedAt,
			item.ExpiresAt,
		).ToSql()
	if err != nil {
		return nil, repository.ErrBadQuery
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return nil, errors.Join(err, ErrCannotCreate)
	}

	return &item, nil
}

func (r *PgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := repository.SqBuilder.
		Delete("stories").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return repository.ErrBadQuery
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete story %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PgxRepository) IncrementViewCount(ctx context.Context, id string) error {
	query, args, err := repository.SqBuilder.
		Update("stories").
		Set("view_count", sq.Expr("view_count + 1")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return repository.ErrBadQuery
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to increment view count for %s: %w", id, err)
	}

	return nil
}

func (r *PgxRepository) SetDuration(ctx context.Context, id string, d time.Duration) error {
	query, args, err := repository.SqBuilder.
		Update("stories").
		Set("duration_ms", d.Milliseconds()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return repository.ErrBadQuery
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to set duration for %s: %w", id, err)
	}

	return nil
}

func (r *PgxRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query, args, err := repository.SqBuilder.
		Delete("stories").
		Where(sq.LtOrEq{"expires_at": time.Now()}).
		ToSql()
	if err != nil {
		return 0, repository.ErrBadQuery
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired stories: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanItem(row pgx.Row) (*domain.StoryItem, error) {
	var (
		item       domain.StoryItem
		mediaKind  string
		durationMs *int64
	)
	err := row.Scan(
		&item.ID,
		&item.AuthorID,
		&item.MediaRef,
		&mediaKind,
		&durationMs,
		&item.ViewCount,
		&item.CreatedAt,
		&item.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	item.MediaKind = domain.MediaKind(mediaKind)
	if durationMs != nil {
		item.Duration = time.Duration(*durationMs) * time.Millisecond
	}

	return &item, nil
}
