package reelsimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/orgball2608/stories-engine/internal/domain"
	"github.com/orgball2608/stories-engine/internal/grouping"
	"github.com/orgball2608/stories-engine/internal/reels"
	"github.com/orgball2608/stories-engine/internal/repositories/receipt"
	"github.com/orgball2608/stories-engine/internal/repositories/story"
	"github.com/orgball2608/stories-engine/pkg/config"
	pkgerrors "github.com/orgball2608/stories-engine/pkg/errors"
	"github.com/orgball2608/stories-engine/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	StoryRepo   story.Repository
	ReceiptRepo receipt.Repository
	Logger      logger.Logger
	Config      *config.Config
}

type ReelsImpl struct {
	StoryRepo   story.Repository
	ReceiptRepo receipt.Repository
	Logger      logger.Logger
	Config      *config.Config
}

func New(opts Opts) *ReelsImpl {
	return &ReelsImpl{
		StoryRepo:   opts.StoryRepo,
		ReceiptRepo: opts.ReceiptRepo,
		Logger:      opts.Logger,
		Config:      opts.Config,
	}
}

var _ reels.Client = (*ReelsImpl)(nil)

func (r *ReelsImpl) Refresh(ctx context.Context, viewerID string) ([]domain.StoryGroup, error) {
	items, err := r.StoryRepo.ListLive(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list live stories: %w", err)
	}

	seen, err := r.ReceiptRepo.ListStoryIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list view receipts: %w", err)
	}

	return grouping.Build(items, seen, viewerID), nil
}

func (r *ReelsImpl) PostStory(ctx context.Context, authorID, mediaRef string, kind domain.MediaKind, ttl time.Duration) (*domain.StoryItem, error) {
	if authorID == "" || mediaRef == "" {
		return nil, pkgerrors.Wrap(pkgerrors.ErrInvalidInput, "author and media ref are required")
	}
	if kind != domain.MediaKindImage && kind != domain.MediaKindVideo {
		return nil, pkgerrors.Wrap(pkgerrors.ErrInvalidInput, fmt.Sprintf("unsupported media kind %q", kind))
	}

	if ttl <= 0 || ttl > story.MaxTTL {
		ttl = story.MaxTTL
	}

	now := time.Now()
	item, err := r.StoryRepo.Create(ctx, domain.StoryItem{
		AuthorID:  authorID,
		MediaRef:  mediaRef,
		MediaKind: kind,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}

	r.Logger.Info("Story posted", "story_id", item.ID, "author_id", authorID, "expires_at", item.ExpiresAt)
	return item, nil
}
