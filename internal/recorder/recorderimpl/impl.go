package recorderimpl

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/stories-engine/internal/domain"
	"github.com/orgball2608/stories-engine/internal/recorder"
	"github.com/orgball2608/stories-engine/internal/repositories/receipt"
	"github.com/orgball2608/stories-engine/internal/repositories/story"
	"github.com/orgball2608/stories-engine/pkg/logger"
	"github.com/orgball2608/stories-engine/pkg/retry"
	"go.uber.org/fx"
)

const persistTimeout = 5 * time.Second

type Opts struct {
	fx.In

	StoryRepo   story.Repository
	ReceiptRepo receipt.Repository
	Logger      logger.Logger
}

type RecorderImpl struct {
	StoryRepo   story.Repository
	ReceiptRepo receipt.Repository
	Logger      logger.Logger
}

func New(opts Opts) *RecorderImpl {
	return &RecorderImpl{
		StoryRepo:   opts.StoryRepo,
		ReceiptRepo: opts.ReceiptRepo,
		Logger:      opts.Logger,
	}
}

var _ recorder.Client = (*RecorderImpl)(nil)

func (r *RecorderImpl) RecordView(viewerID string, item *domain.StoryItem) {
	if item == nil || viewerID == "" || viewerID == item.AuthorID {
		return
	}

	// Optimistic bump for immediate UI reflection only. Never written back;
	// the next refresh replaces it with the store's value.
	item.ViewCount++

	storyID := item.ID
	go r.persist(storyID, viewerID)
}

func (r *RecorderImpl) persist(storyID, viewerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	var duplicate bool
	err := retry.Do(ctx, r.Logger, "create view receipt", func() error {
		err := r.ReceiptRepo.Create(ctx, domain.ViewReceipt{
			StoryID:  storyID,
			ViewerID: viewerID,
			ViewedAt: time.Now(),
		})
		if errors.Is(err, receipt.ErrAlreadyExists) {
			duplicate = true
			return nil
		}
		return err
	}, retry.DefaultConfig())
	if err != nil {
		r.Logger.Warn("Giving up on view receipt", "story_id", storyID, "viewer_id", viewerID, "error", err)
		return
	}

	if duplicate {
		r.Logger.Debug("View receipt already recorded", "story_id", storyID, "viewer_id", viewerID)
		return
	}

	// Single attempt: the count is a best-effort aggregate, a missed
	// increment is reconciled by whatever rebuilds counts offline.
	if err := r.StoryRepo.IncrementViewCount(ctx, storyID); err != nil {
		r.Logger.Warn("Failed to increment view count", "story_id", storyID, "error", err)
	}
}
