package reels

import (
	"context"
	"time"

	"github.com/orgball2608/stories-engine/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=reels.go -destination=mocks/mock.go

// Client is the story-tray service: it assembles ordered story groups for a
// viewer, accepts new stories from the authoring flow, and keeps the store
// free of expired rows.
type Client interface {
	// Refresh recomputes the viewer's ordered story groups from scratch.
	// An open playback session keeps its own snapshot; refreshed groups
	// only take effect on the next open.
	Refresh(ctx context.Context, viewerID string) ([]domain.StoryGroup, error)

	// PostStory stores a new story item. A non-positive or over-long ttl is
	// clamped to the 24h maximum.
	PostStory(ctx context.Context, authorID, mediaRef string, kind domain.MediaKind, ttl time.Duration) (*domain.StoryItem, error)

	// ScheduleExpirySweep starts the periodic job that hard-deletes expired
	// stories. It runs until ctx is cancelled.
	ScheduleExpirySweep(ctx context.Context) error
}
