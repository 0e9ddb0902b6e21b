package story

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/stories-engine/internal/domain"
)

var ErrNotFound = errors.New("story not found")
var ErrCannotCreate = errors.New("error create story")

// MaxTTL caps how far in the future a story may expire.
const MaxTTL = 24 * time.Hour

//go:generate go run go.uber.org/mock/mockgen -source=story.go -destination=mocks/mock.go

// Repository persists story items.
//
// ListLive returns un-expired items ordered by created_at DESC. The DESC
// order is a declared contract, not an accident: the grouping engine inherits
// it as the within-group playback order, so playback starts from the newest
// item. Changing it changes which item plays first in the viewer.
type Repository interface {
	ListLive(ctx context.Context, viewerID string) ([]domain.StoryItem, error)
	GetByID(ctx context.Context, id string) (*domain.StoryItem, error)
	Create(ctx context.Context, item domain.StoryItem) (*domain.StoryItem, error)
	Delete(ctx context.Context, id string) error
	IncrementViewCount(ctx context.Context, id string) error
	SetDuration(ctx context.Context, id string, d time.Duration) error
	DeleteExpired(ctx context.Context) (int64, error)
}
