package reelsimpl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orgball2608/stories-engine/internal/domain"
	"github.com/orgball2608/stories-engine/internal/repositories/story"
	"github.com/orgball2608/stories-engine/pkg/config"
	pkgerrors "github.com/orgball2608/stories-engine/pkg/errors"
	"github.com/orgball2608/stories-engine/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storyRepoStub struct {
	items   []domain.StoryItem
	listErr error
	created []domain.StoryItem
}

func (s *storyRepoStub) ListLive(context.Context, string) ([]domain.StoryItem, error) {
	return s.items, s.listErr
}

func (s *storyRepoStub) GetByID(context.Context, string) (*domain.StoryItem, error) {
	return nil, story.ErrNotFound
}

func (s *storyRepoStub) Create(_ context.Context, item domain.StoryItem) (*domain.StoryItem, error) {
	item.ID = "generated"
	s.created = append(s.created, item)
	return &item, nil
}

func (s *storyRepoStub) Delete(context.Context, string) error                      { return nil }
func (s *storyRepoStub) IncrementViewCount(context.Context, string) error          { return nil }
func (s *storyRepoStub) SetDuration(context.Context, string, time.Duration) error  { return nil }
func (s *storyRepoStub) DeleteExpired(context.Context) (int64, error)              { return 0, nil }

type receiptRepoStub struct {
	seen    map[string]struct{}
	listErr error
}

func (s *receiptRepoStub) Create(context.Context, domain.ViewReceipt) error { return nil }

func (s *receiptRepoStub) ListStoryIDs(context.Context, string) (map[string]struct{}, error) {
	return s.seen, s.listErr
}

func newReels(stories *storyRepoStub, receipts *receiptRepoStub) *ReelsImpl {
	cfg := &config.Config{}
	cfg.Sweep.IntervalMinutes = 15
	return New(Opts{
		StoryRepo:   stories,
		ReceiptRepo: receipts,
		Logger:      logger.NewNop(),
		Config:      cfg,
	})
}

func item(id, authorID string) domain.StoryItem {
	return domain.StoryItem{ID: id, AuthorID: authorID, MediaKind: domain.MediaKindImage}
}

func TestRefreshBuildsOrderedGroups(t *testing.T) {
	stories := &storyRepoStub{items: []domain.StoryItem{
		item("c1", "carol"),
		item("b1", "bob"),
		item("own1", "me"),
	}}
	receipts := &receiptRepoStub{seen: map[string]struct{}{"c1": {}}}

	groups, err := newReels(stories, receipts).Refresh(context.Background(), "me")
	require.NoError(t, err)

	require.Len(t, groups, 3)
	assert.Equal(t, "me", groups[0].AuthorID)
	assert.Equal(t, "bob", groups[1].AuthorID)
	assert.Equal(t, "carol", groups[2].AuthorID)
	assert.True(t, groups[2].HasViewed)
}

func TestRefreshPropagatesRepositoryErrors(t *testing.T) {
	stories := &storyRepoStub{listErr: errors.New("connection refused")}
	_, err := newReels(stories, &receiptRepoStub{}).Refresh(context.Background(), "me")
	require.Error(t, err)

	receipts := &receiptRepoStub{listErr: errors.New("connection refused")}
	_, err = newReels(&storyRepoStub{items: []domain.StoryItem{item("a1", "alice")}}, receipts).
		Refresh(context.Background(), "me")
	require.Error(t, err)
}

func TestRefreshEmptyStoreYieldsNoGroups(t *testing.T) {
	groups, err := newReels(&storyRepoStub{}, &receiptRepoStub{}).Refresh(context.Background(), "me")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestPostStoryValidatesInput(t *testing.T) {
	r := newReels(&storyRepoStub{}, &receiptRepoStub{})

	_, err := r.PostStory(context.Background(), "", "https://cdn.example.com/a.jpg", domain.MediaKindImage, time.Hour)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)

	_, err = r.PostStory(context.Background(), "alice", "https://cdn.example.com/a.gif", "gif", time.Hour)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
}

func TestPostStoryClampsTTL(t *testing.T) {
	stories := &storyRepoStub{}
	r := newReels(stories, &receiptRepoStub{})

	created, err := r.PostStory(context.Background(), "alice", "https://cdn.example.com/a.jpg", domain.MediaKindImage, 100*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, story.MaxTTL, created.ExpiresAt.Sub(created.CreatedAt))

	created, err = r.PostStory(context.Background(), "alice", "https://cdn.example.com/b.jpg", domain.MediaKindImage, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, created.ExpiresAt.Sub(created.CreatedAt))
}
