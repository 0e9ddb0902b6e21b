package navigatorimpl

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgball2608/stories-engine/internal/domain"
	"github.com/orgball2608/stories-engine/internal/media"
	"github.com/orgball2608/stories-engine/internal/navigator"
	"github.com/orgball2608/stories-engine/internal/player"
	"github.com/orgball2608/stories-engine/pkg/config"
	"github.com/orgball2608/stories-engine/pkg/logger"
)

type reelsStub struct {
	groups []domain.StoryGroup
	err    error
}

func (r *reelsStub) Refresh(context.Context, string) ([]domain.StoryGroup, error) {
	return r.groups, r.err
}

func (r *reelsStub) PostStory(context.Context, string, string, domain.MediaKind, time.Duration) (*domain.StoryItem, error) {
	return nil, nil
}

func (r *reelsStub) ScheduleExpirySweep(context.Context) error { return nil }

type recorderStub struct{}

func (recorderStub) RecordView(string, *domain.StoryItem) {}

type resolverStub struct{}

func (resolverStub) Resolve(context.Context, string) (time.Duration, error) {
	return 0, media.ErrUnknown
}

type storyRepoStub struct {
	mu      sync.Mutex
	deleted []string
}

func (s *storyRepoStub) ListLive(context.Context, string) ([]domain.StoryItem, error) {
	return nil, nil
}

func (s *storyRepoStub) GetByID(context.Context, string) (*domain.StoryItem, error) {
	return nil, nil
}

func (s *storyRepoStub) Create(_ context.Context, item domain.StoryItem) (*domain.StoryItem, error) {
	return &item, nil
}

func (s *storyRepoStub) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *storyRepoStub) IncrementViewCount(context.Context, string) error         { return nil }
func (s *storyRepoStub) SetDuration(context.Context, string, time.Duration) error { return nil }
func (s *storyRepoStub) DeleteExpired(context.Context) (int64, error)             { return 0, nil }

func newNavigator(reelsClient *reelsStub) (*NavigatorImpl, *player.Player) {
	cfg := &config.Config{}
	cfg.Player.TickMs = 50
	cfg.Player.ImageDurationMs = 5000
	cfg.Player.VideoFallbackMs = 15000

	p := player.New(player.Opts{
		Recorder:  recorderStub{},
		Resolver:  resolverStub{},
		StoryRepo: &storyRepoStub{},
		Logger:    logger.NewNop(),
		Config:    cfg,
		Clock:     clockwork.NewFakeClock(),
	})

	nav := New(Opts{
		Reels:  reelsClient,
		Player: p,
		Logger: logger.NewNop(),
	})
	return nav, p
}

func img(id, author string) domain.StoryItem {
	return domain.StoryItem{ID: id, AuthorID: author, MediaKind: domain.MediaKindImage}
}

func testGroups() []domain.StoryGroup {
	return []domain.StoryGroup{
		{AuthorID: "me", Items: []domain.StoryItem{img("own1", "me")}},
		{AuthorID: "bob", Items: []domain.StoryItem{img("b1", "bob"), img("b2", "bob")}},
	}
}

func TestOpenAuthorStartsPlayback(t *testing.T) {
	nav, p := newNavigator(&reelsStub{groups: testGroups()})

	require.NoError(t, nav.OpenAuthor(context.Background(), "me", "bob"))

	cur, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "b1", cur.ID)
	assert.Equal(t, player.StatePlaying, p.State())
}

func TestOpenAuthorRefreshFailure(t *testing.T) {
	nav, p := newNavigator(&reelsStub{err: errors.New("store down")})

	require.Error(t, nav.OpenAuthor(context.Background(), "me", "bob"))
	assert.Equal(t, player.StateClosed, p.State())
}

func TestOpenAuthorUnknownAuthorIsNoop(t *testing.T) {
	nav, p := newNavigator(&reelsStub{groups: testGroups()})

	require.NoError(t, nav.OpenAuthor(context.Background(), "me", "stranger"))
	assert.Equal(t, player.StateClosed, p.State())
}

func TestOpenItemDeepLink(t *testing.T) {
	nav, p := newNavigator(&reelsStub{groups: testGroups()})

	require.NoError(t, nav.OpenItem(context.Background(), "me", "bob", "b2"))

	cur, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "b2", cur.ID)
}

func TestGestureMapping(t *testing.T) {
	nav, p := newNavigator(&reelsStub{groups: testGroups()})
	require.NoError(t, nav.OpenAuthor(context.Background(), "me", "bob"))

	nav.TapRight()
	cur, _ := p.Current()
	assert.Equal(t, "b2", cur.ID)

	nav.TapLeft()
	cur, _ = p.Current()
	assert.Equal(t, "b1", cur.ID)

	nav.MediaEnded()
	cur, _ = p.Current()
	assert.Equal(t, "b2", cur.ID)

	nav.PressHold()
	assert.Equal(t, player.StatePaused, p.State())

	nav.Release()
	assert.Equal(t, player.StatePlaying, p.State())

	nav.CloseViewer()
	assert.Equal(t, player.StateClosed, p.State())
}

func TestDeleteCurrentRequiresOwnership(t *testing.T) {
	nav, p := newNavigator(&reelsStub{groups: testGroups()})
	require.NoError(t, nav.OpenAuthor(context.Background(), "me", "bob"))

	err := nav.DeleteCurrent(context.Background())
	assert.ErrorIs(t, err, navigator.ErrNotOwner)

	cur, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "b1", cur.ID, "a rejected delete leaves playback untouched")
}

func TestDeleteCurrentOwnItem(t *testing.T) {
	nav, p := newNavigator(&reelsStub{groups: testGroups()})
	require.NoError(t, nav.OpenAuthor(context.Background(), "me", "me"))

	require.NoError(t, nav.DeleteCurrent(context.Background()))

	cur, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "b1", cur.ID, "deleting the only own item moves on to the next group")
}

func TestDeleteCurrentClosedViewerIsNoop(t *testing.T) {
	nav, _ := newNavigator(&reelsStub{groups: testGroups()})
	assert.NoError(t, nav.DeleteCurrent(context.Background()))
}
