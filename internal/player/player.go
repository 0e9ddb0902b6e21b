package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"

	"github.com/orgball2608/stories-engine/internal/domain"
	"github.com/orgball2608/stories-engine/internal/media"
	"github.com/orgball2608/stories-engine/internal/recorder"
	"github.com/orgball2608/stories-engine/internal/repositories/story"
	"github.com/orgball2608/stories-engine/pkg/config"
	"github.com/orgball2608/stories-engine/pkg/logger"
)

// ErrClosed is returned by operations that need an open viewer session.
var ErrClosed = errors.New("viewer is closed")

// State names the phase of the playback state machine.
type State string

const (
	StateClosed  State = "closed"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

const resolveTimeout = 10 * time.Second

type Opts struct {
	fx.In

	Recorder  recorder.Client
	Resolver  media.Resolver
	StoryRepo story.Repository
	Logger    logger.Logger
	Config    *config.Config
	Clock     clockwork.Clock
}

// Player owns the single open viewer session and the timer that drives
// auto-advance. All methods are safe for concurrent use; transitions are
// applied strictly in call order under one mutex, and at most one timer is
// live at any instant.
type Player struct {
	recorder  recorder.Client
	resolver  media.Resolver
	storyRepo story.Repository
	logger    logger.Logger
	clock     clockwork.Clock

	tick          time.Duration
	imageDuration time.Duration
	videoFallback time.Duration

	mu sync.Mutex
	s  *session
}

// session is the in-memory state of one open full-screen playback. It exists
// only between Open and Close and is never persisted. The group list is a
// snapshot: refreshes during an open session are not picked up until the
// next Open.
type session struct {
	viewerID   string
	groups     []domain.StoryGroup
	groupIndex int
	itemIndex  int
	elapsed    time.Duration
	paused     bool
	revised    map[string]time.Duration

	// Owned timer handle. Both fields are set while a timer runs and nil
	// otherwise; releasing them is idempotent and happens on every path
	// that leaves Playing.
	stop   chan struct{}
	ticker clockwork.Ticker
}

func New(opts Opts) *Player {
	return &Player{
		recorder:      opts.Recorder,
		resolver:      opts.Resolver,
		storyRepo:     opts.StoryRepo,
		logger:        opts.Logger,
		clock:         opts.Clock,
		tick:          time.Duration(opts.Config.Player.TickMs) * time.Millisecond,
		imageDuration: time.Duration(opts.Config.Player.ImageDurationMs) * time.Millisecond,
		videoFallback: time.Duration(opts.Config.Player.VideoFallbackMs) * time.Millisecond,
	}
}

// Open starts playback on the first item of authorID's group. It reports
// whether a session was opened; when the author has no group the player
// stays in its prior state.
func (p *Player) Open(groups []domain.StoryGroup, viewerID, authorID string) bool {
	return p.open(groups, viewerID, authorID, "")
}

// OpenAt starts playback on a specific item inside authorID's group, for
// deep links. No-op when either the author or the item is absent.
func (p *Player) OpenAt(groups []domain.StoryGroup, viewerID, authorID, itemID string) bool {
	return p.open(groups, viewerID, authorID, itemID)
}

func (p *Player) open(groups []domain.StoryGroup, viewerID, authorID, itemID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	groupIndex := -1
	for i := range groups {
		if groups[i].AuthorID == authorID {
			groupIndex = i
			break
		}
	}
	if groupIndex < 0 || len(groups[groupIndex].Items) == 0 {
		return false
	}

	itemIndex := 0
	if itemID != "" {
		itemIndex = -1
		for i := range groups[groupIndex].Items {
			if groups[groupIndex].Items[i].ID == itemID {
				itemIndex = i
				break
			}
		}
		if itemIndex < 0 {
			return false
		}
	}

	p.stopTimerLocked()
	p.s = &session{
		viewerID:   viewerID,
		groups:     groups,
		groupIndex: groupIndex,
		itemIndex:  itemIndex,
		revised:    make(map[string]time.Duration),
	}
	p.enterItemLocked()
	return true
}

// Pause freezes progress and stops the timer. Idempotent.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.s == nil || p.s.paused {
		return
	}
	p.s.paused = true
	p.stopTimerLocked()
}

// Resume restarts the timer, accumulating from the frozen elapsed time.
// Idempotent.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.s == nil || !p.s.paused {
		return
	}
	p.s.paused = false
	p.startTimerLocked()
}

// Advance moves to the next item, crossing into the next group at the end of
// the current one and closing the viewer past the last group.
func (p *Player) Advance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advanceLocked()
}

// Retreat moves to the previous item, crossing to the previous group's last
// item at a group start. A no-op on the very first item.
func (p *Player) Retreat() {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.s
	if s == nil {
		return
	}
	switch {
	case s.itemIndex > 0:
		s.itemIndex--
	case s.groupIndex > 0:
		s.groupIndex--
		s.itemIndex = len(s.groups[s.groupIndex].Items) - 1
	default:
		return
	}
	p.restartLocked()
}

// Close tears the session down from any state and releases the timer.
// Idempotent.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

// DeleteCurrent removes the item now playing, store first. On a store
// failure the item stays in place and the error is returned; the user's view
// of the group never runs ahead of the repository.
func (p *Player) DeleteCurrent(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.s
	if s == nil {
		return ErrClosed
	}

	cur := p.currentLocked()
	if err := p.storyRepo.Delete(ctx, cur.ID); err != nil {
		return fmt.Errorf("delete story %s: %w", cur.ID, err)
	}

	group := &s.groups[s.groupIndex]
	group.Items = append(group.Items[:s.itemIndex], group.Items[s.itemIndex+1:]...)

	if len(group.Items) == 0 {
		s.groups = append(s.groups[:s.groupIndex], s.groups[s.groupIndex+1:]...)
		if s.groupIndex >= len(s.groups) {
			p.closeLocked()
			return nil
		}
		s.itemIndex = 0
	} else if s.itemIndex >= len(group.Items) {
		// Deleted the last item of a still-populated group: clamp to the
		// new last item rather than crossing into the next group.
		s.itemIndex = len(group.Items) - 1
	}

	p.restartLocked()
	return nil
}

// ReviseDuration applies a freshly learned duration for an item in the open
// session without resetting elapsed progress. If playback has already passed
// the new duration, the next tick advances.
func (p *Player) ReviseDuration(itemID string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.s == nil || d <= 0 {
		return
	}
	p.s.revised[itemID] = d
}

// State reports the machine's phase.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.s == nil:
		return StateClosed
	case p.s.paused:
		return StatePaused
	default:
		return StatePlaying
	}
}

// Current returns a copy of the item now playing.
func (p *Player) Current() (domain.StoryItem, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.s == nil {
		return domain.StoryItem{}, false
	}
	return *p.currentLocked(), true
}

// ViewerID reports who the open session belongs to.
func (p *Player) ViewerID() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.s == nil {
		return "", false
	}
	return p.s.viewerID, true
}

// Position reports the session's indices into the ordered group list.
func (p *Player) Position() (groupIndex, itemIndex int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.s == nil {
		return 0, 0, false
	}
	return p.s.groupIndex, p.s.itemIndex, true
}

// Progress reports per-item progress ratios for the open group: 1 for items
// already played, 0 for items not yet reached, the live ratio for the
// current item. Holds continuously, including during transitions.
func (p *Player) Progress() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.s == nil {
		return nil
	}
	items := p.s.groups[p.s.groupIndex].Items
	out := make([]float64, len(items))
	for i := range items {
		switch {
		case i < p.s.itemIndex:
			out[i] = 1
		case i > p.s.itemIndex:
			out[i] = 0
		default:
			ratio := float64(p.s.elapsed) / float64(p.durationLocked(&items[i]))
			if ratio > 1 {
				ratio = 1
			}
			out[i] = ratio
		}
	}
	return out
}

func (p *Player) advanceLocked() {
	s := p.s
	if s == nil {
		return
	}
	switch {
	case s.itemIndex+1 < len(s.groups[s.groupIndex].Items):
		s.itemIndex++
	case s.groupIndex+1 < len(s.groups):
		s.groupIndex++
		s.itemIndex = 0
	default:
		p.closeLocked()
		return
	}
	p.restartLocked()
}

// restartLocked re-enters the current item: progress reset, view recorded,
// timer restarted. Used by every transition that lands on an item.
func (p *Player) restartLocked() {
	p.s.elapsed = 0
	p.s.paused = false
	p.stopTimerLocked()
	p.enterItemLocked()
}

func (p *Player) enterItemLocked() {
	p.recorder.RecordView(p.s.viewerID, p.currentLocked())
	p.resolveCurrentLocked()
	p.startTimerLocked()
}

func (p *Player) closeLocked() {
	p.stopTimerLocked()
	p.s = nil
}

func (p *Player) currentLocked() *domain.StoryItem {
	return &p.s.groups[p.s.groupIndex].Items[p.s.itemIndex]
}

func (p *Player) durationLocked(item *domain.StoryItem) time.Duration {
	if item.MediaKind == domain.MediaKindImage {
		return p.imageDuration
	}
	if d, ok := p.s.revised[item.ID]; ok {
		return d
	}
	if item.Duration > 0 {
		return item.Duration
	}
	return p.videoFallback
}

func (p *Player) startTimerLocked() {
	stop := make(chan struct{})
	ticker := p.clock.NewTicker(p.tick)
	p.s.stop = stop
	p.s.ticker = ticker

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				p.onTick(stop)
			}
		}
	}()
}

// stopTimerLocked releases the active timer, synchronously. Safe to call on
// every exit path; stopping an already-stopped timer is a no-op.
func (p *Player) stopTimerLocked() {
	if p.s == nil || p.s.stop == nil {
		return
	}
	close(p.s.stop)
	p.s.ticker.Stop()
	p.s.stop = nil
	p.s.ticker = nil
}

func (p *Player) onTick(stop chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// A tick can race the transition that released its timer; the handle
	// identity tells a live tick from a ghost one.
	if p.s == nil || p.s.stop != stop || p.s.paused {
		return
	}
	p.s.elapsed += p.tick
	if p.s.elapsed >= p.durationLocked(p.currentLocked()) {
		p.advanceLocked()
	}
}

// resolveCurrentLocked kicks off duration resolution for the item just
// entered, when it is a video without a known duration. The result is
// applied mid-playback and persisted so later sessions skip the probe.
func (p *Player) resolveCurrentLocked() {
	cur := *p.currentLocked()
	if cur.MediaKind != domain.MediaKindVideo || cur.Duration > 0 {
		return
	}
	if _, ok := p.s.revised[cur.ID]; ok {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		defer cancel()

		d, err := p.resolver.Resolve(ctx, cur.MediaRef)
		if err != nil {
			if !errors.Is(err, media.ErrUnknown) {
				p.logger.Warn("Failed to resolve media duration", "media_ref", cur.MediaRef, "error", err)
			}
			return
		}

		p.ReviseDuration(cur.ID, d)
		if err := p.storyRepo.SetDuration(ctx, cur.ID, d); err != nil {
			p.logger.Warn("Failed to persist media duration", "story_id", cur.ID, "error", err)
		}
	}()
}
