package navigatorimpl

import (
	"context"
	"fmt"

	"github.com/orgball2608/stories-engine/internal/navigator"
	"github.com/orgball2608/stories-engine/internal/player"
	"github.com/orgball2608/stories-engine/internal/reels"
	"github.com/orgball2608/stories-engine/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Reels  reels.Client
	Player *player.Player
	Logger logger.Logger
}

type NavigatorImpl struct {
	Reels  reels.Client
	Player *player.Player
	Logger logger.Logger
}

func New(opts Opts) *NavigatorImpl {
	return &NavigatorImpl{
		Reels:  opts.Reels,
		Player: opts.Player,
		Logger: opts.Logger,
	}
}

var _ navigator.Client = (*NavigatorImpl)(nil)

func (n *NavigatorImpl) OpenAuthor(ctx context.Context, viewerID, authorID string) error {
	groups, err := n.Reels.Refresh(ctx, viewerID)
	if err != nil {
		return fmt.Errorf("refresh story groups: %w", err)
	}

	if !n.Player.Open(groups, viewerID, authorID) {
		// Absent author at open time is a no-op, not an error: the group
		// may simply have expired between the tray render and the tap.
		n.Logger.Debug("No story group to open", "viewer_id", viewerID, "author_id", authorID)
	}
	return nil
}

func (n *NavigatorImpl) OpenItem(ctx context.Context, viewerID, authorID, itemID string) error {
	groups, err := n.Reels.Refresh(ctx, viewerID)
	if err != nil {
		return fmt.Errorf("refresh story groups: %w", err)
	}

	if !n.Player.OpenAt(groups, viewerID, authorID, itemID) {
		n.Logger.Debug("No story item to open", "viewer_id", viewerID, "author_id", authorID, "item_id", itemID)
	}
	return nil
}

func (n *NavigatorImpl) TapLeft()    { n.Player.Retreat() }
func (n *NavigatorImpl) TapRight()   { n.Player.Advance() }
func (n *NavigatorImpl) MediaEnded() { n.Player.Advance() }
func (n *NavigatorImpl) PressHold()  { n.Player.Pause() }
func (n *NavigatorImpl) Release()    { n.Player.Resume() }
func (n *NavigatorImpl) CloseViewer() { n.Player.Close() }

func (n *NavigatorImpl) DeleteCurrent(ctx context.Context) error {
	cur, ok := n.Player.Current()
	if !ok {
		return nil
	}

	viewerID, _ := n.Player.ViewerID()
	if cur.AuthorID != viewerID {
		return navigator.ErrNotOwner
	}

	return n.Player.DeleteCurrent(ctx)
}
