package navigator

import (
	"context"
	"errors"
)

// ErrNotOwner is returned when a viewer tries to delete somebody else's
// story.
var ErrNotOwner = errors.New("only the author can delete a story")

//go:generate go run go.uber.org/mock/mockgen -source=navigator.go -destination=mocks/mock.go

// Client translates viewer gestures into playback transitions. It is the
// only collaborator that drives the player; transitions are applied in the
// order the gestures arrive.
type Client interface {
	// OpenAuthor refreshes the viewer's story groups and opens the viewer
	// on the given author's first item. Unknown authors are a no-op.
	OpenAuthor(ctx context.Context, viewerID, authorID string) error
	// OpenItem is OpenAuthor for deep links: playback starts on a specific
	// item instead of the group's first.
	OpenItem(ctx context.Context, viewerID, authorID, itemID string) error

	TapLeft()
	TapRight()
	// MediaEnded reports natural end-of-media for video and advances like a
	// right tap.
	MediaEnded()
	PressHold()
	Release()
	CloseViewer()

	// DeleteCurrent removes the item now playing. Only the item's author
	// may delete it.
	DeleteCurrent(ctx context.Context) error
}
