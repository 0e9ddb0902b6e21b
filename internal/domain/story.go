package domain

import "time"

type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// StoryItem is a single ephemeral media post. Duration stays zero until the
// media's real playable length is known; only videos ever get one.
type StoryItem struct {
	ID        string
	AuthorID  string
	MediaRef  string
	MediaKind MediaKind
	Duration  time.Duration
	ViewCount int
	CreatedAt time.Time
	ExpiresAt time.Time
}

// StoryGroup is all of one author's live items, treated as a single playback
// unit. Groups are derived on every refresh, own no identity beyond AuthorID
// and are only ever mutated in place when the viewer deletes an item.
type StoryGroup struct {
	AuthorID  string
	Items     []StoryItem
	HasViewed bool
}
