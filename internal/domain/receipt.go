package domain

import "time"

// ViewReceipt records that a viewer has seen a story item. The backing store
// keeps it unique per (StoryID, ViewerID); one is never created for the
// item's own author.
type ViewReceipt struct {
	StoryID  string
	ViewerID string
	ViewedAt time.Time
}
