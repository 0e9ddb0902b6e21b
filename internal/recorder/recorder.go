package recorder

import (
	"github.com/orgball2608/stories-engine/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=recorder.go -destination=mocks/mock.go

// Client records that a viewer has seen a story item.
//
// RecordView never blocks and never fails from the caller's point of view:
// the receipt write and the view-count increment are dispatched in the
// background, a duplicate receipt counts as success, and write failures are
// only logged. The item's in-memory ViewCount is bumped optimistically
// before dispatch; the authoritative value returns with the next refresh.
type Client interface {
	RecordView(viewerID string, item *domain.StoryItem)
}
