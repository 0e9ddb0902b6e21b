package receipt

import (
	"context"
	"errors"

	"github.com/orgball2608/stories-engine/internal/domain"
)

var ErrAlreadyExists = errors.New("view receipt already exists")
var ErrCannotCreate = errors.New("error create view receipt")

//go:generate go run go.uber.org/mock/mockgen -source=receipt.go -destination=mocks/mock.go

// Repository persists view receipts. Uniqueness on (story_id, viewer_id) is
// enforced by the store; Create reports a duplicate as ErrAlreadyExists and
// callers are expected to treat that as success.
type Repository interface {
	Create(ctx context.Context, receipt domain.ViewReceipt) error
	ListStoryIDs(ctx context.Context, viewerID string) (map[string]struct{}, error)
}
