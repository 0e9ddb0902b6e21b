package media

import (
	"context"
	"errors"
	"time"
)

// ErrUnknown means the media's duration has not been determined yet. It is
// the normal answer until metadata has loaded, not a failure.
var ErrUnknown = errors.New("media duration unknown")

//go:generate go run go.uber.org/mock/mockgen -source=media.go -destination=mocks/mock.go

// Resolver reports the playable duration of a media asset. Resolution is
// best effort and asynchronous from the player's point of view: callers keep
// a fallback duration until a real one arrives.
type Resolver interface {
	Resolve(ctx context.Context, mediaRef string) (time.Duration, error)
}
