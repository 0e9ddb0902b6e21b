package mediaimpl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orgball2608/stories-engine/internal/media"
	"github.com/orgball2608/stories-engine/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(probe ProbeFunc) *ResolverImpl {
	return New(Opts{Logger: logger.NewNop()}).WithProbe(probe)
}

func TestResolveCachesProbeResult(t *testing.T) {
	calls := 0
	resolver := newResolver(func(ctx context.Context, mediaRef string) (time.Duration, error) {
		calls++
		return 8 * time.Second, nil
	})

	d, err := resolver.Resolve(context.Background(), "https://cdn.example.com/v1.mp4")
	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, d)

	d, err = resolver.Resolve(context.Background(), "https://cdn.example.com/v1.mp4")
	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, d)
	assert.Equal(t, 1, calls, "cache hit must not probe again")
}

func TestResolveProbeMissReportsUnknown(t *testing.T) {
	resolver := newResolver(func(ctx context.Context, mediaRef string) (time.Duration, error) {
		return 0, errors.New("metadata not loaded")
	})

	_, err := resolver.Resolve(context.Background(), "https://cdn.example.com/v2.mp4")
	assert.ErrorIs(t, err, media.ErrUnknown)
}

func TestResolveRateLimitedPerHost(t *testing.T) {
	resolver := newResolver(func(ctx context.Context, mediaRef string) (time.Duration, error) {
		return 0, media.ErrUnknown
	})

	// Burn through the per-host burst with probe misses; the limiter must
	// then short-circuit without probing.
	for i := 0; i < 5; i++ {
		_, err := resolver.Resolve(context.Background(), "https://cdn.example.com/miss.mp4")
		assert.ErrorIs(t, err, media.ErrUnknown)
	}

	probed := false
	resolver.WithProbe(func(ctx context.Context, mediaRef string) (time.Duration, error) {
		probed = true
		return time.Second, nil
	})

	_, err := resolver.Resolve(context.Background(), "https://cdn.example.com/miss.mp4")
	assert.ErrorIs(t, err, media.ErrUnknown)
	assert.False(t, probed, "over-limit lookups must not reach the host")
}
