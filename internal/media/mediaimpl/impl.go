package mediaimpl

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/orgball2608/stories-engine/internal/media"
	"github.com/orgball2608/stories-engine/internal/ratelimit"
	"github.com/orgball2608/stories-engine/pkg/logger"
	"go.uber.org/fx"
)

// durationHeader is the object-store user metadata header the upload
// pipeline writes once it has probed the asset.
const durationHeader = "X-Amz-Meta-Duration-Ms"

// ProbeFunc fetches the playable duration of a media asset from its host.
type ProbeFunc func(ctx context.Context, mediaRef string) (time.Duration, error)

type Opts struct {
	fx.In

	Logger logger.Logger
}

type ResolverImpl struct {
	Logger  logger.Logger
	probe   ProbeFunc
	limiter ratelimit.Limiter

	mu    sync.Mutex
	cache map[string]time.Duration
}

func New(opts Opts) *ResolverImpl {
	return &ResolverImpl{
		Logger: opts.Logger,
		probe:  httpProbe(http.DefaultClient),
		// One probe per media host every 2 seconds, with a small burst for
		// viewer open bursts. Over-limit lookups report unknown and the
		// caller keeps its fallback.
		limiter: ratelimit.NewInMemoryLimiter(1, 2*time.Second, 5),
		cache:   make(map[string]time.Duration),
	}
}

var _ media.Resolver = (*ResolverImpl)(nil)

// WithProbe replaces the duration probe. Used by tests and by hosts that
// expose metadata through something other than HTTP headers.
func (r *ResolverImpl) WithProbe(probe ProbeFunc) *ResolverImpl {
	r.probe = probe
	return r
}

func (r *ResolverImpl) Resolve(ctx context.Context, mediaRef string) (time.Duration, error) {
	r.mu.Lock()
	if d, ok := r.cache[mediaRef]; ok {
		r.mu.Unlock()
		return d, nil
	}
	r.mu.Unlock()

	if !r.limiter.Allow(hostOf(mediaRef)) {
		return 0, media.ErrUnknown
	}

	d, err := r.probe(ctx, mediaRef)
	if err != nil {
		r.Logger.Debug("Media duration probe missed", "media_ref", mediaRef, "error", err)
		return 0, media.ErrUnknown
	}
	if d <= 0 {
		return 0, media.ErrUnknown
	}

	r.mu.Lock()
	r.cache[mediaRef] = d
	r.mu.Unlock()

	return d, nil
}

func hostOf(mediaRef string) string {
	u, err := url.Parse(mediaRef)
	if err != nil || u.Host == "" {
		return mediaRef
	}
	return u.Host
}

func httpProbe(client *http.Client) ProbeFunc {
	return func(ctx context.Context, mediaRef string) (time.Duration, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, mediaRef, nil)
		if err != nil {
			return 0, fmt.Errorf("failed to build probe request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return 0, fmt.Errorf("probe request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return 0, fmt.Errorf("probe returned status %d", resp.StatusCode)
		}

		raw := resp.Header.Get(durationHeader)
		if raw == "" {
			return 0, media.ErrUnknown
		}

		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms <= 0 {
			return 0, fmt.Errorf("bad %s header %q", durationHeader, raw)
		}

		return time.Duration(ms) * time.Millisecond, nil
	}
}
