package analyzer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/expo-enrich/internal/fusion"
	"github.com/sells-group/expo-enrich/internal/model"
	"github.com/sells-group/expo-enrich/internal/store"
)

// linkedInCacheTTL keeps discovered URLs across resumed runs for a week.
const linkedInCacheTTL = 7 * 24 * time.Hour

type cachedDiscovery struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// LinkedIn discovers company LinkedIn URLs. There is no primary-API tier
// for discovery — the API itself is keyed by LinkedIn URL — so every
// company without a URL goes straight to the fallback chain.
type LinkedIn struct {
	engine *fusion.Engine
	cache  *store.Cache // may be nil
	opts   Options
}

// NewLinkedIn creates the LinkedIn-discovery analyzer.
func NewLinkedIn(engine *fusion.Engine, cache *store.Cache, opts Options) *LinkedIn {
	return &LinkedIn{engine: engine, cache: cache, opts: opts}
}

// Process discovers a LinkedIn URL for every company that lacks one.
// Companies that already carry a URL are left untouched, which makes
// re-running the stage after a resume a no-op for them.
func (a *LinkedIn) Process(ctx context.Context, companies []*model.Company) Summary {
	summary := newSummary("linkedin")

	for _, c := range companies {
		summary.Processed++
		log := zap.L().With(zap.String("company", c.Name), zap.String("stage", "linkedin"))

		if c.LinkedInURL != "" {
			summary.Successful++
			summary.flag("already_present")
			continue
		}

		if hit := a.fromCache(ctx, c); hit {
			summary.Successful++
			summary.flag("cache_hit")
			continue
		}

		res := a.engine.Fuse(ctx, *c, nil, model.DimensionLinkedIn)
		summary.Escalated++
		if res.Found && c.SetLinkedInURL(res.LinkedInURL, strings.Join(res.Sources, ";")) {
			summary.Successful++
			summary.flag("discovered")
			a.toCache(ctx, c)
			log.Info("linkedin url discovered",
				zap.String("url", c.LinkedInURL),
				zap.Strings("sources", res.Sources),
				zap.Float64("confidence", res.Confidence),
			)
		} else {
			summary.flag("not_found")
			log.Info("no linkedin url found")
		}

		a.opts.pause(ctx, true)
		if ctx.Err() != nil {
			break
		}
	}

	return summary
}

func (a *LinkedIn) fromCache(ctx context.Context, c *model.Company) bool {
	if a.cache == nil {
		return false
	}
	data, ok, err := a.cache.Get(ctx, "linkedin", strings.ToLower(c.Name))
	if err != nil {
		zap.L().Debug("linkedin: cache lookup failed", zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	var cached cachedDiscovery
	if err := json.Unmarshal(data, &cached); err != nil {
		return false
	}
	return c.SetLinkedInURL(cached.URL, cached.Source)
}

func (a *LinkedIn) toCache(ctx context.Context, c *model.Company) {
	if a.cache == nil {
		return
	}
	data, err := json.Marshal(cachedDiscovery{URL: c.LinkedInURL, Source: c.LinkedInSource})
	if err != nil {
		return
	}
	if err := a.cache.Put(ctx, "linkedin", strings.ToLower(c.Name), data, linkedInCacheTTL); err != nil {
		zap.L().Debug("linkedin: cache write failed", zap.Error(err))
	}
}
