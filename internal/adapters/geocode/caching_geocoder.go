package geocode

import (
	"context"
	"ev-route-planner/internal/domain"
	"ev-route-planner/internal/platform/metrics"
	"ev-route-planner/internal/ports"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// CachingGeocoder checks a persistent suggestion cache before calling the
// wrapped geocoder and collapses identical concurrent queries into one call.
type CachingGeocoder struct {
	next  ports.Geocoder
	cache ports.SuggestionCache
	group singleflight.Group
}

func NewCachingGeocoder(next ports.Geocoder, cache ports.SuggestionCache) *CachingGeocoder {
	return &CachingGeocoder{next: next, cache: cache}
}

func (g *CachingGeocoder) Search(ctx context.Context, query string) ([]domain.Suggestion, error) {
	key := CacheKey(query)
	text := Normalize(query)

	if g.cache != nil {
		hit, ok, err := g.cache.Get(ctx, key)
		if err != nil {
			// A broken cache must not break search.
			logrus.WithError(err).WithField("query", key).Warn("suggestion cache read failed")
		} else if ok {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return hit, nil
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	v, err, _ := g.group.Do(key, func() (any, error) {
		fresh, err := g.next.Search(ctx, text)
		if err != nil {
			return nil, err
		}

		if g.cache != nil && len(fresh) > 0 {
			if err := g.cache.Put(ctx, key, fresh); err != nil {
				logrus.WithError(err).WithField("query", key).Warn("suggestion cache write failed")
			}
		}
		return fresh, nil
	})
	if err != nil {
		return nil, fmt.Errorf("cached search %q: %w", key, err)
	}

	// Callers sharing a flight must not alias one slice.
	shared := v.([]domain.Suggestion)
	return append([]domain.Suggestion(nil), shared...), nil
}
