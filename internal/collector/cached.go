package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"RiskEngine/internal/cache"
	"RiskEngine/internal/logging"
	"RiskEngine/internal/model"
)

// CachedFetcher serves closes from a cache.Store before asking the wrapped
// Fetcher. Cache failures are logged and bypassed, never returned.
type CachedFetcher struct {
	next  Fetcher
	store cache.Store
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachedFetcher wraps next with store.
func NewCachedFetcher(next Fetcher, store cache.Store, ttl time.Duration, log zerolog.Logger) *CachedFetcher {
	return &CachedFetcher{
		next:  next,
		store: store,
		ttl:   ttl,
		log:   logging.Component(log, "price_cache"),
	}
}

func (f *CachedFetcher) Name() string { return f.next.Name() }

type cachedPoint struct {
	Date  string  `json:"d"`
	Close float64 `json:"c"`
}

// CacheKey is the store key for one symbol and period of a provider.
func CacheKey(provider, symbol, period string) string {
	return fmt.Sprintf("riskengine:closes:%s:%s:%s", provider, symbol, period)
}

func (f *CachedFetcher) FetchCloses(ctx context.Context, symbol, period string) (model.Series, error) {
	key := CacheKey(f.next.Name(), symbol, period)

	if s, ok := f.lookup(ctx, key, symbol); ok {
		return s, nil
	}

	s, err := f.next.FetchCloses(ctx, symbol, period)
	if err != nil {
		return s, err
	}

	payload := make([]cachedPoint, len(s.Points))
	for i, p := range s.Points {
		payload[i] = cachedPoint{Date: model.DateKey(p.Date), Close: p.Value}
	}
	data, err := json.Marshal(payload)
	if err == nil {
		err = f.store.Set(ctx, key, data, f.ttl)
	}
	if err != nil {
		f.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return s, nil
}

func (f *CachedFetcher) lookup(ctx context.Context, key, symbol string) (model.Series, bool) {
	data, ok, err := f.store.Get(ctx, key)
	if err != nil {
		f.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return model.Series{}, false
	}
	if !ok {
		return model.Series{}, false
	}

	var payload []cachedPoint
	if err := json.Unmarshal(data, &payload); err != nil {
		f.log.Warn().Err(err).Str("key", key).Msg("cache entry corrupt")
		return model.Series{}, false
	}
	points := make([]model.Point, 0, len(payload))
	for _, cp := range payload {
		d, err := time.Parse(model.DateLayout, cp.Date)
		if err != nil {
			f.log.Warn().Err(err).Str("key", key).Msg("cache entry corrupt")
			return model.Series{}, false
		}
		points = append(points, model.Point{Date: d, Value: cp.Close})
	}
	if len(points) == 0 {
		return model.Series{}, false
	}

	f.log.Debug().Str("symbol", symbol).Int("points", len(points)).Msg("cache hit")
	return model.Series{Ticker: symbol, Points: points}, true
}
