package collector

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"RiskEngine/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without an entry in Data get a deterministic synthetic walk of
// Days weekday closes ending at End.
type MockFetcher struct {
	Data  map[string]model.Series
	Fail  map[string]error
	Days  int
	End   time.Time
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCloses(ctx context.Context, symbol, _ string) (model.Series, error) {
	if err := ctx.Err(); err != nil {
		return model.Series{}, err
	}
	m.Calls++
	if err, ok := m.Fail[symbol]; ok {
		return model.Series{}, err
	}
	if m.Data != nil {
		s, ok := m.Data[symbol]
		if !ok || s.Len() == 0 {
			return model.Series{}, fmt.Errorf("mock %s: %w", symbol, ErrNoData)
		}
		return s, nil
	}
	return generateMockSeries(symbol, m.Days, m.End), nil
}

func generateMockSeries(symbol string, days int, end time.Time) model.Series {
	if days <= 0 {
		days = 300
	}
	if end.IsZero() {
		end = model.Day(time.Now())
	}

	h := fnv.New64a()
	h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	dates := make([]time.Time, 0, days)
	for d := model.Day(end); len(dates) < days; d = d.AddDate(0, 0, -1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		dates = append(dates, d)
	}

	points := make([]model.Point, days)
	price := 20 + rng.Float64()*80
	for i := range points {
		price *= 1 + rng.NormFloat64()*0.015
		points[i] = model.Point{Date: dates[days-1-i], Value: price}
	}
	return model.Series{Ticker: symbol, Points: points}
}
