package model

import (
	"sort"
	"time"
)

// DateLayout is the calendar-date format used for joins and storage.
const DateLayout = "2006-01-02"

// Point is a single dated value of a series.
type Point struct {
	Date  time.Time
	Value float64
}

// Series is an ordered-by-date sequence of values for one ticker.
type Series struct {
	Ticker string
	Points []Point
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Points) }

// Values returns a copy of the series values in date order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// First returns the first point's date, or the zero time for an empty series.
func (s Series) First() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[0].Date
}

// Index maps calendar date keys to values.
func (s Series) Index() map[string]float64 {
	idx := make(map[string]float64, len(s.Points))
	for _, p := range s.Points {
		idx[DateKey(p.Date)] = p.Value
	}
	return idx
}

// PriceTable holds one close-price column per ticker.
// A missing key means the ticker has no data.
type PriceTable map[string]Series

// Column returns the price series for ticker and whether the column exists.
func (t PriceTable) Column(ticker string) (Series, bool) {
	s, ok := t[ticker]
	if !ok || len(s.Points) == 0 {
		return Series{}, false
	}
	return s, true
}

// Day truncates t to UTC midnight of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats t as a calendar date join key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Normalize sorts points by date, truncates dates to calendar days and
// keeps the last value for duplicate dates.
func Normalize(points []Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{Date: Day(p.Date), Value: p.Value}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	deduped := out[:0]
	for _, p := range out {
		if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(p.Date) {
			deduped[n-1] = p
			continue
		}
		deduped = append(deduped, p)
	}
	return deduped
}
