package collector

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gocarina/gocsv"

	"RiskEngine/internal/model"
)

// csvRow is one line of a long-format price file: date,ticker,close.
// Extra columns (such as those written by the CSV export) are ignored.
type csvRow struct {
	Date   string  `csv:"date"`
	Ticker string  `csv:"ticker"`
	Close  float64 `csv:"close"`
}

// CSVFetcher serves closes from a local long-format CSV file. The file is
// read once and kept in memory.
type CSVFetcher struct {
	Path string

	once   sync.Once
	series map[string][]model.Point
	err    error
}

// NewCSVFetcher creates a fetcher backed by the file at path.
func NewCSVFetcher(path string) *CSVFetcher {
	return &CSVFetcher{Path: path}
}

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) load() {
	file, err := os.Open(f.Path)
	if err != nil {
		f.err = fmt.Errorf("open price file: %w", err)
		return
	}
	defer file.Close()

	var rows []*csvRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		f.err = fmt.Errorf("parse price file %s: %w", f.Path, err)
		return
	}

	f.series = make(map[string][]model.Point)
	for i, r := range rows {
		d, err := time.Parse(model.DateLayout, strings.TrimSpace(r.Date))
		if err != nil {
			f.err = fmt.Errorf("parse price file %s line %d: %w", f.Path, i+2, err)
			return
		}
		ticker := strings.TrimSpace(r.Ticker)
		f.series[ticker] = append(f.series[ticker], model.Point{Date: d, Value: r.Close})
	}
}

// FetchCloses returns the closes recorded for symbol. period is applied
// relative to the last date in the file so fixtures do not go stale.
func (f *CSVFetcher) FetchCloses(ctx context.Context, symbol, period string) (model.Series, error) {
	if err := ctx.Err(); err != nil {
		return model.Series{}, err
	}
	f.once.Do(f.load)
	if f.err != nil {
		return model.Series{}, f.err
	}

	raw, ok := f.series[symbol]
	if !ok || len(raw) == 0 {
		return model.Series{}, fmt.Errorf("csv %s: %w", symbol, ErrNoData)
	}
	points := model.Normalize(raw)

	start := periodStart(points[len(points)-1].Date, period)
	i := 0
	for i < len(points) && points[i].Date.Before(start) {
		i++
	}
	return model.Series{Ticker: symbol, Points: points[i:]}, nil
}
