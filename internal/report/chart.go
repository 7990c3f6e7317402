package report

import (
	"errors"
	"fmt"
	"sort"

	charts "github.com/vicanso/go-charts/v2"

	"RiskEngine/internal/model"
)

// ErrNoSeries is returned when there is nothing to plot.
var ErrNoSeries = errors.New("no series to plot")

// RenderCumulativeChart draws cumulative return curves (in percent) as a
// PNG line chart. Series are aligned on the union of their dates; a gap
// repeats the previous value and days before a series starts plot as 0.
func RenderCumulativeChart(title string, series []model.Series) ([]byte, error) {
	var plotted []model.Series
	for _, s := range series {
		if s.Len() > 0 {
			plotted = append(plotted, s)
		}
	}
	if len(plotted) == 0 {
		return nil, ErrNoSeries
	}

	dates := unionDates(plotted)

	values := make([][]float64, 0, len(plotted))
	names := make([]string, 0, len(plotted))
	for _, s := range plotted {
		idx := s.Index()
		line := make([]float64, len(dates))
		last := 0.0
		for i, d := range dates {
			if v, ok := idx[d]; ok {
				last = v * 100
			}
			line[i] = last
		}
		values = append(values, line)
		names = append(names, s.Ticker)
	}

	split := 6
	if len(dates) <= 30 {
		split = max(len(dates)/3, 1)
	}

	p, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc(title, "cumulative return %"),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        dates,
			SplitNumber: split,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: names,
			Top:  charts.PositionBottom,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(1000),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("chart bytes: %w", err)
	}
	return buf, nil
}

func unionDates(series []model.Series) []string {
	seen := make(map[string]struct{})
	for _, s := range series {
		for _, p := range s.Points {
			seen[model.DateKey(p.Date)] = struct{}{}
		}
	}
	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
