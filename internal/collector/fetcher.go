package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"RiskEngine/internal/model"
)

// ErrNoData is returned when a source has no closes for a symbol.
var ErrNoData = errors.New("no data")

// Fetcher defines the interface for fetching daily closing prices.
// period is a lookback such as "1y", "2y" or "max".
type Fetcher interface {
	FetchCloses(ctx context.Context, symbol, period string) (model.Series, error)
	Name() string
}

// newHTTPClient returns a client with a 30s timeout that routes through
// proxyURL when one is set.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// periodStart returns the first calendar day covered by period, counted back
// from now. Unknown or "max" periods return the zero time.
func periodStart(now time.Time, period string) time.Time {
	switch period {
	case "1mo":
		return now.AddDate(0, -1, 0)
	case "3mo":
		return now.AddDate(0, -3, 0)
	case "6mo":
		return now.AddDate(0, -6, 0)
	case "1y":
		return now.AddDate(-1, 0, 0)
	case "2y":
		return now.AddDate(-2, 0, 0)
	case "5y":
		return now.AddDate(-5, 0, 0)
	case "10y":
		return now.AddDate(-10, 0, 0)
	}
	return time.Time{}
}
