package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"RiskEngine/internal/model"
)

// RESTFetcher implements Fetcher against a generic bars API:
//
//	GET {base}/api/v1/bars/daily?symbol=PETR4.SA&range=2y
//
// which answers with a JSON array of {timestamp, close} objects.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bars API.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Close     float64 `json:"close"`
}

func (f *RESTFetcher) FetchCloses(ctx context.Context, symbol, period string) (model.Series, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("range", period)
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Series{}, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return model.Series{}, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return model.Series{}, fmt.Errorf("fetch bars %s: %w", symbol, ErrNoData)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return model.Series{}, fmt.Errorf("fetch bars %s: status %d, body: %s", symbol, resp.StatusCode, string(body))
	}

	var bars []restBar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return model.Series{}, fmt.Errorf("decode bars: %w", err)
	}

	points := make([]model.Point, 0, len(bars))
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		points = append(points, model.Point{Date: time.Unix(b.Timestamp, 0).UTC(), Value: b.Close})
	}
	if len(points) == 0 {
		return model.Series{}, fmt.Errorf("fetch bars %s: %w", symbol, ErrNoData)
	}
	return model.Series{Ticker: symbol, Points: model.Normalize(points)}, nil
}
