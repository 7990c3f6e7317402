package collector

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"RiskEngine/internal/logging"
	"RiskEngine/internal/model"
)

// Collector fetches the close column of every requested ticker into a
// PriceTable keyed by the bare ticker.
type Collector struct {
	Fetcher Fetcher
	Suffix  string // exchange suffix appended for the source, e.g. ".SA"
	Period  string
	log     zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, suffix, period string, log zerolog.Logger) *Collector {
	return &Collector{
		Fetcher: fetcher,
		Suffix:  suffix,
		Period:  period,
		log:     logging.Component(log, "collector").With().Str("source", fetcher.Name()).Logger(),
	}
}

// Symbol returns the source symbol for ticker. Index symbols such as ^BVSP
// and tickers that already carry a suffix are passed through.
func (c *Collector) Symbol(ticker string) string {
	if c.Suffix == "" || strings.HasPrefix(ticker, "^") || strings.Contains(ticker, ".") {
		return ticker
	}
	return ticker + c.Suffix
}

// Collect fetches every ticker once. A ticker that fails or has no data is
// left out of the table and logged; only a cancelled context aborts.
func (c *Collector) Collect(ctx context.Context, tickers []string) (model.PriceTable, error) {
	table := make(model.PriceTable, len(tickers))
	seen := make(map[string]struct{}, len(tickers))
	for _, ticker := range tickers {
		if _, done := seen[ticker]; done {
			continue
		}
		seen[ticker] = struct{}{}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s, err := c.Fetcher.FetchCloses(ctx, c.Symbol(ticker), c.Period)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			ev := c.log.Warn().Str("ticker", ticker)
			if errors.Is(err, ErrNoData) {
				ev.Msg("no price data returned")
			} else {
				ev.Err(err).Msg("price fetch failed")
			}
			continue
		}
		if s.Len() == 0 {
			c.log.Warn().Str("ticker", ticker).Msg("no price data returned")
			continue
		}

		s.Ticker = ticker
		table[ticker] = s
		c.log.Debug().Str("ticker", ticker).Int("closes", s.Len()).Msg("prices fetched")
	}

	c.log.Info().Int("requested", len(seen)).Int("fetched", len(table)).Msg("collection finished")
	return table, nil
}
