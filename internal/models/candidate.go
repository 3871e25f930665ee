package models

import "time"

// StockMeta is the static metadata a universe provider supplies for
// one listed stock as of a given date.
type StockMeta struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	MarketCap     float64 `json:"market_cap"`
	Segment       string  `json:"segment"`
	DelistingRisk bool    `json:"delisting_risk"`
}

// StockCandidate is one stock surviving the universe filters, carrying
// everything the scoring engine needs. Created per screening pass and
// discarded after ranking.
type StockCandidate struct {
	Code          string
	Name          string
	MarketCap     float64
	LatestPrice   float64
	RecentGainPct float64
	Series        PriceSeries
	AsOf          time.Time
}
