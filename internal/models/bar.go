// Package models defines the core domain types shared across the screener.
package models

import (
	"fmt"
	"time"
)

// Bar represents one daily OHLCV bar.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is an ordered sequence of daily bars for one stock,
// strictly increasing by date. Missing trading days are simply absent.
type PriceSeries struct {
	Code string `json:"code"`
	Bars []Bar  `json:"bars"`
}

// Len returns the number of bars in the series.
func (s PriceSeries) Len() int {
	return len(s.Bars)
}

// Last returns the most recent bar. The second return value is false
// when the series is empty.
func (s PriceSeries) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Prefix returns the sub-series of bars dated at or before asOf. The
// returned series shares the underlying bar slice; bars are read-only
// once fetched.
func (s PriceSeries) Prefix(asOf time.Time) PriceSeries {
	i := len(s.Bars)
	for i > 0 && s.Bars[i-1].Date.After(asOf) {
		i--
	}
	return PriceSeries{Code: s.Code, Bars: s.Bars[:i]}
}

// BarOn returns the bar dated exactly on day, if present.
func (s PriceSeries) BarOn(day time.Time) (Bar, bool) {
	for i := len(s.Bars) - 1; i >= 0; i-- {
		if sameDay(s.Bars[i].Date, day) {
			return s.Bars[i], true
		}
		if s.Bars[i].Date.Before(day) {
			break
		}
	}
	return Bar{}, false
}

// Closes returns the close prices in date order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Validate checks the series ordering contract: strictly increasing
// dates with no duplicates.
func (s PriceSeries) Validate() error {
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Date.After(s.Bars[i-1].Date) {
			return fmt.Errorf("price series %s: bars out of order at index %d (%s -> %s)",
				s.Code, i, s.Bars[i-1].Date.Format("2006-01-02"), s.Bars[i].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// GainPct returns the percentage gain between the first and last close
// of the trailing window of n bars. Returns 0 for series shorter than
// two bars.
func (s PriceSeries) GainPct(n int) float64 {
	if len(s.Bars) < 2 {
		return 0
	}
	start := len(s.Bars) - n
	if start < 0 {
		start = 0
	}
	first := s.Bars[start].Close
	last := s.Bars[len(s.Bars)-1].Close
	if first == 0 {
		return 0
	}
	return (last/first - 1) * 100
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
