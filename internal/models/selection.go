package models

import (
	"sort"
	"time"
)

// Subscore is the points one scoring category awarded to a candidate.
type Subscore struct {
	Category string  `json:"category"`
	Points   float64 `json:"points"`
	Max      float64 `json:"max"`
}

// ScoreResult is the scoring engine's verdict for one candidate.
// Total always equals the sum of the subscores, each of which is
// capped at its category maximum.
type ScoreResult struct {
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Total     float64    `json:"score"`
	Subscores []Subscore `json:"subscores"`
	Price     float64    `json:"price"`
	Reason    string     `json:"reason"`
}

// SelectionResult is the ranked shortlist produced by one screening
// pass: descending by score, ties broken by ascending code.
type SelectionResult struct {
	Date     time.Time     `json:"date"`
	Strategy string        `json:"strategy"`
	Results  []ScoreResult `json:"results"`
}

// Empty reports whether the pass recommended nothing. A zero
// recommendation day is a legitimate outcome, not an error.
func (s SelectionResult) Empty() bool {
	return len(s.Results) == 0
}

// SortResults orders score results descending by total score with a
// stable tie-break on ascending stock code, for reproducible output.
func SortResults(results []ScoreResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Total != results[j].Total {
			return results[i].Total > results[j].Total
		}
		return results[i].Code < results[j].Code
	})
}
