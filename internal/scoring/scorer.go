package scoring

import (
	"strings"

	"github.com/yourusername/stock-screener/internal/config"
	"github.com/yourusername/stock-screener/internal/indicators"
	"github.com/yourusername/stock-screener/internal/models"
)

// Scorer aggregates independent scoring rules by summation.
type Scorer struct {
	rules []Rule
}

// NewScorer creates a scorer over the default category rules.
func NewScorer() *Scorer {
	return &Scorer{rules: DefaultRules()}
}

// NewScorerWithRules creates a scorer over a custom rule set, in the
// given evaluation order.
func NewScorerWithRules(rules []Rule) *Scorer {
	return &Scorer{rules: rules}
}

// Score computes the ScoreResult for one candidate. The candidate's
// indicator snapshot must already be computed; Score itself never
// fails. The total equals the sum of category subscores, each capped
// at its category maximum.
func (s *Scorer) Score(candidate models.StockCandidate, snap *indicators.Snapshot, profile config.StrategyProfile) models.ScoreResult {
	result := models.ScoreResult{
		Code:      candidate.Code,
		Name:      candidate.Name,
		Price:     candidate.LatestPrice,
		Subscores: make([]models.Subscore, 0, len(s.rules)),
	}

	var reasons []string
	for _, rule := range s.rules {
		points, max, reason := rule.Evaluate(snap, profile)
		points = capPoints(points, max)
		result.Subscores = append(result.Subscores, models.Subscore{
			Category: rule.Name(),
			Points:   points,
			Max:      max,
		})
		result.Total += points
		if reason != "" && points > 0 {
			reasons = append(reasons, reason)
		}
	}

	if len(reasons) == 0 {
		result.Reason = "no active signals"
	} else {
		result.Reason = strings.Join(reasons, " + ")
	}
	return result
}
