// Package scoring combines indicator signals into a single 0-100 score
// per stock. Each category is an independent Rule; the Scorer
// aggregates their subscores by summation, so adding an indicator
// never touches the aggregation logic.
package scoring

import (
	"github.com/yourusername/stock-screener/internal/config"
	"github.com/yourusername/stock-screener/internal/indicators"
)

// Rule evaluates one scoring category against an indicator snapshot.
// Implementations must be deterministic: identical (snapshot, profile)
// inputs always yield the identical subscore.
type Rule interface {
	// Name returns the category name used in subscores and reasons.
	Name() string

	// Evaluate returns the awarded points, the category maximum, and an
	// optional human-readable reason. Awarded points never exceed the
	// maximum.
	Evaluate(snap *indicators.Snapshot, profile config.StrategyProfile) (points float64, max float64, reason string)
}

// DefaultRules returns the six standard categories in their fixed
// evaluation order. The order is part of the output contract:
// subscores are emitted in this order for reproducible results.
func DefaultRules() []Rule {
	return []Rule{
		MACDRule{},
		RSIRule{},
		KDJRule{},
		BollingerRule{},
		VolumeRule{},
		MARule{},
	}
}

// capPoints clamps awarded points to the category maximum.
func capPoints(points, max float64) float64 {
	if points > max {
		return max
	}
	if points < 0 {
		return 0
	}
	return points
}
