package scoring

import (
	"github.com/yourusername/stock-screener/internal/config"
	"github.com/yourusername/stock-screener/internal/indicators"
)

// Partial awards as fractions of the category weight.
const (
	// macdAboveZeroFraction rewards DIF holding above the zero axis
	// without a fresh crossover.
	macdAboveZeroFraction = 0.4

	// rsiNeutralFraction rewards the 30-70 band. The oversold zone
	// below 30 earns the full category weight: the contrarian
	// oversold-over-neutral ordering is deliberate and preserved.
	rsiNeutralFraction = 0.5

	// bollMidFraction rewards a close back above the middle band.
	bollMidFraction = 0.5
)

// Indicator thresholds.
const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0

	kdjOverboughtJ = 80.0

	// bollLowerProximity treats a close within 5% of the lower band as
	// a reversal setup.
	bollLowerProximity = 1.05
)

// MACDRule awards full points for a fresh bullish DIF-over-DEA
// crossover on the evaluation date, partial points when DIF holds
// above zero without one.
type MACDRule struct{}

func (MACDRule) Name() string { return "macd" }

func (MACDRule) Evaluate(snap *indicators.Snapshot, profile config.StrategyProfile) (float64, float64, string) {
	max := profile.MACDWeight
	switch {
	case snap.BullishMACDCross():
		return max, max, "MACD bullish crossover"
	case snap.MACD.DIF > 0:
		return capPoints(macdAboveZeroFraction*max, max), max, "MACD above zero"
	default:
		return 0, max, ""
	}
}

// RSIRule rewards the oversold-rebound zone most, the neutral band
// moderately, and overbought not at all.
type RSIRule struct{}

func (RSIRule) Name() string { return "rsi" }

func (RSIRule) Evaluate(snap *indicators.Snapshot, profile config.StrategyProfile) (float64, float64, string) {
	max := profile.RSIWeight
	switch {
	case snap.RSI < rsiOversold:
		return max, max, "RSI oversold"
	case snap.RSI <= rsiOverbought:
		return capPoints(rsiNeutralFraction*max, max), max, "RSI neutral"
	default:
		return 0, max, ""
	}
}

// KDJRule awards full points on a fresh K-over-D crossover while J is
// still below the overbought ceiling.
type KDJRule struct{}

func (KDJRule) Name() string { return "kdj" }

func (KDJRule) Evaluate(snap *indicators.Snapshot, profile config.StrategyProfile) (float64, float64, string) {
	max := profile.KDJWeight
	if snap.BullishKDJCross() && snap.KDJ.J < kdjOverboughtJ {
		return max, max, "KDJ bullish crossover"
	}
	return 0, max, ""
}

// BollingerRule rewards proximity to the lower band as a reversal
// setup, or a close back above the middle band. Prices above the upper
// band score nothing.
type BollingerRule struct{}

func (BollingerRule) Name() string { return "bollinger" }

func (BollingerRule) Evaluate(snap *indicators.Snapshot, profile config.StrategyProfile) (float64, float64, string) {
	max := profile.BollingerWeight
	switch {
	case snap.Close > snap.Boll.Upper:
		return 0, max, ""
	case snap.Close <= snap.Boll.Lower*bollLowerProximity:
		return max, max, "near lower Bollinger band"
	case snap.Close > snap.Boll.Mid:
		return capPoints(bollMidFraction*max, max), max, "above Bollinger middle band"
	default:
		return 0, max, ""
	}
}

// VolumeRule awards full points when the last bar's volume exceeds the
// trailing average by the profile's multiplier. A NoSignal ratio (zero
// volume baseline) scores nothing.
type VolumeRule struct{}

func (VolumeRule) Name() string { return "volume" }

func (VolumeRule) Evaluate(snap *indicators.Snapshot, profile config.StrategyProfile) (float64, float64, string) {
	max := profile.VolumeWeight
	if snap.VolumeRatio != indicators.NoSignal && snap.VolumeRatio >= profile.VolumeMultiplier {
		return max, max, "volume amplification"
	}
	return 0, max, ""
}

// MARule awards full points for the strict bullish alignment
// MA5 > MA10 > MA20.
type MARule struct{}

func (MARule) Name() string { return "ma" }

func (MARule) Evaluate(snap *indicators.Snapshot, profile config.StrategyProfile) (float64, float64, string) {
	max := profile.MAWeight
	if snap.BullishMAOrder() {
		return max, max, "bullish MA alignment"
	}
	return 0, max, ""
}
