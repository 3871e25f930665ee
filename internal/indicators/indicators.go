// Package indicators computes technical indicator series from OHLCV
// history. All computations are in float64; a division by zero yields
// the NoSignal sentinel rather than propagating NaN.
package indicators

import (
	"fmt"
	"math"

	"github.com/yourusername/stock-screener/internal/models"
)

// Standard parameterisation shared by the scoring engine.
const (
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9

	RSIPeriod = 14

	KDJPeriod = 9
	KDJSmooth = 3

	BollPeriod = 20
	BollStdDev = 2.0

	VolumePeriod = 20
)

// NoSignal is the sentinel for an indicator value that cannot be
// computed from the available data (e.g. a zero volume baseline).
const NoSignal = -1.0

// SMA returns the simple moving average of the trailing n values, or
// ErrInsufficientHistory when fewer than n values are available.
func SMA(values []float64, n int) (float64, error) {
	if len(values) < n || n <= 0 {
		return 0, fmt.Errorf("sma(%d) over %d values: %w", n, len(values), models.ErrInsufficientHistory)
	}
	sum := 0.0
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n), nil
}

// EMA returns the full exponential moving average series. Entries
// before the warm-up window are zero; the first valid value sits at
// index period-1 and seeds from the simple average.
func EMA(values []float64, period int) []float64 {
	if len(values) < period || period <= 0 {
		return nil
	}
	out := make([]float64, len(values))
	mult := 2.0 / float64(period+1)
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	out[period-1] = sum / float64(period)
	for i := period; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*mult + out[i-1]
	}
	return out
}

// MACDResult holds the DIF/DEA lines for the last two bars, enough to
// detect a fresh crossover on the evaluation date.
type MACDResult struct {
	DIF       float64
	DEA       float64
	DIFPrev   float64
	DEAPrev   float64
	Histogram float64
}

// MACD computes the trend lines with the standard 12/26/9
// parameterisation. Requires MACDSlow+MACDSignal bars so that both the
// current and previous DEA values are warmed up.
func MACD(closes []float64) (MACDResult, error) {
	need := MACDSlow + MACDSignal
	if len(closes) < need {
		return MACDResult{}, fmt.Errorf("macd over %d closes (need %d): %w", len(closes), need, models.ErrInsufficientHistory)
	}
	emaFast := EMA(closes, MACDFast)
	emaSlow := EMA(closes, MACDSlow)
	dif := make([]float64, len(closes))
	for i := MACDSlow - 1; i < len(closes); i++ {
		dif[i] = emaFast[i] - emaSlow[i]
	}
	dea := EMA(dif[MACDSlow-1:], MACDSignal)

	last := len(closes) - 1
	prev := last - 1
	deaAt := func(i int) float64 { return dea[i-(MACDSlow-1)] }

	res := MACDResult{
		DIF:     dif[last],
		DEA:     deaAt(last),
		DIFPrev: dif[prev],
		DEAPrev: deaAt(prev),
	}
	res.Histogram = 2 * (res.DIF - res.DEA)
	return res, nil
}

// RSI returns the Wilder-smoothed relative strength index of the last
// bar. A window with no losses returns 100, no gains returns 0.
func RSI(closes []float64, period int) (float64, error) {
	if len(closes) < period+1 {
		return 0, fmt.Errorf("rsi(%d) over %d closes: %w", period, len(closes), models.ErrInsufficientHistory)
	}
	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= period; i++ {
		diff := closes[i] - closes[i-1]
		if diff > 0 {
			avgGain += diff
		} else {
			avgLoss -= diff
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		diff := closes[i] - closes[i-1]
		gain := 0.0
		loss := 0.0
		if diff > 0 {
			gain = diff
		} else {
			loss = -diff
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50, nil
		}
		return 100, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

// KDJResult holds the stochastic lines for the last two bars. J is
// derived as 3K-2D and is deliberately unbounded.
type KDJResult struct {
	K     float64
	D     float64
	J     float64
	KPrev float64
	DPrev float64
}

// KDJ computes the stochastic oscillator over the standard 9-day
// window with 3-day smoothing. A flat window (high == low) treats the
// raw stochastic value as neutral 50.
func KDJ(bars []models.Bar) (KDJResult, error) {
	if len(bars) < KDJPeriod+1 {
		return KDJResult{}, fmt.Errorf("kdj over %d bars (need %d): %w", len(bars), KDJPeriod+1, models.ErrInsufficientHistory)
	}
	k := 50.0
	d := 50.0
	kPrev := k
	dPrev := d
	for i := KDJPeriod - 1; i < len(bars); i++ {
		high := bars[i].High
		low := bars[i].Low
		for j := i - KDJPeriod + 1; j < i; j++ {
			if bars[j].High > high {
				high = bars[j].High
			}
			if bars[j].Low < low {
				low = bars[j].Low
			}
		}
		rsv := 50.0
		if high != low {
			rsv = (bars[i].Close - low) / (high - low) * 100
		}
		kPrev, dPrev = k, d
		k = (2*k + rsv) / float64(KDJSmooth)
		d = (2*d + k) / float64(KDJSmooth)
	}
	return KDJResult{K: k, D: d, J: 3*k - 2*d, KPrev: kPrev, DPrev: dPrev}, nil
}

// BollingerResult holds the volatility bands at +/-2 standard
// deviations around the 20-day average.
type BollingerResult struct {
	Upper float64
	Mid   float64
	Lower float64
}

// Bollinger computes the bands from the trailing BollPeriod closes.
func Bollinger(closes []float64) (BollingerResult, error) {
	if len(closes) < BollPeriod {
		return BollingerResult{}, fmt.Errorf("bollinger over %d closes (need %d): %w", len(closes), BollPeriod, models.ErrInsufficientHistory)
	}
	window := closes[len(closes)-BollPeriod:]
	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= float64(BollPeriod)

	variance := 0.0
	for _, v := range window {
		diff := v - mean
		variance += diff * diff
	}
	std := math.Sqrt(variance / float64(BollPeriod))

	return BollingerResult{
		Upper: mean + BollStdDev*std,
		Mid:   mean,
		Lower: mean - BollStdDev*std,
	}, nil
}

// VolumeRatio compares the last bar's volume against the trailing
// average of the previous VolumePeriod bars. A zero baseline yields
// NoSignal.
func VolumeRatio(bars []models.Bar) (float64, error) {
	if len(bars) < VolumePeriod+1 {
		return 0, fmt.Errorf("volume ratio over %d bars (need %d): %w", len(bars), VolumePeriod+1, models.ErrInsufficientHistory)
	}
	baseline := 0.0
	for _, b := range bars[len(bars)-VolumePeriod-1 : len(bars)-1] {
		baseline += b.Volume
	}
	baseline /= float64(VolumePeriod)
	if baseline <= 0 {
		return NoSignal, nil
	}
	return bars[len(bars)-1].Volume / baseline, nil
}
