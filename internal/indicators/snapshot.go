package indicators

import (
	"fmt"
	"time"

	"github.com/yourusername/stock-screener/internal/models"
)

// MinSnapshotBars is the longest warm-up any snapshot indicator
// needs: MACD's slow EMA plus its signal line.
const MinSnapshotBars = MACDSlow + MACDSignal

// Snapshot holds every indicator value the scoring engine consumes,
// computed as of the last bar of a price series prefix. Snapshots are
// transient and never mutated after creation.
type Snapshot struct {
	Code string
	Date time.Time

	Close float64

	MA5  float64
	MA10 float64
	MA20 float64

	MACD MACDResult
	RSI  float64
	KDJ  KDJResult
	Boll BollingerResult

	// VolumeRatio is NoSignal when the trailing volume baseline is zero.
	VolumeRatio float64
}

// ComputeSnapshot derives a Snapshot for the series' last date. It
// fails with models.ErrInsufficientHistory when the series is shorter
// than MinSnapshotBars.
func ComputeSnapshot(series models.PriceSeries) (*Snapshot, error) {
	if series.Len() < MinSnapshotBars {
		return nil, fmt.Errorf("snapshot for %s: %d bars, need %d: %w",
			series.Code, series.Len(), MinSnapshotBars, models.ErrInsufficientHistory)
	}
	last, _ := series.Last()
	closes := series.Closes()

	snap := &Snapshot{
		Code:  series.Code,
		Date:  last.Date,
		Close: last.Close,
	}

	var err error
	if snap.MA5, err = SMA(closes, 5); err != nil {
		return nil, err
	}
	if snap.MA10, err = SMA(closes, 10); err != nil {
		return nil, err
	}
	if snap.MA20, err = SMA(closes, 20); err != nil {
		return nil, err
	}
	if snap.MACD, err = MACD(closes); err != nil {
		return nil, err
	}
	if snap.RSI, err = RSI(closes, RSIPeriod); err != nil {
		return nil, err
	}
	if snap.KDJ, err = KDJ(series.Bars); err != nil {
		return nil, err
	}
	if snap.Boll, err = Bollinger(closes); err != nil {
		return nil, err
	}
	if snap.VolumeRatio, err = VolumeRatio(series.Bars); err != nil {
		return nil, err
	}
	return snap, nil
}

// BullishMACDCross reports a fresh DIF-over-DEA crossover on the
// snapshot date.
func (s *Snapshot) BullishMACDCross() bool {
	return s.MACD.DIF > s.MACD.DEA && s.MACD.DIFPrev <= s.MACD.DEAPrev
}

// BullishKDJCross reports a fresh K-over-D crossover on the snapshot
// date.
func (s *Snapshot) BullishKDJCross() bool {
	return s.KDJ.K > s.KDJ.D && s.KDJ.KPrev <= s.KDJ.DPrev
}

// BullishMAOrder reports the strict bullish alignment MA5 > MA10 > MA20.
func (s *Snapshot) BullishMAOrder() bool {
	return s.MA5 > s.MA10 && s.MA10 > s.MA20
}
