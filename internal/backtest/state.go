package backtest

import (
	"fmt"
	"time"
)

// Phase is the simulator's position state. The machine has exactly two
// phases and alternates between them: enter from NoPosition, exit from
// Holding.
type Phase int

const (
	PhaseNoPosition Phase = iota
	PhaseHolding
)

func (p Phase) String() string {
	if p == PhaseHolding {
		return "holding"
	}
	return "no_position"
}

// ExitReason labels why a position was closed.
type ExitReason string

const (
	ExitHoldingPeriod ExitReason = "holding_period"
	ExitStopLoss      ExitReason = "stop_loss"
	ExitTakeProfit    ExitReason = "take_profit"
	ExitHorizon       ExitReason = "horizon"
)

// Holding is one stock inside an open position.
type Holding struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	EntryPrice float64 `json:"entry_price"`
	Weight     float64 `json:"weight"`
}

// Position is an open basket of holdings entered on one day.
type Position struct {
	EntryDate time.Time `json:"entry_date"`
	Holdings  []Holding `json:"holdings"`
	DaysHeld  int       `json:"days_held"`
}

// TradeRecord is one completed round trip: entry to exit, with the
// basket-average return.
type TradeRecord struct {
	EntryDate time.Time  `json:"entry_date"`
	ExitDate  time.Time  `json:"exit_date"`
	Holdings  []Holding  `json:"holdings"`
	DaysHeld  int        `json:"days_held"`
	ReturnPct float64    `json:"return_pct"`
	Reason    ExitReason `json:"reason"`
}

// SimState tracks the simulator through the day loop.
type SimState struct {
	Phase    Phase
	Position *Position
	Trades   []TradeRecord
}

// NewSimState initializes an empty simulation state
func NewSimState() *SimState {
	return &SimState{Phase: PhaseNoPosition}
}

// Enter opens a position. It is illegal while already holding.
func (s *SimState) Enter(day time.Time, holdings []Holding) error {
	if s.Phase != PhaseNoPosition {
		return fmt.Errorf("cannot enter: already %s since %s", s.Phase, s.Position.EntryDate.Format("2006-01-02"))
	}
	if len(holdings) == 0 {
		return fmt.Errorf("cannot enter an empty position")
	}
	s.Phase = PhaseHolding
	s.Position = &Position{EntryDate: day, Holdings: holdings}
	return nil
}

// Exit closes the open position and records the round trip. It is
// illegal while not holding.
func (s *SimState) Exit(day time.Time, returnPct float64, reason ExitReason) error {
	if s.Phase != PhaseHolding {
		return fmt.Errorf("cannot exit: no open position")
	}
	s.Trades = append(s.Trades, TradeRecord{
		EntryDate: s.Position.EntryDate,
		ExitDate:  day,
		Holdings:  s.Position.Holdings,
		DaysHeld:  s.Position.DaysHeld,
		ReturnPct: returnPct,
		Reason:    reason,
	})
	s.Phase = PhaseNoPosition
	s.Position = nil
	return nil
}
