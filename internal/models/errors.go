package models

import "errors"

// Custom errors
var (
	// ErrInsufficientHistory marks a candidate whose price series is too
	// short for the requested indicator window. Recoverable: the
	// candidate is skipped, the pipeline continues.
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrInvalidStrategyConfig marks a malformed strategy profile.
	// Fatal: the run aborts before any scoring.
	ErrInvalidStrategyConfig = errors.New("invalid strategy config")

	// ErrDataSourceUnavailable marks a market-data collaborator failure.
	// Fatal for the current run; stale or zeroed data is never
	// substituted.
	ErrDataSourceUnavailable = errors.New("market data source unavailable")

	// ErrUnknownSymbol is returned when a price series is requested for
	// a code the data source does not know.
	ErrUnknownSymbol = errors.New("unknown stock symbol")
)
