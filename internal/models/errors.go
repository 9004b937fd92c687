package models

import "errors"

// Custom errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateKey  = errors.New("duplicate key violation")
	ErrInvalidID     = errors.New("invalid ID format")
	ErrNoPriceData   = errors.New("no price data available")
	ErrInvalidParams = errors.New("invalid backtest parameters")
	ErrUnknownStock  = errors.New("unknown stock code")
)
