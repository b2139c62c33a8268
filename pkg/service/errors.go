package service

import "errors"

var (
	// ErrUnknownConfig is returned when a request names a budgeting
	// configuration that was never registered. The service never
	// substitutes a default budget.
	ErrUnknownConfig = errors.New("unknown budgeting config")

	// ErrInvalidSpend is returned when a reported spend amount is not a
	// positive finite number. The window only ever sees non-negative
	// contributions.
	ErrInvalidSpend = errors.New("invalid spend amount")
)
