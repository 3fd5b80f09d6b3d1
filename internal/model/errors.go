package model

import "errors"

// Validation errors. They are returned synchronously and never stop the round.
var (
	ErrInvalidPhase        = errors.New("action not allowed in current phase")
	ErrLimitExceeded       = errors.New("bet count limit exceeded")
	ErrOutOfRange          = errors.New("bet amount out of range")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyCashedOut    = errors.New("bet already cashed out")
	ErrBetNotFound         = errors.New("bet not found")
	ErrInvalidAutoCashout  = errors.New("auto cashout multiplier out of range")
	ErrNothingToCashout    = errors.New("no active bets to cash out")
	ErrNothingToRepeat     = errors.New("no bets from last round")
)

var ErrPlayerNotFound = errors.New("player not found")

var validationErrors = []error{
	ErrInvalidPhase,
	ErrLimitExceeded,
	ErrOutOfRange,
	ErrInsufficientBalance,
	ErrAlreadyCashedOut,
	ErrBetNotFound,
	ErrInvalidAutoCashout,
	ErrNothingToCashout,
	ErrNothingToRepeat,
}

// IsValidation - reports whether err is a user-facing validation error
func IsValidation(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
