package model

import "errors"

// Validation and ownership errors are returned unwrapped so callers can
// match them with errors.Is. Store failures are wrapped with context instead.
var (
	ErrAmountRequired      = errors.New("amount is required")
	ErrAmountInvalid       = errors.New("amount must be a number")
	ErrAmountNotPositive   = errors.New("amount must be greater than zero")
	ErrAmountTooLarge      = errors.New("amount is too large")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidSource       = errors.New("invalid income source")
	ErrLimitNotPositive    = errors.New("budget limit must be greater than zero")
	ErrLimitTooLarge       = errors.New("budget limit is too large")
	ErrThresholdOutOfRange = errors.New("threshold percent must be between 10 and 100")
	ErrDuplicateBudget     = errors.New("an active budget already exists for this category")
	ErrNotFound            = errors.New("record not found")
	ErrNotOwner            = errors.New("record belongs to another user")
)
