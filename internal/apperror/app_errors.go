package apperror

import "errors"

var (
	ErrInvalidBet          = errors.New("enter a valid bet")
	ErrInsufficientBalance = errors.New("bet exceeds balance")
	ErrInvalidAmount       = errors.New("amount must be positive")

	ErrRoundInProgress = errors.New("round already in progress")
	ErrRoundResolved   = errors.New("round is already resolved")
	ErrNoActiveRound   = errors.New("no active round")
	ErrRoundNotFound   = errors.New("round not found")

	ErrSaveNotFound = errors.New("save not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limit exceeded")
)
