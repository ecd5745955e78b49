package ledger

import (
	"fmt"
	"math"

	"casino-minigames/internal/apperror"
)

// Ledger is the balance contract every game consumes. Games never read or
// write the balance beyond these two calls.
type Ledger interface {
	Debit(amount int64) error
	Credit(amount int64) error
}

// Account is a plain single-writer balance counter. Session wraps it for the
// host; tests use it directly.
type Account struct {
	Balance  int64
	Debited  int64
	Credited int64
}

func (a *Account) Debit(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidBet, amount)
	}
	if amount > a.Balance {
		return fmt.Errorf("%w: have %d, need %d", apperror.ErrInsufficientBalance, a.Balance, amount)
	}

	a.Balance -= amount
	a.Debited += amount
	return nil
}

func (a *Account) Credit(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidAmount, amount)
	}

	a.Balance += amount
	a.Credited += amount
	return nil
}

// payoutEpsilon absorbs float noise such as 100*1.1 = 110.00000000000001
// before the ceiling is taken.
const payoutEpsilon = 1e-9

// Payout returns ceil(stake * multiplier) in whole units.
func Payout(stake int64, multiplier float64) int64 {
	if multiplier <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(stake)*multiplier - payoutEpsilon))
}

// PayoutHundredths is Payout for multipliers kept in hundredths (110 = 1.10x),
// computed without floating point.
func PayoutHundredths(stake, hundredths int64) int64 {
	if hundredths <= 0 {
		return 0
	}
	return (stake*hundredths + 99) / 100
}

// Settle credits amount unless it is zero. Losing rounds settle with nothing.
func Settle(l Ledger, amount int64) error {
	if amount <= 0 {
		return nil
	}
	return l.Credit(amount)
}
