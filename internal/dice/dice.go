package dice

import (
	"errors"
	"fmt"

	"casino-minigames/internal/ledger"
	"casino-minigames/internal/rng"
)

const (
	MinPick = 2
	MaxPick = 12
)

var (
	ErrInvalidPick     = errors.New("pick must be between 2 and 12")
	ErrInvalidPaytable = errors.New("invalid dice paytable")
)

// Paytable maps |sum - pick| to a multiplier. Distances past the end pay
// nothing.
type Paytable []float64

func DefaultPaytable() Paytable {
	return Paytable{6, 2, 1, 0.5}
}

func (p Paytable) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: no tiers", ErrInvalidPaytable)
	}
	for i, m := range p {
		if m < 0 {
			return fmt.Errorf("%w: tier %d is negative", ErrInvalidPaytable, i)
		}
		if i > 0 && m > p[i-1] {
			return fmt.Errorf("%w: tier %d pays more than tier %d", ErrInvalidPaytable, i, i-1)
		}
	}
	return nil
}

func (p Paytable) Multiplier(distance int) float64 {
	if distance < 0 {
		distance = -distance
	}
	if distance >= len(p) {
		return 0
	}
	return p[distance]
}

type Result struct {
	Pick       int     `json:"pick"`
	Dice       [2]int  `json:"dice"`
	Sum        int     `json:"sum"`
	Distance   int     `json:"distance"`
	Multiplier float64 `json:"multiplier"`
	Stake      int64   `json:"stake"`
	Payout     int64   `json:"payout"`
}

// Roll throws two fair six-sided dice.
func Roll(src rng.Source) [2]int {
	return [2]int{src.IntN(6) + 1, src.IntN(6) + 1}
}

// Evaluate scores a throw against a pick without touching any balance.
func Evaluate(pick int, throw [2]int, table Paytable) Result {
	sum := throw[0] + throw[1]
	dist := sum - pick
	if dist < 0 {
		dist = -dist
	}
	return Result{
		Pick:       pick,
		Dice:       throw,
		Sum:        sum,
		Distance:   dist,
		Multiplier: table.Multiplier(dist),
	}
}

// Play debits the stake, rolls and credits the payout in one step.
func Play(l ledger.Ledger, stake int64, pick int, table Paytable, src rng.Source) (Result, error) {
	if pick < MinPick || pick > MaxPick {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidPick, pick)
	}
	if table == nil {
		table = DefaultPaytable()
	}
	if err := l.Debit(stake); err != nil {
		return Result{}, err
	}

	res := Evaluate(pick, Roll(src), table)
	res.Stake = stake
	res.Payout = ledger.Payout(stake, res.Multiplier)

	if err := ledger.Settle(l, res.Payout); err != nil {
		return res, fmt.Errorf("settle dice roll: %w", err)
	}
	return res, nil
}
