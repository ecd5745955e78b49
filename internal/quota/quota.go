package quota

import (
	"errors"
	"fmt"
	"math"

	"casino-minigames/internal/ledger"
	"casino-minigames/internal/rng"
	"casino-minigames/internal/sampler"
)

var (
	ErrRunFailed      = errors.New("quota run is over, start a new one")
	ErrInvalidOptions = errors.New("invalid quota options")
)

// Bankroll is a ledger whose balance the cycle check can read.
type Bankroll interface {
	ledger.Ledger
	Balance() int64
}

var (
	Multipliers = []float64{0.2, 0.5, 1, 2, 5, 10, 100}
	Weights     = []float64{205, 205, 205, 205, 100, 30, 50}

	wheel = sampler.MustNew(Weights)
)

type Options struct {
	StartQuota    int64
	SpinsPerCycle int
	Growth        float64
}

func DefaultOptions() Options {
	return Options{StartQuota: 100, SpinsPerCycle: 7, Growth: 1.5}
}

func (o Options) Validate() error {
	if o.StartQuota <= 0 || o.SpinsPerCycle <= 0 || o.Growth < 1 {
		return fmt.Errorf("%w: %+v", ErrInvalidOptions, o)
	}
	return nil
}

type Status string

const (
	StatusActive Status = "active"
	StatusFailed Status = "failed"
)

// Run is a survival session: every SpinsPerCycle spins the balance must be at
// least the quota, which then grows by Growth.
type Run struct {
	Status Status `json:"status"`
	Cycle  int    `json:"cycle"`
	Spins  int    `json:"spins"`
	Quota  int64  `json:"quota"`

	opts Options
}

func NewRun(opts Options) (*Run, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Run{Status: StatusActive, Cycle: 1, Quota: opts.StartQuota, opts: opts}, nil
}

// SpinsLeft counts spins until the next quota check.
func (r *Run) SpinsLeft() int {
	return r.opts.SpinsPerCycle - r.Spins%r.opts.SpinsPerCycle
}

type Result struct {
	Stake       int64   `json:"stake"`
	Multiplier  float64 `json:"multiplier"`
	Payout      int64   `json:"payout"`
	Balance     int64   `json:"balance"`
	CycleClosed bool    `json:"cycle_closed"`
	Passed      bool    `json:"passed"`
	Run         Run     `json:"run"`
}

// Spin wagers stake on one draw of the wheel and applies the cycle check.
func (r *Run) Spin(b Bankroll, stake int64, src rng.Source) (Result, error) {
	if r.Status == StatusFailed {
		return Result{}, ErrRunFailed
	}
	if err := b.Debit(stake); err != nil {
		return Result{}, err
	}

	mult := Multipliers[wheel.Sample(src)]
	res := Result{Stake: stake, Multiplier: mult, Payout: ledger.Payout(stake, mult)}
	if err := ledger.Settle(b, res.Payout); err != nil {
		return res, fmt.Errorf("settle quota spin: %w", err)
	}
	r.Spins++
	res.Balance = b.Balance()

	switch {
	case res.Balance <= 0:
		r.Status = StatusFailed
	case r.Spins%r.opts.SpinsPerCycle == 0:
		res.CycleClosed = true
		if res.Balance >= r.Quota {
			res.Passed = true
			r.Cycle++
			r.Quota = int64(math.Round(float64(r.Quota) * r.opts.Growth))
		} else {
			r.Status = StatusFailed
		}
	}

	res.Run = *r
	return res, nil
}
