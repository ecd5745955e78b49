package crash

import (
	"errors"
	"fmt"
	"sync"

	"casino-minigames/internal/apperror"
	"casino-minigames/internal/ledger"
	"casino-minigames/internal/rng"
)

var ErrInvalidAutoCashOut = errors.New("auto cash-out must be above 1.00x")

// Multipliers are kept in hundredths: 100 is 1.00x.
const (
	startMultiplier = 100
	step            = 1
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCrashed   Status = "crashed"
	StatusCashedOut Status = "cashed_out"
)

type Options struct {
	// AutoCashOut in hundredths; zero disables it.
	AutoCashOut int64
	Bands       Bands
}

// Round is one crash flight. Tick and RequestCashOut are safe to call from
// different goroutines.
type Round struct {
	mu sync.Mutex

	stake       int64
	multiplier  int64
	status      Status
	pending     bool
	autoCashOut int64
	crashPoint  int64
	payout      int64
	ticks       int

	bands  Bands
	ledger ledger.Ledger
	src    rng.Source
}

func Start(l ledger.Ledger, stake int64, opts Options, src rng.Source) (*Round, error) {
	bands := opts.Bands
	if bands == nil {
		bands = DefaultBands()
	}
	if err := bands.Validate(); err != nil {
		return nil, err
	}
	if opts.AutoCashOut != 0 && opts.AutoCashOut <= startMultiplier {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAutoCashOut, opts.AutoCashOut)
	}
	if err := l.Debit(stake); err != nil {
		return nil, err
	}

	return &Round{
		stake:       stake,
		multiplier:  startMultiplier,
		status:      StatusRunning,
		autoCashOut: opts.AutoCashOut,
		bands:       bands,
		ledger:      l,
		src:         src,
	}, nil
}

// Tick advances the flight by one step. The order is fixed: the crash draw
// comes first, then a pending or automatic cash-out at the current
// multiplier, then the increment.
func (r *Round) Tick() (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusRunning {
		return r.snapshot(), apperror.ErrRoundResolved
	}
	r.ticks++

	if r.src.Float64() < r.bands.Hazard(r.multiplier) {
		r.status = StatusCrashed
		r.crashPoint = r.multiplier
		return r.snapshot(), nil
	}

	if r.pending || (r.autoCashOut != 0 && r.multiplier >= r.autoCashOut) {
		r.status = StatusCashedOut
		r.payout = ledger.PayoutHundredths(r.stake, r.multiplier)
		if err := ledger.Settle(r.ledger, r.payout); err != nil {
			return r.snapshot(), fmt.Errorf("settle crash round: %w", err)
		}
		return r.snapshot(), nil
	}

	r.multiplier += step
	return r.snapshot(), nil
}

// RequestCashOut flags the round for cash-out on the next tick.
func (r *Round) RequestCashOut() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusRunning {
		return apperror.ErrRoundResolved
	}
	r.pending = true
	return nil
}

func (r *Round) Resolved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status != StatusRunning
}

type Snapshot struct {
	Stake       int64   `json:"stake"`
	Status      Status  `json:"status"`
	Multiplier  float64 `json:"multiplier"`
	CrashPoint  float64 `json:"crash_point,omitempty"`
	AutoCashOut float64 `json:"auto_cash_out,omitempty"`
	Pending     bool    `json:"pending"`
	Payout      int64   `json:"payout"`
	Ticks       int     `json:"ticks"`
}

func (r *Round) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

func (r *Round) snapshot() Snapshot {
	return Snapshot{
		Stake:       r.stake,
		Status:      r.status,
		Multiplier:  float64(r.multiplier) / 100,
		CrashPoint:  float64(r.crashPoint) / 100,
		AutoCashOut: float64(r.autoCashOut) / 100,
		Pending:     r.pending,
		Payout:      r.payout,
		Ticks:       r.ticks,
	}
}
