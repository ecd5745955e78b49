package mines

import (
	"errors"
	"fmt"

	"casino-minigames/internal/apperror"
	"casino-minigames/internal/ledger"
	"casino-minigames/internal/rng"
)

var (
	ErrCellOutOfRange  = errors.New("cell index must be between 0 and 24")
	ErrCellRevealed    = errors.New("cell already revealed")
	ErrNothingRevealed = errors.New("reveal at least one cell before cashing out")
)

type Cell string

const (
	CellHidden   Cell = "hidden"
	CellRevealed Cell = "revealed"
	CellMine     Cell = "mine"
)

type Status string

const (
	StatusPlaying   Status = "playing"
	StatusDetonated Status = "detonated"
	StatusCashedOut Status = "cashed_out"
)

// PlaceMines picks count distinct cells uniformly with a partial
// Fisher–Yates shuffle over 0..24.
func PlaceMines(count int, src rng.Source) ([Cells]bool, error) {
	var mines [Cells]bool
	if err := validateMineCount(count); err != nil {
		return mines, err
	}

	idx := make([]int, Cells)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < count; i++ {
		j := i + src.IntN(Cells-i)
		idx[i], idx[j] = idx[j], idx[i]
		mines[idx[i]] = true
	}
	return mines, nil
}

// Round is one mines board. A detonation forfeits the stake; revealing the
// last safe cell cashes out automatically.
type Round struct {
	Stake     int64
	MineCount int
	Status    Status
	Revealed  int
	Detonated int
	Payout    int64

	cells  [Cells]Cell
	mines  [Cells]bool
	ledger ledger.Ledger
}

func Start(l ledger.Ledger, stake int64, mineCount int, src rng.Source) (*Round, error) {
	mines, err := PlaceMines(mineCount, src)
	if err != nil {
		return nil, err
	}
	if err := l.Debit(stake); err != nil {
		return nil, err
	}

	r := &Round{
		Stake:     stake,
		MineCount: mineCount,
		Status:    StatusPlaying,
		Detonated: -1,
		mines:     mines,
		ledger:    l,
	}
	for i := range r.cells {
		r.cells[i] = CellHidden
	}
	return r, nil
}

func (r *Round) Resolved() bool { return r.Status != StatusPlaying }

func (r *Round) SafeCells() int { return Cells - r.MineCount }

// Multiplier is the payout multiplier for the cells revealed so far.
func (r *Round) Multiplier() float64 {
	m, _ := Multiplier(r.MineCount, r.Revealed)
	return m
}

// NextMultiplier is what one more safe reveal would pay, or 0 when the board
// has no safe cells left.
func (r *Round) NextMultiplier() float64 {
	m, err := Multiplier(r.MineCount, r.Revealed+1)
	if err != nil {
		return 0
	}
	return m
}

// Reveal opens cell idx and reports whether it was safe.
func (r *Round) Reveal(idx int) (bool, error) {
	if r.Resolved() {
		return false, apperror.ErrRoundResolved
	}
	if idx < 0 || idx >= Cells {
		return false, fmt.Errorf("%w: got %d", ErrCellOutOfRange, idx)
	}
	if r.cells[idx] != CellHidden {
		return false, fmt.Errorf("%w: %d", ErrCellRevealed, idx)
	}

	if r.mines[idx] {
		r.cells[idx] = CellMine
		r.Detonated = idx
		r.Status = StatusDetonated
		return false, nil
	}

	r.cells[idx] = CellRevealed
	r.Revealed++

	if r.Revealed == r.SafeCells() {
		if _, err := r.settle(); err != nil {
			return true, err
		}
	}
	return true, nil
}

// CashOut credits ceil(stake × multiplier) and ends the round.
func (r *Round) CashOut() (int64, error) {
	if r.Resolved() {
		return 0, apperror.ErrRoundResolved
	}
	if r.Revealed == 0 {
		return 0, ErrNothingRevealed
	}
	return r.settle()
}

func (r *Round) settle() (int64, error) {
	r.Status = StatusCashedOut
	r.Payout = ledger.Payout(r.Stake, r.Multiplier())

	if err := ledger.Settle(r.ledger, r.Payout); err != nil {
		return 0, fmt.Errorf("settle mines round: %w", err)
	}
	return r.Payout, nil
}

type Snapshot struct {
	Stake          int64   `json:"stake"`
	MineCount      int     `json:"mine_count"`
	Status         Status  `json:"status"`
	Revealed       int     `json:"revealed"`
	Multiplier     float64 `json:"multiplier"`
	NextMultiplier float64 `json:"next_multiplier"`
	Payout         int64   `json:"payout"`
	Cells          []Cell  `json:"cells"`
	Mines          []int   `json:"mines,omitempty"`
}

// Snapshot lists mine positions only once the round is over.
func (r *Round) Snapshot() Snapshot {
	s := Snapshot{
		Stake:          r.Stake,
		MineCount:      r.MineCount,
		Status:         r.Status,
		Revealed:       r.Revealed,
		Multiplier:     r.Multiplier(),
		NextMultiplier: r.NextMultiplier(),
		Payout:         r.Payout,
		Cells:          append([]Cell(nil), r.cells[:]...),
	}

	if r.Resolved() {
		for i, m := range r.mines {
			if m {
				s.Mines = append(s.Mines, i)
			}
		}
	}
	return s
}
