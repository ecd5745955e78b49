package plinko

import (
	"errors"
	"fmt"

	"casino-minigames/internal/ledger"
	"casino-minigames/internal/rng"
	"casino-minigames/internal/sampler"
)

var (
	ErrUnknownTable = errors.New("unknown bin table")
	ErrTooFewBins   = errors.New("a bin table needs at least two bins")
)

type Bin struct {
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
	Weight     float64 `json:"weight" yaml:"weight"`
}

// Table is an immutable set of bins with a prebuilt sampler.
type Table struct {
	name string
	bins []Bin
	dist *sampler.Discrete
}

func NewTable(name string, bins []Bin) (*Table, error) {
	if len(bins) < 2 {
		return nil, fmt.Errorf("%w: %q has %d", ErrTooFewBins, name, len(bins))
	}

	weights := make([]float64, len(bins))
	for i, b := range bins {
		if b.Multiplier < 0 {
			return nil, fmt.Errorf("table %q bin %d: negative multiplier %v", name, i, b.Multiplier)
		}
		weights[i] = b.Weight
	}

	dist, err := sampler.New(weights)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", name, err)
	}

	return &Table{name: name, bins: append([]Bin(nil), bins...), dist: dist}, nil
}

func zip(name string, multipliers, weights []float64) *Table {
	bins := make([]Bin, len(multipliers))
	for i := range multipliers {
		bins[i] = Bin{Multiplier: multipliers[i], Weight: weights[i]}
	}

	t, err := NewTable(name, bins)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTable is the 11-bin board: 10x on the edges, 0.2x in the centre.
func DefaultTable() *Table {
	return zip("default",
		[]float64{10, 5, 2, 1, 0.5, 0.2, 0.5, 1, 2, 5, 10},
		[]float64{1, 1.5, 2.5, 10, 15, 40, 15, 10, 2.5, 1.5, 1},
	)
}

func CompactTable() *Table {
	return zip("compact",
		[]float64{5, 2, 0.5, 0.2, 0.5, 2, 5},
		[]float64{2, 8, 20, 40, 20, 8, 2},
	)
}

func (t *Table) Name() string { return t.name }

func (t *Table) Bins() []Bin { return append([]Bin(nil), t.bins...) }

func (t *Table) Len() int { return len(t.bins) }

// Probability is the chance of landing in bin i.
func (t *Table) Probability(i int) float64 { return t.dist.Probability(i) }

// ExpectedMultiplier is the return to player of one drop.
func (t *Table) ExpectedMultiplier() float64 {
	ev := 0.0
	for i, b := range t.bins {
		ev += b.Multiplier * t.dist.Probability(i)
	}
	return ev
}

// SelectBin picks the outcome. It is the only draw that affects payout.
func (t *Table) SelectBin(src rng.Source) int {
	return t.dist.Sample(src)
}

// Registry resolves table names from requests.
type Registry map[string]*Table

func DefaultRegistry() Registry {
	d, c := DefaultTable(), CompactTable()
	return Registry{d.Name(): d, c.Name(): c}
}

// Lookup returns the named table; empty selects "default".
func (r Registry) Lookup(name string) (*Table, error) {
	if name == "" {
		name = "default"
	}
	t, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return t, nil
}

type Result struct {
	Table      string  `json:"table"`
	Stake      int64   `json:"stake"`
	Bin        int     `json:"bin"`
	Multiplier float64 `json:"multiplier"`
	Payout     int64   `json:"payout"`
	Path       []Point `json:"path"`
}

// Drop debits the stake, selects a bin, then derives the cosmetic path from
// that bin. The payout is credited before Drop returns.
func Drop(l ledger.Ledger, stake int64, t *Table, src rng.Source) (Result, error) {
	if err := l.Debit(stake); err != nil {
		return Result{}, err
	}

	bin := t.SelectBin(src)
	mult := t.bins[bin].Multiplier
	res := Result{
		Table:      t.name,
		Stake:      stake,
		Bin:        bin,
		Multiplier: mult,
		Payout:     ledger.Payout(stake, mult),
		Path:       Path(bin, t.Len(), src),
	}

	if err := ledger.Settle(l, res.Payout); err != nil {
		return res, fmt.Errorf("settle plinko drop: %w", err)
	}
	return res, nil
}
