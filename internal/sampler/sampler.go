package sampler

import (
	"errors"
	"fmt"
	"math"

	"casino-minigames/internal/rng"
)

var (
	ErrNoWeights     = errors.New("distribution needs at least one weight")
	ErrInvalidWeight = errors.New("weights must be finite and non-negative")
	ErrZeroTotal     = errors.New("weights sum to zero")
)

// Discrete samples an index with probability weight[i]/total by a linear
// scan over cumulative weights.
type Discrete struct {
	cumulative []float64
	total      float64
}

func New(weights []float64) (*Discrete, error) {
	if len(weights) == 0 {
		return nil, ErrNoWeights
	}

	cumulative := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight[%d] = %v", ErrInvalidWeight, i, w)
		}
		total += w
		cumulative[i] = total
	}

	if total == 0 {
		return nil, ErrZeroTotal
	}

	return &Discrete{cumulative: cumulative, total: total}, nil
}

// MustNew panics on invalid weights. For compiled-in tables only.
func MustNew(weights []float64) *Discrete {
	d, err := New(weights)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Discrete) Len() int { return len(d.cumulative) }

func (d *Discrete) Total() float64 { return d.total }

// Probability returns weight[i]/total.
func (d *Discrete) Probability(i int) float64 {
	prev := 0.0
	if i > 0 {
		prev = d.cumulative[i-1]
	}
	return (d.cumulative[i] - prev) / d.total
}

// Sample draws r in [0, total) and returns the first bin whose cumulative
// weight exceeds r. Zero-weight bins are never returned.
func (d *Discrete) Sample(src rng.Source) int {
	r := src.Float64() * d.total
	for i, c := range d.cumulative {
		if r < c {
			return i
		}
	}

	// r can only reach total through float rounding; fall back to the last
	// bin that carries weight.
	for i := len(d.cumulative) - 1; i > 0; i-- {
		if d.cumulative[i] > d.cumulative[i-1] {
			return i
		}
	}
	return 0
}
