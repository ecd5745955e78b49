package coinflip

import (
	"errors"
	"fmt"
	"math"

	"casino-minigames/internal/ledger"
	"casino-minigames/internal/rng"
)

var (
	ErrUnknownSide   = errors.New("call heads or tails")
	ErrUnknownPolicy = errors.New("unknown coin policy")
)

// WinMultiplier is paid on a correct call.
const WinMultiplier = 2

type Side string

const (
	Heads Side = "heads"
	Tails Side = "tails"
)

func ParseSide(s string) (Side, error) {
	switch side := Side(s); side {
	case Heads, Tails:
		return side, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSide, s)
	}
}

func (s Side) Opposite() Side {
	if s == Heads {
		return Tails
	}
	return Heads
}

// Policy decides the player's chance of winning the next flip and learns from
// each result.
type Policy interface {
	Name() string
	WinProbability() float64
	Observe(won bool)
}

const (
	PolicyFair     = "fair"
	PolicyAdaptive = "adaptive"
)

// NewPolicy builds a policy by name; empty selects fair.
func NewPolicy(name string) (Policy, error) {
	switch name {
	case "", PolicyFair:
		return Fair{}, nil
	case PolicyAdaptive:
		return NewAdaptive(0.5, 0.02), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// Fair is a plain 50/50 coin.
type Fair struct{}

func (Fair) Name() string            { return PolicyFair }
func (Fair) WinProbability() float64 { return 0.5 }
func (Fair) Observe(bool)            {}

// Adaptive lowers the win chance by Step after every win and raises it after
// every loss, clamped to [0, 1].
type Adaptive struct {
	p    float64
	step float64
}

func NewAdaptive(start, step float64) *Adaptive {
	return &Adaptive{p: clamp(start), step: step}
}

func (a *Adaptive) Name() string            { return PolicyAdaptive }
func (a *Adaptive) WinProbability() float64 { return a.p }

func (a *Adaptive) Observe(won bool) {
	if won {
		a.p = clamp(a.p - a.step)
	} else {
		a.p = clamp(a.p + a.step)
	}
}

func clamp(p float64) float64 {
	// Round away accumulated float drift so 0.5 - 25*0.02 lands on 0.
	p = math.Round(p*1e9) / 1e9
	return math.Min(1, math.Max(0, p))
}

type Result struct {
	Call        Side    `json:"call"`
	Landed      Side    `json:"landed"`
	Won         bool    `json:"won"`
	Probability float64 `json:"probability"`
	Policy      string  `json:"policy"`
	Stake       int64   `json:"stake"`
	Payout      int64   `json:"payout"`
}

// Flip debits the stake, resolves the call under policy and credits a win.
func Flip(l ledger.Ledger, stake int64, call Side, policy Policy, src rng.Source) (Result, error) {
	call, err := ParseSide(string(call))
	if err != nil {
		return Result{}, err
	}
	if err := l.Debit(stake); err != nil {
		return Result{}, err
	}

	p := policy.WinProbability()
	won := src.Float64() < p
	policy.Observe(won)

	res := Result{
		Call:        call,
		Landed:      call.Opposite(),
		Won:         won,
		Probability: p,
		Policy:      policy.Name(),
		Stake:       stake,
	}
	if won {
		res.Landed = call
		res.Payout = WinMultiplier * stake
	}

	if err := ledger.Settle(l, res.Payout); err != nil {
		return res, fmt.Errorf("settle coin flip: %w", err)
	}
	return res, nil
}
