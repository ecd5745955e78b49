package hilo

import (
	"errors"
	"fmt"

	"casino-minigames/internal/apperror"
	"casino-minigames/internal/ledger"
	"casino-minigames/internal/rng"
)

var (
	ErrUnknownGuess   = errors.New("guess must be higher or lower")
	ErrNothingWon     = errors.New("make a correct guess before cashing out")
	ErrInvalidOptions = errors.New("start multiplier and step must not be negative")
)

// Card is a rank drawn with replacement. Value runs 2..14 with the ace high.
type Card struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

var ranks = []Card{
	{"2", 2}, {"3", 3}, {"4", 4}, {"5", 5}, {"6", 6}, {"7", 7}, {"8", 8},
	{"9", 9}, {"10", 10}, {"J", 11}, {"Q", 12}, {"K", 13}, {"A", 14},
}

func Draw(src rng.Source) Card {
	return ranks[src.IntN(len(ranks))]
}

// CardOf returns the card with the given value.
func CardOf(value int) Card {
	return ranks[value-2]
}

type Guess string

const (
	Higher Guess = "higher"
	Lower  Guess = "lower"
)

func ParseGuess(s string) (Guess, error) {
	switch g := Guess(s); g {
	case Higher, Lower:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGuess, s)
	}
}

// Correct reports whether next beats current in the guessed direction.
// Equal ranks are always wrong.
func Correct(g Guess, current, next Card) bool {
	switch g {
	case Higher:
		return next.Value > current.Value
	case Lower:
		return next.Value < current.Value
	}
	return false
}

type Status string

const (
	StatusPlaying   Status = "playing"
	StatusLost      Status = "lost"
	StatusCashedOut Status = "cashed_out"
)

// Options are in hundredths. Zero values mean 1.00x start and +0.20 per win.
type Options struct {
	StartMultiplier int64
	Step            int64
}

func (o Options) withDefaults() Options {
	if o.StartMultiplier == 0 {
		o.StartMultiplier = 100
	}
	if o.Step == 0 {
		o.Step = 20
	}
	return o
}

type Round struct {
	Stake   int64
	Status  Status
	Current Card
	Last    *Card
	History []Card
	Streak  int
	Payout  int64

	multiplier int64
	step       int64
	ledger     ledger.Ledger
	src        rng.Source
}

func Start(l ledger.Ledger, stake int64, opts Options, src rng.Source) (*Round, error) {
	opts = opts.withDefaults()
	if opts.StartMultiplier < 0 || opts.Step < 0 {
		return nil, ErrInvalidOptions
	}
	if err := l.Debit(stake); err != nil {
		return nil, err
	}

	first := Draw(src)
	return &Round{
		Stake:      stake,
		Status:     StatusPlaying,
		Current:    first,
		History:    []Card{first},
		multiplier: opts.StartMultiplier,
		step:       opts.Step,
		ledger:     l,
		src:        src,
	}, nil
}

func (r *Round) Resolved() bool { return r.Status != StatusPlaying }

func (r *Round) Multiplier() float64 { return float64(r.multiplier) / 100 }

// Guess draws the next card. A correct guess raises the multiplier by one
// step; a wrong one forfeits the stake.
func (r *Round) Guess(g Guess) (bool, error) {
	if r.Resolved() {
		return false, apperror.ErrRoundResolved
	}
	g, err := ParseGuess(string(g))
	if err != nil {
		return false, err
	}

	next := Draw(r.src)
	r.Last = &next

	if !Correct(g, r.Current, next) {
		r.Status = StatusLost
		return false, nil
	}

	r.multiplier += r.step
	r.Streak++
	r.Current = next
	r.History = append(r.History, next)
	return true, nil
}

// CashOut credits ceil(stake × multiplier).
func (r *Round) CashOut() (int64, error) {
	if r.Resolved() {
		return 0, apperror.ErrRoundResolved
	}
	if r.Streak == 0 {
		return 0, ErrNothingWon
	}

	r.Status = StatusCashedOut
	r.Payout = ledger.PayoutHundredths(r.Stake, r.multiplier)
	if err := ledger.Settle(r.ledger, r.Payout); err != nil {
		return 0, fmt.Errorf("settle hilo round: %w", err)
	}
	return r.Payout, nil
}

type Snapshot struct {
	Stake      int64   `json:"stake"`
	Status     Status  `json:"status"`
	Current    Card    `json:"current"`
	Last       *Card   `json:"last,omitempty"`
	History    []Card  `json:"history"`
	Streak     int     `json:"streak"`
	Multiplier float64 `json:"multiplier"`
	Payout     int64   `json:"payout"`
}

func (r *Round) Snapshot() Snapshot {
	return Snapshot{
		Stake:      r.Stake,
		Status:     r.Status,
		Current:    r.Current,
		Last:       r.Last,
		History:    append([]Card(nil), r.History...),
		Streak:     r.Streak,
		Multiplier: r.Multiplier(),
		Payout:     r.Payout,
	}
}
