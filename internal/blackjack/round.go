package blackjack

import (
	"fmt"

	"casino-minigames/internal/apperror"
	"casino-minigames/internal/ledger"
	"casino-minigames/internal/rng"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

type Outcome string

const (
	OutcomePlayerWin Outcome = "player_win"
	OutcomeDealerWin Outcome = "dealer_win"
	OutcomePush      Outcome = "push"
)

// Round is one hand of blackjack. The stake is debited by Start and settled
// exactly once when the round resolves: a win pays twice the stake, a push
// refunds it.
type Round struct {
	Stake      int64
	Difficulty Difficulty
	Status     Status
	Outcome    Outcome
	Payout     int64
	Player     Hand
	Dealer     Hand

	deck   Deck
	ledger ledger.Ledger
	src    rng.Source
}

func Start(l ledger.Ledger, stake int64, d Difficulty, src rng.Source) (*Round, error) {
	d, err := ParseDifficulty(string(d))
	if err != nil {
		return nil, err
	}
	if err := l.Debit(stake); err != nil {
		return nil, err
	}

	remaining, player, dealer, err := DealInitialHands(ShuffledDeck(src))
	if err != nil {
		return nil, err
	}

	return &Round{
		Stake:      stake,
		Difficulty: d,
		Status:     StatusInProgress,
		Player:     player,
		Dealer:     dealer,
		deck:       remaining,
		ledger:     l,
		src:        src,
	}, nil
}

func (r *Round) Resolved() bool { return r.Status == StatusResolved }

// Remaining reports how many cards are left in the shoe.
func (r *Round) Remaining() int { return len(r.deck) }

// Hit draws one card for the player. Busting resolves the round.
func (r *Round) Hit() (Card, error) {
	if r.Resolved() {
		return Card{}, apperror.ErrRoundResolved
	}

	c, err := r.deck.Draw()
	if err != nil {
		return Card{}, err
	}
	r.Player = append(r.Player, c)

	if r.Player.Bust() {
		if err := r.resolve(OutcomeDealerWin); err != nil {
			return c, err
		}
	}
	return c, nil
}

// Stand plays out the dealer and resolves the round.
func (r *Round) Stand() error {
	if r.Resolved() {
		return apperror.ErrRoundResolved
	}

	for ShouldDealerHit(r.Dealer, r.Player, r.Difficulty, r.deck, r.src) {
		c, err := r.deck.Draw()
		if err != nil {
			break
		}
		r.Dealer = append(r.Dealer, c)
	}

	pv, dv := HandValue(r.Player), HandValue(r.Dealer)
	switch {
	case dv > 21 || pv > dv:
		return r.resolve(OutcomePlayerWin)
	case pv == dv:
		return r.resolve(OutcomePush)
	default:
		return r.resolve(OutcomeDealerWin)
	}
}

func (r *Round) resolve(o Outcome) error {
	r.Status = StatusResolved
	r.Outcome = o

	switch o {
	case OutcomePlayerWin:
		r.Payout = 2 * r.Stake
	case OutcomePush:
		r.Payout = r.Stake
	}

	if err := ledger.Settle(r.ledger, r.Payout); err != nil {
		return fmt.Errorf("settle blackjack round: %w", err)
	}
	return nil
}

// Snapshot is the client view of a round. The dealer's hole card stays hidden
// until the round resolves.
type Snapshot struct {
	Stake       int64      `json:"stake"`
	Difficulty  Difficulty `json:"difficulty"`
	Status      Status     `json:"status"`
	Outcome     Outcome    `json:"outcome,omitempty"`
	Payout      int64      `json:"payout"`
	Player      Hand       `json:"player"`
	PlayerValue int        `json:"player_value"`
	Dealer      Hand       `json:"dealer"`
	DealerValue int        `json:"dealer_value,omitempty"`
}

func (r *Round) Snapshot() Snapshot {
	s := Snapshot{
		Stake:       r.Stake,
		Difficulty:  r.Difficulty,
		Status:      r.Status,
		Outcome:     r.Outcome,
		Payout:      r.Payout,
		Player:      append(Hand(nil), r.Player...),
		PlayerValue: HandValue(r.Player),
	}

	if r.Resolved() {
		s.Dealer = append(Hand(nil), r.Dealer...)
		s.DealerValue = HandValue(r.Dealer)
	} else if len(r.Dealer) > 0 {
		s.Dealer = Hand{r.Dealer[0]}
	}
	return s
}
