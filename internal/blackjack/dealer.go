package blackjack

import (
	"errors"
	"fmt"

	"casino-minigames/internal/rng"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

const (
	dealerStandsAt    = 17
	hardBustThreshold = 0.4
)

// ParseDifficulty accepts easy, medium or hard. Empty means medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case Easy, Medium, Hard:
		return d, nil
	case "":
		return Medium, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
}

// BustProbability is the fraction of remaining cards that would push the
// dealer over 21 if drawn next.
func BustProbability(dealer Hand, remaining Deck) float64 {
	if len(remaining) == 0 {
		return 0
	}

	busts := 0
	for _, c := range remaining {
		if HandValue(dealer.with(c)) > 21 {
			busts++
		}
	}
	return float64(busts) / float64(len(remaining))
}

// ShouldDealerHit decides one dealer draw. The hard dealer peeks at the
// composition of the undealt deck on every decision.
func ShouldDealerHit(dealer, player Hand, d Difficulty, remaining Deck, src rng.Source) bool {
	if len(remaining) == 0 {
		return false
	}

	dv := HandValue(dealer)
	if dv >= dealerStandsAt {
		return false
	}

	switch d {
	case Easy:
		return src.Float64() < 0.5
	case Hard:
		return dv < HandValue(player) || BustProbability(dealer, remaining) < hardBustThreshold
	default:
		return true
	}
}
