package blackjack

import "strconv"

type Hand []Card

// HandValue counts aces as 11 and demotes them to 1, one at a time, while the
// total is over 21.
func HandValue(h Hand) int {
	total, aces := 0, 0
	for _, c := range h {
		switch c.Rank {
		case Ace:
			total += 11
			aces++
		case Jack, Queen, King:
			total += 10
		default:
			n, _ := strconv.Atoi(string(c.Rank))
			total += n
		}
	}

	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

func (h Hand) Value() int { return HandValue(h) }

func (h Hand) Bust() bool { return HandValue(h) > 21 }

// with returns a copy of h with c appended; h itself is not aliased.
func (h Hand) with(c Card) Hand {
	out := make(Hand, len(h), len(h)+1)
	copy(out, h)
	return append(out, c)
}
