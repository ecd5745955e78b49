package blackjack

import (
	"errors"

	"casino-minigames/internal/rng"
)

var ErrDeckExhausted = errors.New("deck is exhausted")

type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
)

type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

var (
	Suits = []Suit{Spades, Hearts, Diamonds, Clubs}
	Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}
)

type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

func (c Card) String() string {
	return string(c.Rank) + string(c.Suit)
}

// Deck is consumed from the front.
type Deck []Card

// NewDeck returns the 52 cards in suit-major order.
func NewDeck() Deck {
	deck := make(Deck, 0, len(Suits)*len(Ranks))
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// ShuffledDeck returns a uniform permutation of the full deck (Fisher–Yates).
func ShuffledDeck(src rng.Source) Deck {
	deck := NewDeck()
	for i := len(deck) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// Draw removes and returns the first card.
func (d *Deck) Draw() (Card, error) {
	if len(*d) == 0 {
		return Card{}, ErrDeckExhausted
	}
	c := (*d)[0]
	*d = (*d)[1:]
	return c, nil
}

// DealInitialHands gives the player cards 0 and 1 and the dealer cards 2 and 3.
func DealInitialHands(deck Deck) (remaining Deck, player, dealer Hand, err error) {
	if len(deck) < 4 {
		return deck, nil, nil, ErrDeckExhausted
	}

	player = Hand{deck[0], deck[1]}
	dealer = Hand{deck[2], deck[3]}
	return deck[4:], player, dealer, nil
}
