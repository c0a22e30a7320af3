package domain

import (
	"fmt"
	"strings"
)

// Card is a playing card with Rank 2-14 (Ace high) and Suit one of 'c',
// 'd', 'h', 's'.
type Card struct {
	Rank int
	Suit byte
}

func (c Card) String() string {
	ranks := "  23456789TJQKA"
	return fmt.Sprintf("%c%c", ranks[c.Rank], c.Suit)
}

var rankValues = map[byte]int{
	'2': 2, '3': 3, '4': 4, '5': 5, '6': 6, '7': 7, '8': 8, '9': 9,
	'T': 10, 'J': 11, 'Q': 12, 'K': 13, 'A': 14,
}

// ParseCard parses a two-character card like "Ah" or "Td".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	rank, ok := rankValues[s[0]]
	if !ok {
		return Card{}, fmt.Errorf("invalid card rank in %q", s)
	}
	suit := s[1] | 0x20 // lowercase
	switch suit {
	case 'c', 'd', 'h', 's':
	default:
		return Card{}, fmt.Errorf("invalid card suit in %q", s)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// ParseCards parses a space-separated card list like "Ah Kd" or "2c 7d Js".
// An empty string parses to an empty slice.
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// PreflopStrength estimates hole-card strength on a 0-1 scale using a rank
// sum heuristic with pair, suited, connector, and broadway adjustments.
// Unknown or malformed holdings score 0.5.
func PreflopStrength(cards []Card) float64 {
	if len(cards) != 2 {
		return 0.5
	}
	v1, v2 := cards[0].Rank, cards[1].Rank
	high, low := v1, v2
	if low > high {
		high, low = low, high
	}

	strength := float64(high+low) / 28

	if v1 == v2 {
		strength += 0.25
	}
	if cards[0].Suit == cards[1].Suit {
		strength += 0.05
	}
	if high-low <= 2 && v1 != v2 {
		strength += 0.03
	}
	if low >= 12 {
		strength += 0.10 // both broadway
	}

	if strength > 1 {
		return 1
	}
	if strength < 0 {
		return 0
	}
	return strength
}
