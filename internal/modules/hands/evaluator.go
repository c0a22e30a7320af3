package hands

import (
	"fmt"
	"sort"

	poker "github.com/paulhankin/poker"

	"github.com/aristath/railbird/internal/domain"
)

// toEvalCard converts a domain card to the evaluator's representation.
// The evaluator uses Ace=1; ours is Ace=14.
func toEvalCard(c domain.Card) poker.Card {
	var s poker.Suit
	switch c.Suit {
	case 'c':
		s = poker.Club
	case 'd':
		s = poker.Diamond
	case 'h':
		s = poker.Heart
	default:
		s = poker.Spade
	}
	r := poker.Rank(c.Rank)
	if c.Rank == 14 {
		r = poker.Rank(1)
	}
	card, _ := poker.MakeCard(s, r)
	return card
}

// EvaluateShowdown scores a showdown holding: two hole cards plus a 3-5 card
// board. Lower score is stronger.
func EvaluateShowdown(holeCards, boardCards string) (*ShowdownInfo, error) {
	hole, err := domain.ParseCards(holeCards)
	if err != nil {
		return nil, fmt.Errorf("invalid hole cards: %w", err)
	}
	board, err := domain.ParseCards(boardCards)
	if err != nil {
		return nil, fmt.Errorf("invalid board cards: %w", err)
	}
	if len(hole) != 2 {
		return nil, &domain.InvalidParameterError{Param: "hole_cards", Reason: "showdown needs exactly 2 hole cards"}
	}
	if len(board) < 3 || len(board) > 5 {
		return nil, &domain.InvalidParameterError{Param: "board_cards", Reason: "showdown needs 3-5 board cards"}
	}

	all := append(append([]domain.Card{}, hole...), board...)

	score, bestFive := bestFiveOf(all)

	evalCards := make([]poker.Card, 5)
	for i, c := range bestFive {
		evalCards[i] = toEvalCard(c)
	}
	description, err := poker.Describe(evalCards)
	if err != nil {
		return nil, fmt.Errorf("failed to describe hand: %w", err)
	}

	return &ShowdownInfo{
		Class:       classifyFive(bestFive),
		Score:       score,
		Description: description,
	}, nil
}

// bestFiveOf finds the strongest 5-card subset and its evaluator score.
func bestFiveOf(cards []domain.Card) (int16, [5]domain.Card) {
	if len(cards) == 7 {
		var a7 [7]poker.Card
		for i, c := range cards {
			a7[i] = toEvalCard(c)
		}
		score := poker.Eval7(&a7)
		// Recover the winning five for classification.
		_, five := bestFiveBySubsets(cards)
		return score, five
	}
	if len(cards) == 5 {
		var five [5]domain.Card
		copy(five[:], cards)
		var a5 [5]poker.Card
		for i, c := range cards {
			a5[i] = toEvalCard(c)
		}
		return poker.Eval5(&a5), five
	}
	return bestFiveBySubsets(cards)
}

func bestFiveBySubsets(cards []domain.Card) (int16, [5]domain.Card) {
	n := len(cards)
	var bestScore int16
	var best [5]domain.Card
	first := true

	var five [5]domain.Card
	var idx [5]int
	var pick func(start, depth int)
	pick = func(start, depth int) {
		if depth == 5 {
			var a5 [5]poker.Card
			for i, ci := range idx {
				five[i] = cards[ci]
				a5[i] = toEvalCard(cards[ci])
			}
			score := poker.Eval5(&a5)
			if first || score < bestScore {
				first = false
				bestScore = score
				best = five
			}
			return
		}
		for i := start; i <= n-(5-depth); i++ {
			idx[depth] = i
			pick(i+1, depth+1)
		}
	}
	pick(0, 0)
	return bestScore, best
}

// classifyFive buckets a 5-card hand into its made-hand category.
func classifyFive(cards [5]domain.Card) HandClass {
	ranks := make([]int, 5)
	flush := true
	for i, c := range cards {
		ranks[i] = c.Rank
		if c.Suit != cards[0].Suit {
			flush = false
		}
	}
	sort.Ints(ranks)

	straight := isStraight(ranks)

	counts := map[int]int{}
	for _, r := range ranks {
		counts[r]++
	}
	var shape []int
	for _, n := range counts {
		shape = append(shape, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(shape)))

	switch {
	case straight && flush:
		return ClassStraightFlush
	case shape[0] == 4:
		return ClassQuads
	case shape[0] == 3 && shape[1] == 2:
		return ClassFullHouse
	case flush:
		return ClassFlush
	case straight:
		return ClassStraight
	case shape[0] == 3:
		return ClassTrips
	case shape[0] == 2 && shape[1] == 2:
		return ClassTwoPair
	case shape[0] == 2:
		return ClassPair
	default:
		return ClassHighCard
	}
}

// isStraight expects sorted distinct-or-not ranks; the wheel (A-2-3-4-5)
// counts.
func isStraight(sorted []int) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return false
		}
	}
	if sorted[4]-sorted[0] == 4 {
		return true
	}
	// Ace plays low in the wheel.
	return sorted[4] == 14 && sorted[0] == 2 && sorted[3] == 5
}
