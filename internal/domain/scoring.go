package domain

// Reaching SevenUniqueTarget distinct number values ends a player's round on
// the spot; SevenUniqueBonus is the score awarded for it.
const (
	SevenUniqueTarget = 7
	SevenUniqueBonus  = 15
)

// ScoreHand computes the round score for a hand: the number-card sum, doubled
// when a Doubler is held (before flat bonuses), plus every flat bonus, plus
// the seven-unique bonus when at least seven distinct number values are held.
// Action cards contribute nothing. Pure and order-independent; always
// re-derivable from the hand alone.
func ScoreHand(hand []Card) int {
	sum := 0
	bonus := 0
	double := false
	for _, c := range hand {
		switch c.Kind {
		case KindNumber:
			sum += c.Value
		case KindModifier:
			if c.Doubler {
				double = true
			} else {
				bonus += c.Bonus
			}
		}
	}
	if double {
		sum *= 2
	}
	total := sum + bonus
	if DistinctNumberCount(hand) >= SevenUniqueTarget {
		total += SevenUniqueBonus
	}
	return total
}

// DistinctNumberCount returns how many distinct number values the hand holds.
func DistinctNumberCount(hand []Card) int {
	seen := make(map[int]bool, len(hand))
	for _, c := range hand {
		if c.Kind == KindNumber {
			seen[c.Value] = true
		}
	}
	return len(seen)
}

// HoldsNumber reports whether the hand already holds the given number value.
func HoldsNumber(hand []Card, value int) bool {
	for _, c := range hand {
		if c.Kind == KindNumber && c.Value == value {
			return true
		}
	}
	return false
}

// HasStartingCard reports whether the hand contains a card that counts as a
// starting card for the initial deal: a number or a modifier.
func HasStartingCard(hand []Card) bool {
	for _, c := range hand {
		if c.Kind == KindNumber || c.Kind == KindModifier {
			return true
		}
	}
	return false
}

// InsuranceIndex returns the index of a held BustInsurance card, or -1.
func InsuranceIndex(hand []Card) int {
	for i, c := range hand {
		if c.IsAction(ActionBustInsurance) {
			return i
		}
	}
	return -1
}

// HasInsurance reports whether the hand holds a BustInsurance card.
func HasInsurance(hand []Card) bool { return InsuranceIndex(hand) >= 0 }
