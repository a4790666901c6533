package domain

import "strconv"

// CardKind discriminates the three families of cards in the deck.
type CardKind string

const (
	// KindNumber is a point card with a face value 0..12.
	KindNumber CardKind = "number"
	// KindAction is a card that triggers a sub-protocol when drawn.
	KindAction CardKind = "action"
	// KindModifier is a card that adjusts the round score at scoring time.
	KindModifier CardKind = "modifier"
)

// ActionKind identifies the effect of an action card.
type ActionKind string

const (
	// ActionFreeze ends a chosen player's round, banking their current score.
	ActionFreeze ActionKind = "freeze"
	// ActionDrawThree forces a chosen player to draw three cards in sequence.
	ActionDrawThree ActionKind = "draw_three"
	// ActionBustInsurance lets its holder discard a duplicate instead of busting.
	ActionBustInsurance ActionKind = "bust_insurance"
)

// Card is a single card. Kind discriminates which of the remaining fields
// carry meaning: Value for number cards, Action for action cards, Bonus and
// Doubler for modifiers. Cards are value types, never mutated after the deck
// is built; identity is the ID assigned at build time. Cards only ever move
// between zones (deck, hands, discard pile, the pending-interaction slot).
type Card struct {
	ID      int
	Kind    CardKind
	Value   int
	Action  ActionKind
	Bonus   int
	Doubler bool
}

// NumberCard returns a number card with the given face value.
func NumberCard(id, value int) Card {
	return Card{ID: id, Kind: KindNumber, Value: value}
}

// ActionCardOf returns an action card of the given kind.
func ActionCardOf(id int, kind ActionKind) Card {
	return Card{ID: id, Kind: KindAction, Action: kind}
}

// BonusCard returns a flat score modifier worth the given amount.
func BonusCard(id, amount int) Card {
	return Card{ID: id, Kind: KindModifier, Bonus: amount}
}

// DoublerCard returns the x2 modifier.
func DoublerCard(id int) Card {
	return Card{ID: id, Kind: KindModifier, Doubler: true}
}

// IsNumber reports whether the card is a number card.
func (c Card) IsNumber() bool { return c.Kind == KindNumber }

// IsModifier reports whether the card is a modifier card.
func (c Card) IsModifier() bool { return c.Kind == KindModifier }

// IsAction reports whether the card is an action card of the given kind.
func (c Card) IsAction(kind ActionKind) bool {
	return c.Kind == KindAction && c.Action == kind
}

// String renders the label used in logs: "7", "Freeze", "+4", "x2".
func (c Card) String() string {
	switch c.Kind {
	case KindNumber:
		return strconv.Itoa(c.Value)
	case KindAction:
		switch c.Action {
		case ActionFreeze:
			return "Freeze"
		case ActionDrawThree:
			return "Draw Three"
		case ActionBustInsurance:
			return "Bust Insurance"
		}
	case KindModifier:
		if c.Doubler {
			return "x2"
		}
		return "+" + strconv.Itoa(c.Bonus)
	}
	return "unknown"
}
