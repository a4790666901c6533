package domain

import "math/rand"

// Deck composition. The full population is fixed at 94 cards: 79 numbers
// (value v appears v times, value 0 once), 10 action cards and 5 modifiers.
const (
	MaxNumberValue     = 12
	FreezeCount        = 4
	DrawThreeCount     = 3
	BustInsuranceCount = 3
	DeckSize           = 94
)

// BonusAmounts lists the flat modifier cards in the deck; a single Doubler
// completes the modifier set.
var BonusAmounts = []int{2, 4, 6, 8}

// Deck owns the ordered collection of undrawn cards. The discard pile lives
// on the Game; discarded cards come back here en masse through Return when
// the deck runs dry.
type Deck struct {
	cards []Card
}

// NewDeck builds the full 94-card deck in deterministic order with unique
// sequential ids. Callers shuffle separately.
func NewDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	cards = append(cards, Card{Kind: KindNumber})
	for v := 1; v <= MaxNumberValue; v++ {
		for i := 0; i < v; i++ {
			cards = append(cards, Card{Kind: KindNumber, Value: v})
		}
	}
	for i := 0; i < FreezeCount; i++ {
		cards = append(cards, Card{Kind: KindAction, Action: ActionFreeze})
	}
	for i := 0; i < DrawThreeCount; i++ {
		cards = append(cards, Card{Kind: KindAction, Action: ActionDrawThree})
	}
	for i := 0; i < BustInsuranceCount; i++ {
		cards = append(cards, Card{Kind: KindAction, Action: ActionBustInsurance})
	}
	for _, amount := range BonusAmounts {
		cards = append(cards, Card{Kind: KindModifier, Bonus: amount})
	}
	cards = append(cards, Card{Kind: KindModifier, Doubler: true})

	for i := range cards {
		cards[i].ID = i
	}
	return &Deck{cards: cards}
}

// Shuffle permutes the deck in place using the provided source.
func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card. The second return is false when the
// deck is empty; an empty deck is an expected state, not an error.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c, true
}

// DrawMany draws up to n cards, fewer if the deck runs out first.
func (d *Deck) DrawMany(n int) []Card {
	out := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		c, ok := d.Draw()
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out
}

// Return appends cards to the deck without shuffling.
func (d *Deck) Return(cards []Card) {
	d.cards = append(d.cards, cards...)
}

// Len returns the number of undrawn cards.
func (d *Deck) Len() int { return len(d.cards) }

// Empty reports whether no cards remain.
func (d *Deck) Empty() bool { return len(d.cards) == 0 }
