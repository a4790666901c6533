package domain

import (
	"math/rand"
	"testing"
)

func TestNewDeckComposition(t *testing.T) {
	d := NewDeck()
	if d.Len() != DeckSize {
		t.Fatalf("deck size = %d, want %d", d.Len(), DeckSize)
	}

	cards := d.DrawMany(DeckSize)
	if len(cards) != DeckSize {
		t.Fatalf("drew %d cards, want %d", len(cards), DeckSize)
	}
	if !d.Empty() {
		t.Fatalf("deck should be empty after drawing everything")
	}

	numbers := make(map[int]int)
	actions := make(map[ActionKind]int)
	bonuses := make(map[int]int)
	doublers := 0
	ids := make(map[int]bool)
	for _, c := range cards {
		if ids[c.ID] {
			t.Fatalf("duplicate card id %d", c.ID)
		}
		ids[c.ID] = true

		switch c.Kind {
		case KindNumber:
			numbers[c.Value]++
		case KindAction:
			actions[c.Action]++
		case KindModifier:
			if c.Doubler {
				doublers++
			} else {
				bonuses[c.Bonus]++
			}
		}
	}

	if got := numbers[0]; got != 1 {
		t.Errorf("zero cards = %d, want 1", got)
	}
	for v := 1; v <= MaxNumberValue; v++ {
		if got := numbers[v]; got != v {
			t.Errorf("copies of %d = %d, want %d", v, got, v)
		}
	}
	if got := actions[ActionFreeze]; got != FreezeCount {
		t.Errorf("freeze cards = %d, want %d", got, FreezeCount)
	}
	if got := actions[ActionDrawThree]; got != DrawThreeCount {
		t.Errorf("draw three cards = %d, want %d", got, DrawThreeCount)
	}
	if got := actions[ActionBustInsurance]; got != BustInsuranceCount {
		t.Errorf("bust insurance cards = %d, want %d", got, BustInsuranceCount)
	}
	for _, amount := range BonusAmounts {
		if got := bonuses[amount]; got != 1 {
			t.Errorf("+%d cards = %d, want 1", amount, got)
		}
	}
	if doublers != 1 {
		t.Errorf("doubler cards = %d, want 1", doublers)
	}
}

func TestDeckShuffleDeterministic(t *testing.T) {
	a := NewDeck()
	b := NewDeck()
	a.Shuffle(rand.New(rand.NewSource(7)))
	b.Shuffle(rand.New(rand.NewSource(7)))

	for i := 0; i < DeckSize; i++ {
		ca, _ := a.Draw()
		cb, _ := b.Draw()
		if ca.ID != cb.ID {
			t.Fatalf("card %d differs: id %d vs %d", i, ca.ID, cb.ID)
		}
	}
}

func TestDeckDrawEmpty(t *testing.T) {
	d := &Deck{}
	if _, ok := d.Draw(); ok {
		t.Fatalf("draw from empty deck should report no card")
	}
	if got := d.DrawMany(3); len(got) != 0 {
		t.Fatalf("DrawMany on empty deck = %d cards, want 0", len(got))
	}
}

func TestDeckReturn(t *testing.T) {
	d := &Deck{}
	d.Return([]Card{NumberCard(1, 5), NumberCard(2, 6)})
	if d.Len() != 2 {
		t.Fatalf("deck size = %d, want 2", d.Len())
	}
	// Return does not shuffle: last returned card is on top.
	c, ok := d.Draw()
	if !ok || c.ID != 2 {
		t.Fatalf("top card id = %d, want 2", c.ID)
	}
}

func TestDrawManyStopsEarly(t *testing.T) {
	d := &Deck{}
	d.Return([]Card{NumberCard(1, 5), NumberCard(2, 6)})
	got := d.DrawMany(5)
	if len(got) != 2 {
		t.Fatalf("DrawMany(5) on 2-card deck = %d cards, want 2", len(got))
	}
}
