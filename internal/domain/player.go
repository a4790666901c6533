package domain

// Status is a player's standing within the current round.
type Status string

const (
	// StatusActive players may draw or stop on their turn.
	StatusActive Status = "active"
	// StatusStopped players have banked their round score and sit out the rest of the round.
	StatusStopped Status = "stopped"
	// StatusBusted players lost their round score to a duplicate number.
	StatusBusted Status = "busted"
	// StatusFrozen players were ended by a Freeze card, score banked.
	StatusFrozen Status = "frozen"
	// StatusDisconnected players dropped mid-round and sit out until they return.
	StatusDisconnected Status = "disconnected"
)

// Player holds one participant's state for the running game. Owned by the
// engine; mutated only through its transition methods.
type Player struct {
	ID          string
	Name        string
	Seat        int
	Host        bool
	Connected   bool
	Status      Status
	Hand        []Card
	RoundScore  int
	BankedScore int
}

// CanAct reports whether the player may still act this round: active in the
// round and connected.
func (p *Player) CanAct() bool {
	return p.Status == StatusActive && p.Connected
}

// RemoveCard removes the card with the given id from the hand and returns it.
func (p *Player) RemoveCard(id int) (Card, bool) {
	for i, c := range p.Hand {
		if c.ID == id {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}
