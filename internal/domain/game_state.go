package domain

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Phase is the lifecycle stage of a game.
type Phase string

const (
	// PhaseLobby is the pre-game state where the roster assembles.
	PhaseLobby Phase = "lobby"
	// PhaseDealing covers the one-starting-card deal at the top of a round.
	PhaseDealing Phase = "dealing"
	// PhasePlayerTurn is normal play: the current player draws or stops.
	PhasePlayerTurn Phase = "player_turn"
	// PhaseBustChoice waits on a player deciding whether to spend insurance.
	PhaseBustChoice Phase = "awaiting_bust_choice"
	// PhaseFreezeTarget waits on the drawer of a Freeze naming its target.
	PhaseFreezeTarget Phase = "awaiting_freeze_target"
	// PhaseDrawThreeTarget waits on the drawer of a Draw Three naming its target.
	PhaseDrawThreeTarget Phase = "awaiting_draw_three_target"
	// PhaseRoundEnd is the pause between rounds while the next-round timer runs.
	PhaseRoundEnd Phase = "round_end"
	// PhaseGameEnd is terminal: a single player reached the win threshold.
	PhaseGameEnd Phase = "game_end"
)

// PendingKind discriminates the single pending-interaction slot.
type PendingKind string

const (
	// PendingBustChoice waits for accept/decline on a contingent bust.
	PendingBustChoice PendingKind = "bust_choice"
	// PendingFreezeTarget waits for the drawer to name a Freeze target.
	PendingFreezeTarget PendingKind = "freeze_target"
	// PendingDrawThreeTarget waits for the drawer to name a Draw Three target.
	PendingDrawThreeTarget PendingKind = "draw_three_target"
)

// Pending records the one interaction the engine is paused on; at most one
// exists at a time, and only PlayerID may answer it. Card is the duplicate
// held out of the hand for a bust choice, or the drawn action card for a
// target choice. Eligible lists the legal target ids for target choices.
type Pending struct {
	Kind     PendingKind
	PlayerID string
	Card     Card
	Eligible []string
}

// DrawThreeRun tracks an in-progress forced three-draw sequence. Remaining is
// the number of draws still owed; a nested Draw Three adds three more to it.
// Freeze cards drawn during the run are held in SetAside until the run ends.
type DrawThreeRun struct {
	TargetID  string
	Remaining int
	SetAside  []Card
}

// Settings carries the table parameters fixed at game start. TurnSeconds is
// advisory metadata for clients; the engine does not enforce a turn clock.
type Settings struct {
	WinThreshold   int
	MinPlayers     int
	MaxPlayers     int
	TurnSeconds    int
	NextRoundDelay time.Duration
}

// Game is the authoritative state for one table. Mutated only through the
// engine's transition methods.
type Game struct {
	ID         uuid.UUID
	Phase      Phase
	Players    []*Player // seat order; Player.Seat mirrors the slice index
	Deck       *Deck
	Discard    []Card
	Round      int
	DealerSeat int
	TurnSeat   int // seat of the current player, -1 outside PlayerTurn
	DealCursor int // offset from DealerSeat of the seat being dealt, -1 when idle
	Pending    *Pending
	Run        *DrawThreeRun
	WinnerID   string
	Settings   Settings
}

// NewGame creates an empty-lobby game. The deck is built unshuffled here and
// shuffled exactly once, when the game starts.
func NewGame(id uuid.UUID, settings Settings) *Game {
	return &Game{
		ID:         id,
		Phase:      PhaseLobby,
		Deck:       NewDeck(),
		DealerSeat: -1,
		TurnSeat:   -1,
		DealCursor: -1,
		Settings:   settings,
	}
}

// PlayerByID returns the player with the given id, or nil.
func (g *Game) PlayerByID(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerBySeat returns the player seated at the given index, or nil.
func (g *Game) PlayerBySeat(seat int) *Player {
	if seat < 0 || seat >= len(g.Players) {
		return nil
	}
	return g.Players[seat]
}

// CurrentPlayer returns the player whose turn it is, or nil outside PlayerTurn.
func (g *Game) CurrentPlayer() *Player { return g.PlayerBySeat(g.TurnSeat) }

// EligibleTargets lists, in seat order, the players a Freeze or Draw Three
// may target: everyone still active and connected.
func (g *Game) EligibleTargets() []string {
	var out []string
	for _, p := range g.Players {
		if p.CanAct() {
			out = append(out, p.ID)
		}
	}
	return out
}

// NextActiveSeat walks cyclically from the seat after from and returns the
// first seat whose player is active and connected, or -1 when none remain.
// The starting seat itself is considered last, so a lone survivor keeps the
// turn.
func (g *Game) NextActiveSeat(from int) int {
	n := len(g.Players)
	if n == 0 {
		return -1
	}
	for i := 1; i <= n; i++ {
		seat := (from + i + n) % n
		if g.Players[seat].CanAct() {
			return seat
		}
	}
	return -1
}

// ActiveCount returns how many players are still active and connected.
func (g *Game) ActiveCount() int {
	n := 0
	for _, p := range g.Players {
		if p.CanAct() {
			n++
		}
	}
	return n
}

// DrawCard pops the top of the deck, first recycling the discard pile
// (shuffled) when the deck is empty. False means both piles are exhausted,
// which is an expected result, not an error.
func (g *Game) DrawCard(rng *rand.Rand) (Card, bool) {
	if g.Deck.Empty() && len(g.Discard) > 0 {
		g.Deck.Return(g.Discard)
		g.Discard = nil
		g.Deck.Shuffle(rng)
	}
	return g.Deck.Draw()
}

// DiscardCards moves cards onto the discard pile.
func (g *Game) DiscardCards(cards ...Card) {
	g.Discard = append(g.Discard, cards...)
}
