package app

import "github.com/gabrielgmendonca/flip7/internal/domain"

// EventKind identifies emitted engine events for transport dispatch.
type EventKind string

const (
	EventPlayerJoined       EventKind = "player_joined"
	EventPlayerLeft         EventKind = "player_left"
	EventPlayerDisconnected EventKind = "player_disconnected"
	EventPlayerReconnected  EventKind = "player_reconnected"
	EventGameStarted        EventKind = "game_started"
	EventRoundStarted       EventKind = "round_started"
	EventCardDrawn          EventKind = "card_drawn"
	EventPlayerStopped      EventKind = "player_stopped"
	EventPlayerBusted       EventKind = "player_busted"
	EventPlayerFrozen       EventKind = "player_frozen"
	EventInsurancePrompt    EventKind = "insurance_prompt"
	EventInsuranceResolved  EventKind = "insurance_resolved"
	EventInsurancePassed    EventKind = "insurance_passed"
	EventFreezePrompt       EventKind = "freeze_prompt"
	EventFreezeDiscarded    EventKind = "freeze_discarded"
	EventDrawThreePrompt    EventKind = "draw_three_prompt"
	EventDrawThreeStarted   EventKind = "draw_three_started"
	EventTurnChanged        EventKind = "turn_changed"
	EventRoundEnded         EventKind = "round_ended"
	EventGameEnded          EventKind = "game_ended"
)

// Event is an engine event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player ids; empty means broadcast
}

// DrawSource says which flow a card was drawn in.
type DrawSource string

const (
	// DrawSourceDeal is the one-starting-card deal at the top of a round.
	DrawSourceDeal DrawSource = "deal"
	// DrawSourceTurn is a normal hit on the player's own turn.
	DrawSourceTurn DrawSource = "turn"
	// DrawSourceForced is a draw owed inside a Draw Three sequence.
	DrawSourceForced DrawSource = "draw_three"
)

type PlayerJoinedPayload struct {
	PlayerID string
	Name     string
	Seat     int
	Host     bool
}

type PlayerLeftPayload struct {
	PlayerID string
	HostID   string // host after any migration
}

type PlayerDisconnectedPayload struct {
	PlayerID string
}

type PlayerReconnectedPayload struct {
	PlayerID string
}

type GameStartedPayload struct {
	DealerSeat int
}

type RoundStartedPayload struct {
	Round      int
	DealerSeat int
}

type CardDrawnPayload struct {
	PlayerID string
	Card     domain.Card
	Source   DrawSource
	SetAside bool // Freeze held aside during a Draw Three sequence
}

type PlayerStoppedPayload struct {
	PlayerID   string
	RoundScore int
	Auto       bool // seven-unique auto-stop
}

type PlayerBustedPayload struct {
	PlayerID string
	Card     domain.Card // the duplicate that busted them
}

type PlayerFrozenPayload struct {
	PlayerID   string
	ByID       string
	RoundScore int
}

type InsurancePromptPayload struct {
	PlayerID string
	Card     domain.Card // the duplicate held out of the hand
}

type InsuranceResolvedPayload struct {
	PlayerID  string
	Accepted  bool
	Discarded []domain.Card
}

type InsurancePassedPayload struct {
	FromID    string
	ToID      string
	Discarded bool // nobody could take it
}

type FreezePromptPayload struct {
	PlayerID string
	Eligible []string
}

type FreezeDiscardedPayload struct {
	TargetID string
	Card     domain.Card
}

type DrawThreePromptPayload struct {
	PlayerID string
	Eligible []string
}

type DrawThreeStartedPayload struct {
	TargetID  string
	Remaining int
	Extended  bool // a nested Draw Three added to an existing sequence
}

type TurnChangedPayload struct {
	Seat     int
	PlayerID string
}

// PlayerScore is one line of a scoreboard.
type PlayerScore struct {
	PlayerID    string
	RoundScore  int
	BankedScore int
	Status      domain.Status
}

type RoundEndedPayload struct {
	Round  int
	Scores []PlayerScore
}

type GameEndedPayload struct {
	WinnerID string
	Scores   []PlayerScore
}
