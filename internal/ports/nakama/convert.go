package nakama

import (
	"github.com/gabrielgmendonca/flip7/internal/app"
	"github.com/gabrielgmendonca/flip7/internal/domain"
)

// Label is the match listing document maintained for discovery queries.
// Open counts free lobby seats and drops to zero once the game starts.
type Label struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// CardDTO is the wire form of a card. Kind discriminates which optional
// fields carry meaning, mirroring the domain card.
type CardDTO struct {
	ID      int    `json:"id"`
	Kind    string `json:"kind"`
	Value   int    `json:"value"`
	Action  string `json:"action,omitempty"`
	Bonus   int    `json:"bonus,omitempty"`
	Doubler bool   `json:"doubler,omitempty"`
}

// ScoreDTO is one scoreboard line in round and game results.
type ScoreDTO struct {
	PlayerID    string `json:"player_id"`
	RoundScore  int    `json:"round_score"`
	BankedScore int    `json:"banked_score"`
	Status      string `json:"status"`
}

// PlayerDTO is one seat's public state. Hands are face up for everyone.
type PlayerDTO struct {
	PlayerID    string    `json:"player_id"`
	Name        string    `json:"name"`
	Seat        int       `json:"seat"`
	Host        bool      `json:"host"`
	Connected   bool      `json:"connected"`
	Status      string    `json:"status"`
	Hand        []CardDTO `json:"hand"`
	RoundScore  int       `json:"round_score"`
	BankedScore int       `json:"banked_score"`
}

// PendingDTO describes the interaction the table is paused on.
type PendingDTO struct {
	Kind     string   `json:"kind"`
	PlayerID string   `json:"player_id"`
	Card     CardDTO  `json:"card"`
	Eligible []string `json:"eligible,omitempty"`
}

// DrawThreeDTO describes a Draw Three sequence in flight.
type DrawThreeDTO struct {
	TargetID  string `json:"target_id"`
	Remaining int    `json:"remaining"`
	SetAside  int    `json:"set_aside"`
}

// SnapshotDTO is the full table view broadcast after every accepted intent.
type SnapshotDTO struct {
	GameID       string        `json:"game_id"`
	Phase        string        `json:"phase"`
	Round        int           `json:"round"`
	DealerSeat   int           `json:"dealer_seat"`
	TurnSeat     int           `json:"turn_seat"`
	DeckCount    int           `json:"deck_count"`
	DiscardCount int           `json:"discard_count"`
	Players      []PlayerDTO   `json:"players"`
	Pending      *PendingDTO   `json:"pending,omitempty"`
	DrawThree    *DrawThreeDTO `json:"draw_three,omitempty"`
	WinnerID     string        `json:"winner_id,omitempty"`
	WinThreshold int           `json:"win_threshold"`
	MinPlayers   int           `json:"min_players"`
	MaxPlayers   int           `json:"max_players"`
	TurnSeconds  int           `json:"turn_seconds"`
}

// GameError is sent privately to the author of a rejected intent.
type GameError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Wire forms of the engine events, keyed by op code in convertEvent.

type PlayerJoinedEvent struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Seat     int    `json:"seat"`
	Host     bool   `json:"host"`
}

type PlayerLeftEvent struct {
	PlayerID string `json:"player_id"`
	HostID   string `json:"host_id,omitempty"`
}

type PlayerDisconnectedEvent struct {
	PlayerID string `json:"player_id"`
}

type PlayerReconnectedEvent struct {
	PlayerID string `json:"player_id"`
}

type GameStartedEvent struct {
	DealerSeat int `json:"dealer_seat"`
}

type RoundStartedEvent struct {
	Round      int `json:"round"`
	DealerSeat int `json:"dealer_seat"`
}

type CardDrawnEvent struct {
	PlayerID string  `json:"player_id"`
	Card     CardDTO `json:"card"`
	Source   string  `json:"source"`
	SetAside bool    `json:"set_aside,omitempty"`
}

type PlayerStoppedEvent struct {
	PlayerID   string `json:"player_id"`
	RoundScore int    `json:"round_score"`
	Auto       bool   `json:"auto,omitempty"`
}

type PlayerBustedEvent struct {
	PlayerID string  `json:"player_id"`
	Card     CardDTO `json:"card"`
}

type PlayerFrozenEvent struct {
	PlayerID   string `json:"player_id"`
	ByID       string `json:"by_id"`
	RoundScore int    `json:"round_score"`
}

type InsurancePromptEvent struct {
	PlayerID string  `json:"player_id"`
	Card     CardDTO `json:"card"`
}

type InsuranceResolvedEvent struct {
	PlayerID  string    `json:"player_id"`
	Accepted  bool      `json:"accepted"`
	Discarded []CardDTO `json:"discarded,omitempty"`
}

type InsurancePassedEvent struct {
	FromID    string `json:"from_id"`
	ToID      string `json:"to_id,omitempty"`
	Discarded bool   `json:"discarded,omitempty"`
}

type FreezePromptEvent struct {
	PlayerID string   `json:"player_id"`
	Eligible []string `json:"eligible"`
}

type FreezeDiscardedEvent struct {
	TargetID string  `json:"target_id"`
	Card     CardDTO `json:"card"`
}

type DrawThreePromptEvent struct {
	PlayerID string   `json:"player_id"`
	Eligible []string `json:"eligible"`
}

type DrawThreeStartedEvent struct {
	TargetID  string `json:"target_id"`
	Remaining int    `json:"remaining"`
	Extended  bool   `json:"extended,omitempty"`
}

type TurnChangedEvent struct {
	Seat     int    `json:"seat"`
	PlayerID string `json:"player_id"`
}

type RoundEndedEvent struct {
	Round  int        `json:"round"`
	Scores []ScoreDTO `json:"scores"`
}

type GameEndedEvent struct {
	WinnerID string     `json:"winner_id"`
	Scores   []ScoreDTO `json:"scores"`
}

func toCardDTO(c domain.Card) CardDTO {
	return CardDTO{
		ID:      c.ID,
		Kind:    string(c.Kind),
		Value:   c.Value,
		Action:  string(c.Action),
		Bonus:   c.Bonus,
		Doubler: c.Doubler,
	}
}

func toCardDTOs(cards []domain.Card) []CardDTO {
	if len(cards) == 0 {
		return nil
	}
	out := make([]CardDTO, len(cards))
	for i, c := range cards {
		out[i] = toCardDTO(c)
	}
	return out
}

func toScoreDTOs(scores []app.PlayerScore) []ScoreDTO {
	out := make([]ScoreDTO, len(scores))
	for i, s := range scores {
		out[i] = ScoreDTO{
			PlayerID:    s.PlayerID,
			RoundScore:  s.RoundScore,
			BankedScore: s.BankedScore,
			Status:      string(s.Status),
		}
	}
	return out
}

func toSnapshotDTO(s app.Snapshot) SnapshotDTO {
	dto := SnapshotDTO{
		GameID:       s.GameID,
		Phase:        string(s.Phase),
		Round:        s.Round,
		DealerSeat:   s.DealerSeat,
		TurnSeat:     s.TurnSeat,
		DeckCount:    s.DeckCount,
		DiscardCount: s.DiscardCount,
		Players:      make([]PlayerDTO, len(s.Players)),
		WinnerID:     s.WinnerID,
		WinThreshold: s.Settings.WinThreshold,
		MinPlayers:   s.Settings.MinPlayers,
		MaxPlayers:   s.Settings.MaxPlayers,
		TurnSeconds:  s.Settings.TurnSeconds,
	}
	for i, p := range s.Players {
		dto.Players[i] = PlayerDTO{
			PlayerID:    p.ID,
			Name:        p.Name,
			Seat:        p.Seat,
			Host:        p.Host,
			Connected:   p.Connected,
			Status:      string(p.Status),
			Hand:        toCardDTOs(p.Hand),
			RoundScore:  p.RoundScore,
			BankedScore: p.BankedScore,
		}
	}
	if s.Pending != nil {
		dto.Pending = &PendingDTO{
			Kind:     string(s.Pending.Kind),
			PlayerID: s.Pending.PlayerID,
			Card:     toCardDTO(s.Pending.Card),
			Eligible: s.Pending.Eligible,
		}
	}
	if s.DrawThree != nil {
		dto.DrawThree = &DrawThreeDTO{
			TargetID:  s.DrawThree.TargetID,
			Remaining: s.DrawThree.Remaining,
			SetAside:  s.DrawThree.SetAside,
		}
	}
	return dto
}

// convertEvent maps an engine event to its op code and wire payload. The
// second return is false for kinds with no wire mapping.
func convertEvent(ev app.Event) (int64, any, bool) {
	switch ev.Kind {
	case app.EventPlayerJoined:
		p, ok := ev.Payload.(app.PlayerJoinedPayload)
		if !ok {
			return 0, nil, false
		}
		return OpPlayerJoined, PlayerJoinedEvent{PlayerID: p.PlayerID, Name: p.Name, Seat: p.Seat, Host: p.Host}, true
	case app.EventPlayerLeft:
		p, ok := ev.Payload.(app.PlayerLeftPayload)
		if !ok {
			return 0, nil, false
		}
		return OpPlayerLeft, PlayerLeftEvent{PlayerID: p.PlayerID, HostID: p.HostID}, true
	case app.EventPlayerDisconnected:
		p, ok := ev.Payload.(app.PlayerDisconnectedPayload)
		if !ok {
			return 0, nil, false
		}
		return OpPlayerDisconnected, PlayerDisconnectedEvent{PlayerID: p.PlayerID}, true
	case app.EventPlayerReconnected:
		p, ok := ev.Payload.(app.PlayerReconnectedPayload)
		if !ok {
			return 0, nil, false
		}
		return OpPlayerReconnected, PlayerReconnectedEvent{PlayerID: p.PlayerID}, true
	case app.EventGameStarted:
		p, ok := ev.Payload.(app.GameStartedPayload)
		if !ok {
			return 0, nil, false
		}
		return OpGameStarted, GameStartedEvent{DealerSeat: p.DealerSeat}, true
	case app.EventRoundStarted:
		p, ok := ev.Payload.(app.RoundStartedPayload)
		if !ok {
			return 0, nil, false
		}
		return OpRoundStarted, RoundStartedEvent{Round: p.Round, DealerSeat: p.DealerSeat}, true
	case app.EventCardDrawn:
		p, ok := ev.Payload.(app.CardDrawnPayload)
		if !ok {
			return 0, nil, false
		}
		return OpCardDrawn, CardDrawnEvent{PlayerID: p.PlayerID, Card: toCardDTO(p.Card), Source: string(p.Source), SetAside: p.SetAside}, true
	case app.EventPlayerStopped:
		p, ok := ev.Payload.(app.PlayerStoppedPayload)
		if !ok {
			return 0, nil, false
		}
		return OpPlayerStopped, PlayerStoppedEvent{PlayerID: p.PlayerID, RoundScore: p.RoundScore, Auto: p.Auto}, true
	case app.EventPlayerBusted:
		p, ok := ev.Payload.(app.PlayerBustedPayload)
		if !ok {
			return 0, nil, false
		}
		return OpPlayerBusted, PlayerBustedEvent{PlayerID: p.PlayerID, Card: toCardDTO(p.Card)}, true
	case app.EventPlayerFrozen:
		p, ok := ev.Payload.(app.PlayerFrozenPayload)
		if !ok {
			return 0, nil, false
		}
		return OpPlayerFrozen, PlayerFrozenEvent{PlayerID: p.PlayerID, ByID: p.ByID, RoundScore: p.RoundScore}, true
	case app.EventInsurancePrompt:
		p, ok := ev.Payload.(app.InsurancePromptPayload)
		if !ok {
			return 0, nil, false
		}
		return OpInsurancePrompt, InsurancePromptEvent{PlayerID: p.PlayerID, Card: toCardDTO(p.Card)}, true
	case app.EventInsuranceResolved:
		p, ok := ev.Payload.(app.InsuranceResolvedPayload)
		if !ok {
			return 0, nil, false
		}
		return OpInsuranceResolved, InsuranceResolvedEvent{PlayerID: p.PlayerID, Accepted: p.Accepted, Discarded: toCardDTOs(p.Discarded)}, true
	case app.EventInsurancePassed:
		p, ok := ev.Payload.(app.InsurancePassedPayload)
		if !ok {
			return 0, nil, false
		}
		return OpInsurancePassed, InsurancePassedEvent{FromID: p.FromID, ToID: p.ToID, Discarded: p.Discarded}, true
	case app.EventFreezePrompt:
		p, ok := ev.Payload.(app.FreezePromptPayload)
		if !ok {
			return 0, nil, false
		}
		return OpFreezePrompt, FreezePromptEvent{PlayerID: p.PlayerID, Eligible: p.Eligible}, true
	case app.EventFreezeDiscarded:
		p, ok := ev.Payload.(app.FreezeDiscardedPayload)
		if !ok {
			return 0, nil, false
		}
		return OpFreezeDiscarded, FreezeDiscardedEvent{TargetID: p.TargetID, Card: toCardDTO(p.Card)}, true
	case app.EventDrawThreePrompt:
		p, ok := ev.Payload.(app.DrawThreePromptPayload)
		if !ok {
			return 0, nil, false
		}
		return OpDrawThreePrompt, DrawThreePromptEvent{PlayerID: p.PlayerID, Eligible: p.Eligible}, true
	case app.EventDrawThreeStarted:
		p, ok := ev.Payload.(app.DrawThreeStartedPayload)
		if !ok {
			return 0, nil, false
		}
		return OpDrawThreeStarted, DrawThreeStartedEvent{TargetID: p.TargetID, Remaining: p.Remaining, Extended: p.Extended}, true
	case app.EventTurnChanged:
		p, ok := ev.Payload.(app.TurnChangedPayload)
		if !ok {
			return 0, nil, false
		}
		return OpTurnChanged, TurnChangedEvent{Seat: p.Seat, PlayerID: p.PlayerID}, true
	case app.EventRoundEnded:
		p, ok := ev.Payload.(app.RoundEndedPayload)
		if !ok {
			return 0, nil, false
		}
		return OpRoundEnded, RoundEndedEvent{Round: p.Round, Scores: toScoreDTOs(p.Scores)}, true
	case app.EventGameEnded:
		p, ok := ev.Payload.(app.GameEndedPayload)
		if !ok {
			return 0, nil, false
		}
		return OpGameEnded, GameEndedEvent{WinnerID: p.WinnerID, Scores: toScoreDTOs(p.Scores)}, true
	}
	return 0, nil, false
}
