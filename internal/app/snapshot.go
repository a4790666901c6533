package app

import "github.com/gabrielgmendonca/flip7/internal/domain"

// Snapshot is a read-only view of the table. Flip 7 is an open-information
// game: every hand is face up, so one snapshot serves all viewers.
type Snapshot struct {
	GameID       string
	Phase        domain.Phase
	Round        int
	DealerSeat   int
	TurnSeat     int
	DeckCount    int
	DiscardCount int
	Players      []PlayerSnapshot
	Pending      *PendingSnapshot
	DrawThree    *DrawThreeSnapshot
	WinnerID     string
	Settings     domain.Settings
}

// PlayerSnapshot is one seat's public state. RoundScore is the live value of
// the current hand while the player is active, the banked-at-exit value
// otherwise.
type PlayerSnapshot struct {
	ID          string
	Name        string
	Seat        int
	Host        bool
	Connected   bool
	Status      domain.Status
	Hand        []domain.Card
	RoundScore  int
	BankedScore int
}

// PendingSnapshot describes the interaction the engine is paused on.
type PendingSnapshot struct {
	Kind     domain.PendingKind
	PlayerID string
	Card     domain.Card
	Eligible []string
}

// DrawThreeSnapshot describes a Draw Three sequence in flight.
type DrawThreeSnapshot struct {
	TargetID  string
	Remaining int
	SetAside  int
}

// Snapshot captures the current state. The copy shares no mutable data with
// the engine.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.game
	snap := Snapshot{
		GameID:       g.ID.String(),
		Phase:        g.Phase,
		Round:        g.Round,
		DealerSeat:   g.DealerSeat,
		TurnSeat:     g.TurnSeat,
		DeckCount:    g.Deck.Len(),
		DiscardCount: len(g.Discard),
		WinnerID:     g.WinnerID,
		Settings:     g.Settings,
		Players:      make([]PlayerSnapshot, len(g.Players)),
	}
	for i, p := range g.Players {
		roundScore := p.RoundScore
		if p.Status == domain.StatusActive {
			roundScore = domain.ScoreHand(p.Hand)
		}
		snap.Players[i] = PlayerSnapshot{
			ID:          p.ID,
			Name:        p.Name,
			Seat:        p.Seat,
			Host:        p.Host,
			Connected:   p.Connected,
			Status:      p.Status,
			Hand:        append([]domain.Card(nil), p.Hand...),
			RoundScore:  roundScore,
			BankedScore: p.BankedScore,
		}
	}
	if g.Pending != nil {
		snap.Pending = &PendingSnapshot{
			Kind:     g.Pending.Kind,
			PlayerID: g.Pending.PlayerID,
			Card:     g.Pending.Card,
			Eligible: append([]string(nil), g.Pending.Eligible...),
		}
	}
	if g.Run != nil {
		snap.DrawThree = &DrawThreeSnapshot{
			TargetID:  g.Run.TargetID,
			Remaining: g.Run.Remaining,
			SetAside:  len(g.Run.SetAside),
		}
	}
	return snap
}
