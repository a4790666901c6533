package app

import (
	"github.com/gabrielgmendonca/flip7/internal/domain"

	"github.com/sirupsen/logrus"
)

// startRound opens the next round: hands go to the discard pile, statuses
// reset, then the one-starting-card deal begins at the dealer.
func (s *Service) startRound(events []Event) []Event {
	g := s.game
	g.Round++
	g.Pending = nil
	g.Run = nil
	g.TurnSeat = -1
	for _, p := range g.Players {
		if len(p.Hand) > 0 {
			g.DiscardCards(p.Hand...)
			p.Hand = nil
		}
		p.RoundScore = 0
		if p.Connected {
			p.Status = domain.StatusActive
		} else {
			p.Status = domain.StatusDisconnected
		}
	}
	g.Phase = domain.PhaseDealing
	g.DealCursor = 0

	s.log.WithFields(logrus.Fields{"round": g.Round, "dealer_seat": g.DealerSeat}).Info("round started")
	events = append(events, Event{
		Kind:    EventRoundStarted,
		Payload: RoundStartedPayload{Round: g.Round, DealerSeat: g.DealerSeat},
	})
	return s.settle(events)
}

// continueDeal runs the initial deal from the recorded cursor until every
// seat is done or a pending interaction pauses it. Dealing one seat is
// itself a loop: action cards resolve immediately, so the player keeps
// drawing until they hold a starting card or are out of the round.
func (s *Service) continueDeal(events []Event) []Event {
	g := s.game
	n := len(g.Players)
	for g.DealCursor < n {
		p := g.Players[(g.DealerSeat+g.DealCursor)%n]
		for p.CanAct() && !domain.HasStartingCard(p.Hand) {
			card, ok := g.DrawCard(s.rng)
			if !ok {
				break
			}
			events = s.applyEffect(events, p, card, DrawSourceDeal)
			if g.Pending != nil {
				return events
			}
			if g.Run != nil {
				events = s.continueRun(events)
				if g.Pending != nil {
					return events
				}
			}
		}
		g.DealCursor++
	}

	g.DealCursor = -1
	next := g.NextActiveSeat(g.DealerSeat)
	if next < 0 {
		return s.endRound(events)
	}
	g.TurnSeat = next
	g.Phase = domain.PhasePlayerTurn
	return append(events, Event{
		Kind:    EventTurnChanged,
		Payload: TurnChangedPayload{Seat: next, PlayerID: g.Players[next].ID},
	})
}

// endRound banks stopped and frozen players' round scores, then either
// finishes the game or schedules the next round. A tie at the highest
// qualifying total is not a win; the tied players settle it next round.
func (s *Service) endRound(events []Event) []Event {
	g := s.game
	g.Phase = domain.PhaseRoundEnd
	g.TurnSeat = -1

	for _, p := range g.Players {
		if p.Status == domain.StatusStopped || p.Status == domain.StatusFrozen {
			p.BankedScore += p.RoundScore
		}
	}
	s.log.WithField("round", g.Round).Info("round ended")
	events = append(events, Event{
		Kind:    EventRoundEnded,
		Payload: RoundEndedPayload{Round: g.Round, Scores: s.scoreboard()},
	})

	var best *domain.Player
	tied := false
	for _, p := range g.Players {
		if p.BankedScore < g.Settings.WinThreshold {
			continue
		}
		switch {
		case best == nil || p.BankedScore > best.BankedScore:
			best = p
			tied = false
		case p.BankedScore == best.BankedScore:
			tied = true
		}
	}
	if best != nil && !tied {
		g.Phase = domain.PhaseGameEnd
		g.WinnerID = best.ID
		s.log.WithFields(logrus.Fields{"winner": best.ID, "score": best.BankedScore}).Info("game ended")
		return append(events, Event{
			Kind:    EventGameEnded,
			Payload: GameEndedPayload{WinnerID: best.ID, Scores: s.scoreboard()},
		})
	}

	g.DealerSeat = (g.DealerSeat + 1) % len(g.Players)
	s.roundTimer = s.sched.After(g.Settings.NextRoundDelay, s.onNextRoundTimer)
	return events
}

func (s *Service) scoreboard() []PlayerScore {
	g := s.game
	out := make([]PlayerScore, len(g.Players))
	for i, p := range g.Players {
		out[i] = PlayerScore{PlayerID: p.ID, RoundScore: p.RoundScore, BankedScore: p.BankedScore, Status: p.Status}
	}
	return out
}

// onNextRoundTimer fires on the scheduler goroutine. It takes the engine
// lock like any other intent and hands the resulting events to the
// round-start hook outside the lock.
func (s *Service) onNextRoundTimer() {
	s.mu.Lock()
	if s.game.Phase != domain.PhaseRoundEnd {
		s.mu.Unlock()
		return
	}
	s.roundTimer = nil
	events := s.startRound(nil)
	hook := s.hook
	s.mu.Unlock()

	if hook != nil {
		hook(events)
	}
}
