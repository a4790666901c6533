package app

import (
	"github.com/gabrielgmendonca/flip7/internal/domain"

	"github.com/sirupsen/logrus"
)

// DrawResult reports what a single draw intent did from the caller's view.
type DrawResult struct {
	Card        *domain.Card       // nil when deck and discard were both exhausted
	Busted      bool               // the drawer ended the draw busted
	BustCard    *domain.Card       // duplicate that busted or prompted insurance
	AutoStopped bool               // seven-unique auto-stop fired
	Pending     domain.PendingKind // non-empty when the draw paused the engine
}

// Draw is the hit intent: the current player takes the top card and its
// effect cascades, including any Draw Three sequence it sets off. When both
// the deck and the discard pile are exhausted the result carries no card and
// nothing changes.
func (s *Service) Draw(playerID string) (DrawResult, []Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.game
	if g.Phase != domain.PhasePlayerTurn {
		return DrawResult{}, nil, ErrWrongPhase
	}
	p := g.PlayerByID(playerID)
	if p == nil {
		return DrawResult{}, nil, ErrUnknownPlayer
	}
	if g.TurnSeat != p.Seat {
		return DrawResult{}, nil, ErrNotYourTurn
	}

	card, ok := g.DrawCard(s.rng)
	if !ok {
		return DrawResult{}, nil, nil
	}

	events := s.applyEffect(nil, p, card, DrawSourceTurn)
	events = s.settle(events)

	res := buildDrawResult(card, p.ID, events, g.Pending)
	if g.Pending == nil && g.Phase == domain.PhasePlayerTurn {
		events = s.advanceTurn(events)
	}
	return res, events, nil
}

// buildDrawResult reconstructs the caller's view of a draw from the events
// it produced.
func buildDrawResult(card domain.Card, playerID string, events []Event, pending *domain.Pending) DrawResult {
	res := DrawResult{Card: &card}
	if pending != nil {
		res.Pending = pending.Kind
	}
	for _, ev := range events {
		switch pl := ev.Payload.(type) {
		case PlayerBustedPayload:
			if pl.PlayerID == playerID {
				res.Busted = true
				c := pl.Card
				res.BustCard = &c
			}
		case InsurancePromptPayload:
			if pl.PlayerID == playerID {
				c := pl.Card
				res.BustCard = &c
			}
		case PlayerStoppedPayload:
			if pl.PlayerID == playerID && pl.Auto {
				res.AutoStopped = true
			}
		}
	}
	return res
}

// Stop is the pass intent: the current player banks the hand as scored and
// sits out the rest of the round.
func (s *Service) Stop(playerID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.game
	if g.Phase != domain.PhasePlayerTurn {
		return nil, ErrWrongPhase
	}
	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if g.TurnSeat != p.Seat {
		return nil, ErrNotYourTurn
	}

	events := s.stopPlayer(nil, p, false)
	if g.Phase == domain.PhasePlayerTurn {
		events = s.advanceTurn(events)
	}
	return events, nil
}

// ResolveBustChoice answers a pending contingent bust. Accepting spends the
// insurance card and discards the duplicate, keeping the rest of the hand;
// declining busts as usual and abandons any Draw Three sequence the player
// was in. Either way the interrupted flow resumes.
func (s *Service) ResolveBustChoice(playerID string, accept bool) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveBustChoiceLocked(playerID, accept)
}

func (s *Service) resolveBustChoiceLocked(playerID string, accept bool) ([]Event, error) {
	g := s.game
	if g.Pending == nil || g.Pending.Kind != domain.PendingBustChoice {
		return nil, ErrWrongPhase
	}
	if g.Pending.PlayerID != playerID {
		return nil, ErrNotYourChoice
	}

	p := g.PlayerByID(playerID)
	dup := g.Pending.Card
	g.Pending = nil
	s.restorePhase()

	var events []Event
	if accept {
		ins, _ := p.RemoveCard(p.Hand[domain.InsuranceIndex(p.Hand)].ID)
		g.DiscardCards(ins, dup)
		s.log.WithField("player", p.ID).Info("insurance accepted")
		events = append(events, Event{
			Kind:    EventInsuranceResolved,
			Payload: InsuranceResolvedPayload{PlayerID: p.ID, Accepted: true, Discarded: []domain.Card{ins, dup}},
		})
	} else {
		if g.Run != nil && g.Run.TargetID == p.ID {
			// Declining mid-sequence abandons the rest of it; set-aside
			// Freeze cards go unused.
			g.DiscardCards(g.Run.SetAside...)
			g.Run = nil
		}
		events = append(events, Event{
			Kind:    EventInsuranceResolved,
			Payload: InsuranceResolvedPayload{PlayerID: p.ID, Accepted: false},
		})
		events = s.bustPlayer(events, p, dup)
	}

	return s.finishResolution(events), nil
}

// ChooseFreezeTarget answers a pending freeze-target choice. Only the drawer
// may answer, naming one of the recorded eligible targets still able to act.
func (s *Service) ChooseFreezeTarget(playerID, targetID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chooseFreezeTargetLocked(playerID, targetID)
}

func (s *Service) chooseFreezeTargetLocked(playerID, targetID string) ([]Event, error) {
	g := s.game
	if g.Pending == nil || g.Pending.Kind != domain.PendingFreezeTarget {
		return nil, ErrWrongPhase
	}
	if g.Pending.PlayerID != playerID {
		return nil, ErrNotYourChoice
	}
	target := g.PlayerByID(targetID)
	if target == nil || !containsID(g.Pending.Eligible, targetID) || !target.CanAct() {
		return nil, ErrInvalidTarget
	}

	byID := g.Pending.PlayerID
	g.Pending = nil
	s.restorePhase()

	events := s.freezePlayer(nil, target, byID)
	return s.finishResolution(events), nil
}

// ChooseDrawThreeTarget answers a pending Draw Three target choice and kicks
// off the forced sequence against the chosen player.
func (s *Service) ChooseDrawThreeTarget(playerID, targetID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chooseDrawThreeTargetLocked(playerID, targetID)
}

func (s *Service) chooseDrawThreeTargetLocked(playerID, targetID string) ([]Event, error) {
	g := s.game
	if g.Pending == nil || g.Pending.Kind != domain.PendingDrawThreeTarget {
		return nil, ErrWrongPhase
	}
	if g.Pending.PlayerID != playerID {
		return nil, ErrNotYourChoice
	}
	target := g.PlayerByID(targetID)
	if target == nil || !containsID(g.Pending.Eligible, targetID) || !target.CanAct() {
		return nil, ErrInvalidTarget
	}

	g.Pending = nil
	s.restorePhase()

	g.Run = &domain.DrawThreeRun{TargetID: targetID, Remaining: 3}
	s.log.WithFields(logrus.Fields{"player": playerID, "target": targetID}).Info("draw three started")
	events := []Event{{
		Kind:    EventDrawThreeStarted,
		Payload: DrawThreeStartedPayload{TargetID: targetID, Remaining: 3},
	}}
	return s.finishResolution(events), nil
}

// autoResolvePending resolves the pending interaction on behalf of a player
// who disconnected while owning it. With no valid target left the
// interaction is dropped and play resumes.
func (s *Service) autoResolvePending(events []Event) []Event {
	g := s.game
	pending := g.Pending
	switch pending.Kind {
	case domain.PendingBustChoice:
		resolved, _ := s.resolveBustChoiceLocked(pending.PlayerID, false)
		return append(events, resolved...)
	case domain.PendingFreezeTarget:
		for _, id := range pending.Eligible {
			if t := g.PlayerByID(id); t != nil && t.CanAct() {
				resolved, _ := s.chooseFreezeTargetLocked(pending.PlayerID, id)
				return append(events, resolved...)
			}
		}
	case domain.PendingDrawThreeTarget:
		for _, id := range pending.Eligible {
			if t := g.PlayerByID(id); t != nil && t.CanAct() {
				resolved, _ := s.chooseDrawThreeTargetLocked(pending.PlayerID, id)
				return append(events, resolved...)
			}
		}
	}

	g.Pending = nil
	s.restorePhase()
	return s.finishResolution(events)
}

// settle drives whatever the last transition left unfinished: a Draw Three
// sequence first, then a paused initial deal. It stops as soon as a pending
// interaction appears.
func (s *Service) settle(events []Event) []Event {
	g := s.game
	for g.Pending == nil {
		if g.Run != nil {
			events = s.continueRun(events)
			continue
		}
		if g.DealCursor >= 0 {
			events = s.continueDeal(events)
			continue
		}
		break
	}
	return events
}

// restorePhase returns the engine to the interrupted flow after a pending
// interaction is cleared.
func (s *Service) restorePhase() {
	if s.game.DealCursor >= 0 {
		s.game.Phase = domain.PhaseDealing
	} else {
		s.game.Phase = domain.PhasePlayerTurn
	}
}

// finishResolution resumes the interrupted flow and advances the turn when
// control lands back in normal play. A resolution inside the initial deal
// never advances the turn here; the deal assigns the first turn itself.
func (s *Service) finishResolution(events []Event) []Event {
	g := s.game
	wasDealing := g.DealCursor >= 0
	events = s.settle(events)
	if g.Pending != nil {
		return events
	}
	if !wasDealing && g.Phase == domain.PhasePlayerTurn {
		events = s.advanceTurn(events)
	}
	return events
}

// advanceTurn hands the turn to the next active player clockwise, or ends
// the round when nobody can act.
func (s *Service) advanceTurn(events []Event) []Event {
	g := s.game
	next := g.NextActiveSeat(g.TurnSeat)
	if next < 0 {
		return s.endRound(events)
	}
	g.TurnSeat = next
	return append(events, Event{
		Kind:    EventTurnChanged,
		Payload: TurnChangedPayload{Seat: next, PlayerID: g.Players[next].ID},
	})
}
